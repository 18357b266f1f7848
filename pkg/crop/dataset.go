package crop

// Dataset is an immutable snapshot of the reference table. Reloading the
// table produces a new Dataset; an existing one is never modified.
type Dataset struct {
	records []Record
	columns []string
	rankKey string
	source  string
}

// Option configures a Dataset at construction.
type Option func(*Dataset)

// WithRankKey sets the column used to order recommendations. Defaults to "yield".
func WithRankKey(key string) Option {
	return func(d *Dataset) {
		if key != "" {
			d.rankKey = key
		}
	}
}

// WithSource records where the dataset was loaded from.
func WithSource(source string) Option {
	return func(d *Dataset) { d.source = source }
}

// WithColumns records the dataset's column names in file order.
func WithColumns(columns []string) Option {
	return func(d *Dataset) {
		d.columns = append([]string(nil), columns...)
	}
}

// NewDataset builds a snapshot from records. The records are deep-copied so
// later changes to the caller's slice are not observed.
func NewDataset(records []Record, opts ...Option) *Dataset {
	d := &Dataset{
		records: make([]Record, len(records)),
		rankKey: YieldColumn,
	}
	for i := range records {
		d.records[i] = records[i].clone()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// RankKey returns the column recommendations are ordered by.
func (d *Dataset) RankKey() string { return d.rankKey }

// Source returns where the dataset was loaded from, if known.
func (d *Dataset) Source() string { return d.source }

// Columns returns a copy of the column names.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Records returns a deep copy of all records in table order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	for i := range d.records {
		out[i] = d.records[i].clone()
	}
	return out
}

// Filter returns copies of the records for which keep reports true, in table
// order. The first error from keep aborts the scan and is returned as is.
// keep must not modify the record it is given.
func (d *Dataset) Filter(keep func(Record) (bool, error)) ([]Record, error) {
	var out []Record
	for i := range d.records {
		ok, err := keep(d.records[i])
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d.records[i].clone())
		}
	}
	return out, nil
}
