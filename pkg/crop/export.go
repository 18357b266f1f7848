package crop

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
)

// WriteCSV writes ds as CSV in the layout ParseCSV reads: a header row of
// ds.Columns() followed by one row per record. A field a record lacks is
// written as an empty cell. Datasets without recorded columns get the
// measurement attributes, then any other fields sorted by name, then the label.
func WriteCSV(w io.Writer, ds *Dataset) error {
	columns := ds.Columns()
	if len(columns) == 0 {
		columns = csvColumns(ds.records)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range ds.records {
		if err := cw.Write(recordToCSVRow(columns, ds.records[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// recordToCSVRow converts a record to a row matching columns.
func recordToCSVRow(columns []string, r Record) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		if col == LabelColumn {
			row[i] = r.Label
			continue
		}
		if v, ok := r.Fields[col]; ok {
			row[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return row
}

func csvColumns(records []Record) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, a := range Attributes() {
		seen[string(a)] = true
		cols = append(cols, string(a))
	}
	var extra []string
	for _, r := range records {
		for name := range r.Fields {
			if !seen[name] {
				seen[name] = true
				extra = append(extra, name)
			}
		}
	}
	slices.Sort(extra)
	return append(append(cols, extra...), LabelColumn)
}
