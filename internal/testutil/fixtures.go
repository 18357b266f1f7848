package testutil

import (
	"github.com/HerbHall/cropadvisor/pkg/crop"
)

// NewRecord returns a Record carrying every measurement attribute plus
// yield, weight, and value. Override individual fields with options.
func NewRecord(opts ...func(*crop.Record)) crop.Record {
	r := crop.Record{
		Label: "rice",
		Fields: map[string]float64{
			string(crop.Nitrogen):    90,
			string(crop.Phosphorus):  42,
			string(crop.Potassium):   43,
			string(crop.Temperature): 20.88,
			string(crop.Humidity):    82,
			string(crop.PH):          6.5,
			string(crop.Rainfall):    202.94,
			crop.YieldColumn:         38,
			crop.WeightColumn:        4,
			crop.ValueColumn:         9,
		},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// QueryFor returns the Query whose measurements equal r's.
func QueryFor(r crop.Record) crop.Query {
	return crop.Query{
		Nitrogen:    r.Fields[string(crop.Nitrogen)],
		Phosphorus:  r.Fields[string(crop.Phosphorus)],
		Potassium:   r.Fields[string(crop.Potassium)],
		Temperature: r.Fields[string(crop.Temperature)],
		Humidity:    r.Fields[string(crop.Humidity)],
		PH:          r.Fields[string(crop.PH)],
		Rainfall:    r.Fields[string(crop.Rainfall)],
	}
}

// WithLabel sets the record label.
func WithLabel(label string) func(*crop.Record) {
	return func(r *crop.Record) { r.Label = label }
}

// WithField sets a numeric field.
func WithField(name string, v float64) func(*crop.Record) {
	return func(r *crop.Record) { r.Fields[name] = v }
}

// WithYield sets the rank field.
func WithYield(v float64) func(*crop.Record) {
	return WithField(crop.YieldColumn, v)
}

// WithoutField removes a field to simulate a malformed row.
func WithoutField(name string) func(*crop.Record) {
	return func(r *crop.Record) { delete(r.Fields, name) }
}

// NewDataset wraps records in a snapshot ranked by yield.
func NewDataset(records ...crop.Record) *crop.Dataset {
	return crop.NewDataset(records, crop.WithSource("test"))
}
