// Package crop defines the reference crop records, user queries, and the
// immutable dataset snapshot the recommendation engine reads from.
package crop

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Attribute names one of the numeric soil or climate measurements.
type Attribute string

const (
	Nitrogen    Attribute = "nitrogen"
	Phosphorus  Attribute = "phosphorus"
	Potassium   Attribute = "potassium"
	Temperature Attribute = "temperature"
	Humidity    Attribute = "humidity"
	PH          Attribute = "ph"
	Rainfall    Attribute = "rainfall"
)

// Well-known non-measurement columns.
const (
	LabelColumn  = "label"
	YieldColumn  = "yield"
	WeightColumn = "weight"
	ValueColumn  = "value"
)

// Attributes returns the seven measurement attributes in canonical order.
func Attributes() []Attribute {
	return []Attribute{Nitrogen, Phosphorus, Potassium, Temperature, Humidity, PH, Rainfall}
}

// Sentinel errors for malformed records.
var (
	ErrMissingAttribute = errors.New("missing attribute")
	ErrNotInteger       = errors.New("not an integer")
)

// Record is one reference crop entry. Fields holds every numeric column the
// dataset carried for the row, keyed by column name.
type Record struct {
	Label  string             `json:"label" yaml:"label"`
	Fields map[string]float64 `json:"fields" yaml:"fields"`
}

// Value returns the named numeric field. A field absent from the record is a
// structural error, never a zero.
func (r Record) Value(name string) (float64, error) {
	v, ok := r.Fields[name]
	if !ok {
		return 0, fmt.Errorf("record %q: %w: %s", r.Label, ErrMissingAttribute, name)
	}
	return v, nil
}

// IntValue returns the named field as an integer. Used for the selector's
// weight and value columns.
func (r Record) IntValue(name string) (int, error) {
	v, err := r.Value(name)
	if err != nil {
		return 0, err
	}
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) >= float64(math.MaxInt) {
		return 0, fmt.Errorf("record %q: field %s=%v: %w", r.Label, name, v, ErrNotInteger)
	}
	return int(v), nil
}

// clone returns a deep copy so callers cannot mutate a snapshot's records.
func (r Record) clone() Record {
	fields := make(map[string]float64, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{Label: r.Label, Fields: fields}
}

// Query is one user-supplied measurement set.
type Query struct {
	Nitrogen    float64 `json:"nitrogen" mapstructure:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus" mapstructure:"phosphorus"`
	Potassium   float64 `json:"potassium" mapstructure:"potassium"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
	Humidity    float64 `json:"humidity" mapstructure:"humidity"`
	PH          float64 `json:"ph" mapstructure:"ph"`
	Rainfall    float64 `json:"rainfall" mapstructure:"rainfall"`
}

// Value returns the query's measurement for a.
func (q Query) Value(a Attribute) (float64, error) {
	switch a {
	case Nitrogen:
		return q.Nitrogen, nil
	case Phosphorus:
		return q.Phosphorus, nil
	case Potassium:
		return q.Potassium, nil
	case Temperature:
		return q.Temperature, nil
	case Humidity:
		return q.Humidity, nil
	case PH:
		return q.PH, nil
	case Rainfall:
		return q.Rainfall, nil
	default:
		return 0, fmt.Errorf("query: %w: %s", ErrMissingAttribute, a)
	}
}

// UnmarshalJSON decodes a query, accepting "phosphorous" as an alias for
// "phosphorus", the spelling used by the legacy input form. Every attribute
// must be present and non-null; absent ones are reported together as
// ErrMissingAttribute.
func (q *Query) UnmarshalJSON(data []byte) error {
	var aux struct {
		Nitrogen    *float64 `json:"nitrogen"`
		Phosphorus  *float64 `json:"phosphorus"`
		Phosphorous *float64 `json:"phosphorous"`
		Potassium   *float64 `json:"potassium"`
		Temperature *float64 `json:"temperature"`
		Humidity    *float64 `json:"humidity"`
		PH          *float64 `json:"ph"`
		Rainfall    *float64 `json:"rainfall"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Phosphorous != nil {
		aux.Phosphorus = aux.Phosphorous
	}

	fields := []struct {
		attr Attribute
		src  *float64
		dst  *float64
	}{
		{Nitrogen, aux.Nitrogen, &q.Nitrogen},
		{Phosphorus, aux.Phosphorus, &q.Phosphorus},
		{Potassium, aux.Potassium, &q.Potassium},
		{Temperature, aux.Temperature, &q.Temperature},
		{Humidity, aux.Humidity, &q.Humidity},
		{PH, aux.PH, &q.PH},
		{Rainfall, aux.Rainfall, &q.Rainfall},
	}
	var missing []string
	for _, f := range fields {
		if f.src == nil {
			missing = append(missing, string(f.attr))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("query: %w: %s", ErrMissingAttribute, strings.Join(missing, ", "))
	}
	for _, f := range fields {
		*f.dst = *f.src
	}
	return nil
}
