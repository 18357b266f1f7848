package crop

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed sample.csv
var sampleRawData []byte

// ErrMissingLabel is returned when a table has no label column or a row has an
// empty label.
var ErrMissingLabel = errors.New("missing label")

var (
	sampleOnce sync.Once
	sample     *Dataset
	sampleErr  error
)

// Sample returns the embedded sample dataset, parsed on first access.
func Sample() (*Dataset, error) {
	sampleOnce.Do(func() {
		records, columns, err := ParseCSV(bytes.NewReader(sampleRawData))
		if err != nil {
			sampleErr = fmt.Errorf("crop: parse embedded sample: %w", err)
			return
		}
		sample = NewDataset(records, WithColumns(columns), WithSource("embedded:sample.csv"))
	})
	return sample, sampleErr
}

// ParseCSV reads a header row followed by data rows. Column names are trimmed
// and lower-cased. The label column is kept as text; every other non-empty
// cell must be numeric. An empty cell leaves the field absent from the record.
func ParseCSV(r io.Reader) ([]Record, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make([]string, len(header))
	labelIdx := -1
	for i, h := range header {
		columns[i] = normalizeColumn(h)
		if columns[i] == LabelColumn {
			labelIdx = i
		}
	}
	if labelIdx < 0 {
		return nil, nil, fmt.Errorf("csv header: %w column", ErrMissingLabel)
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row %d: %w", line, err)
		}
		rec, err := csvRowToRecord(columns, labelIdx, row)
		if err != nil {
			return nil, nil, fmt.Errorf("csv row %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, columns, nil
}

// csvRowToRecord converts one data row. encoding/csv already rejects rows
// whose field count differs from the header.
func csvRowToRecord(columns []string, labelIdx int, row []string) (Record, error) {
	rec := Record{
		Label:  strings.TrimSpace(row[labelIdx]),
		Fields: make(map[string]float64, len(columns)-1),
	}
	if rec.Label == "" {
		return Record{}, ErrMissingLabel
	}
	for i, cell := range row {
		if i == labelIdx {
			continue
		}
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return Record{}, fmt.Errorf("column %s: invalid number %q", columns[i], cell)
		}
		rec.Fields[columns[i]] = v
	}
	return rec, nil
}

// yamlFile is the top-level structure of a YAML dataset.
type yamlFile struct {
	RankKey string           `yaml:"rank_key"`
	Crops   []map[string]any `yaml:"crops"`
}

// ParseYAML decodes a YAML dataset of the form
//
//	rank_key: yield
//	crops:
//	  - label: rice
//	    nitrogen: 90
//	    ...
//
// The returned rank key is empty when the file does not set one.
func ParseYAML(data []byte) (records []Record, rankKey string, err error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parse yaml: %w", err)
	}
	records = make([]Record, 0, len(f.Crops))
	for i, entry := range f.Crops {
		rec := Record{Fields: make(map[string]float64, len(entry))}
		for key, raw := range entry {
			col := normalizeColumn(key)
			if col == LabelColumn {
				s, ok := raw.(string)
				if !ok {
					return nil, "", fmt.Errorf("crop %d: label must be a string, got %T", i, raw)
				}
				rec.Label = strings.TrimSpace(s)
				continue
			}
			v, err := yamlNumber(raw)
			if err != nil {
				return nil, "", fmt.Errorf("crop %d: column %s: %w", i, col, err)
			}
			rec.Fields[col] = v
		}
		if rec.Label == "" {
			return nil, "", fmt.Errorf("crop %d: %w", i, ErrMissingLabel)
		}
		records = append(records, rec)
	}
	return records, f.RankKey, nil
}

func yamlNumber(raw any) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid number %v (%T)", raw, raw)
	}
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
