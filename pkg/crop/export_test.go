package crop

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteCSV_RoundTrip(t *testing.T) {
	sample, err := Sample()
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, columns, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if diff := cmp.Diff(sample.Columns(), columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sample.Records(), records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_MissingFieldAndDerivedColumns(t *testing.T) {
	ds := NewDataset([]Record{
		{Label: "rice", Fields: map[string]float64{"nitrogen": 90, "yield": 38}},
		{Label: "maize, sweet", Fields: map[string]float64{"ph": 5.75, "acre": 2}},
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := strings.Join([]string{
		"nitrogen,phosphorus,potassium,temperature,humidity,ph,rainfall,acre,yield,label",
		"90,,,,,,,,38,rice",
		`,,,,,5.75,,2,,"maize, sweet"`,
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteCSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordToCSVRow(t *testing.T) {
	r := Record{Label: "lentil", Fields: map[string]float64{"ph": 7.16, "yield": 13}}
	got := recordToCSVRow([]string{"label", "ph", "rainfall", "yield"}, r)
	want := []string{"lentil", "7.16", "", "13"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("recordToCSVRow() mismatch (-want +got):\n%s", diff)
	}
}
