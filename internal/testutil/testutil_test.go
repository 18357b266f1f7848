package testutil

import (
	"context"
	"testing"

	"github.com/HerbHall/cropadvisor/pkg/crop"
)

func TestLogger_NotNil(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewStore_Usable(t *testing.T) {
	db := NewStore(t)
	if db == nil {
		t.Fatal("expected non-nil store")
	}
	if err := db.DB().PingContext(context.Background()); err != nil {
		t.Fatalf("PingContext: %v", err)
	}
}

func TestNewRecord_Defaults(t *testing.T) {
	r := NewRecord()
	if r.Label != "rice" {
		t.Errorf("Label = %q, want rice", r.Label)
	}
	for _, a := range crop.Attributes() {
		if _, err := r.Value(string(a)); err != nil {
			t.Errorf("default record missing %s: %v", a, err)
		}
	}
}

func TestNewRecord_WithOptions(t *testing.T) {
	r := NewRecord(
		WithLabel("maize"),
		WithYield(12),
		WithoutField(string(crop.PH)),
	)
	if r.Label != "maize" {
		t.Errorf("Label = %q, want maize", r.Label)
	}
	if got := r.Fields[crop.YieldColumn]; got != 12 {
		t.Errorf("yield = %v, want 12", got)
	}
	if _, ok := r.Fields[string(crop.PH)]; ok {
		t.Error("expected ph to be removed")
	}
}

func TestNewRecord_IndependentMaps(t *testing.T) {
	a := NewRecord()
	b := NewRecord(WithYield(1))
	if a.Fields[crop.YieldColumn] == b.Fields[crop.YieldColumn] {
		t.Error("fixtures should not share field maps")
	}
}

func TestQueryFor(t *testing.T) {
	r := NewRecord()
	q := QueryFor(r)
	if q.Nitrogen != 90 || q.Rainfall != 202.94 {
		t.Errorf("QueryFor = %+v", q)
	}
}
