package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationsTotal.WithLabelValues(OutcomeFallback))
	RecordRecommendation(OutcomeFallback, 0)
	after := testutil.ToFloat64(RecommendationsTotal.WithLabelValues(OutcomeFallback))

	if after-before != 1 {
		t.Errorf("fallback counter delta = %v, want 1", after-before)
	}
}

func TestRecordSelection(t *testing.T) {
	before := testutil.ToFloat64(SelectionsTotal.WithLabelValues(OutcomeInvalid))
	RecordSelection(OutcomeInvalid, time.Millisecond)
	after := testutil.ToFloat64(SelectionsTotal.WithLabelValues(OutcomeInvalid))

	if after-before != 1 {
		t.Errorf("invalid counter delta = %v, want 1", after-before)
	}
}

func TestSetDatasetRecords(t *testing.T) {
	SetDatasetRecords(42)
	if got := testutil.ToFloat64(DatasetRecords); got != 42 {
		t.Errorf("DatasetRecords = %v, want 42", got)
	}
}
