// Package advisor holds the application context shared by the HTTP API and
// the CLI: the loaded dataset, the engine over it, the selector, and the
// business rules applied around them.
package advisor

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/cropadvisor/internal/knapsack"
	"github.com/HerbHall/cropadvisor/internal/metrics"
	"github.com/HerbHall/cropadvisor/internal/recommend"
	"github.com/HerbHall/cropadvisor/pkg/crop"
)

// DefaultFallbackLabel is returned in place of an empty recommendation.
const DefaultFallbackLabel = "Recommended crop: cotton"

// Recommendation is the outcome of one recommendation request.
type Recommendation struct {
	Labels   []string `json:"labels"`
	Matches  int      `json:"matches"`
	Fallback bool     `json:"fallback"`
}

// Advisor is built once at startup and never modified afterwards. Serving a
// different dataset means building a new Advisor.
type Advisor struct {
	ds       *crop.Dataset
	engine   *recommend.Engine
	selector *knapsack.Selector
	fallback string
	logger   *zap.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithFallbackLabel overrides DefaultFallbackLabel.
func WithFallbackLabel(label string) Option {
	return func(a *Advisor) {
		if label != "" {
			a.fallback = label
		}
	}
}

// WithMaxCells caps the selector's DP table size.
func WithMaxCells(n int) Option {
	return func(a *Advisor) { a.selector = knapsack.NewSelector(n) }
}

// New builds an Advisor over ds.
func New(ds *crop.Dataset, logger *zap.Logger, opts ...Option) (*Advisor, error) {
	engine, err := recommend.NewEngine(ds)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Advisor{
		ds:       ds,
		engine:   engine,
		selector: knapsack.NewSelector(knapsack.DefaultMaxCells),
		fallback: DefaultFallbackLabel,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	metrics.SetDatasetRecords(ds.Len())
	return a, nil
}

// Dataset returns the reference snapshot.
func (a *Advisor) Dataset() *crop.Dataset {
	return a.ds
}

// Recommend runs the engine and substitutes the fallback label when nothing
// matches. Engine errors are data-integrity failures and are returned as is.
func (a *Advisor) Recommend(q crop.Query) (Recommendation, error) {
	labels, err := a.engine.Recommend(q)
	if err != nil {
		metrics.RecordRecommendation(metrics.OutcomeError, 0)
		a.logger.Error("recommendation failed", zap.Error(err))
		return Recommendation{}, fmt.Errorf("recommend: %w", err)
	}

	if len(labels) == 0 {
		metrics.RecordRecommendation(metrics.OutcomeFallback, 0)
		a.logger.Debug("no reference record matched, using fallback",
			zap.String("fallback", a.fallback))
		return Recommendation{Labels: []string{a.fallback}, Fallback: true}, nil
	}

	metrics.RecordRecommendation(metrics.OutcomeMatched, len(labels))
	a.logger.Debug("recommendation matched", zap.Int("matches", len(labels)))
	return Recommendation{Labels: labels, Matches: len(labels)}, nil
}

// Greeting formats a recommendation for a named user.
func Greeting(name string, rec Recommendation) string {
	return fmt.Sprintf("Hello %s, Recommended crop: %s", name, strings.Join(rec.Labels, ", "))
}

// Select runs the capacity selector over caller-supplied items.
func (a *Advisor) Select(items []knapsack.Item, capacity int) (knapsack.Result, error) {
	start := time.Now()
	res, err := a.selector.Select(items, capacity)
	if err != nil {
		metrics.RecordSelection(metrics.OutcomeInvalid, 0)
		return knapsack.Result{}, err
	}
	metrics.RecordSelection(metrics.OutcomeOK, time.Since(start))
	a.logger.Debug("selection complete",
		zap.Int("items", len(items)),
		zap.Int("capacity", capacity),
		zap.Int("selected", len(res.Items)),
		zap.Int("value", res.TotalValue))
	return res, nil
}

// Plan selects from the reference dataset itself, using each record's weight
// and value columns. A record lacking either column is a data-integrity error.
func (a *Advisor) Plan(capacity int) (knapsack.Result, error) {
	items, err := Items(a.ds.Records())
	if err != nil {
		metrics.RecordSelection(metrics.OutcomeError, 0)
		return knapsack.Result{}, fmt.Errorf("plan: %w", err)
	}
	return a.Select(items, capacity)
}

// Items converts reference records to selector items.
func Items(records []crop.Record) ([]knapsack.Item, error) {
	items := make([]knapsack.Item, len(records))
	for i, r := range records {
		w, err := r.IntValue(crop.WeightColumn)
		if err != nil {
			return nil, err
		}
		v, err := r.IntValue(crop.ValueColumn)
		if err != nil {
			return nil, err
		}
		items[i] = knapsack.Item{Label: r.Label, Weight: w, Value: v}
	}
	return items, nil
}
