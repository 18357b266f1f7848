// Package recommend provides the recommendation engine that filters the
// reference crop table against a query and ranks the survivors.
package recommend

import (
	"errors"
	"fmt"

	"github.com/HerbHall/cropadvisor/internal/sorter"
	"github.com/HerbHall/cropadvisor/pkg/crop"
)

// ErrNoDataset is returned by NewEngine when given a nil dataset.
var ErrNoDataset = errors.New("recommend: nil dataset")

// Engine matches queries against an immutable dataset snapshot. It holds no
// mutable state and may be shared freely.
type Engine struct {
	ds *crop.Dataset
}

// NewEngine creates a new recommendation engine backed by the given dataset.
func NewEngine(ds *crop.Dataset) (*Engine, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	return &Engine{ds: ds}, nil
}

// Dataset returns the snapshot the engine reads from.
func (e *Engine) Dataset() *crop.Dataset {
	return e.ds
}

// Recommend returns the labels of all records matching q, ordered by the
// dataset's rank key ascending. An empty result is not an error.
func (e *Engine) Recommend(q crop.Query) ([]string, error) {
	matches, err := e.Matches(q)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(matches))
	for i := range matches {
		labels[i] = matches[i].Label
	}
	return labels, nil
}

// Matches returns the records matching q, ordered by the dataset's rank key
// ascending.
func (e *Engine) Matches(q crop.Query) ([]crop.Record, error) {
	matched, err := e.ds.Filter(func(r crop.Record) (bool, error) {
		return Match(q, r)
	})
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	rankKey := e.ds.RankKey()
	err = sorter.Sort(matched, func(r crop.Record) (float64, error) {
		return r.Value(rankKey)
	})
	if err != nil {
		return nil, fmt.Errorf("rank by %s: %w", rankKey, err)
	}
	return matched, nil
}

// Match reports whether r passes the inclusive two-sided range test against
// q on every measurement attribute. With point values in the reference table
// the test reduces to exact equality. A record missing an attribute yields an
// error wrapping crop.ErrMissingAttribute even when an earlier attribute
// already failed to match.
func Match(q crop.Query, r crop.Record) (bool, error) {
	matched := true
	for _, a := range crop.Attributes() {
		want, err := q.Value(a)
		if err != nil {
			return false, err
		}
		ref, err := r.Value(string(a))
		if err != nil {
			return false, err
		}
		matched = matched && inRange(want, ref, ref)
	}
	return matched, nil
}

// inRange checks lo <= v <= hi.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
