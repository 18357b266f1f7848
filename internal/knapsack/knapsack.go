// Package knapsack implements 0/1 bounded-capacity selection: pick the subset
// of weighted items with the greatest total value that fits a capacity.
package knapsack

import (
	"errors"
	"fmt"
)

// DefaultMaxCells bounds the DP table a Selector will allocate.
const DefaultMaxCells = 10_000_000

// Sentinel errors.
var (
	ErrInvalidInput  = errors.New("invalid selection input")
	ErrTableTooLarge = errors.New("selection table too large")
)

// Item is one candidate for selection.
type Item struct {
	Label  string `json:"label"`
	Weight int    `json:"weight"`
	Value  int    `json:"value"`
}

// Result is the chosen subset. Items are listed in reverse input order.
type Result struct {
	Items       []Item `json:"items"`
	TotalWeight int    `json:"total_weight"`
	TotalValue  int    `json:"total_value"`
}

// Selector runs selections with a cap on table size. The zero value uses
// DefaultMaxCells.
type Selector struct {
	MaxCells int
}

// NewSelector returns a Selector limited to maxCells table cells. A
// non-positive maxCells selects DefaultMaxCells.
func NewSelector(maxCells int) *Selector {
	return &Selector{MaxCells: maxCells}
}

// Select is shorthand for a zero-value Selector's Select.
func Select(items []Item, capacity int) (Result, error) {
	var s Selector
	return s.Select(items, capacity)
}

// Select returns a subset of items with total weight <= capacity whose total
// value is maximal. Negative capacity or weights are rejected before any
// table is built.
func (s *Selector) Select(items []Item, capacity int) (Result, error) {
	if err := s.validate(items, capacity); err != nil {
		return Result{}, err
	}

	n := len(items)
	cols := capacity + 1
	// K[i][w] lives at k[i*cols+w].
	k := make([]int, (n+1)*cols)

	for i := 1; i <= n; i++ {
		it := items[i-1]
		row, prev := i*cols, (i-1)*cols
		for w := 1; w <= capacity; w++ {
			skip := k[prev+w]
			if it.Weight <= w {
				if take := it.Value + k[prev+w-it.Weight]; take > skip {
					k[row+w] = take
					continue
				}
			}
			k[row+w] = skip
		}
	}

	res := Result{Items: []Item{}}
	residual := k[n*cols+capacity]
	w := capacity
	for i := n; i > 0; i-- {
		if residual <= 0 {
			break
		}
		if residual == k[(i-1)*cols+w] {
			continue
		}
		it := items[i-1]
		res.Items = append(res.Items, it)
		res.TotalWeight += it.Weight
		res.TotalValue += it.Value
		residual -= it.Value
		w -= it.Weight
	}
	return res, nil
}

func (s *Selector) validate(items []Item, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: capacity %d is negative", ErrInvalidInput, capacity)
	}
	for i := range items {
		if items[i].Weight < 0 {
			return fmt.Errorf("%w: item %d (%s) has negative weight %d",
				ErrInvalidInput, i, items[i].Label, items[i].Weight)
		}
	}

	maxCells := s.MaxCells
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	rows := len(items) + 1
	// capacity+1 overflows at math.MaxInt, so compare capacity itself.
	if capacity >= maxCells/rows {
		return fmt.Errorf("%w: %d rows at capacity %d exceeds %d cells",
			ErrTableTooLarge, rows, capacity, maxCells)
	}
	return nil
}
