// Package sorter provides an in-place partition-exchange sort over an
// arbitrary numeric key.
package sorter

import (
	"errors"
	"fmt"
	"math"
)

// ErrKey is returned when a sort key cannot be produced for an element.
var ErrKey = errors.New("sort key unavailable")

// KeyFunc extracts the sort key from an element.
type KeyFunc[T any] func(T) (float64, error)

// span is an inclusive subrange still waiting to be partitioned.
type span struct{ low, high int }

// Sort reorders items in place so their keys are non-decreasing. The sort is
// not stable. Every key is computed once, up front; if any key fails the
// slice is left untouched and the error wraps ErrKey.
func Sort[T any](items []T, key KeyFunc[T]) error {
	if len(items) == 0 {
		return nil
	}

	keys := make([]float64, len(items))
	for i := range items {
		k, err := key(items[i])
		if err != nil {
			return fmt.Errorf("%w: element %d: %w", ErrKey, i, err)
		}
		if math.IsNaN(k) {
			return fmt.Errorf("%w: element %d: NaN is not comparable", ErrKey, i)
		}
		keys[i] = k
	}

	// Pending subranges, processed LIFO.
	stack := []span{{0, len(items) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.low >= s.high {
			continue
		}
		p := partition(items, keys, s.low, s.high)
		stack = append(stack, span{s.low, p - 1}, span{p + 1, s.high})
	}
	return nil
}

// partition uses the last element of [low, high] as the pivot and moves every
// element whose key is <= pivot to the left of the running boundary. It
// returns the pivot's final index.
func partition[T any](items []T, keys []float64, low, high int) int {
	pivot := keys[high]
	i := low - 1
	for j := low; j < high; j++ {
		if keys[j] <= pivot {
			i++
			swap(items, keys, i, j)
		}
	}
	swap(items, keys, i+1, high)
	return i + 1
}

func swap[T any](items []T, keys []float64, a, b int) {
	items[a], items[b] = items[b], items[a]
	keys[a], keys[b] = keys[b], keys[a]
}
