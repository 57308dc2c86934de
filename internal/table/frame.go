// Package table provides an immutable keyed frame of float64 columns together
// with the group-and-sum builder and inner join the analysis pipeline relies
// on. Frames are never mutated after construction; every operation returns a
// new frame.
package table

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateColumn is returned when two frames being joined share a column.
var ErrDuplicateColumn = errors.New("duplicate column")

// ErrUnknownColumn is returned when a requested column does not exist.
var ErrUnknownColumn = errors.New("unknown column")

// Frame is a table indexed by a sorted, unique key with named numeric columns.
type Frame[K cmp.Ordered] struct {
	keys    []K
	columns []string
	values  map[string][]float64
}

// New builds a frame from parallel key and column slices. Rows are reordered
// by key; duplicate keys or ragged columns are rejected.
func New[K cmp.Ordered](keys []K, columns []string, values map[string][]float64) (Frame[K], error) {
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(keys[a], keys[b]) })

	sortedKeys := make([]K, len(keys))
	for i, idx := range order {
		sortedKeys[i] = keys[idx]
		if i > 0 && sortedKeys[i] == sortedKeys[i-1] {
			return Frame[K]{}, fmt.Errorf("duplicate key %v", sortedKeys[i])
		}
	}

	seen := make(map[string]bool, len(columns))
	out := make(map[string][]float64, len(columns))
	for _, col := range columns {
		if seen[col] {
			return Frame[K]{}, fmt.Errorf("%w: %s", ErrDuplicateColumn, col)
		}
		seen[col] = true

		src, ok := values[col]
		if !ok {
			return Frame[K]{}, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
		}
		if len(src) != len(keys) {
			return Frame[K]{}, fmt.Errorf("column %s has %d values, want %d", col, len(src), len(keys))
		}
		dst := make([]float64, len(keys))
		for i, idx := range order {
			dst[i] = src[idx]
		}
		out[col] = dst
	}

	return Frame[K]{
		keys:    sortedKeys,
		columns: slices.Clone(columns),
		values:  out,
	}, nil
}

// Len returns the number of rows.
func (f Frame[K]) Len() int {
	return len(f.keys)
}

// Keys returns a copy of the row keys in ascending order.
func (f Frame[K]) Keys() []K {
	return slices.Clone(f.keys)
}

// Columns returns a copy of the column names in frame order.
func (f Frame[K]) Columns() []string {
	return slices.Clone(f.columns)
}

// Column returns a copy of a column's values, aligned with Keys.
func (f Frame[K]) Column(name string) ([]float64, bool) {
	v, ok := f.values[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Value returns the cell at (key, column).
func (f Frame[K]) Value(key K, column string) (float64, bool) {
	col, ok := f.values[column]
	if !ok {
		return 0, false
	}
	i, found := slices.BinarySearch(f.keys, key)
	if !found {
		return 0, false
	}
	return col[i], true
}

// Sum returns the total of a column.
func (f Frame[K]) Sum(column string) float64 {
	var total float64
	for _, v := range f.values[column] {
		total += v
	}
	return total
}
