package table

import (
	"cmp"
	"slices"
)

// cell accumulates the values added at one (key, column).
type cell struct {
	sum float64
	n   int
}

// Builder accumulates (key, column) values and produces a Frame. Rows exist
// only for keys that received a value; within an existing row, a column that
// never received a value is 0.
type Builder[K cmp.Ordered] struct {
	columns  []string
	declared int
	known    map[string]bool
	rows     map[K]map[string]*cell
	mean     bool
}

// NewBuilder creates a summing builder with an initial column order. Columns
// first seen through Add are appended in sorted order when the frame is built.
func NewBuilder[K cmp.Ordered](columns ...string) *Builder[K] {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	return &Builder[K]{
		columns:  slices.Clone(columns),
		declared: len(columns),
		known:    known,
		rows:     make(map[K]map[string]*cell),
	}
}

// Mean makes the builder reduce each cell to the average of its values
// instead of their sum.
func (b *Builder[K]) Mean() *Builder[K] {
	b.mean = true
	return b
}

// Add records v at (key, column).
func (b *Builder[K]) Add(key K, column string, v float64) {
	row, ok := b.rows[key]
	if !ok {
		row = make(map[string]*cell)
		b.rows[key] = row
	}
	c, ok := row[column]
	if !ok {
		c = &cell{}
		row[column] = c
	}
	c.sum += v
	c.n++

	if !b.known[column] {
		b.known[column] = true
		b.columns = append(b.columns, column)
	}
}

// Frame returns the accumulated table. Keys are sorted ascending.
func (b *Builder[K]) Frame() Frame[K] {
	keys := make([]K, 0, len(b.rows))
	for k := range b.rows {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	columns := b.orderedColumns()
	values := make(map[string][]float64, len(columns))
	for _, col := range columns {
		v := make([]float64, len(keys))
		for i, k := range keys {
			if c, ok := b.rows[k][col]; ok {
				v[i] = c.value(b.mean)
			}
		}
		values[col] = v
	}

	return Frame[K]{keys: keys, columns: columns, values: values}
}

func (c *cell) value(mean bool) float64 {
	if mean {
		return c.sum / float64(c.n)
	}
	return c.sum
}

func (b *Builder[K]) orderedColumns() []string {
	columns := slices.Clone(b.columns)
	slices.Sort(columns[b.declared:])
	return columns
}
