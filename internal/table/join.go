package table

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// InnerJoin merges frames on their key. Only keys present in every input
// survive; a key missing from any one frame is dropped from the result. The
// output carries the columns of each frame in argument order.
func InnerJoin[K cmp.Ordered](frames ...Frame[K]) (Frame[K], error) {
	if len(frames) == 0 {
		return Frame[K]{}, errors.New("inner join needs at least one frame")
	}

	var columns []string
	owner := make(map[string]int)
	for i, f := range frames {
		for _, col := range f.columns {
			if j, dup := owner[col]; dup {
				return Frame[K]{}, fmt.Errorf("%w: %s in frames %d and %d", ErrDuplicateColumn, col, j, i)
			}
			owner[col] = i
			columns = append(columns, col)
		}
	}

	// Row positions per frame for each surviving key.
	var keys []K
	var positions [][]int
	for pos0, key := range frames[0].keys {
		row := make([]int, len(frames))
		row[0] = pos0
		inAll := true
		for i := 1; i < len(frames); i++ {
			pos, found := slices.BinarySearch(frames[i].keys, key)
			if !found {
				inAll = false
				break
			}
			row[i] = pos
		}
		if inAll {
			keys = append(keys, key)
			positions = append(positions, row)
		}
	}

	values := make(map[string][]float64, len(columns))
	for _, col := range columns {
		fi := owner[col]
		src := frames[fi].values[col]
		dst := make([]float64, len(keys))
		for r := range keys {
			dst[r] = src[positions[r][fi]]
		}
		values[col] = dst
	}

	return New(keys, columns, values)
}

// Missing returns the keys of left that have no row in right, in order.
func Missing[K cmp.Ordered](left, right Frame[K]) []K {
	var out []K
	for _, key := range left.keys {
		if _, found := slices.BinarySearch(right.keys, key); !found {
			out = append(out, key)
		}
	}
	return out
}
