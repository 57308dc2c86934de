package correlation

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Order selects how defined coefficients are ranked.
type Order int

const (
	// BySigned ranks the most positive correlation first.
	BySigned Order = iota
	// ByMagnitude ranks the largest absolute correlation first.
	ByMagnitude
)

// ParseOrder maps the configuration value onto an Order.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "signed":
		return BySigned, nil
	case "magnitude", "abs":
		return ByMagnitude, nil
	default:
		return BySigned, fmt.Errorf("unknown rank order %q: want signed or magnitude", s)
	}
}

// Ranked is one series' correlation against the target, with its 1-based
// position in the ranking.
type Ranked struct {
	Rank   int
	Series string
	Coefficient
}

// Pair is one off-diagonal entry of the upper triangle.
type Pair struct {
	A, B string
	Coefficient
}

func score(c Coefficient, order Order) float64 {
	if order == ByMagnitude {
		return math.Abs(c.Value)
	}
	return c.Value
}

// compare orders defined before undefined, then by score descending, then by
// name for determinism.
func compare(a, b Coefficient, nameA, nameB string, order Order) int {
	if a.Defined() != b.Defined() {
		if a.Defined() {
			return -1
		}
		return 1
	}
	if a.Defined() {
		if c := cmp.Compare(score(b, order), score(a, order)); c != 0 {
			return c
		}
	}
	return strings.Compare(nameA, nameB)
}

// Against returns the target's row of the matrix, without the masked
// self-entry, ranked by order.
func Against(m Matrix, target string, order Order) ([]Ranked, error) {
	i, ok := m.index(target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeries, target)
	}

	out := make([]Ranked, 0, len(m.Columns)-1)
	for j, name := range m.Columns {
		c := m.Values[i][j]
		if j == i || c.Status == Masked {
			continue
		}
		out = append(out, Ranked{Series: name, Coefficient: c})
	}

	slices.SortStableFunc(out, func(a, b Ranked) int {
		return compare(a.Coefficient, b.Coefficient, a.Series, b.Series, order)
	})
	for k := range out {
		out[k].Rank = k + 1
	}
	return out, nil
}

// UpperPairs returns the strict upper triangle of m (diagonal and lower
// triangle masked), ranked by absolute correlation.
func UpperPairs(m Matrix) []Pair {
	var out []Pair
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			out = append(out, Pair{A: m.Columns[i], B: m.Columns[j], Coefficient: m.Values[i][j]})
		}
	}
	slices.SortStableFunc(out, func(a, b Pair) int {
		return compare(a.Coefficient, b.Coefficient, a.A+"\x00"+a.B, b.A+"\x00"+b.B, ByMagnitude)
	})
	return out
}

// Top returns at most k leading entries. k <= 0 returns all of them.
func Top[T any](ranked []T, k int) []T {
	if k <= 0 || k > len(ranked) {
		return ranked
	}
	return ranked[:k]
}
