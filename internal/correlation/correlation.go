// Package correlation computes Pearson correlation matrices over the columns
// of a frame and ranks series against a target column.
//
// Entries are never NaN. A pair involving a constant series, or fewer than
// two rows, is Undefined; the diagonal is Masked. Rankings always place
// Undefined entries after every defined one so that an undefined correlation
// can never appear as the strongest.
package correlation

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/rewired-gh/seiscorr/internal/table"
)

// Status tells whether a coefficient carries a value.
type Status int

const (
	Defined Status = iota
	Undefined
	Masked
)

func (s Status) String() string {
	switch s {
	case Defined:
		return "defined"
	case Undefined:
		return "undefined"
	case Masked:
		return "masked"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Coefficient is one matrix entry. Value is meaningful only when Status is
// Defined.
type Coefficient struct {
	Value  float64
	Status Status
}

// Defined reports whether the coefficient has a value.
func (c Coefficient) Defined() bool {
	return c.Status == Defined
}

// Ptr returns the value as a pointer, or nil when it is not defined.
func (c Coefficient) Ptr() *float64 {
	if !c.Defined() {
		return nil
	}
	v := c.Value
	return &v
}

func (c Coefficient) String() string {
	switch c.Status {
	case Defined:
		return strconv.FormatFloat(c.Value, 'f', 4, 64)
	case Masked:
		return "-"
	default:
		return "undefined"
	}
}

// ErrUnknownSeries is returned when a requested series is not in the matrix.
var ErrUnknownSeries = errors.New("unknown series")

// Pearson returns the linear correlation of x and y.
func Pearson(x, y []float64) Coefficient {
	if len(x) != len(y) || len(x) < 2 || constant(x) || constant(y) {
		return Coefficient{Status: Undefined}
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Coefficient{Status: Undefined}
	}
	return Coefficient{Value: math.Max(-1, math.Min(1, r)), Status: Defined}
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

// Matrix is a square correlation matrix indexed by series name.
type Matrix struct {
	Columns []string
	Values  [][]Coefficient // row-major, Values[i][j]
}

// Compute returns the pairwise Pearson matrix over every column of f.
func Compute[K cmp.Ordered](f table.Frame[K]) Matrix {
	cols := f.Columns()
	series := make([][]float64, len(cols))
	for i, c := range cols {
		series[i], _ = f.Column(c)
	}

	values := make([][]Coefficient, len(cols))
	for i := range values {
		values[i] = make([]Coefficient, len(cols))
	}
	for i := range cols {
		values[i][i] = Coefficient{Status: Masked}
		for j := i + 1; j < len(cols); j++ {
			c := Pearson(series[i], series[j])
			values[i][j] = c
			values[j][i] = c
		}
	}

	return Matrix{Columns: cols, Values: values}
}

func (m Matrix) index(name string) (int, bool) {
	i := slices.Index(m.Columns, name)
	return i, i >= 0
}

// At returns the coefficient for series a against series b.
func (m Matrix) At(a, b string) (Coefficient, error) {
	i, ok := m.index(a)
	if !ok {
		return Coefficient{}, fmt.Errorf("%w: %s", ErrUnknownSeries, a)
	}
	j, ok := m.index(b)
	if !ok {
		return Coefficient{}, fmt.Errorf("%w: %s", ErrUnknownSeries, b)
	}
	return m.Values[i][j], nil
}
