// Package loader reads the event catalogue, well location and well volume
// tables from CSV into typed records.
//
// Columns are located by header name, so extra columns (such as an exported
// index) and reordering are tolerated. A missing required column is a
// LoadError. Rows that fail to parse are handled according to Policy.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rewired-gh/seiscorr/internal/logger"
)

// Policy decides what happens to a row that cannot be parsed.
type Policy int

const (
	// DropRow skips the row and logs a warning.
	DropRow Policy = iota
	// FailFast aborts the load on the first bad row.
	FailFast
)

// ParsePolicy maps the configuration value onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return DropRow, nil
	case "fail":
		return FailFast, nil
	default:
		return DropRow, fmt.Errorf("unknown parse policy %q: want drop or fail", s)
	}
}

func (p Policy) String() string {
	if p == FailFast {
		return "fail"
	}
	return "drop"
}

// Options controls row handling and well ID derivation.
type Options struct {
	Policy         Policy
	LocationPrefix string // stripped from well names, e.g. "PGKYP"
	HoleDelimiter  string // splits composite hole names, e.g. "-"
}

// DefaultOptions returns the conventions of the PGKYP field exports.
func DefaultOptions() Options {
	return Options{
		Policy:         DropRow,
		LocationPrefix: "PGKYP",
		HoleDelimiter:  "-",
	}
}

// Opener resolves an input location to a readable stream.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// sheet wraps a csv.Reader with header lookup.
type sheet struct {
	table   string
	source  string
	reader  *csv.Reader
	columns map[string]int
}

func newSheet(r io.Reader, table, source string, required ...string) (*sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty file")
		}
		return nil, &LoadError{Table: table, Source: source, Err: err}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, &LoadError{Table: table, Source: source, Err: fmt.Errorf("%w %q", ErrMissingColumn, name)}
		}
	}

	return &sheet{table: table, source: source, reader: cr, columns: columns}, nil
}

// row is one data record with its source line.
type row struct {
	s      *sheet
	line   int
	fields []string
}

// next returns the following record, or io.EOF. A record with broken CSV
// syntax is handed to c like any other bad row; the reader resumes at the
// record after it.
func (s *sheet) next(c *collector) (*row, error) {
	for {
		fields, err := s.reader.Read()
		if err == nil {
			line, _ := s.reader.FieldPos(0)
			return &row{s: s, line: line, fields: fields}, nil
		}
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		var csvErr *csv.ParseError
		if !errors.As(err, &csvErr) {
			return nil, &LoadError{Table: s.table, Source: s.source, Err: err}
		}
		perr := &ParseError{Table: s.table, Line: csvErr.StartLine, Err: csvErr.Err}
		if err := c.reject(perr); err != nil {
			return nil, err
		}
	}
}

func (r *row) str(column string) string {
	i := r.s.columns[column]
	if i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r *row) fail(column string, err error) *ParseError {
	return &ParseError{Table: r.s.table, Line: r.line, Column: column, Value: r.str(column), Err: err}
}

// float parses a required numeric cell.
func (r *row) float(column string) (float64, *ParseError) {
	v := r.str(column)
	if v == "" {
		return 0, r.fail(column, errors.New("empty value"))
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, r.fail(column, errors.New("not a number"))
	}
	return f, nil
}

// volume parses a volume cell, treating an empty cell as zero.
func (r *row) volume(column string) (float64, *ParseError) {
	if r.str(column) == "" {
		return 0, nil
	}
	return r.float(column)
}

// collector applies the parse policy to row failures.
type collector struct {
	policy  Policy
	dropped []ParseError
}

// reject records a bad row. It returns the error to abort with under FailFast.
func (c *collector) reject(perr *ParseError) error {
	if c.policy == FailFast {
		return perr
	}
	logger.Warn("Dropping row: %v", perr)
	c.dropped = append(c.dropped, *perr)
	return nil
}

func open(ctx context.Context, o Opener, table, location string) (io.ReadCloser, error) {
	rc, err := o.Open(ctx, location)
	if err != nil {
		return nil, &LoadError{Table: table, Source: location, Err: err}
	}
	return rc, nil
}
