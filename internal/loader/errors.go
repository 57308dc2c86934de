package loader

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is wrapped by LoadError when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// ErrDuplicateWell is wrapped by LoadError when two locations share a well ID.
var ErrDuplicateWell = errors.New("duplicate well ID")

// LoadError is a fatal failure to read an input table: the source is missing
// or unreadable, or its header lacks a required column.
type LoadError struct {
	Table  string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %s: %v", e.Table, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ParseError describes a row whose timestamp, number or identifier could not
// be interpreted. Line is the 1-based line number in the source file.
type ParseError struct {
	Table  string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s line %d: %v", e.Table, e.Line, e.Err)
	}
	return fmt.Sprintf("%s line %d column %q value %q: %v", e.Table, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
