// Package models defines the records read from the three input tables and the
// summaries produced by an analysis run. All models include built-in
// validation so that malformed rows are rejected at load time.
//
// Terminology:
//   - Event: one detected microseismic occurrence from the catalogue.
//   - Well: a producer or injector identified by a short well ID.
//   - Reading: one well's reported fluid volumes for one month.
package models

import (
	"errors"
	"math"
	"time"

	"github.com/rewired-gh/seiscorr/internal/period"
)

// Event represents a single microseismic event from the catalogue.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Easting   float64   `json:"easting"`   // metres
	Northing  float64   `json:"northing"`  // metres
	Depth     float64   `json:"depth"`     // metres sub-sea
	Magnitude float64   `json:"magnitude"` // moment magnitude
}

// Period returns the calendar month the event belongs to.
func (e *Event) Period() period.Period {
	return period.Of(e.Timestamp)
}

// Validate checks that all event fields are usable.
func (e *Event) Validate() error {
	if e.Timestamp.IsZero() {
		return errors.New("event timestamp must be set")
	}
	for _, v := range []float64{e.Easting, e.Northing, e.Depth, e.Magnitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("event location and magnitude must be finite")
		}
	}
	return nil
}
