package aggregate

import (
	"time"

	"github.com/rewired-gh/seiscorr/internal/models"
)

// EventFilter selects which catalogue events take part in the analysis.
type EventFilter struct {
	MinMagnitude *float64  // keep events strictly above this magnitude
	From         time.Time // inclusive; zero means unbounded
	To           time.Time // inclusive calendar day; zero means unbounded
}

// Apply returns the events that pass the filter, preserving order.
func (f EventFilter) Apply(events []models.Event) []models.Event {
	var end time.Time
	if !f.To.IsZero() {
		end = time.Date(f.To.Year(), f.To.Month(), f.To.Day(), 0, 0, 0, 0, f.To.Location()).AddDate(0, 0, 1)
	}

	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if f.MinMagnitude != nil && !(e.Magnitude > *f.MinMagnitude) {
			continue
		}
		if !f.From.IsZero() && e.Timestamp.Before(f.From) {
			continue
		}
		if !end.IsZero() && !e.Timestamp.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}
