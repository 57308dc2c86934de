package models

import (
	"errors"
	"math"
	"time"
)

// Run summarises one execution of the analysis pipeline.
type Run struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	EventsSource  string    `json:"events_source"`
	WellsSource   string    `json:"wells_source"`
	VolumesSource string    `json:"volumes_source"`
	MinMagnitude  *float64  `json:"min_magnitude,omitempty"`
	EventCount    int       `json:"event_count"`   // events after filtering
	PeriodCount   int       `json:"period_count"`  // periods surviving the per-well merge
	WellCount     int       `json:"well_count"`    // wells in the final table
	DroppedRows   int       `json:"dropped_rows"`  // rows skipped by the parse policy
	JoinMismatch  int       `json:"join_mismatch"` // wells dropped by inner joins
}

// Validate checks that the run summary is consistent.
func (r *Run) Validate() error {
	if r.ID == "" {
		return errors.New("run ID must not be empty")
	}
	if r.CreatedAt.IsZero() {
		return errors.New("run created at must be set")
	}
	if r.EventCount < 0 || r.PeriodCount < 0 || r.WellCount < 0 || r.DroppedRows < 0 || r.JoinMismatch < 0 {
		return errors.New("run counters must not be negative")
	}
	return nil
}

// WellCorrelation is one row of the final wells table: a well's location,
// its summed volumes and its correlation with field-wide seismicity.
type WellCorrelation struct {
	RunID          string   `json:"run_id,omitempty"`
	Rank           int      `json:"rank"`
	WellID         string   `json:"well_id"`
	Name           string   `json:"name"`
	TypeLabel      string   `json:"type"`
	X              float64  `json:"x"`
	Y              float64  `json:"y"`
	Z              float64  `json:"z"`
	Oil            float64  `json:"oil"`
	Water          float64  `json:"water"`
	SteamInjection float64  `json:"steam_injection"`
	WaterInjection float64  `json:"water_injection"`
	Injected       float64  `json:"injected"`
	Produced       float64  `json:"produced"`
	Net            float64  `json:"net"`
	Correlation    *float64 `json:"correlation"` // nil when undefined
}

// Defined reports whether the correlation has a numeric value.
func (w *WellCorrelation) Defined() bool {
	return w.Correlation != nil
}

// Validate checks that the well correlation row is usable.
func (w *WellCorrelation) Validate() error {
	if w.WellID == "" {
		return errors.New("well ID must not be empty")
	}
	if w.Correlation != nil {
		c := *w.Correlation
		if math.IsNaN(c) || c < -1.000001 || c > 1.000001 {
			return errors.New("correlation must be between -1 and 1")
		}
	}
	return nil
}

// SeriesCorrelation is one off-diagonal entry of the field-wide matrix.
type SeriesCorrelation struct {
	RunID       string   `json:"run_id,omitempty"`
	SeriesA     string   `json:"series_a"`
	SeriesB     string   `json:"series_b"`
	Correlation *float64 `json:"correlation"` // nil when undefined
}
