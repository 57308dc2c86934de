// Package pipeline runs one analysis pass: load the three input tables,
// filter and aggregate them onto the monthly axis, merge, and correlate
// seismicity with fluid volumes field-wide and per well.
//
// Bad rows and wells lost in the roster join are reported on the Result
// rather than failing the run. Missing inputs and missing columns are fatal.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/seiscorr/internal/aggregate"
	"github.com/rewired-gh/seiscorr/internal/correlation"
	"github.com/rewired-gh/seiscorr/internal/loader"
	"github.com/rewired-gh/seiscorr/internal/logger"
	"github.com/rewired-gh/seiscorr/internal/models"
	"github.com/rewired-gh/seiscorr/internal/period"
	"github.com/rewired-gh/seiscorr/internal/table"
)

// Inputs names the three tables. Each may be a file path or an http(s) URL,
// depending on the Opener.
type Inputs struct {
	Events        string
	WellLocations string
	WellVolumes   string
}

// Options controls loading, filtering and ranking.
type Options struct {
	Load   loader.Options
	Filter aggregate.EventFilter
	Order  correlation.Order
}

// DefaultOptions returns the field conventions with no event filter.
func DefaultOptions() Options {
	return Options{Load: loader.DefaultOptions(), Order: correlation.BySigned}
}

// Result holds every intermediate and final product of a run.
type Result struct {
	Run models.Run

	Events    []models.Event // after filtering
	Locations []models.WellLocation
	Readings  []models.WellVolumeReading
	Dropped   []loader.ParseError

	// Fieldwide is field-wide volumes merged with event counts.
	Fieldwide table.Frame[period.Period]
	// PerWell is the per-well net volume pivot merged with event counts,
	// Events first.
	PerWell table.Frame[period.Period]

	FieldwideMatrix correlation.Matrix
	PerWellMatrix   correlation.Matrix

	FieldwidePairs []correlation.Pair
	FluidRanking   []correlation.Ranked // fluid columns against Events
	WellRanking    []correlation.Ranked // well IDs against Events

	Wells      []models.WellCorrelation
	Series     []models.SeriesCorrelation
	Mismatches []JoinMismatch
	Daily      []aggregate.DayCount
}

// Run executes the full analysis over in.
func Run(ctx context.Context, o loader.Opener, in Inputs, opt Options) (*Result, error) {
	res := &Result{}

	events, dropped, err := loader.LoadEvents(ctx, o, in.Events, opt.Load)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	res.Dropped = append(res.Dropped, dropped...)

	locations, dropped, err := loader.LoadWellLocations(ctx, o, in.WellLocations, opt.Load)
	if err != nil {
		return nil, fmt.Errorf("failed to load well locations: %w", err)
	}
	res.Dropped = append(res.Dropped, dropped...)

	readings, dropped, err := loader.LoadWellVolumes(ctx, o, in.WellVolumes, opt.Load)
	if err != nil {
		return nil, fmt.Errorf("failed to load well volumes: %w", err)
	}
	res.Dropped = append(res.Dropped, dropped...)

	logger.Info("Loaded %d events, %d well locations, %d volume readings (%d rows dropped)",
		len(events), len(locations), len(readings), len(res.Dropped))

	res.Events = opt.Filter.Apply(events)
	if n := len(events) - len(res.Events); n > 0 {
		logger.Info("Event filter removed %d of %d events", n, len(events))
	}
	res.Locations = locations
	res.Readings = readings
	res.Daily = aggregate.DailyEvents(res.Events)

	if err := res.correlate(opt.Order); err != nil {
		return nil, err
	}

	res.Wells, res.Mismatches, err = joinWells(locations, aggregate.VolumesByWell(readings), res.WellRanking)
	if err != nil {
		return nil, err
	}
	for _, m := range res.Mismatches {
		logger.Warn("%v", m)
	}

	res.Series = make([]models.SeriesCorrelation, 0, len(res.FieldwidePairs))
	for _, p := range res.FieldwidePairs {
		res.Series = append(res.Series, models.SeriesCorrelation{SeriesA: p.A, SeriesB: p.B, Correlation: p.Ptr()})
	}

	res.Run = models.Run{
		ID:            uuid.New().String(),
		CreatedAt:     time.Now().UTC(),
		EventsSource:  in.Events,
		WellsSource:   in.WellLocations,
		VolumesSource: in.WellVolumes,
		MinMagnitude:  opt.Filter.MinMagnitude,
		EventCount:    len(res.Events),
		PeriodCount:   res.PerWell.Len(),
		WellCount:     len(res.Wells),
		DroppedRows:   len(res.Dropped),
		JoinMismatch:  len(res.Mismatches),
	}
	for i := range res.Wells {
		res.Wells[i].RunID = res.Run.ID
	}
	for i := range res.Series {
		res.Series[i].RunID = res.Run.ID
	}

	return res, nil
}

// correlate aggregates, merges and computes both correlation matrices.
func (res *Result) correlate(order correlation.Order) error {
	eventsByMonth := aggregate.FieldwideEvents(res.Events)

	fieldwide, err := table.InnerJoin(aggregate.FieldwideVolumes(res.Readings), eventsByMonth)
	if err != nil {
		return fmt.Errorf("failed to merge field-wide volumes: %w", err)
	}
	perWell, err := table.InnerJoin(eventsByMonth, aggregate.VolumePerWell(res.Readings))
	if err != nil {
		return fmt.Errorf("failed to merge per-well volumes: %w", err)
	}
	res.Fieldwide = fieldwide
	res.PerWell = perWell
	logger.Debug("Merged %d field-wide months and %d per-well months", fieldwide.Len(), perWell.Len())

	res.FieldwideMatrix = correlation.Compute(fieldwide)
	res.PerWellMatrix = correlation.Compute(perWell)
	res.FieldwidePairs = correlation.UpperPairs(res.FieldwideMatrix)

	if res.FluidRanking, err = correlation.Against(res.FieldwideMatrix, aggregate.ColEvents, order); err != nil {
		return err
	}
	if res.WellRanking, err = correlation.Against(res.PerWellMatrix, aggregate.ColEvents, order); err != nil {
		return err
	}

	undefined := 0
	for _, r := range res.WellRanking {
		if !r.Defined() {
			undefined++
		}
	}
	if undefined > 0 {
		logger.Warn("%d of %d wells have an undefined correlation with seismicity", undefined, len(res.WellRanking))
	}
	return nil
}
