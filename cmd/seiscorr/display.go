package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rewired-gh/seiscorr/internal/aggregate"
	"github.com/rewired-gh/seiscorr/internal/correlation"
	"github.com/rewired-gh/seiscorr/internal/models"
	"github.com/rewired-gh/seiscorr/internal/pipeline"
)

const rule = 80

// printReport writes the human-readable summary of a run.
func printReport(w io.Writer, res *pipeline.Result, topK int) {
	fmt.Fprintln(w, strings.Repeat("=", rule))
	fmt.Fprintf(w, "SEISMICITY VS WELL VOLUMES  (run %s)\n", res.Run.ID)
	fmt.Fprintln(w, strings.Repeat("=", rule))
	fmt.Fprintf(w, "Events: %d   Months merged: %d   Wells: %d\n", res.Run.EventCount, res.Run.PeriodCount, res.Run.WellCount)
	if res.Run.MinMagnitude != nil {
		fmt.Fprintf(w, "Magnitude filter: > %g\n", *res.Run.MinMagnitude)
	}
	fmt.Fprintf(w, "Merged months total: %.0f events, %.1f injected, %.1f produced\n",
		res.Fieldwide.Sum(aggregate.ColEvents), res.Fieldwide.Sum(aggregate.ColInjected), res.Fieldwide.Sum(aggregate.ColProduced))

	printEventsPerDay(w, res.Daily)
	printFluidRanking(w, res.FluidRanking)
	printPairs(w, correlation.Top(res.FieldwidePairs, topK))
	printWells(w, correlation.Top(res.Wells, topK), len(res.Wells))
	printIssues(w, res)
}

func printEventsPerDay(w io.Writer, days []aggregate.DayCount) {
	fmt.Fprintln(w, "\nEvents per day:")
	if len(days) == 0 {
		fmt.Fprintln(w, "  (no events)")
		return
	}

	total, peak := 0, days[0]
	for _, d := range days {
		total += d.Events
		if d.Events > peak.Events {
			peak = d
		}
	}
	fmt.Fprintf(w, "  Active days: %d (%s to %s)\n", len(days), days[0].Day.Format("2006-01-02"), days[len(days)-1].Day.Format("2006-01-02"))
	fmt.Fprintf(w, "  Mean per active day: %.2f\n", float64(total)/float64(len(days)))
	fmt.Fprintf(w, "  Busiest day: %s with %d events\n", peak.Day.Format("2006-01-02"), peak.Events)
}

func printFluidRanking(w io.Writer, ranked []correlation.Ranked) {
	fmt.Fprintln(w, "\nField-wide correlation with monthly event count:")
	for _, r := range ranked {
		fmt.Fprintf(w, "  %2d. %-16s %10s\n", r.Rank, r.Series, r.Coefficient)
	}
}

func printPairs(w io.Writer, pairs []correlation.Pair) {
	fmt.Fprintln(w, "\nStrongest field-wide pairs:")
	for _, p := range pairs {
		fmt.Fprintf(w, "  %-16s %-16s %10s\n", p.A, p.B, p.Coefficient)
	}
}

// printStoredRun writes a run loaded from storage.
func printStoredRun(w io.Writer, r *models.Run, wells []models.WellCorrelation, pairs []models.SeriesCorrelation) {
	fmt.Fprintln(w, strings.Repeat("=", rule))
	fmt.Fprintf(w, "STORED RUN %s  (%s)\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w, strings.Repeat("=", rule))
	fmt.Fprintf(w, "Inputs: %s, %s, %s\n", r.EventsSource, r.WellsSource, r.VolumesSource)
	fmt.Fprintf(w, "Events: %d   Months merged: %d   Wells: %d   Dropped rows: %d\n", r.EventCount, r.PeriodCount, r.WellCount, r.DroppedRows)
	if r.MinMagnitude != nil {
		fmt.Fprintf(w, "Magnitude filter: > %g\n", *r.MinMagnitude)
	}

	fmt.Fprintln(w, "\nField-wide pairs:")
	for _, p := range pairs {
		fmt.Fprintf(w, "  %-16s %-16s %10s\n", p.SeriesA, p.SeriesB, formatCorrelation(p.Correlation))
	}
	printWells(w, wells, len(wells))
}

func formatCorrelation(c *float64) string {
	if c == nil {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", *c)
}

func printWells(w io.Writer, wells []models.WellCorrelation, total int) {
	fmt.Fprintf(w, "\nWells ranked by correlation (%d of %d):\n", len(wells), total)
	fmt.Fprintf(w, "  %4s  %-12s %-10s %14s %14s %12s\n", "Rank", "Name", "Type", "Injected", "Produced", "Correlation")
	fmt.Fprintln(w, "  "+strings.Repeat("-", rule-2))
	for _, wc := range wells {
		fmt.Fprintf(w, "  %4d  %-12s %-10s %14.1f %14.1f %12s\n", wc.Rank, wc.Name, wc.TypeLabel, wc.Injected, wc.Produced, formatCorrelation(wc.Correlation))
	}
}

func printIssues(w io.Writer, res *pipeline.Result) {
	if len(res.Dropped) == 0 && len(res.Mismatches) == 0 {
		return
	}
	fmt.Fprintln(w, "\nData issues:")
	if n := len(res.Dropped); n > 0 {
		fmt.Fprintf(w, "  %d rows dropped while loading\n", n)
	}
	for _, m := range res.Mismatches {
		fmt.Fprintf(w, "  %v\n", m)
	}
}

// printHistory lists stored runs, newest first.
func printHistory(w io.Writer, runs []models.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs stored")
		return
	}
	fmt.Fprintf(w, "%-36s  %-19s %8s %7s %6s %8s\n", "Run", "Created", "Events", "Months", "Wells", "Dropped")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-19s %8d %7d %6d %8d\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.EventCount, r.PeriodCount, r.WellCount, r.DroppedRows)
	}
}
