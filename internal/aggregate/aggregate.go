// Package aggregate collapses events and well readings into keyed frames.
//
// Seismicity and volumes deliberately treat empty cells differently: a month
// without events has no row at all in FieldwideEvents, whereas VolumePerWell
// fills a well's missing months with zero. Downstream inner joins therefore
// drop event-free months but keep idle wells.
package aggregate

import (
	"time"

	"github.com/rewired-gh/seiscorr/internal/models"
	"github.com/rewired-gh/seiscorr/internal/period"
	"github.com/rewired-gh/seiscorr/internal/table"
)

// Column names shared by the field-wide and per-well volume frames.
const (
	ColEvents         = "Events"
	ColOil            = "OIL"
	ColWater          = "WATER"
	ColSteamInjection = "STEAM_INJECTION"
	ColWaterInjection = "WATER_INJECTION"
	ColInjected       = "INJECTED"
	ColProduced       = "PRODUCED"
	ColTotal          = "TOTAL" // net volume: produced minus injected
)

// VolumeColumns lists the fluid columns in report order.
var VolumeColumns = []string{
	ColOil, ColWater, ColSteamInjection, ColWaterInjection, ColInjected, ColProduced, ColTotal,
}

// FieldwideEvents counts events per month. Only months with at least one
// event get a row.
func FieldwideEvents(events []models.Event) table.Frame[period.Period] {
	b := table.NewBuilder[period.Period](ColEvents)
	for i := range events {
		b.Add(events[i].Period(), ColEvents, 1)
	}
	return b.Frame()
}

// VolumePerWell pivots readings into one net-volume column per well ID.
// Readings for the same well and month are averaged; a well with no reading
// in a month that exists for some other well gets 0 in that cell.
func VolumePerWell(readings []models.WellVolumeReading) table.Frame[period.Period] {
	b := table.NewBuilder[period.Period]().Mean()
	for i := range readings {
		r := &readings[i]
		b.Add(r.Period(), r.WellID, r.Net())
	}
	return b.Frame()
}

// FieldwideVolumes sums every fluid column across all wells per month.
func FieldwideVolumes(readings []models.WellVolumeReading) table.Frame[period.Period] {
	b := table.NewBuilder[period.Period](VolumeColumns...)
	for i := range readings {
		r := &readings[i]
		addVolumes(b, r.Period(), r)
	}
	return b.Frame()
}

// VolumesByWell sums every fluid column across all months per well ID.
func VolumesByWell(readings []models.WellVolumeReading) table.Frame[string] {
	b := table.NewBuilder[string](VolumeColumns...)
	for i := range readings {
		r := &readings[i]
		addVolumes(b, r.WellID, r)
	}
	return b.Frame()
}

func addVolumes[K period.Period | string](b *table.Builder[K], key K, r *models.WellVolumeReading) {
	b.Add(key, ColOil, r.Oil)
	b.Add(key, ColWater, r.Water)
	b.Add(key, ColSteamInjection, r.SteamInjection)
	b.Add(key, ColWaterInjection, r.WaterInjection)
	b.Add(key, ColInjected, r.Injected())
	b.Add(key, ColProduced, r.Produced())
	b.Add(key, ColTotal, r.Net())
}

// DayCount is the number of events on one calendar day.
type DayCount struct {
	Day    time.Time
	Events int
}

// DailyEvents counts events per calendar day in ascending order. Days
// without events are omitted.
func DailyEvents(events []models.Event) []DayCount {
	const layout = "2006-01-02"

	b := table.NewBuilder[string](ColEvents)
	for i := range events {
		b.Add(events[i].Timestamp.Format(layout), ColEvents, 1)
	}
	f := b.Frame()

	counts, _ := f.Column(ColEvents)
	out := make([]DayCount, f.Len())
	for i, day := range f.Keys() {
		d, _ := time.Parse(layout, day)
		out[i] = DayCount{Day: d, Events: int(counts[i])}
	}
	return out
}
