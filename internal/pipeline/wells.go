package pipeline

import (
	"fmt"

	"github.com/rewired-gh/seiscorr/internal/aggregate"
	"github.com/rewired-gh/seiscorr/internal/correlation"
	"github.com/rewired-gh/seiscorr/internal/models"
	"github.com/rewired-gh/seiscorr/internal/table"
)

// JoinMismatch records a well dropped from the final table because one of
// the joined tables had no entry for it.
type JoinMismatch struct {
	WellID  string
	Missing string // "volumes", "location" or "correlation"
}

func (m JoinMismatch) Error() string {
	return fmt.Sprintf("well %s dropped from final table: no %s", m.WellID, m.Missing)
}

// joinWells inner-joins well locations, summed volumes and the per-well
// correlation on well ID. Rows follow the correlation ranking.
func joinWells(locations []models.WellLocation, sums table.Frame[string], ranking []correlation.Ranked) ([]models.WellCorrelation, []JoinMismatch, error) {
	ids := make([]string, len(locations))
	byID := make(map[string]*models.WellLocation, len(locations))
	for i := range locations {
		ids[i] = locations[i].ID
		byID[locations[i].ID] = &locations[i]
	}
	roster, err := table.New(ids, nil, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to index well locations: %w", err)
	}
	ranked := make(map[string]bool, len(ranking))
	for _, r := range ranking {
		ranked[r.Series] = true
	}

	var mismatches []JoinMismatch
	for _, id := range table.Missing(roster, sums) {
		mismatches = append(mismatches, JoinMismatch{WellID: id, Missing: "volumes"})
	}
	for _, id := range sums.Keys() {
		if _, ok := byID[id]; ok && !ranked[id] {
			mismatches = append(mismatches, JoinMismatch{WellID: id, Missing: "correlation"})
		}
	}
	for _, id := range table.Missing(sums, roster) {
		mismatches = append(mismatches, JoinMismatch{WellID: id, Missing: "location"})
	}

	var out []models.WellCorrelation
	for _, r := range ranking {
		loc, ok := byID[r.Series]
		if !ok {
			continue
		}
		if _, ok := sums.Value(r.Series, aggregate.ColTotal); !ok {
			continue
		}
		value := func(col string) float64 {
			v, _ := sums.Value(r.Series, col)
			return v
		}
		out = append(out, models.WellCorrelation{
			Rank:           len(out) + 1,
			WellID:         loc.ID,
			Name:           loc.Name,
			TypeLabel:      loc.TypeLabel,
			X:              loc.X,
			Y:              loc.Y,
			Z:              loc.Z,
			Oil:            value(aggregate.ColOil),
			Water:          value(aggregate.ColWater),
			SteamInjection: value(aggregate.ColSteamInjection),
			WaterInjection: value(aggregate.ColWaterInjection),
			Injected:       value(aggregate.ColInjected),
			Produced:       value(aggregate.ColProduced),
			Net:            value(aggregate.ColTotal),
			Correlation:    r.Ptr(),
		})
	}
	return out, mismatches, nil
}
