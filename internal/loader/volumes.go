package loader

import (
	"context"
	"errors"
	"io"

	"github.com/rewired-gh/seiscorr/internal/models"
	"github.com/rewired-gh/seiscorr/internal/period"
)

// Well volume columns.
const (
	ColHoleName       = "HOLE_NAME"
	ColStartDate      = "START_DATE"
	ColOil            = "OIL"
	ColWater          = "WATER"
	ColSteamInjection = "STEAM_INJECTION"
	ColWaterInjection = "WATER_INJECTION"
)

const volumesTable = "well_volumes"

// ReadWellVolumes parses the monthly well volume table. The well ID is the
// segment of HOLE_NAME after the last opt.HoleDelimiter. Empty volume cells
// count as zero.
func ReadWellVolumes(r io.Reader, source string, opt Options) ([]models.WellVolumeReading, []ParseError, error) {
	s, err := newSheet(r, volumesTable, source,
		ColHoleName, ColStartDate, ColOil, ColWater, ColSteamInjection, ColWaterInjection)
	if err != nil {
		return nil, nil, err
	}

	c := &collector{policy: opt.Policy}
	var readings []models.WellVolumeReading
	for {
		rw, err := s.next(c)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		rd, perr := parseReading(rw, opt.HoleDelimiter)
		if perr != nil {
			if err := c.reject(perr); err != nil {
				return nil, nil, err
			}
			continue
		}
		readings = append(readings, rd)
	}

	return readings, c.dropped, nil
}

func parseReading(rw *row, delimiter string) (models.WellVolumeReading, *ParseError) {
	hole := rw.str(ColHoleName)
	id, err := models.WellIDFromHoleName(hole, delimiter)
	if err != nil {
		return models.WellVolumeReading{}, rw.fail(ColHoleName, err)
	}

	date, err := period.ParseTimestamp(rw.str(ColStartDate))
	if err != nil {
		return models.WellVolumeReading{}, rw.fail(ColStartDate, err)
	}

	rd := models.WellVolumeReading{WellID: id, HoleName: hole, Date: date}
	fields := []struct {
		col string
		dst *float64
	}{
		{ColOil, &rd.Oil},
		{ColWater, &rd.Water},
		{ColSteamInjection, &rd.SteamInjection},
		{ColWaterInjection, &rd.WaterInjection},
	}
	for _, f := range fields {
		v, perr := rw.volume(f.col)
		if perr != nil {
			return models.WellVolumeReading{}, perr
		}
		*f.dst = v
	}

	if err := rd.Validate(); err != nil {
		return models.WellVolumeReading{}, rw.fail("", err)
	}
	return rd, nil
}

// LoadWellVolumes opens location through o and parses it as a volume table.
func LoadWellVolumes(ctx context.Context, o Opener, location string, opt Options) ([]models.WellVolumeReading, []ParseError, error) {
	rc, err := open(ctx, o, volumesTable, location)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()
	return ReadWellVolumes(rc, location, opt)
}
