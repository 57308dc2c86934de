package loader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rewired-gh/seiscorr/internal/models"
)

// Well location columns.
const (
	ColName = "Name"
	ColType = "Type"
	ColX    = "x"
	ColY    = "y"
	ColZ    = "z"
)

const locationsTable = "well_locations"

// ReadWellLocations parses the well location table. Well IDs are derived by
// stripping opt.LocationPrefix from the Name column and must be unique.
func ReadWellLocations(r io.Reader, source string, opt Options) ([]models.WellLocation, []ParseError, error) {
	s, err := newSheet(r, locationsTable, source, ColName, ColType, ColX, ColY, ColZ)
	if err != nil {
		return nil, nil, err
	}

	c := &collector{policy: opt.Policy}
	seen := make(map[string]int)
	var wells []models.WellLocation
	for {
		rw, err := s.next(c)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		w, perr := parseWellLocation(rw, opt.LocationPrefix)
		if perr != nil {
			if err := c.reject(perr); err != nil {
				return nil, nil, err
			}
			continue
		}
		if first, dup := seen[w.ID]; dup {
			return nil, nil, &LoadError{
				Table:  locationsTable,
				Source: source,
				Err:    fmt.Errorf("%w %q on lines %d and %d", ErrDuplicateWell, w.ID, first, rw.line),
			}
		}
		seen[w.ID] = rw.line
		wells = append(wells, w)
	}

	return wells, c.dropped, nil
}

func parseWellLocation(rw *row, prefix string) (models.WellLocation, *ParseError) {
	name := rw.str(ColName)
	label := rw.str(ColType)
	w := models.WellLocation{
		ID:        models.WellIDFromName(name, prefix),
		Name:      name,
		Type:      models.ParseWellType(label),
		TypeLabel: label,
	}

	fields := []struct {
		col string
		dst *float64
	}{
		{ColX, &w.X},
		{ColY, &w.Y},
		{ColZ, &w.Z},
	}
	for _, f := range fields {
		v, perr := rw.float(f.col)
		if perr != nil {
			return models.WellLocation{}, perr
		}
		*f.dst = v
	}

	if err := w.Validate(); err != nil {
		return models.WellLocation{}, rw.fail(ColName, err)
	}
	return w, nil
}

// LoadWellLocations opens location through o and parses it as a well table.
func LoadWellLocations(ctx context.Context, o Opener, location string, opt Options) ([]models.WellLocation, []ParseError, error) {
	rc, err := open(ctx, o, locationsTable, location)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()
	return ReadWellLocations(rc, location, opt)
}
