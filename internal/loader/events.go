package loader

import (
	"context"
	"errors"
	"io"

	"github.com/rewired-gh/seiscorr/internal/models"
	"github.com/rewired-gh/seiscorr/internal/period"
)

// Event catalogue columns.
const (
	ColDate      = "Date"
	ColEasting   = "Easting [m]"
	ColNorthing  = "Northing [m]"
	ColDepth     = "Depth_SS [m]"
	ColMagnitude = "Moment Magnitude"
)

const eventsTable = "events"

// ReadEvents parses an event catalogue. Under DropRow the returned slice of
// ParseError lists every skipped row; under FailFast the first bad row is
// returned as the error.
func ReadEvents(r io.Reader, source string, opt Options) ([]models.Event, []ParseError, error) {
	s, err := newSheet(r, eventsTable, source, ColDate, ColEasting, ColNorthing, ColDepth, ColMagnitude)
	if err != nil {
		return nil, nil, err
	}

	c := &collector{policy: opt.Policy}
	var events []models.Event
	for {
		rw, err := s.next(c)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		ev, perr := parseEvent(rw)
		if perr != nil {
			if err := c.reject(perr); err != nil {
				return nil, nil, err
			}
			continue
		}
		events = append(events, ev)
	}

	return events, c.dropped, nil
}

func parseEvent(rw *row) (models.Event, *ParseError) {
	ts, err := period.ParseTimestamp(rw.str(ColDate))
	if err != nil {
		return models.Event{}, rw.fail(ColDate, err)
	}

	ev := models.Event{Timestamp: ts}
	fields := []struct {
		col string
		dst *float64
	}{
		{ColEasting, &ev.Easting},
		{ColNorthing, &ev.Northing},
		{ColDepth, &ev.Depth},
		{ColMagnitude, &ev.Magnitude},
	}
	for _, f := range fields {
		v, perr := rw.float(f.col)
		if perr != nil {
			return models.Event{}, perr
		}
		*f.dst = v
	}

	if err := ev.Validate(); err != nil {
		return models.Event{}, rw.fail("", err)
	}
	return ev, nil
}

// LoadEvents opens location through o and parses it as an event catalogue.
func LoadEvents(ctx context.Context, o Opener, location string, opt Options) ([]models.Event, []ParseError, error) {
	rc, err := open(ctx, o, eventsTable, location)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()
	return ReadEvents(rc, location, opt)
}
