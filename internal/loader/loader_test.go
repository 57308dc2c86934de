package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const eventsCSV = `Date,Easting [m],Northing [m],Depth_SS [m],Moment Magnitude
2013-01-31,1000.5,2000.25,-450,1.2
2013-01-31,1001,2001,-460,0.8
2013-02-28,1002,2002,-470,2.1
`

func TestReadEvents(t *testing.T) {
	events, dropped, err := ReadEvents(strings.NewReader(eventsCSV), "events.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(dropped) != 0 {
		t.Errorf("dropped = %v, want none", dropped)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	first := events[0]
	if !first.Timestamp.Equal(time.Date(2013, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("timestamp = %v", first.Timestamp)
	}
	if first.Easting != 1000.5 || first.Northing != 2000.25 || first.Depth != -450 || first.Magnitude != 1.2 {
		t.Errorf("unexpected event: %+v", first)
	}
}

func TestReadEvents_ColumnsByName(t *testing.T) {
	in := `,Moment Magnitude,Depth_SS [m],Date,Northing [m],Easting [m],Extra
0,1.5,-400,2014-03-15 10:00:00,20,10,foo
`
	events, _, err := ReadEvents(strings.NewReader(in), "reordered.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].Magnitude != 1.5 || events[0].Easting != 10 {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestReadEvents_MissingColumn(t *testing.T) {
	in := "Date,Easting [m],Northing [m],Depth_SS [m]\n2013-01-31,1,2,3\n"
	_, _, err := ReadEvents(strings.NewReader(in), "bad.csv", DefaultOptions())

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("error = %v, want *LoadError", err)
	}
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("error = %v, want ErrMissingColumn", err)
	}
	if loadErr.Table != "events" || loadErr.Source != "bad.csv" {
		t.Errorf("LoadError = %+v", loadErr)
	}
}

func TestReadEvents_EmptyFile(t *testing.T) {
	_, _, err := ReadEvents(strings.NewReader(""), "empty.csv", DefaultOptions())
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("error = %v, want *LoadError", err)
	}
}

const badEventsCSV = `Date,Easting [m],Northing [m],Depth_SS [m],Moment Magnitude
2013-01-31,1,2,3,1.0
not-a-date,1,2,3,1.0
2013-02-28,1,2,3,abc
2013-03-31,1,2,3,0.5
`

func TestReadEvents_DropPolicy(t *testing.T) {
	events, dropped, err := ReadEvents(strings.NewReader(badEventsCSV), "events.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
	if len(dropped) != 2 {
		t.Fatalf("got %d dropped rows, want 2", len(dropped))
	}
	if dropped[0].Line != 3 || dropped[0].Column != ColDate {
		t.Errorf("first drop = %+v, want line 3 column Date", dropped[0])
	}
	if dropped[1].Line != 4 || dropped[1].Column != ColMagnitude || dropped[1].Value != "abc" {
		t.Errorf("second drop = %+v, want line 4 column Moment Magnitude", dropped[1])
	}
}

func TestReadEvents_FailFastPolicy(t *testing.T) {
	opt := DefaultOptions()
	opt.Policy = FailFast

	events, _, err := ReadEvents(strings.NewReader(badEventsCSV), "events.csv", opt)
	if events != nil {
		t.Errorf("expected no events on failure, got %d", len(events))
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Line != 3 {
		t.Errorf("ParseError line = %d, want 3", perr.Line)
	}
}

const brokenQuoteCSV = `Date,Easting [m],Northing [m],Depth_SS [m],Moment Magnitude
2013-01-31,1,2,3,1.0
2013-02-01,1"x,2,3,1.0
2013-03-31,1,2,3,0.5
`

func TestReadEvents_CSVSyntaxErrorDropped(t *testing.T) {
	events, dropped, err := ReadEvents(strings.NewReader(brokenQuoteCSV), "events.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
	if len(dropped) != 1 {
		t.Fatalf("got %d dropped rows, want 1", len(dropped))
	}
	if dropped[0].Line != 3 || !errors.Is(dropped[0].Err, csv.ErrBareQuote) {
		t.Errorf("drop = %+v, want line 3 bare quote", dropped[0])
	}
}

func TestReadEvents_CSVSyntaxErrorFailFast(t *testing.T) {
	opt := DefaultOptions()
	opt.Policy = FailFast

	_, _, err := ReadEvents(strings.NewReader(brokenQuoteCSV), "events.csv", opt)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Line != 3 {
		t.Errorf("ParseError line = %d, want 3", perr.Line)
	}
}

func TestReadWellLocations(t *testing.T) {
	in := `Name,Type,x,y,z
PGKYP24,Producer,100,200,-300
PGKYP25,Injector,110,210,-310
`
	wells, dropped, err := ReadWellLocations(strings.NewReader(in), "wells.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadWellLocations failed: %v", err)
	}
	if len(dropped) != 0 || len(wells) != 2 {
		t.Fatalf("wells = %d, dropped = %d", len(wells), len(dropped))
	}
	if wells[0].ID != "24" || wells[0].Name != "PGKYP24" || wells[0].TypeLabel != "Producer" {
		t.Errorf("unexpected well: %+v", wells[0])
	}
	if wells[1].ID != "25" || wells[1].Type != "injector" {
		t.Errorf("unexpected well: %+v", wells[1])
	}
}

func TestReadWellLocations_DuplicateID(t *testing.T) {
	in := `Name,Type,x,y,z
PGKYP24,Producer,100,200,-300
24,Injector,110,210,-310
`
	_, _, err := ReadWellLocations(strings.NewReader(in), "wells.csv", DefaultOptions())
	if !errors.Is(err, ErrDuplicateWell) {
		t.Fatalf("error = %v, want ErrDuplicateWell", err)
	}
}

func TestReadWellVolumes(t *testing.T) {
	in := `HOLE_NAME,START_DATE,OIL,WATER,STEAM_INJECTION,WATER_INJECTION
PGKYP-24,2013-01-01,100,50,,
PGKYP-25,2013-01-01,0,0,300,20
`
	readings, dropped, err := ReadWellVolumes(strings.NewReader(in), "volumes.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadWellVolumes failed: %v", err)
	}
	if len(dropped) != 0 || len(readings) != 2 {
		t.Fatalf("readings = %d, dropped = %d", len(readings), len(dropped))
	}

	r0 := readings[0]
	if r0.WellID != "24" || r0.HoleName != "PGKYP-24" {
		t.Errorf("unexpected identity: %+v", r0)
	}
	if r0.SteamInjection != 0 || r0.WaterInjection != 0 || r0.Net() != 150 {
		t.Errorf("empty cells should be zero: %+v", r0)
	}
	if readings[1].Net() != -320 {
		t.Errorf("Net() = %v, want -320", readings[1].Net())
	}
}

func TestReadWellVolumes_BadRows(t *testing.T) {
	in := `HOLE_NAME,START_DATE,OIL,WATER,STEAM_INJECTION,WATER_INJECTION
PGKYP24,2013-01-01,1,1,1,1
PGKYP-25,2013-01-01,-5,0,0,0
PGKYP-26,2013-01-01,1,1,1,1
`
	readings, dropped, err := ReadWellVolumes(strings.NewReader(in), "volumes.csv", DefaultOptions())
	if err != nil {
		t.Fatalf("ReadWellVolumes failed: %v", err)
	}
	if len(readings) != 1 || readings[0].WellID != "26" {
		t.Errorf("readings = %+v", readings)
	}
	if len(dropped) != 2 || dropped[0].Column != ColHoleName {
		t.Errorf("dropped = %+v", dropped)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", DropRow, false},
		{"drop", DropRow, false},
		{"FAIL", FailFast, false},
		{"ignore", DropRow, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}

type fileOpener struct{}

func (fileOpener) Open(_ context.Context, location string) (io.ReadCloser, error) {
	return os.Open(location)
}

func TestLoadEvents_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")
	_, _, err := LoadEvents(context.Background(), fileOpener{}, path, DefaultOptions())

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("error = %v, want *LoadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLoadEvents_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(path, []byte(eventsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	events, _, err := LoadEvents(context.Background(), fileOpener{}, path, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events, want 3", len(events))
	}
}
