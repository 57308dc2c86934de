package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rewired-gh/seiscorr/internal/correlation"
	"github.com/rewired-gh/seiscorr/internal/models"
	"github.com/rewired-gh/seiscorr/internal/period"
	"github.com/rewired-gh/seiscorr/internal/table"
)

func seriesFrame(t *testing.T) table.Frame[period.Period] {
	t.Helper()
	keys := []period.Period{
		period.New(2013, time.January),
		period.New(2013, time.February),
		period.New(2013, time.March),
		period.New(2013, time.May),
	}
	f, err := table.New(keys, []string{"Events", "24", "25", "26"}, map[string][]float64{
		"Events": {12, 7, 30, 4},
		"24":     {1234.5678, -0.1, 1e-9, 98765.4321},
		"25":     {-1.0 / 3.0, 2.0 / 3.0, 0.1 + 0.2, -7},
		"26":     {0, 0, 0, 0},
	})
	if err != nil {
		t.Fatalf("table.New failed: %v", err)
	}
	return f
}

func TestSeriesRoundTrip_IdenticalCorrelations(t *testing.T) {
	original := seriesFrame(t)

	var buf bytes.Buffer
	if err := WriteSeries(&buf, original); err != nil {
		t.Fatalf("WriteSeries failed: %v", err)
	}
	reloaded, err := ReadSeries(&buf)
	if err != nil {
		t.Fatalf("ReadSeries failed: %v", err)
	}

	if !slices.Equal(reloaded.Keys(), original.Keys()) {
		t.Errorf("keys = %v, want %v", reloaded.Keys(), original.Keys())
	}
	if !slices.Equal(reloaded.Columns(), original.Columns()) {
		t.Errorf("columns = %v, want %v", reloaded.Columns(), original.Columns())
	}

	before := correlation.Compute(original)
	after := correlation.Compute(reloaded)
	for i := range before.Values {
		for j := range before.Values[i] {
			if before.Values[i][j] != after.Values[i][j] {
				t.Errorf("coefficient [%d][%d] = %+v after reload, want %+v",
					i, j, after.Values[i][j], before.Values[i][j])
			}
		}
	}
}

func TestWriteSeries_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSeries(&buf, seriesFrame(t)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "period,Events,24,25,26" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2013-01,12,1234.5678,") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestReadSeries_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":      "",
		"bad header": "month,Events\n2013-01,1\n",
		"bad period": "period,Events\nJan,1\n",
		"bad value":  "period,Events\n2013-01,many\n",
		"dup period": "period,Events\n2013-01,1\n2013-01-31,2\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ReadSeries(strings.NewReader(in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteWells(t *testing.T) {
	r := 0.5
	rows := []models.WellCorrelation{
		{WellID: "24", Name: "PGKYP24", TypeLabel: "Producer", X: 1, Y: 2, Z: -3, Oil: 10, Produced: 10, Net: 10, Correlation: &r},
		{WellID: "25", Name: "PGKYP25", TypeLabel: "Injector", SteamInjection: 4, Injected: 4, Net: -4},
	}

	var buf bytes.Buffer
	if err := WriteWells(&buf, rows); err != nil {
		t.Fatalf("WriteWells failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if !slices.Equal(records[0], WellsHeader) {
		t.Errorf("header = %v", records[0])
	}
	if got := records[1][len(records[1])-1]; got != "0.5" {
		t.Errorf("correlation = %q, want 0.5", got)
	}
	if got := records[2][len(records[2])-1]; got != UndefinedValue {
		t.Errorf("undefined correlation = %q, want %q", got, UndefinedValue)
	}
	if records[2][12] != "-4" {
		t.Errorf("TOTAL = %q, want -4", records[2][12])
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "wells_final.csv")

	err := WriteFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("hello\n"))
		return err
	})
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello\n" {
		t.Errorf("file = %q, %v", data, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestWriteFile_WriterErrorLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wells_final.csv")
	boom := errors.New("boom")

	err := WriteFile(path, func(io.Writer) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("destination should not exist after a failed write")
	}
}
