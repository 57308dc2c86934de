// Package export writes the final wells table and the merged monthly series
// to CSV. Floats are written in their shortest round-trip form so that a
// reloaded series reproduces the exact same correlations.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rewired-gh/seiscorr/internal/models"
	"github.com/rewired-gh/seiscorr/internal/period"
	"github.com/rewired-gh/seiscorr/internal/table"
)

// UndefinedValue is written in place of a correlation that has no value.
const UndefinedValue = "undefined"

// PeriodColumn is the header of the key column in series exports.
const PeriodColumn = "period"

// WellsHeader lists the columns of the final wells table.
var WellsHeader = []string{
	"w_id", "Name", "Type", "x", "y", "z",
	"OIL", "WATER", "STEAM_INJECTION", "WATER_INJECTION", "INJECTED", "PRODUCED", "TOTAL",
	"Correlation",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteWells writes the final wells table.
func WriteWells(w io.Writer, rows []models.WellCorrelation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(WellsHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range rows {
		corr := UndefinedValue
		if r.Correlation != nil {
			corr = formatFloat(*r.Correlation)
		}
		record := []string{
			r.WellID, r.Name, r.TypeLabel,
			formatFloat(r.X), formatFloat(r.Y), formatFloat(r.Z),
			formatFloat(r.Oil), formatFloat(r.Water),
			formatFloat(r.SteamInjection), formatFloat(r.WaterInjection),
			formatFloat(r.Injected), formatFloat(r.Produced), formatFloat(r.Net),
			corr,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write well %s: %w", r.WellID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSeries writes a monthly frame with a leading period column.
func WriteSeries(w io.Writer, f table.Frame[period.Period]) error {
	cw := csv.NewWriter(w)
	columns := f.Columns()
	if err := cw.Write(append([]string{PeriodColumn}, columns...)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	data := make([][]float64, len(columns))
	for i, c := range columns {
		data[i], _ = f.Column(c)
	}

	for r, key := range f.Keys() {
		record := make([]string, 0, len(columns)+1)
		record = append(record, key.String())
		for i := range columns {
			record = append(record, formatFloat(data[i][r]))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write period %s: %w", key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadSeries reads a frame written by WriteSeries.
func ReadSeries(r io.Reader) (table.Frame[period.Period], error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty file")
		}
		return table.Frame[period.Period]{}, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) == 0 || strings.TrimSpace(header[0]) != PeriodColumn {
		return table.Frame[period.Period]{}, fmt.Errorf("first column must be %q", PeriodColumn)
	}

	columns := header[1:]
	values := make(map[string][]float64, len(columns))
	var keys []period.Period
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.Frame[period.Period]{}, fmt.Errorf("failed to read row: %w", err)
		}

		p, err := period.Parse(record[0])
		if err != nil {
			return table.Frame[period.Period]{}, err
		}
		keys = append(keys, p)
		for i, c := range columns {
			v, err := strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				return table.Frame[period.Period]{}, fmt.Errorf("period %s column %s: %w", p, c, err)
			}
			values[c] = append(values[c], v)
		}
	}

	for _, c := range columns {
		if values[c] == nil {
			values[c] = []float64{}
		}
	}
	return table.New(keys, columns, values)
}

// WriteFile writes to path atomically: data goes to a temporary file that is
// renamed over the destination once complete.
func WriteFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tempPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
