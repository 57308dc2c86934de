package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rewired-gh/seiscorr/internal/period"
)

// WellType classifies a well by its role in the field.
type WellType string

const (
	WellTypeProducer WellType = "producer"
	WellTypeInjector WellType = "injector"
	WellTypeOther    WellType = "other"
)

// ParseWellType maps the free-text Type column onto a WellType.
func ParseWellType(label string) WellType {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.HasPrefix(l, "prod"):
		return WellTypeProducer
	case strings.HasPrefix(l, "inj"):
		return WellTypeInjector
	default:
		return WellTypeOther
	}
}

// WellLocation represents a well's identity and static position.
type WellLocation struct {
	ID        string   `json:"id"`   // Name with the field prefix removed
	Name      string   `json:"name"` // Full well name, e.g. PGKYP24
	Type      WellType `json:"type"`
	TypeLabel string   `json:"type_label"` // Type column as written in the input
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Z         float64  `json:"z"`
}

// Validate checks that all well location fields are valid.
func (w *WellLocation) Validate() error {
	if w.ID == "" {
		return errors.New("well ID must not be empty")
	}
	if w.Name == "" {
		return errors.New("well name must not be empty")
	}
	for _, v := range []float64{w.X, w.Y, w.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("well coordinates must be finite")
		}
	}
	return nil
}

// WellIDFromName strips the fixed field prefix from a full well name.
func WellIDFromName(name, prefix string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), prefix)
}

// WellIDFromHoleName returns the trailing segment of a composite hole name
// such as "PGKYP-24".
func WellIDFromHoleName(holeName, delimiter string) (string, error) {
	holeName = strings.TrimSpace(holeName)
	i := strings.LastIndex(holeName, delimiter)
	if delimiter == "" || i < 0 {
		return "", fmt.Errorf("hole name %q has no %q delimiter", holeName, delimiter)
	}
	id := holeName[i+len(delimiter):]
	if id == "" {
		return "", fmt.Errorf("hole name %q has an empty well segment", holeName)
	}
	return id, nil
}

// WellVolumeReading represents one well's reported volumes for one month.
type WellVolumeReading struct {
	WellID         string    `json:"well_id"`
	HoleName       string    `json:"hole_name"`
	Date           time.Time `json:"date"`
	Oil            float64   `json:"oil"`
	Water          float64   `json:"water"`
	SteamInjection float64   `json:"steam_injection"`
	WaterInjection float64   `json:"water_injection"`
}

// Period returns the month the reading covers.
func (r *WellVolumeReading) Period() period.Period {
	return period.Of(r.Date)
}

// Injected is steam plus water injection.
func (r *WellVolumeReading) Injected() float64 {
	return r.SteamInjection + r.WaterInjection
}

// Produced is oil plus water production.
func (r *WellVolumeReading) Produced() float64 {
	return r.Oil + r.Water
}

// Net is produced minus injected; positive means net production.
func (r *WellVolumeReading) Net() float64 {
	return r.Produced() - r.Injected()
}

// Validate checks that all reading fields are valid.
func (r *WellVolumeReading) Validate() error {
	if r.WellID == "" {
		return errors.New("well ID must not be empty")
	}
	if r.Date.IsZero() {
		return errors.New("reading date must be set")
	}
	fluids := []struct {
		name  string
		value float64
	}{
		{"oil", r.Oil},
		{"water", r.Water},
		{"steam injection", r.SteamInjection},
		{"water injection", r.WaterInjection},
	}
	for _, f := range fluids {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s volume must be finite", f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%s volume must not be negative", f.name)
		}
	}
	return nil
}
