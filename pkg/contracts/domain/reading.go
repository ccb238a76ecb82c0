package domain

import (
	"time"
)

// Reading represents a single glucose measurement parsed from a meter
// CSV export. A reading is immutable once parsed; the free-text fields
// are carried through to the report verbatim and may be empty.
type Reading struct {
	Timestamp  time.Time `json:"timestamp" validate:"required"`
	Value      float64   `json:"value" validate:"min=0"`
	MealMarker string    `json:"meal_marker,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Activity   string    `json:"activity,omitempty"`
	MealGrams  string    `json:"meal_grams,omitempty"`
	Medication string    `json:"medication,omitempty"`
	Location   string    `json:"location,omitempty"`
}

// Thresholds holds the ordered band boundaries in mmol/L.
// Low < High < VeryHigh must hold; configuration validates this once
// at load time and the classifier assumes it.
type Thresholds struct {
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	VeryHigh float64 `json:"very_high"`
}

// Band is the severity classification of a single reading.
type Band string

const (
	BandLow      Band = "low"
	BandNormal   Band = "normal"
	BandHigh     Band = "high"
	BandVeryHigh Band = "very_high"
)

// AllBands lists the bands in ascending severity order, the order the
// report's range-distribution block prints them in.
var AllBands = []Band{BandLow, BandNormal, BandHigh, BandVeryHigh}
