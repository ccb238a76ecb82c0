package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucli/pkg/contracts/domain"
)

func reading(ts time.Time, value float64) domain.Reading {
	return domain.Reading{Timestamp: ts, Value: value}
}

func TestSummarize(t *testing.T) {
	base := time.Date(2024, 3, 15, 8, 0, 0, 0, time.Local)
	readings := []domain.Reading{
		reading(base, 3.5),
		reading(base.Add(1*time.Hour), 8.0),
		reading(base.Add(2*time.Hour), 15.0),
		reading(base.Add(3*time.Hour), 22.0),
	}

	s := Summarize(readings, testThresholds)

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, base, s.First)
	assert.Equal(t, base.Add(3*time.Hour), s.Last)
	assert.InDelta(t, 12.125, s.Average, 1e-9)
	assert.Equal(t, 3.5, s.Min)
	assert.Equal(t, 22.0, s.Max)

	for _, band := range domain.AllBands {
		assert.Equal(t, 1, s.BandCounts[band], "band %s", band)
		assert.InDelta(t, 25.0, s.Percent(band), 1e-9, "band %s", band)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, testThresholds)
	require.Equal(t, 0, s.Count)
	assert.Zero(t, s.Percent(domain.BandLow))
}
