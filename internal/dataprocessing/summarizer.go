package dataprocessing

import (
	"time"

	"glucli/pkg/contracts/domain"
)

// Summary aggregates the statistics the report's summary block prints:
// the covered date range, reading count, value spread, and how many
// readings fall into each severity band.
type Summary struct {
	First   time.Time
	Last    time.Time
	Count   int
	Average float64
	Min     float64
	Max     float64

	BandCounts map[domain.Band]int
}

// Summarize computes the summary for an ordered, non-empty sequence of
// readings. The caller guarantees ascending timestamp order; First and
// Last are taken from the sequence edges.
func Summarize(readings []domain.Reading, t domain.Thresholds) Summary {
	s := Summary{
		Count:      len(readings),
		BandCounts: make(map[domain.Band]int, len(domain.AllBands)),
	}
	if len(readings) == 0 {
		return s
	}

	s.First = readings[0].Timestamp
	s.Last = readings[len(readings)-1].Timestamp
	s.Min = readings[0].Value
	s.Max = readings[0].Value

	var sum float64
	for _, r := range readings {
		sum += r.Value
		if r.Value < s.Min {
			s.Min = r.Value
		}
		if r.Value > s.Max {
			s.Max = r.Value
		}
		s.BandCounts[Classify(r.Value, t)]++
	}
	s.Average = sum / float64(len(readings))

	return s
}

// Percent returns the share of readings in the given band, in percent.
func (s Summary) Percent(b domain.Band) float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.BandCounts[b]) / float64(s.Count) * 100
}
