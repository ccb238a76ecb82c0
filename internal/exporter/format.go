package exporter

import (
	"fmt"

	"glucli/internal/dataprocessing"
	"glucli/pkg/contracts/domain"
)

// formatValue formats a glucose value with one decimal place, the
// precision the statistics block and labels use throughout.
func formatValue(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// formatBandCount renders a band's count and share, e.g. "1 (25.0%)".
func formatBandCount(s dataprocessing.Summary, b domain.Band) string {
	return fmt.Sprintf("%d (%.1f%%)", s.BandCounts[b], s.Percent(b))
}
