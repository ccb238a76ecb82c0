package exporter

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"glucli/internal/dataprocessing"
	"glucli/internal/templates"
	"glucli/pkg/contracts/domain"
)

// SheetName is the single sheet every report is written to.
const SheetName = "Glucose Readings"

// headers are the report's fixed columns, written in this exact order
// regardless of template use.
var headers = [8]string{
	"Date and Time",
	"Glucose [mmol/L]",
	"Meal Marker",
	"Notes",
	"Activity",
	"Meal [g]",
	"Medication",
	"Location",
}

// bandFill maps severity bands to cell background colors. Normal has
// no entry: a normal reading keeps the cell's default fill. The
// mapping is fixed; only the thresholds are user-configurable.
var bandFill = map[domain.Band]string{
	domain.BandLow:      "E6F2FF",
	domain.BandHigh:     "FFCCCC",
	domain.BandVeryHigh: "E6D9FF",
}

const (
	minColWidth = 10
	maxColWidth = 50
)

// Builder assembles the output spreadsheet: header row, color-coded
// data rows, column sizing, and the trailing statistics block.
type Builder struct {
	thresholds domain.Thresholds
	dateFormat string
	logger     *slog.Logger
}

// NewBuilder creates a report builder. dateFormat is a Go time layout
// used for the first column.
func NewBuilder(thresholds domain.Thresholds, dateFormat string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		thresholds: thresholds,
		dateFormat: dateFormat,
		logger:     logger,
	}
}

// Build writes the report for an already filtered and time-sorted
// sequence of readings to outputPath, overwriting any existing file.
// A non-nil styled header applies the template's header formatting and
// column widths; otherwise the default style and auto-sized columns
// are used.
func (b *Builder) Build(readings []domain.Reading, header *templates.StyledHeader, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStyleSet(f, header != nil)
	if err != nil {
		return fmt.Errorf("failed to prepare styles: %w", err)
	}

	if err := b.writeHeader(f, header, styles); err != nil {
		return err
	}
	if err := b.writeRows(f, readings, header != nil, styles); err != nil {
		return err
	}

	if header != nil {
		if err := applyTemplateHeader(f, header); err != nil {
			return err
		}
	} else {
		if err := b.autoSizeColumns(f, readings); err != nil {
			return err
		}
	}

	if len(readings) > 0 {
		summary := dataprocessing.Summarize(readings, b.thresholds)
		if err := b.writeStatistics(f, summary, len(readings)+3, styles); err != nil {
			return err
		}
	}

	if err := saveAtomic(f, outputPath); err != nil {
		return err
	}

	b.logger.Info("report written",
		slog.String("path", outputPath),
		slog.Int("readings", len(readings)),
		slog.Bool("templated", header != nil))

	return nil
}

// styleSet holds the style IDs used while writing one workbook. When a
// template is in use only the band fills exist; default borders and
// alignment are never invented on top of template formatting.
type styleSet struct {
	header    int
	title     int
	bold      int
	text      int
	numeric   int
	bandFills map[domain.Band]int
}

func newStyleSet(f *excelize.File, templated bool) (*styleSet, error) {
	s := &styleSet{bandFills: make(map[domain.Band]int, len(bandFill))}

	thin := []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}

	var err error
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}}); err != nil {
		return nil, err
	}
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}

	if templated {
		// Band fills only; the template dictates everything else.
		for band, color := range bandFill {
			id, err := f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			})
			if err != nil {
				return nil, err
			}
			s.bandFills[band] = id
		}
		return s, nil
	}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D3D3D3"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	if s.text, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	if s.numeric, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	for band, color := range bandFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thin,
		})
		if err != nil {
			return nil, err
		}
		s.bandFills[band] = id
	}

	return s, nil
}

func (b *Builder) writeHeader(f *excelize.File, header *templates.StyledHeader, styles *styleSet) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header %q: %w", h, err)
		}
		if header == nil {
			if err := f.SetCellStyle(SheetName, cell, cell, styles.header); err != nil {
				return fmt.Errorf("failed to style header %q: %w", h, err)
			}
		}
	}
	return nil
}

func (b *Builder) writeRows(f *excelize.File, readings []domain.Reading, templated bool, styles *styleSet) error {
	for i, r := range readings {
		row := i + 2
		values := [8]interface{}{
			r.Timestamp.Format(b.dateFormat),
			r.Value,
			r.MealMarker,
			r.Notes,
			r.Activity,
			r.MealGrams,
			r.Medication,
			r.Location,
		}

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}

			styleID, ok := b.cellStyle(col, r.Value, templated, styles)
			if !ok {
				continue
			}
			if err := f.SetCellStyle(SheetName, cell, cell, styleID); err != nil {
				return fmt.Errorf("failed to style row %d: %w", row, err)
			}
		}
	}
	return nil
}

// cellStyle picks the style for a data cell. Column 1 holds the value
// and gets the band fill; a Normal reading keeps the default fill. In
// template mode all other cells are left untouched.
func (b *Builder) cellStyle(col int, value float64, templated bool, styles *styleSet) (int, bool) {
	if col == 1 {
		band := dataprocessing.Classify(value, b.thresholds)
		if id, ok := styles.bandFills[band]; ok {
			return id, true
		}
		if templated {
			return 0, false
		}
		return styles.numeric, true
	}
	if templated {
		return 0, false
	}
	return styles.text, true
}

// autoSizeColumns widths each column to its longest stringified value,
// clamped to [minColWidth, maxColWidth] character units.
func (b *Builder) autoSizeColumns(f *excelize.File, readings []domain.Reading) error {
	for col := range headers {
		maxLen := len(headers[col])
		for _, r := range readings {
			if l := len(b.stringify(col, r)); l > maxLen {
				maxLen = l
			}
		}

		width := float64(maxLen + 2)
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("failed to resolve column %d: %w", col+1, err)
		}
		if err := f.SetColWidth(SheetName, name, name, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	return nil
}

func (b *Builder) stringify(col int, r domain.Reading) string {
	switch col {
	case 0:
		return r.Timestamp.Format(b.dateFormat)
	case 1:
		return formatValue(r.Value)
	case 2:
		return r.MealMarker
	case 3:
		return r.Notes
	case 4:
		return r.Activity
	case 5:
		return r.MealGrams
	case 6:
		return r.Medication
	default:
		return r.Location
	}
}

// applyTemplateHeader copies the template's column widths, header row
// height, and header cell styles onto the new sheet.
func applyTemplateHeader(f *excelize.File, header *templates.StyledHeader) error {
	if header.RowHeight > 0 {
		if err := f.SetRowHeight(SheetName, 1, header.RowHeight); err != nil {
			return fmt.Errorf("failed to set header row height: %w", err)
		}
	}

	for i := range headers {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to resolve column %d: %w", i+1, err)
		}
		if w := header.ColWidths[i]; w > 0 {
			if err := f.SetColWidth(SheetName, name, name, w); err != nil {
				return fmt.Errorf("failed to set width of column %s: %w", name, err)
			}
		}

		tmplStyle := header.CellStyles[i]
		if tmplStyle == nil {
			continue
		}
		styleID, err := f.NewStyle(tmplStyle)
		if err != nil {
			return fmt.Errorf("failed to recreate template style: %w", err)
		}
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to resolve header cell %d: %w", i+1, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, styleID); err != nil {
			return fmt.Errorf("failed to apply template style to %s: %w", cell, err)
		}
	}
	return nil
}

// writeStatistics appends the statistics block: a bold title, the date
// range and value aggregates, then the per-band distribution with the
// configured thresholds spelled out in the labels.
func (b *Builder) writeStatistics(f *excelize.File, s dataprocessing.Summary, startRow int, styles *styleSet) error {
	t := b.thresholds
	lines := []struct {
		label string
		value string
		bold  bool
	}{
		{label: "STATISTICS", bold: true},
		{label: "Date Range:", value: fmt.Sprintf("%s - %s", s.First.Format("02.01.2006"), s.Last.Format("02.01.2006"))},
		{label: "Total Readings:", value: fmt.Sprintf("%d", s.Count)},
		{label: "Average Glucose:", value: formatValue(s.Average) + " mmol/L"},
		{label: "Minimum Glucose:", value: formatValue(s.Min) + " mmol/L"},
		{label: "Maximum Glucose:", value: formatValue(s.Max) + " mmol/L"},
		{},
		{label: "RANGE DISTRIBUTION:", bold: true},
		{label: fmt.Sprintf("Low (< %s mmol/L):", formatValue(t.Low)), value: formatBandCount(s, domain.BandLow)},
		{label: fmt.Sprintf("Normal (%s-%s mmol/L):", formatValue(t.Low), formatValue(t.High)), value: formatBandCount(s, domain.BandNormal)},
		{label: fmt.Sprintf("High (%s-%s mmol/L):", formatValue(t.High), formatValue(t.VeryHigh)), value: formatBandCount(s, domain.BandHigh)},
		{label: fmt.Sprintf("Very High (> %s mmol/L):", formatValue(t.VeryHigh)), value: formatBandCount(s, domain.BandVeryHigh)},
	}

	for i, line := range lines {
		row := startRow + i
		labelCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("failed to resolve statistics cell: %w", err)
		}
		if line.label != "" {
			if err := f.SetCellValue(SheetName, labelCell, line.label); err != nil {
				return fmt.Errorf("failed to write statistics label: %w", err)
			}
		}
		if line.bold {
			style := styles.bold
			if i == 0 {
				style = styles.title
			}
			if err := f.SetCellStyle(SheetName, labelCell, labelCell, style); err != nil {
				return fmt.Errorf("failed to style statistics label: %w", err)
			}
		}
		if line.value != "" {
			valueCell, err := excelize.CoordinatesToCellName(2, row)
			if err != nil {
				return fmt.Errorf("failed to resolve statistics cell: %w", err)
			}
			if err := f.SetCellValue(SheetName, valueCell, line.value); err != nil {
				return fmt.Errorf("failed to write statistics value: %w", err)
			}
		}
	}
	return nil
}

// saveAtomic writes the workbook next to the destination and renames
// it into place so a crash mid-write never leaves a partial report.
// The temp name keeps the .xlsx extension; SaveAs rejects anything
// that is not a recognized workbook format.
func saveAtomic(f *excelize.File, outputPath string) error {
	tmp := outputPath + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace report: %w", err)
	}
	return nil
}
