package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"glucli/pkg/contracts/domain"
)

// Column names consumed from the meter export. Any other columns in
// the file are ignored.
const (
	colDateTime   = "Date and Time"
	colGlucose    = "Readings [mmol/L]"
	colMealMarker = "Meal Marker"
	colNotes      = "Notes"
	colActivity   = "Activity"
	colMealGrams  = "Meal[g]"
	colMedication = "Medication"
	colLocation   = "Location"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RowWarning records a row that was present but unparseable. The run
// continues; a single malformed row never aborts the whole read.
type RowWarning struct {
	Line  int
	Input string
	Err   error
}

func (w RowWarning) String() string {
	return fmt.Sprintf("line %d: %v", w.Line, w.Err)
}

// ParseResult holds the readings extracted from one source file plus
// the warnings accumulated while reading it. Readings appear in file
// order; sorting is the pipeline's job.
type ParseResult struct {
	Readings []domain.Reading
	Warnings []RowWarning
}

// ReadFile parses every row of a meter CSV export. Rows missing either
// the timestamp or the value field are skipped silently (absence is
// expected for some export formats); rows whose present fields are
// malformed are skipped with a warning.
func ReadFile(path string, logger *slog.Logger) (*ParseResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	return parse(f, logger)
}

func parse(r io.Reader, logger *slog.Logger) (*ParseResult, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return &ParseResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	result := &ParseResult{}
	line := 1
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.warn(logger, line, "", err)
			continue
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		dateStr := field(colDateTime)
		glucoseStr := field(colGlucose)
		if dateStr == "" || glucoseStr == "" {
			continue
		}

		ts, err := ParseTimestamp(dateStr)
		if err != nil {
			result.warn(logger, line, dateStr, err)
			continue
		}

		value, err := strconv.ParseFloat(glucoseStr, 64)
		if err != nil {
			result.warn(logger, line, glucoseStr, fmt.Errorf("invalid glucose value %q", glucoseStr))
			continue
		}

		result.Readings = append(result.Readings, domain.Reading{
			Timestamp:  ts,
			Value:      value,
			MealMarker: field(colMealMarker),
			Notes:      field(colNotes),
			Activity:   field(colActivity),
			MealGrams:  field(colMealGrams),
			Medication: field(colMedication),
			Location:   field(colLocation),
		})
	}

	logger.Debug("source file parsed",
		slog.Int("readings", len(result.Readings)),
		slog.Int("warnings", len(result.Warnings)))

	return result, nil
}

func (p *ParseResult) warn(logger *slog.Logger, line int, input string, err error) {
	p.Warnings = append(p.Warnings, RowWarning{Line: line, Input: input, Err: err})
	logger.Warn("skipping unparseable row",
		slog.Int("line", line),
		slog.String("input", input),
		slog.String("error", err.Error()))
}
