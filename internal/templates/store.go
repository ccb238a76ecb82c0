// Package templates manages named spreadsheet templates whose header
// styling and column widths are reapplied to new reports.
package templates

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// headerColumns is the number of header cells a template contributes
// styling for, matching the report's fixed column count.
const headerColumns = 8

// StyledHeader carries the formatting extracted from a template's
// header row: per-column widths, the header row height, and each
// header cell's resolved style. Zero widths and nil styles mean the
// template did not set that property.
type StyledHeader struct {
	ColWidths  [headerColumns]float64
	RowHeight  float64
	CellStyles [headerColumns]*excelize.Style
}

// Store is a directory of template spreadsheets, one file per
// template, addressable by file stem.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore opens (and creates if needed) the managed template
// directory.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create template directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save copies the spreadsheet at sourcePath into the managed directory
// under name. An existing template with the same name is replaced
// silently. Returns the stored file's path.
func (s *Store) Save(sourcePath, name string) (string, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open template source: %w", err)
	}
	defer src.Close()

	dest := s.pathFor(name)
	tmp, err := os.CreateTemp(s.dir, ".template-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("failed to create template file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to copy template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close template file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to store template: %w", err)
	}

	s.logger.Info("template saved",
		slog.String("name", name),
		slog.String("path", dest))

	return dest, nil
}

// List returns the stored template names in lexical order.
func (s *Store) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.xlsx"))
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	var names []string
	for _, m := range matches {
		base := filepath.Base(m)
		if strings.HasPrefix(base, ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(base, ".xlsx"))
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the path of the named template, or ok=false if it does
// not exist.
func (s *Store) Get(name string) (string, bool) {
	path := s.pathFor(name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Load extracts the header formatting from the named template. A
// nonexistent name returns (nil, nil); an unreadable or corrupt
// template returns an error so the caller can fall back to default
// formatting with a warning.
func (s *Store) Load(name string) (*StyledHeader, error) {
	path, ok := s.Get(name)
	if !ok {
		return nil, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %q: %w", name, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("template %q has no sheets", name)
	}

	header := &StyledHeader{}
	if h, err := f.GetRowHeight(sheet, 1); err == nil {
		header.RowHeight = h
	}

	for i := 0; i < headerColumns; i++ {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve column %d: %w", i+1, err)
		}
		if w, err := f.GetColWidth(sheet, col); err == nil {
			header.ColWidths[i] = w
		}

		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell %d: %w", i+1, err)
		}
		styleID, err := f.GetCellStyle(sheet, cell)
		if err != nil {
			return nil, fmt.Errorf("failed to read style of %s: %w", cell, err)
		}
		style, err := f.GetStyle(styleID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve style of %s: %w", cell, err)
		}
		header.CellStyles[i] = style
	}

	s.logger.Debug("template header loaded",
		slog.String("name", name),
		slog.String("sheet", sheet))

	return header, nil
}

func (s *Store) pathFor(name string) string {
	return filepath.Join(s.dir, name+".xlsx")
}
