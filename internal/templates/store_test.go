package templates

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "templates"), nil)
	require.NoError(t, err)
	return store
}

// writeTemplateFile creates a spreadsheet with a styled header row.
func writeTemplateFile(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	require.NoError(t, err)

	for col := 1; col <= 8; col++ {
		cell, err := excelize.CoordinatesToCellName(col, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, "Header"))
		require.NoError(t, f.SetCellStyle(sheet, cell, cell, headerStyle))
	}
	require.NoError(t, f.SetColWidth(sheet, "A", "A", 33))
	require.NoError(t, f.SetRowHeight(sheet, 1, 28))

	path := filepath.Join(t.TempDir(), "source.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestStore_SaveListGet(t *testing.T) {
	store := newTestStore(t)
	source := writeTemplateFile(t)

	stored, err := store.Save(source, "custom")
	require.NoError(t, err)
	assert.FileExists(t, stored)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"custom"}, names)

	path, ok := store.Get("custom")
	require.True(t, ok)
	assert.Equal(t, stored, path)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestStore_SaveOverwritesSilently(t *testing.T) {
	store := newTestStore(t)
	source := writeTemplateFile(t)

	_, err := store.Save(source, "custom")
	require.NoError(t, err)
	_, err = store.Save(source, "custom")
	require.NoError(t, err)

	names, err := store.List()
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestStore_SaveMissingSource(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Save(filepath.Join(t.TempDir(), "nope.xlsx"), "custom")
	require.Error(t, err)
}

func TestStore_ListEmpty(t *testing.T) {
	store := newTestStore(t)
	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_Load(t *testing.T) {
	store := newTestStore(t)
	source := writeTemplateFile(t)
	_, err := store.Save(source, "custom")
	require.NoError(t, err)

	header, err := store.Load("custom")
	require.NoError(t, err)
	require.NotNil(t, header)

	assert.InDelta(t, 33, header.ColWidths[0], 0.5)
	assert.InDelta(t, 28, header.RowHeight, 0.5)

	style := header.CellStyles[0]
	require.NotNil(t, style)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestStore_LoadMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	header, err := store.Load("missing")
	require.NoError(t, err)
	assert.Nil(t, header)
}
