package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucli/internal/tracker"
)

func TestRunReset(t *testing.T) {
	dir := t.TempDir()
	trk := tracker.New(filepath.Join(dir, "tracker.json"), nil)

	input := filepath.Join(dir, "export.csv")
	abs, err := filepath.Abs(input)
	require.NoError(t, err)
	require.NoError(t, trk.RecordExport(abs, time.Now()))

	assert.Equal(t, 0, runReset(trk, input))

	_, ok := trk.LastExportDate(abs)
	assert.False(t, ok, "reset must clear the entry")
}

func TestRunReset_RequiresInput(t *testing.T) {
	trk := tracker.New(filepath.Join(t.TempDir(), "tracker.json"), nil)
	assert.Equal(t, 1, runReset(trk, ""), "a bare reset must not fall back to discovery")
}

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("15.03.2024")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), *got)

	got, err = parseDateFlag("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDateFlag("2024-03-15")
	require.Error(t, err)
}
