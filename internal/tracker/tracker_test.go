package tracker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) (*Tracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.json")
	return New(path, nil), path
}

func TestTracker_RecordAndGet(t *testing.T) {
	trk, _ := newTestTracker(t)

	ts := time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)
	require.NoError(t, trk.RecordExport("/data/export.csv", ts))

	got, ok := trk.LastExportDate("/data/export.csv")
	require.True(t, ok)
	assert.True(t, ts.Equal(got), "got %v, want %v", got, ts)
}

func TestTracker_SurvivesReload(t *testing.T) {
	trk, path := newTestTracker(t)

	ts := time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)
	require.NoError(t, trk.RecordExport("/data/export.csv", ts))

	reloaded := New(path, nil)
	got, ok := reloaded.LastExportDate("/data/export.csv")
	require.True(t, ok)
	assert.True(t, ts.Equal(got))
}

func TestTracker_Reset(t *testing.T) {
	trk, _ := newTestTracker(t)

	require.NoError(t, trk.RecordExport("/data/export.csv", time.Now()))
	require.NoError(t, trk.Reset("/data/export.csv"))

	_, ok := trk.LastExportDate("/data/export.csv")
	assert.False(t, ok)

	// Resetting an unknown key is a no-op.
	require.NoError(t, trk.Reset("/data/unknown.csv"))
}

func TestTracker_UnknownKey(t *testing.T) {
	trk, _ := newTestTracker(t)
	_, ok := trk.LastExportDate("/never/seen.csv")
	assert.False(t, ok)
}

func TestTracker_CorruptFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	trk := New(path, nil)
	_, ok := trk.LastExportDate("/data/export.csv")
	assert.False(t, ok)

	// A following write reconstructs the file.
	require.NoError(t, trk.RecordExport("/data/export.csv", time.Now()))
	_, ok = trk.LastExportDate("/data/export.csv")
	assert.True(t, ok)
}

func TestTracker_InvalidStoredTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.json")
	content := `{"/data/export.csv": {"last_export": "garbage", "updated_at": "garbage"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	trk := New(path, nil)
	_, ok := trk.LastExportDate("/data/export.csv")
	assert.False(t, ok, "unparseable timestamp must read as absence")
}

func TestTracker_PersistedFormat(t *testing.T) {
	trk, path := newTestTracker(t)
	require.NoError(t, trk.RecordExport("/data/export.csv", time.Now()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var stored map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &stored))
	entry := stored["/data/export.csv"]
	require.NotNil(t, entry)
	assert.NotEmpty(t, entry["last_export"])
	assert.NotEmpty(t, entry["updated_at"])

	_, err = time.Parse(time.RFC3339, entry["last_export"])
	assert.NoError(t, err, "last_export must be an ISO-8601 instant")
}
