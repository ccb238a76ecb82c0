package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestFindByPattern(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	touch(t, filepath.Join(dir, "ContourCSVReport_1.csv"), now)
	touch(t, filepath.Join(dir, "ContourCSVReport_2.csv"), now)
	touch(t, filepath.Join(dir, "other.csv"), now)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "ContourCSVReport_dir.csv"), 0755))

	found, err := FindByPattern(dir, "ContourCSVReport*.csv")
	require.NoError(t, err)
	require.Len(t, found, 2, "directories and non-matching names are skipped")

	for _, f := range found {
		assert.Equal(t, filepath.Base(f.Path), f.Name)
		assert.Equal(t, int64(4), f.Size)
	}
}

func TestFindByPattern_NoMatches(t *testing.T) {
	found, err := FindByPattern(t.TempDir(), "ContourCSVReport*.csv")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestLatest(t *testing.T) {
	now := time.Now()
	files := []FileInfo{
		{Name: "old.csv", ModTime: now.Add(-2 * time.Hour)},
		{Name: "newest.csv", ModTime: now},
		{Name: "middle.csv", ModTime: now.Add(-1 * time.Hour)},
	}

	latest, ok := Latest(files)
	require.True(t, ok)
	assert.Equal(t, "newest.csv", latest.Name)

	_, ok = Latest(nil)
	assert.False(t, ok)
}

func TestLatestMatching(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	touch(t, filepath.Join(dir, "ContourCSVReport_old.csv"), now.Add(-time.Hour))
	touch(t, filepath.Join(dir, "ContourCSVReport_new.csv"), now)

	latest, ok, err := LatestMatching(dir, "ContourCSVReport*.csv")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ContourCSVReport_new.csv", latest.Name)
}

func TestLatestMatching_Empty(t *testing.T) {
	_, ok, err := LatestMatching(t.TempDir(), "ContourCSVReport*.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}
