// Package tracker persists, per source file, the timestamp of the
// latest reading included in its last export. The pipeline consults it
// to resolve the start date of incremental runs.
package tracker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Record is one tracker entry: the instant of the newest exported
// reading plus when the entry itself was written. Both are stored as
// ISO-8601 strings so the file stays readable and diffable.
type Record struct {
	LastExport string `json:"last_export"`
	UpdatedAt  string `json:"updated_at"`
}

// Tracker is a file-backed map from absolute source path to Record.
// Writes are synchronous and durable before the call returns; reads of
// corrupt or missing storage are treated as an empty history.
type Tracker struct {
	path    string
	logger  *slog.Logger
	history map[string]Record
}

// New loads the tracker file at path. A missing or unreadable file is
// not an error; the tracker starts with an empty history and the next
// write reconstructs the file.
func New(path string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tracker{
		path:    path,
		logger:  logger,
		history: make(map[string]Record),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("tracker file unreadable, starting with empty history",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return t
	}

	if err := json.Unmarshal(data, &t.history); err != nil {
		logger.Warn("tracker file corrupt, starting with empty history",
			slog.String("path", path),
			slog.String("error", err.Error()))
		t.history = make(map[string]Record)
	}

	return t
}

// LastExportDate returns the stored instant for sourceKey. Absence and
// any deserialization failure both report ok=false.
func (t *Tracker) LastExportDate(sourceKey string) (time.Time, bool) {
	rec, ok := t.history[sourceKey]
	if !ok {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, rec.LastExport)
	if err != nil {
		t.logger.Warn("tracker entry has invalid timestamp, treating as absent",
			slog.String("source", sourceKey),
			slog.String("value", rec.LastExport))
		return time.Time{}, false
	}
	return ts, true
}

// RecordExport overwrites the entry for sourceKey with latest and
// persists immediately.
func (t *Tracker) RecordExport(sourceKey string, latest time.Time) error {
	t.history[sourceKey] = Record{
		LastExport: latest.Format(time.RFC3339),
		UpdatedAt:  time.Now().Format(time.RFC3339),
	}
	return t.save()
}

// Reset removes the entry for sourceKey. Resetting an unknown key is a
// no-op.
func (t *Tracker) Reset(sourceKey string) error {
	if _, ok := t.history[sourceKey]; !ok {
		return nil
	}
	delete(t.history, sourceKey)
	return t.save()
}

// Entries returns a copy of the full history, keyed by source path.
func (t *Tracker) Entries() map[string]Record {
	out := make(map[string]Record, len(t.history))
	for k, v := range t.history {
		out[k] = v
	}
	return out
}

// save rewrites the tracker file through a temp file and rename so a
// crash mid-write never leaves a truncated tracker behind.
func (t *Tracker) save() error {
	data, err := json.MarshalIndent(t.history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracker history: %w", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create tracker directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tracker-*.json")
	if err != nil {
		return fmt.Errorf("failed to create tracker temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write tracker file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close tracker file: %w", err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace tracker file: %w", err)
	}

	t.logger.Debug("tracker state persisted",
		slog.String("path", t.path),
		slog.Int("entries", len(t.history)))

	return nil
}
