package pipeline

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State names one step of a conversion run.
type State string

const (
	StateIdle          State = "idle"
	StateReading       State = "reading"
	StateFiltering     State = "filtering"
	StateSorting       State = "sorting"
	StateBuilding      State = "building"
	StateTrackerUpdate State = "tracker_update"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// RunState tracks one conversion run's progress through the pipeline.
// A run executes sequentially; the mutex only guards callers that poll
// state from another goroutine while the run is offloaded.
type RunState struct {
	mu sync.RWMutex

	ID        string
	State     State
	StartTime time.Time
	EndTime   *time.Time
	Err       error

	logger *slog.Logger
}

// NewRunState creates the state for a fresh run in StateIdle.
func NewRunState(logger *slog.Logger) *RunState {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunState{
		ID:        uuid.NewString(),
		State:     StateIdle,
		StartTime: time.Now(),
		logger:    logger,
	}
}

// Transition moves the run to the next state.
func (r *RunState) Transition(next State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger.Debug("pipeline state transition",
		slog.String("run_id", r.ID),
		slog.String("from", string(r.State)),
		slog.String("to", string(next)))
	r.State = next
}

// Complete marks the run as done.
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.State = StateDone
}

// Fail marks the run as failed with the given error.
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.State = StateFailed
	r.Err = err
}

// Current returns the run's current state.
func (r *RunState) Current() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.State
}

// Duration returns how long the run has been executing, or its total
// duration once finished.
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}
