package httpapi

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TaskStatus describes the most recent background task. Restore completion
// is not reported to the initiating request; this status (and the server
// log) is the only way to observe its outcome.
type TaskStatus struct {
	Task       string     `json:"task"`
	Detail     string     `json:"detail,omitempty"`
	Running    bool       `json:"running"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Runner executes one background task at a time.
type Runner struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	last   *TaskStatus
	logger zerolog.Logger
}

func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

// TryRun starts fn in the background. It returns false without running
// anything when a task is already in flight.
func (r *Runner) TryRun(task, detail string, fn func() error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last != nil && r.last.Running {
		return false
	}

	r.last = &TaskStatus{
		Task:      task,
		Detail:    detail,
		Running:   true,
		StartedAt: time.Now().UTC(),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		err := fn()

		r.mu.Lock()
		defer r.mu.Unlock()
		now := time.Now().UTC()
		r.last.Running = false
		r.last.FinishedAt = &now
		if err != nil {
			r.last.Error = err.Error()
			r.logger.Error().Err(err).Str("task", task).Str("detail", detail).Msg("background task failed")
		} else {
			r.logger.Info().Str("task", task).Str("detail", detail).Msg("background task finished")
		}
	}()

	return true
}

// Status returns a copy of the last task status, if any task ever ran.
func (r *Runner) Status() (TaskStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return TaskStatus{}, false
	}
	return *r.last, true
}

// Wait blocks until the in-flight task, if any, completes.
func (r *Runner) Wait() {
	r.wg.Wait()
}
