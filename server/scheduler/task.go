package scheduler

import "sync/atomic"

// Task is a handle to a function scheduled through a Scheduler.
type Task struct {
	id     int64
	s      *Scheduler
	period int64
	async  bool
	fn     func(t *Task)

	cancelled atomic.Bool
	running   atomic.Bool
	runs      atomic.Int64
}

// ID returns the id of the task, unique within its scheduler.
func (t *Task) ID() int64 { return t.id }

// Cancel stops the task from running again. A run that is already in
// progress is not interrupted. Cancel may be called more than once.
func (t *Task) Cancel() {
	if t.cancelled.CompareAndSwap(false, true) {
		t.s.remove(t)
	}
}

// Cancelled reports if Cancel was called.
func (t *Task) Cancelled() bool { return t.cancelled.Load() }

// Runs returns the number of times the task ran.
func (t *Task) Runs() int64 { return t.runs.Load() }

// Async reports if the task runs off the tick goroutine.
func (t *Task) Async() bool { return t.async }
