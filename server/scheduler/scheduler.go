package scheduler

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/brentp/intintmap"
	"golang.org/x/sync/semaphore"
)

// ErrRunning is returned by Run if the scheduler is already running.
var ErrRunning = errors.New("scheduler is already running")

// Config holds the settings of a Scheduler.
type Config struct {
	// Log is the logger used for task failures. If nil, slog.Default() is
	// used.
	Log *slog.Logger
	// TickRate is the number of ticks per second used by Run. Defaults to 20.
	TickRate int
	// AsyncWorkers limits the number of async task runs in flight at the same
	// time. Defaults to 4.
	AsyncWorkers int
}

func (conf Config) withDefaults() Config {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.TickRate <= 0 {
		conf.TickRate = 20
	}
	if conf.AsyncWorkers <= 0 {
		conf.AsyncWorkers = 4
	}
	return conf
}

// New creates a Scheduler using the settings of conf.
func (conf Config) New() *Scheduler {
	conf = conf.withDefaults()
	return &Scheduler{
		log:      conf.Log.With("subsystem", "scheduler"),
		interval: time.Second / time.Duration(conf.TickRate),
		sem:      semaphore.NewWeighted(int64(conf.AsyncWorkers)),
		tasks:    make(map[int64]*Task),
		due:      intintmap.New(64, 0.6),
	}
}

// Scheduler runs tasks on a fixed tick. Sync tasks and functions passed to
// Exec run on the goroutine calling Step, in the order they were scheduled.
// Async tasks run on separate goroutines, bounded by the number of async
// workers. A task never overlaps with itself.
type Scheduler struct {
	log      *slog.Logger
	interval time.Duration
	sem      *semaphore.Weighted

	mu      sync.Mutex
	tick    int64
	nextID  int64
	tasks   map[int64]*Task
	due     *intintmap.Map // task id -> due tick
	exec    []execReq
	running bool

	async sync.WaitGroup
}

type execReq struct {
	fn   func()
	done chan struct{}
}

// Repeat schedules fn to run every period ticks, the first time after delay
// ticks. A delay below 1 runs the task on the next tick. If period is not
// positive, the task runs only once.
func (s *Scheduler) Repeat(delay, period int, async bool, fn func(t *Task)) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t := &Task{id: s.nextID, s: s, period: int64(period), async: async, fn: fn}
	s.tasks[t.id] = t
	s.due.Put(t.id, s.tick+int64(max(delay, 1)))
	return t
}

// After schedules fn to run once after delay ticks.
func (s *Scheduler) After(delay int, async bool, fn func(t *Task)) *Task {
	return s.Repeat(delay, 0, async, fn)
}

// Exec runs fn on the tick goroutine during the next Step. The channel
// returned is closed once fn returned.
func (s *Scheduler) Exec(fn func()) <-chan struct{} {
	done := make(chan struct{})
	s.mu.Lock()
	s.exec = append(s.exec, execReq{fn: fn, done: done})
	s.mu.Unlock()
	return done
}

// Tick returns the number of ticks that passed so far.
func (s *Scheduler) Tick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Pending returns the number of tasks that are scheduled and not cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.due.Size()
}

// Step advances the scheduler by one tick: queued Exec functions run first,
// then every task due at the new tick, in the order the tasks were created.
func (s *Scheduler) Step(ctx context.Context) {
	s.mu.Lock()
	s.tick++
	tick := s.tick
	exec := s.exec
	s.exec = nil

	var due []*Task
	for kv := range s.due.Items() {
		if kv[1] <= tick {
			due = append(due, s.tasks[kv[0]])
		}
	}
	s.mu.Unlock()

	for _, req := range exec {
		s.call("exec", req.fn)
		close(req.done)
	}

	slices.SortFunc(due, func(a, b *Task) int { return cmp.Compare(a.id, b.id) })
	for _, t := range due {
		if ctx.Err() != nil {
			return
		}
		s.runTask(ctx, t, tick)
	}
}

// Run steps the scheduler every tick until ctx is cancelled. It waits for
// async task runs in flight before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.async.Wait()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Step(ctx)
		}
	}
}

// Wait blocks until all async task runs in flight have finished.
func (s *Scheduler) Wait() {
	s.async.Wait()
}

func (s *Scheduler) runTask(ctx context.Context, t *Task, tick int64) {
	if t.Cancelled() {
		s.remove(t)
		return
	}
	if !t.async {
		s.reschedule(t, tick)
		s.invoke(t)
		return
	}
	if !t.running.CompareAndSwap(false, true) {
		// The previous run is still going; try again next tick.
		s.postpone(t, tick)
		return
	}
	if !s.sem.TryAcquire(1) {
		t.running.Store(false)
		s.postpone(t, tick)
		return
	}
	s.reschedule(t, tick)
	s.async.Add(1)
	go func() {
		defer s.async.Done()
		defer s.sem.Release(1)
		defer t.running.Store(false)
		if ctx.Err() != nil {
			return
		}
		s.invoke(t)
	}()
}

func (s *Scheduler) invoke(t *Task) {
	if t.Cancelled() {
		return
	}
	t.runs.Add(1)
	if !s.call("task", func() { t.fn(t) }) {
		t.Cancel()
	}
}

// call runs fn and reports whether it returned without panicking.
func (s *Scheduler) call(kind string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Scheduled "+kind+" panicked.", "panic", r, "stack", string(debug.Stack()))
			ok = false
		}
	}()
	fn()
	return true
}

func (s *Scheduler) reschedule(t *Task, tick int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.period <= 0 {
		s.removeLocked(t)
		return
	}
	if _, ok := s.tasks[t.id]; ok {
		s.due.Put(t.id, tick+t.period)
	}
}

func (s *Scheduler) postpone(t *Task, tick int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.id]; ok {
		s.due.Put(t.id, tick+1)
	}
}

func (s *Scheduler) remove(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(t)
}

func (s *Scheduler) removeLocked(t *Task) {
	delete(s.tasks, t.id)
	s.due.Del(t.id)
}
