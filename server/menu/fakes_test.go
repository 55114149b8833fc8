package menu

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type fakeViewer struct {
	id   uuid.UUID
	name string
}

func newViewer(name string) *fakeViewer {
	return &fakeViewer{id: uuid.New(), name: name}
}

func (v *fakeViewer) UUID() uuid.UUID { return v.id }
func (v *fakeViewer) Name() string    { return v.name }

type fakeDisplay struct {
	mu      sync.Mutex
	current map[uuid.UUID]*Menu
	cells   map[int]*Item
	sets    int
	clears  int
	renders int
	failSet error
}

func newDisplay() *fakeDisplay {
	return &fakeDisplay{current: map[uuid.UUID]*Menu{}, cells: map[int]*Item{}}
}

func (d *fakeDisplay) Render(v Viewer, m *Menu) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renders++
	d.current[v.UUID()] = m
	return nil
}

func (d *fakeDisplay) SetCell(_ *Menu, slot int, it *Item) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failSet != nil {
		return d.failSet
	}
	d.sets++
	d.cells[slot] = it
	return nil
}

func (d *fakeDisplay) ClearCell(_ *Menu, slot int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears++
	delete(d.cells, slot)
	return nil
}

func (d *fakeDisplay) Current(v Viewer) (*Menu, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.current[v.UUID()]
	return m, ok
}

func (d *fakeDisplay) close(v Viewer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.current, v.UUID())
}

func (d *fakeDisplay) setCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sets
}

var errDisplay = errors.New("display unavailable")

type fakeTask struct {
	delay, period int
	async         bool
	fn            func(Task)
	cancelled     int
}

func (t *fakeTask) Cancel()         { t.cancelled++ }
func (t *fakeTask) Cancelled() bool { return t.cancelled > 0 }

type fakeScheduler struct {
	tasks []*fakeTask
}

func (s *fakeScheduler) Repeat(delay, period int, async bool, fn func(Task)) Task {
	t := &fakeTask{delay: delay, period: period, async: async, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// run calls every task that is not cancelled once.
func (s *fakeScheduler) run() {
	for _, t := range s.tasks {
		if !t.Cancelled() {
			t.fn(t)
		}
	}
}

func newTestMenu(t interface{ Fatalf(string, ...any) }, size int) (*Menu, *fakeDisplay, *fakeScheduler) {
	d, s := newDisplay(), &fakeScheduler{}
	m, err := New(Host{Display: d, Scheduler: s, Log: testLogger()}, "Test", size)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m, d, s
}
