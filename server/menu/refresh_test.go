package menu

import (
	"testing"

	"github.com/dm-vev/gridkit/server/event"
)

func TestOpenSchedulesRefreshingButtons(t *testing.T) {
	m, _, s := newTestMenu(t, 18)
	clock := NewButton(NewItem("clock")).Refresh(5, 20, true)
	_ = m.SetButton(0, clock)
	_ = m.SetButton(9, clock)
	_ = m.SetButton(1, NewButton(NewItem("stone")))
	_ = m.SetButton(2, NewButton(NewItem("compass")).Refresh(0, 10, false))

	if err := m.Open(newViewer("Alex")); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(s.tasks) != 2 {
		t.Fatalf("Open() scheduled %d tasks, want 2", len(s.tasks))
	}
	if task := s.tasks[0]; task.delay != 5 || task.period != 20 || !task.async {
		t.Fatalf("clock task = %+v, want delay 5 period 20 async", task)
	}
	if task := s.tasks[1]; task.delay != 0 || task.period != 10 || task.async {
		t.Fatalf("compass task = %+v, want delay 0 period 10 sync", task)
	}
}

func TestOpenAgainReplacesTasks(t *testing.T) {
	m, _, s := newTestMenu(t, 9)
	_ = m.SetButton(0, NewButton(NewItem("clock")).Refresh(0, 1, false))
	v := newViewer("Alex")
	_ = m.Open(v)
	_ = m.Open(v)
	if len(s.tasks) != 2 || !s.tasks[0].Cancelled() || s.tasks[1].Cancelled() {
		t.Fatalf("reopening did not replace the refresh task")
	}
}

func TestOpenWithoutScheduler(t *testing.T) {
	m, err := New(Host{Display: newDisplay(), Log: testLogger()}, "Test", 9)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_ = m.SetButton(0, NewButton(NewItem("clock")).Refresh(0, 1, false))
	if err := m.Open(newViewer("Alex")); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
}

func TestRefreshRendersDynamicItem(t *testing.T) {
	m, d, s := newTestMenu(t, 9)
	n := 0
	b := NewDynamicButton(func() *Item { return NewItem("clock").Count(n) }).Refresh(0, 1, false)
	_ = m.SetButton(3, b)
	_ = m.Open(newViewer("Alex"))

	n = 5
	s.run()
	if got := d.cells[3].Amount(); got != 5 {
		t.Fatalf("slot 3 shows count %d after refresh, want 5", got)
	}
}

func TestRefreshSkipsUnchangedItem(t *testing.T) {
	m, d, s := newTestMenu(t, 9)
	_ = m.SetButton(0, NewDynamicButton(func() *Item { return NewItem("clock") }).Refresh(0, 1, false))
	_ = m.Open(newViewer("Alex"))

	before := d.setCount()
	s.run()
	s.run()
	s.run()
	if got := d.setCount() - before; got != 1 {
		t.Fatalf("unchanged item rendered %d times, want 1", got)
	}
}

func TestRefreshFollowsButtonSlot(t *testing.T) {
	m, d, s := newTestMenu(t, 9)
	n := 1
	b := NewDynamicButton(func() *Item { return NewItem("clock").Count(n) }).Refresh(0, 1, false)
	_ = m.SetButton(0, b)
	_ = m.Open(newViewer("Alex"))

	_ = m.Clear(0)
	_ = m.SetButton(6, b)
	n = 7
	s.run()
	if d.cells[6].Amount() != 7 {
		t.Fatalf("moved button not refreshed in its new slot")
	}
	if s.tasks[0].Cancelled() {
		t.Fatalf("task cancelled although the button is still in the menu")
	}
}

func TestRefreshCancelsOnceMenuClosed(t *testing.T) {
	m, d, s := newTestMenu(t, 9)
	renders := 0
	b := NewDynamicButton(func() *Item {
		renders++
		return NewItem("clock").Count(renders)
	}).Refresh(0, 1, false)
	_ = m.SetButton(0, b)
	v := newViewer("Alex")
	_ = m.Open(v)

	d.close(v)
	before := renders
	s.run()
	s.run()
	task := s.tasks[0]
	if task.cancelled != 1 {
		t.Fatalf("task cancelled %d times, want exactly once", task.cancelled)
	}
	if renders != before {
		t.Fatalf("button rendered %d times after cancel, want 0", renders-before)
	}
}

func TestRefreshCancelsWhenOtherMenuOpen(t *testing.T) {
	m, _, s := newTestMenu(t, 9)
	_ = m.SetButton(0, NewButton(NewItem("clock")).Refresh(0, 1, false))
	v := newViewer("Alex")
	_ = m.Open(v)

	other, err := New(m.host, "Other", 9)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_ = other.Open(v)
	s.run()
	if !s.tasks[0].Cancelled() {
		t.Fatalf("task not cancelled after viewer opened another menu")
	}
}

func TestRefreshCancelsWhenButtonRemoved(t *testing.T) {
	m, _, s := newTestMenu(t, 9)
	b := NewButton(NewItem("clock")).Refresh(0, 1, false)
	_ = m.SetButton(0, b)
	_ = m.Open(newViewer("Alex"))

	_ = m.SetItem(0, NewItem("stone"))
	s.run()
	if s.tasks[0].cancelled != 1 {
		t.Fatalf("task cancelled %d times, want 1", s.tasks[0].cancelled)
	}
}

func TestRefreshCancelsAfterRepeatedFailures(t *testing.T) {
	m, d, s := newTestMenu(t, 9)
	n := 0
	_ = m.SetButton(0, NewDynamicButton(func() *Item {
		n++
		return NewItem("clock").Count(n)
	}).Refresh(0, 1, false))
	_ = m.Open(newViewer("Alex"))

	d.failSet = errDisplay
	for i := range MaxRefreshFailures - 1 {
		s.run()
		if s.tasks[0].Cancelled() {
			t.Fatalf("task cancelled after %d failures", i+1)
		}
	}
	s.run()
	if s.tasks[0].cancelled != 1 {
		t.Fatalf("task cancelled %d times after %d failures, want 1", s.tasks[0].cancelled, MaxRefreshFailures)
	}
}

func TestRefreshRecoversFromPanickingButton(t *testing.T) {
	m, _, s := newTestMenu(t, 9)
	calls := 0
	_ = m.SetButton(0, NewDynamicButton(func() *Item {
		calls++
		if calls > 1 {
			panic("broken clock")
		}
		return NewItem("clock")
	}).Refresh(0, 1, false))
	_ = m.Open(newViewer("Alex"))

	for range MaxRefreshFailures {
		s.run()
	}
	if !s.tasks[0].Cancelled() {
		t.Fatalf("task not cancelled after repeated panics")
	}
}

func TestCloseEventCancelsTasks(t *testing.T) {
	m, d, s := newTestMenu(t, 9)
	_ = m.SetButton(0, NewButton(NewItem("clock")).Refresh(0, 1, false))
	bus := event.NewBus(testLogger())
	NewRouter(d, testLogger()).Attach(bus, "menu")
	v := newViewer("Alex")
	_ = m.Open(v)

	bus.Dispatch(&CloseEvent{Viewer: v, Holder: m})
	if !s.tasks[0].Cancelled() {
		t.Fatalf("close did not cancel the refresh task")
	}
}
