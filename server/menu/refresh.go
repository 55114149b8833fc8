package menu

import (
	"fmt"
	"log/slog"
	"sync"
)

// MaxRefreshFailures is the number of consecutive failed renders after which
// a refresh task cancels itself.
const MaxRefreshFailures = 3

// refresher re-renders the slots of one refreshing button for one viewer.
type refresher struct {
	menu   *Menu
	button *Button
	viewer Viewer
	log    *slog.Logger

	mu       sync.Mutex
	rendered bool
	last     uint64
	failures int
}

// tick is run by the scheduler every refresh period. It cancels the task once
// the viewer no longer has the menu open or the button left the menu.
func (r *refresher) tick(t Task) {
	if t.Cancelled() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.menu.host.Display.Current(r.viewer); !ok || cur != r.menu {
		t.Cancel()
		return
	}
	slots := r.menu.SlotsOfButton(r.button)
	if len(slots) == 0 {
		t.Cancel()
		return
	}

	it, err := r.visual()
	if err == nil {
		fp := it.Fingerprint()
		if r.rendered && fp == r.last {
			return
		}
		for _, slot := range slots {
			if err = r.menu.render(slot, it); err != nil {
				break
			}
		}
		if err == nil {
			r.rendered, r.last, r.failures = true, fp, 0
			return
		}
	}

	r.failures++
	r.log.Warn("Button refresh failed.", "viewer", r.viewer.Name(), "slot", slots[0], "attempt", r.failures, "err", err)
	if r.failures >= MaxRefreshFailures {
		r.log.Error("Button refresh cancelled after repeated failures.", "viewer", r.viewer.Name(), "slot", slots[0])
		t.Cancel()
	}
}

func (r *refresher) visual() (it *Item, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("dynamic button panicked: %v", rec)
		}
	}()
	return r.button.Item(), nil
}
