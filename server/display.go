package server

import (
	"errors"
	"sync/atomic"

	"github.com/dm-vev/gridkit/server/menu"
	"github.com/dm-vev/gridkit/server/scheduler"
)

// ErrNoDisplay is returned when a menu is opened before a display was attached
// to the server.
var ErrNoDisplay = errors.New("no display attached to the server")

// MenuCloser is implemented by displays that can close the menu a viewer has
// open, as if the viewer closed it.
type MenuCloser interface {
	CloseMenu(v menu.Viewer)
}

// displayHolder forwards to the display attached through Server.UseDisplay.
// Menus keep the holder, so a display may be attached after they were built.
type displayHolder struct {
	v atomic.Value
}

type displayBox struct{ d menu.Display }

func (h *displayHolder) set(d menu.Display) { h.v.Store(displayBox{d: d}) }

func (h *displayHolder) get() menu.Display {
	box, _ := h.v.Load().(displayBox)
	return box.d
}

// Render ...
func (h *displayHolder) Render(v menu.Viewer, m *menu.Menu) error {
	d := h.get()
	if d == nil {
		return ErrNoDisplay
	}
	return d.Render(v, m)
}

// SetCell ...
func (h *displayHolder) SetCell(m *menu.Menu, slot int, it *menu.Item) error {
	if d := h.get(); d != nil {
		return d.SetCell(m, slot, it)
	}
	return nil
}

// ClearCell ...
func (h *displayHolder) ClearCell(m *menu.Menu, slot int) error {
	if d := h.get(); d != nil {
		return d.ClearCell(m, slot)
	}
	return nil
}

// Current ...
func (h *displayHolder) Current(v menu.Viewer) (*menu.Menu, bool) {
	if d := h.get(); d != nil {
		return d.Current(v)
	}
	return nil, false
}

// menuScheduler lets menus schedule refresh tasks on the server scheduler.
type menuScheduler struct {
	s *scheduler.Scheduler
}

// Repeat ...
func (m menuScheduler) Repeat(delay, period int, async bool, fn func(menu.Task)) menu.Task {
	return m.s.Repeat(delay, period, async, func(t *scheduler.Task) { fn(t) })
}

var (
	_ menu.Display   = (*displayHolder)(nil)
	_ menu.Scheduler = menuScheduler{}
)
