// Package terminal implements a menu.Display that renders menus to the local
// terminal for a single viewer using bubbletea.
package terminal

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dm-vev/gridkit/server/event"
	"github.com/dm-vev/gridkit/server/menu"
	"github.com/google/uuid"
)

// ErrUnknownViewer is returned when a menu is rendered for a viewer other than
// the terminal's own viewer.
var ErrUnknownViewer = errors.New("viewer is not attached to this terminal")

// maxLogLines is the number of log lines kept for the footer.
const maxLogLines = 6

// Viewer is the person sitting at the terminal.
type Viewer struct {
	id   uuid.UUID
	name string
}

// NewViewer returns a Viewer with a random UUID.
func NewViewer(name string) Viewer {
	return Viewer{id: uuid.New(), name: name}
}

// UUID ...
func (v Viewer) UUID() uuid.UUID { return v.id }

// Name ...
func (v Viewer) Name() string { return v.name }

// Config holds the options of a Display.
type Config struct {
	// Viewer is the terminal's viewer. A viewer named "Console" is created if
	// left empty.
	Viewer Viewer
	// Bus receives the ClickEvent and CloseEvent values produced by key
	// presses. It must not be nil.
	Bus *event.Bus
	// Exec runs fn on the goroutine that owns the menus, typically the
	// scheduler's tick goroutine. If nil, fn runs directly.
	Exec func(fn func())
	// OnQuit is called once the program is quit through its key binding.
	OnQuit func()
}

// Display shows menus in the terminal. All methods are safe for concurrent
// use. The screen is redrawn by the program returned by Program.
type Display struct {
	conf Config

	mu      sync.Mutex
	current *menu.Menu
	cells   map[int]*menu.Item
	logs    []string

	dirty chan struct{}
}

// New creates a Display from the Config.
func (conf Config) New() *Display {
	if conf.Viewer.id == uuid.Nil {
		conf.Viewer = NewViewer("Console")
	}
	if conf.Exec == nil {
		conf.Exec = func(fn func()) { fn() }
	}
	if conf.OnQuit == nil {
		conf.OnQuit = func() {}
	}
	return &Display{conf: conf, cells: map[int]*menu.Item{}, dirty: make(chan struct{}, 1)}
}

// Viewer returns the terminal's viewer.
func (d *Display) Viewer() Viewer { return d.conf.Viewer }

// Program returns a bubbletea program drawing the display. Run it to take
// over the terminal.
func (d *Display) Program(opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(newModel(d), opts...)
}

// Render ...
func (d *Display) Render(v menu.Viewer, m *menu.Menu) error {
	if v == nil || v.UUID() != d.conf.Viewer.id {
		return ErrUnknownViewer
	}
	cells := make(map[int]*menu.Item, m.Size())
	for _, c := range m.Snapshot() {
		if it := c.Visual(); !it.Empty() {
			cells[c.Slot] = it
		}
	}
	d.mu.Lock()
	d.current, d.cells = m, cells
	d.mu.Unlock()
	d.notify()
	return nil
}

// SetCell ...
func (d *Display) SetCell(m *menu.Menu, slot int, it *menu.Item) error {
	d.mu.Lock()
	if d.current != m {
		d.mu.Unlock()
		return nil
	}
	if it.Empty() {
		delete(d.cells, slot)
	} else {
		d.cells[slot] = it
	}
	d.mu.Unlock()
	d.notify()
	return nil
}

// ClearCell ...
func (d *Display) ClearCell(m *menu.Menu, slot int) error {
	return d.SetCell(m, slot, nil)
}

// Current ...
func (d *Display) Current(v menu.Viewer) (*menu.Menu, bool) {
	if v == nil || v.UUID() != d.conf.Viewer.id {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, d.current != nil
}

// Viewers returns the terminal's viewer if it has a menu open.
func (d *Display) Viewers() []menu.Viewer {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return nil
	}
	return []menu.Viewer{d.conf.Viewer}
}

// Close closes the current menu, if any, and publishes a CloseEvent for it.
func (d *Display) Close() {
	d.mu.Lock()
	m := d.current
	d.current, d.cells = nil, map[int]*menu.Item{}
	d.mu.Unlock()
	if m == nil {
		return
	}
	d.notify()
	d.conf.Exec(func() {
		d.conf.Bus.Dispatch(&menu.CloseEvent{Viewer: d.conf.Viewer, Holder: m})
	})
}

// CloseMenu closes the current menu if v is the terminal's viewer.
func (d *Display) CloseMenu(v menu.Viewer) {
	if v != nil && v.UUID() == d.conf.Viewer.id {
		d.Close()
	}
}

// Click publishes a ClickEvent for slot of the current menu.
func (d *Display) Click(slot int, t menu.ClickType) {
	d.mu.Lock()
	m, it := d.current, d.cells[slot]
	d.mu.Unlock()
	if m == nil {
		return
	}
	d.conf.Exec(func() {
		d.conf.Bus.Dispatch(&menu.ClickEvent{Viewer: d.conf.Viewer, Holder: m, Slot: slot, Current: it, Type: t})
	})
}

// Write adds the lines in p to the log footer. It allows the display to be
// used as the output of a slog handler.
func (d *Display) Write(p []byte) (int, error) {
	lines := strings.Split(strings.TrimRight(string(p), "\n"), "\n")
	d.mu.Lock()
	for _, line := range lines {
		if line != "" {
			d.logs = append(d.logs, line)
		}
	}
	if len(d.logs) > maxLogLines {
		d.logs = d.logs[len(d.logs)-maxLogLines:]
	}
	d.mu.Unlock()
	d.notify()
	return len(p), nil
}

// frame is a copy of the state drawn by the model.
type frame struct {
	menu  *menu.Menu
	cells map[int]*menu.Item
	logs  []string
}

func (d *Display) frame() frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return frame{menu: d.current, cells: maps.Clone(d.cells), logs: slices.Clone(d.logs)}
}

// notify marks the display as changed. Changes made before the model picked
// up the previous notification are coalesced into one redraw.
func (d *Display) notify() {
	select {
	case d.dirty <- struct{}{}:
	default:
	}
}

var _ menu.Display = (*Display)(nil)
