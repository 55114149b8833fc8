package menu

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// Viewer is someone that a Menu may be shown to, typically a player.
type Viewer interface {
	UUID() uuid.UUID
	Name() string
}

// Display renders menus to viewers. Implementations are supplied by the host,
// for example a network session or the terminal UI in package terminal.
type Display interface {
	// Render shows m to v, replacing any menu v currently has open.
	Render(v Viewer, m *Menu) error
	// SetCell updates the visual of a single slot of m for everyone viewing it.
	SetCell(m *Menu, slot int, it *Item) error
	// ClearCell empties a single slot of m for everyone viewing it.
	ClearCell(m *Menu, slot int) error
	// Current returns the menu v currently has open, if any.
	Current(v Viewer) (*Menu, bool)
}

// Task is a handle to a task scheduled through a Scheduler.
type Task interface {
	Cancel()
	Cancelled() bool
}

// Scheduler runs repeating tasks on behalf of menus. Delay and period are
// measured in scheduler ticks. Tasks with async set may run outside of the
// scheduler's tick goroutine.
type Scheduler interface {
	Repeat(delay, period int, async bool, fn func(Task)) Task
}

// Host bundles the collaborators a Menu needs. It is passed explicitly to New
// instead of being looked up globally.
type Host struct {
	Display   Display
	Scheduler Scheduler
	Log       *slog.Logger
}

// ErrNoDisplay is returned by New when the Host has no Display.
var ErrNoDisplay = errors.New("menu host has no display")

func (h Host) logger() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}
