package builtin

import (
	"time"

	"github.com/dm-vev/gridkit/server/menu"
	"github.com/dm-vev/gridkit/server/plugin"
)

// serverAdapter is the part of the server the built-in commands operate on.
type serverAdapter interface {
	Close() error
	StartTime() time.Time
	Stats() Stats

	PluginsEnabled() bool
	Plugins() []plugin.Info
	EnablePlugin(path string) (plugin.Info, error)
	DisablePlugin(name string) (plugin.Info, error)
	ReloadPlugin(name string) (plugin.Info, error)

	Layouts() []string
	ReloadLayouts() error
	OpenLayout(v menu.Viewer, name string) error

	Operators() []string
	AddOperator(name string) (bool, error)
	RemoveOperator(name string) (bool, error)
}

// Stats is a snapshot of the runtime counters shown by /status.
type Stats struct {
	// Tick is the number of ticks the scheduler has run.
	Tick int64
	// TickRate is the number of ticks per second the scheduler aims for.
	TickRate int
	// Tasks is the number of scheduled tasks waiting to run.
	Tasks int
	// Handlers is the number of registered event handlers.
	Handlers int
	// Commands is the number of registered commands.
	Commands int
}
