package plugin

import (
	"log/slog"
	"time"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/event"
	"github.com/dm-vev/gridkit/server/menu"
	"github.com/dm-vev/gridkit/server/scheduler"
)

// Host exposes the subset of server functionality required by the plugin
// manager and APIs.
type Host[S any, C any] interface {
	// Instance returns the underlying server value.
	Instance() S
	// Config returns a snapshot of the server configuration.
	Config() C
	// Logger returns the logger used for structured diagnostics.
	Logger() *slog.Logger
	// StartTime reports the time the server started running.
	StartTime() time.Time
	// Events returns the event bus plugins subscribe to.
	Events() *event.Bus
	// Commands returns the command registry plugin commands are added to.
	Commands() *cmd.Registry
	// Scheduler returns the tick scheduler plugin tasks run on.
	Scheduler() *scheduler.Scheduler
	// MenuHost returns the collaborators menus created by plugins use.
	MenuHost() menu.Host
	// ExecuteCommand runs a command on behalf of the given source.
	ExecuteCommand(source cmd.Source, commandLine string)
	// Close shuts the underlying server down.
	Close() error
	// PluginsEnabled reports if the plugin system is active.
	PluginsEnabled() bool
}
