package server

import (
	"log/slog"
	"time"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/event"
	"github.com/dm-vev/gridkit/server/menu"
	"github.com/dm-vev/gridkit/server/plugin"
	"github.com/dm-vev/gridkit/server/scheduler"
)

type pluginHost struct {
	srv *Server
}

func newPluginHost(srv *Server) plugin.Host[*Server, Config] {
	return pluginHost{srv: srv}
}

func (h pluginHost) Instance() *Server {
	return h.srv
}

func (h pluginHost) Config() Config {
	return h.srv.conf
}

func (h pluginHost) Logger() *slog.Logger {
	return h.srv.log
}

func (h pluginHost) StartTime() time.Time {
	return h.srv.StartTime()
}

func (h pluginHost) Events() *event.Bus {
	return h.srv.bus
}

func (h pluginHost) Commands() *cmd.Registry {
	return h.srv.commands
}

func (h pluginHost) Scheduler() *scheduler.Scheduler {
	return h.srv.sched
}

func (h pluginHost) MenuHost() menu.Host {
	return h.srv.MenuHost()
}

// ExecuteCommand queues the command without waiting for it, as plugins
// usually call it from the tick goroutine.
func (h pluginHost) ExecuteCommand(source cmd.Source, commandLine string) {
	h.srv.ExecuteCommand(source, commandLine)
}

func (h pluginHost) Close() error {
	return h.srv.Close()
}

func (h pluginHost) PluginsEnabled() bool {
	return h.srv.PluginsEnabled()
}

var _ plugin.Host[*Server, Config] = pluginHost{}
