package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/cmd/builtin"
	"github.com/dm-vev/gridkit/server/event"
	"github.com/dm-vev/gridkit/server/menu"
	"github.com/dm-vev/gridkit/server/menu/layout"
	"github.com/dm-vev/gridkit/server/plugin"
	"github.com/dm-vev/gridkit/server/query"
	"github.com/dm-vev/gridkit/server/scheduler"
)

// Owners under which the server registers its own event handlers.
const (
	ownerMenu   = "menu"
	ownerCombat = "combat"
)

// Server hosts menus, commands and plugins. All menu interaction runs on the
// tick goroutine of its scheduler, which is driven by Run.
type Server struct {
	conf Config
	log  *slog.Logger

	started atomic.Pointer[time.Time]

	sched    *scheduler.Scheduler
	bus      *event.Bus
	display  *displayHolder
	router   *menu.Router
	commands *cmd.Registry
	layouts  *layout.Library
	plugins  *plugin.Manager[*Server, Config]
	detach   []func()

	once    sync.Once
	closing chan struct{}
}

func newServer(conf Config) *Server {
	srv := &Server{
		conf:    conf,
		log:     conf.Log,
		bus:     event.NewBus(conf.Log),
		display: &displayHolder{},
		closing: make(chan struct{}),
	}
	srv.sched = scheduler.Config{Log: conf.Log, TickRate: conf.TickRate, AsyncWorkers: conf.AsyncWorkers}.New()
	srv.router = menu.NewRouter(srv.display, conf.Log)
	srv.commands = cmd.NewRegistry(conf.Log)
	srv.layouts = layout.NewLibrary(conf.MenuFolder, conf.Log)

	srv.detach = append(srv.detach,
		srv.router.Attach(srv.bus, ownerMenu),
		(&event.CrystalTracker{}).Attach(srv.bus, ownerCombat),
	)
	if err := builtin.Register(srv.commands, srv); err != nil {
		srv.log.Error("Could not register built-in commands.", "err", err)
	}
	if err := srv.layouts.Load(); err != nil {
		srv.log.Error("Could not load menu layouts.", "err", err, "folder", conf.MenuFolder)
	}
	srv.plugins = plugin.NewManager(newPluginHost(srv), conf.Plugins)
	return srv
}

// Run loads the configured plugins and runs the scheduler until ctx is
// cancelled or Close is called. Plugins are disabled before Run returns.
func (srv *Server) Run(ctx context.Context) error {
	now := time.Now()
	if !srv.started.CompareAndSwap(nil, &now) {
		return errors.New("server is already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-srv.closing:
			cancel()
		case <-ctx.Done():
		}
	}()

	if srv.conf.QueryAddress != "" {
		l, err := query.Config{Log: srv.log, Provider: srv.queryData}.Listen(srv.conf.QueryAddress)
		if err != nil {
			srv.log.Error("Could not start query responder.", "err", err, "address", srv.conf.QueryAddress)
		} else {
			defer l.Close()
			go func() {
				if err := l.Serve(); err != nil {
					srv.log.Error("Query responder stopped.", "err", err)
				}
			}()
			srv.log.Info("Query responder listening.", "address", l.Addr().String())
		}
	}
	srv.plugins.LoadConfigured()
	srv.log.Info("Server running.", "name", srv.conf.Name, "tick_rate", srv.conf.TickRate, "layouts", len(srv.layouts.Names()))
	err := srv.sched.Run(ctx)
	// Exec functions queued during shutdown still run, so that callers
	// waiting on them are released.
	srv.sched.Step(context.Background())

	srv.plugins.Shutdown()
	for _, fn := range srv.detach {
		fn()
	}
	srv.log.Info("Server closed.", "uptime", time.Since(now).Round(time.Second))
	return err
}

// Close stops a running server. It may be called more than once.
func (srv *Server) Close() error {
	srv.once.Do(func() {
		srv.log.Info("Server closing...")
		close(srv.closing)
	})
	return nil
}

// Name returns the configured server name.
func (srv *Server) Name() string { return srv.conf.Name }

// StartTime returns the time Run was called, or the zero time if the server
// is not running yet.
func (srv *Server) StartTime() time.Time {
	if t := srv.started.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// Events returns the bus interaction events are published on.
func (srv *Server) Events() *event.Bus { return srv.bus }

// Commands returns the command registry.
func (srv *Server) Commands() *cmd.Registry { return srv.commands }

// Scheduler returns the scheduler that drives menus and plugin tasks.
func (srv *Server) Scheduler() *scheduler.Scheduler { return srv.sched }

// Exec runs fn on the tick goroutine.
func (srv *Server) Exec(fn func()) { srv.sched.Exec(fn) }

// UseDisplay attaches the display menus are rendered to. Menus built before
// the call render to it as well.
func (srv *Server) UseDisplay(d menu.Display) { srv.display.set(d) }

// MenuHost returns the collaborators menus created on the server use.
func (srv *Server) MenuHost() menu.Host {
	return menu.Host{Display: srv.display, Scheduler: menuScheduler{s: srv.sched}, Log: srv.log}
}

// ExecuteCommand runs commandLine on behalf of source on the tick goroutine.
// The channel returned is closed once the command finished.
func (srv *Server) ExecuteCommand(source cmd.Source, commandLine string) <-chan struct{} {
	return srv.sched.Exec(func() {
		srv.commands.Execute(source, commandLine, nil)
	})
}

// Layouts returns the names of the loaded menu layouts.
func (srv *Server) Layouts() []string { return srv.layouts.Names() }

// ReloadLayouts loads the menu layouts from disk again.
func (srv *Server) ReloadLayouts() error {
	if err := srv.layouts.Load(); err != nil {
		return fmt.Errorf("reload layouts from %s: %w", filepath.Clean(srv.layouts.Dir()), err)
	}
	return nil
}

// OpenLayout builds the layout with the name passed and opens it for v.
func (srv *Server) OpenLayout(v menu.Viewer, name string) error {
	l, err := srv.layouts.Layout(name)
	if err != nil {
		return err
	}
	m, err := l.Build(srv.MenuHost(), srv.layoutAction)
	if err != nil {
		return fmt.Errorf("build layout %s: %w", l.Name, err)
	}
	return m.Open(v)
}

// layoutAction closes the menu and runs the command of a layout button that
// was clicked.
func (srv *Server) layoutAction(ctx *menu.ClickContext, command string, close bool) {
	if close {
		if c, ok := srv.display.get().(MenuCloser); ok {
			c.CloseMenu(ctx.Viewer)
		} else {
			srv.bus.Dispatch(&menu.CloseEvent{Viewer: ctx.Viewer, Holder: ctx.Menu})
		}
	}
	if command != "" {
		srv.commands.Execute(srv.sourceOf(ctx.Viewer), command, nil)
	}
}

// Stats returns a snapshot of the runtime counters of the server.
func (srv *Server) Stats() builtin.Stats {
	return builtin.Stats{
		Tick:     srv.sched.Tick(),
		TickRate: srv.conf.TickRate,
		Tasks:    srv.sched.Pending(),
		Handlers: srv.bus.Count(),
		Commands: len(srv.commands.Commands()),
	}
}

// Operators returns the names of the viewers on the operator list.
func (srv *Server) Operators() []string { return srv.conf.Operators.Names() }

// AddOperator adds name to the operator list.
func (srv *Server) AddOperator(name string) (bool, error) { return srv.conf.Operators.Add(name) }

// RemoveOperator removes name from the operator list.
func (srv *Server) RemoveOperator(name string) (bool, error) {
	return srv.conf.Operators.Remove(name)
}

// PluginsEnabled reports if the plugin subsystem is active.
func (srv *Server) PluginsEnabled() bool { return srv.plugins.Enabled() }

// Plugins returns metadata of the loaded plugins.
func (srv *Server) Plugins() []plugin.Info { return srv.plugins.Infos() }

// EnablePlugin loads the plugin file at path.
func (srv *Server) EnablePlugin(path string) (plugin.Info, error) { return srv.plugins.Enable(path) }

// DisablePlugin disables the plugin with the name passed.
func (srv *Server) DisablePlugin(name string) (plugin.Info, error) {
	return srv.plugins.Disable(name)
}

// ReloadPlugin disables and enables the plugin with the name passed.
func (srv *Server) ReloadPlugin(name string) (plugin.Info, error) { return srv.plugins.Reload(name) }

// ViewerLister is implemented by displays that can report the viewers that
// currently have a menu open.
type ViewerLister interface {
	Viewers() []menu.Viewer
}

// queryData describes the server to status query clients.
func (srv *Server) queryData() query.Data {
	infos := srv.plugins.Infos()
	plugins := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Version != "" {
			plugins = append(plugins, info.Name+" v"+info.Version)
			continue
		}
		plugins = append(plugins, info.Name)
	}
	d := query.Data{
		HostName: srv.conf.Name,
		Plugins:  strings.Join(plugins, "; "),
		Layouts:  srv.layouts.Names(),
		Tick:     srv.sched.Tick(),
	}
	if l, ok := srv.display.get().(ViewerLister); ok {
		for _, v := range l.Viewers() {
			d.Viewers = append(d.Viewers, v.Name())
		}
	}
	return d
}
