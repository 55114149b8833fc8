package plugin

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/menu"
	"github.com/dm-vev/gridkit/server/scheduler"
)

// API exposes functionality of the server core to dynamically loaded plugins.
type API[S any, C any] struct {
	manager *Manager[S, C]
	host    Host[S, C]
	name    atomic.Value // stores string
	ctx     atomic.Pointer[ctxBox]
	dataDir atomic.Value // stores string

	mu       sync.Mutex
	commands []string
	tasks    []*scheduler.Task
}

// ctxBox wraps a context so that contexts of different concrete types can be
// stored in the same atomic pointer.
type ctxBox struct{ ctx context.Context }

func newAPI[S any, C any](manager *Manager[S, C], host Host[S, C], name string) *API[S, C] {
	api := &API[S, C]{manager: manager, host: host}
	api.name.Store(name)
	api.ctx.Store(&ctxBox{ctx: context.Background()})
	return api
}

func (api *API[S, C]) setName(name string) {
	if name == "" {
		return
	}
	api.name.Store(name)
}

func (api *API[S, C]) pluginName() string {
	if v := api.name.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "plugin"
}

func (api *API[S, C]) setContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	api.ctx.Store(&ctxBox{ctx: ctx})
}

// Context returns a cancellable context that is invalidated when the plugin is disabled.
func (api *API[S, C]) Context() context.Context {
	if box := api.ctx.Load(); box != nil {
		return box.ctx
	}
	return context.Background()
}

func (api *API[S, C]) setDataDirectory(dir string) {
	if dir == "" {
		api.dataDir.Store("")
		return
	}
	api.dataDir.Store(filepath.Clean(dir))
}

// DataDirectory returns the absolute path to the plugin's data directory.
func (api *API[S, C]) DataDirectory() string {
	if v := api.dataDir.Load(); v != nil {
		if dir, ok := v.(string); ok && dir != "" {
			return dir
		}
	}
	return api.manager.pluginDataDirectory(api.pluginName())
}

func (api *API[S, C]) resolveDataPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("data path is empty")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("data path must be relative")
	}
	base := api.DataDirectory()
	cleaned := filepath.Clean(name)
	target := filepath.Join(base, cleaned)
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("data path escapes plugin directory")
	}
	return target, nil
}

// EnsureDataSubdir ensures a subdirectory inside the plugin data directory exists and returns its absolute path.
func (api *API[S, C]) EnsureDataSubdir(name string) (string, error) {
	if name == "" {
		dir := api.DataDirectory()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return dir, nil
	}
	path, err := api.resolveDataPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// OpenDataFile opens or creates a file within the plugin data directory using the provided flags and permissions.
func (api *API[S, C]) OpenDataFile(name string, flag int, perm fs.FileMode) (*os.File, error) {
	path, err := api.resolveDataPath(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if perm == 0 {
		perm = 0o644
	}
	return os.OpenFile(path, flag, perm)
}

// Go launches fn on a new goroutine tied to the plugin's lifecycle context. Panics cause the plugin to be disabled.
func (api *API[S, C]) Go(fn func(context.Context)) {
	if fn == nil {
		return
	}
	ctx := api.Context()
	name := api.pluginName()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				api.manager.handlePluginPanic(name, r)
			}
		}()
		fn(ctx)
	}()
}

// Server returns the underlying server instance.
func (api *API[S, C]) Server() S {
	return api.host.Instance()
}

// Config returns a snapshot of the server configuration at the time of the call.
func (api *API[S, C]) Config() C {
	return api.host.Config()
}

// StartTime reports when the server started running.
func (api *API[S, C]) StartTime() time.Time {
	return api.host.StartTime()
}

// Logger returns a logger scoped to the plugin's name for structured logging.
func (api *API[S, C]) Logger() *slog.Logger {
	logger := api.host.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("plugin", api.pluginName())
}

// NewMenu creates a menu with rows rows of slots. Errors of the menu, such as
// failed refreshes, are logged with the plugin's logger.
func (api *API[S, C]) NewMenu(title string, rows int, opts ...menu.Option) (*menu.Menu, error) {
	host := api.host.MenuHost()
	host.Log = api.Logger()
	return menu.NewRows(host, title, rows, opts...)
}

// Open shows m to the viewer passed.
func (api *API[S, C]) Open(v menu.Viewer, m *menu.Menu) error {
	if v == nil || m == nil {
		return fmt.Errorf("open menu: viewer and menu must not be nil")
	}
	return m.Open(v)
}

// Schedule runs fn on the server scheduler every period ticks after delay
// ticks. A period of 0 runs fn once. Panics in fn disable the plugin and the
// task is cancelled when the plugin is disabled.
func (api *API[S, C]) Schedule(delay, period int, async bool, fn func(t *scheduler.Task)) *scheduler.Task {
	name := api.pluginName()
	task := api.host.Scheduler().Repeat(delay, period, async, func(t *scheduler.Task) {
		defer func() {
			if r := recover(); r != nil {
				t.Cancel()
				api.manager.handlePluginPanic(name, r)
			}
		}()
		fn(t)
	})

	api.mu.Lock()
	api.tasks = slices.DeleteFunc(api.tasks, (*scheduler.Task).Cancelled)
	api.tasks = append(api.tasks, task)
	api.mu.Unlock()
	return task
}

// RegisterCommand registers a command with the server's command registry. The
// command is unregistered when the plugin is disabled.
func (api *API[S, C]) RegisterCommand(command cmd.Command) error {
	if err := api.host.Commands().Register(command); err != nil {
		return err
	}
	api.mu.Lock()
	api.commands = append(api.commands, command.Name())
	api.mu.Unlock()
	return nil
}

// UnregisterCommand removes a command previously registered by the plugin.
func (api *API[S, C]) UnregisterCommand(name string) bool {
	name = strings.ToLower(name)
	api.mu.Lock()
	idx := slices.Index(api.commands, name)
	if idx >= 0 {
		api.commands = slices.Delete(api.commands, idx, idx+1)
	}
	api.mu.Unlock()
	if idx < 0 {
		return false
	}
	return api.host.Commands().Unregister(name)
}

// Commands returns all registered commands indexed by alias.
func (api *API[S, C]) Commands() map[string]cmd.Command {
	return api.host.Commands().Commands()
}

// ExecuteCommand executes a command line on behalf of the provided source. The command line should include the leading slash.
func (api *API[S, C]) ExecuteCommand(source cmd.Source, commandLine string) {
	api.host.ExecuteCommand(source, commandLine)
}

// Plugins returns metadata for all currently loaded plugins.
func (api *API[S, C]) Plugins() []Info {
	return api.manager.Infos()
}

// Plugin returns a loaded plugin by name if present.
func (api *API[S, C]) Plugin(name string) (Plugin, bool) {
	return api.manager.Plugin(name)
}

// EnablePlugin loads and enables a plugin by file path.
func (api *API[S, C]) EnablePlugin(path string) (Info, error) {
	return api.manager.Enable(path)
}

// DisablePlugin disables a plugin by its name.
func (api *API[S, C]) DisablePlugin(name string) (Info, error) {
	return api.manager.Disable(name)
}

// ReloadPlugin reloads a plugin by disabling and re-enabling it.
func (api *API[S, C]) ReloadPlugin(name string) (Info, error) {
	return api.manager.Reload(name)
}

// CloseServer requests a graceful server shutdown.
func (api *API[S, C]) CloseServer() error {
	return api.host.Close()
}

// PluginsEnabled reports whether the plugin subsystem is currently active.
func (api *API[S, C]) PluginsEnabled() bool {
	return api.host.PluginsEnabled()
}

// PluginDirectory returns the directory scanned for plugin binaries.
func (api *API[S, C]) PluginDirectory() string {
	return api.manager.Directory()
}

// PluginDataRoot returns the root directory used to persist plugin data.
func (api *API[S, C]) PluginDataRoot() string {
	return api.manager.DataRoot()
}

// ResolvePluginPath resolves the provided path against the configured plugin directory.
func (api *API[S, C]) ResolvePluginPath(path string) string {
	return api.manager.ResolvePath(path)
}

// DisableAllPlugins disables every currently loaded plugin and returns metadata for each.
func (api *API[S, C]) DisableAllPlugins() ([]Info, error) {
	return api.manager.DisableAll()
}

// Events returns helpers for subscribing to menu and combat events.
func (api *API[S, C]) Events() *PluginEvents[S, C] {
	return &PluginEvents[S, C]{api: api}
}

// release removes every command and task the plugin registered.
func (api *API[S, C]) release() {
	api.mu.Lock()
	commands, tasks := api.commands, api.tasks
	api.commands, api.tasks = nil, nil
	api.mu.Unlock()

	for _, name := range commands {
		api.host.Commands().Unregister(name)
	}
	for _, t := range tasks {
		t.Cancel()
	}
}
