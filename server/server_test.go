package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/event"
	"github.com/dm-vev/gridkit/server/menu"
	"github.com/dm-vev/gridkit/server/menu/layout"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type testViewer struct{ id uuid.UUID }

func (v testViewer) UUID() uuid.UUID { return v.id }
func (v testViewer) Name() string    { return "Steve" }

type testDisplay struct {
	bus     *event.Bus
	current map[uuid.UUID]*menu.Menu
	closed  int
}

func (d *testDisplay) Render(v menu.Viewer, m *menu.Menu) error {
	d.current[v.UUID()] = m
	return nil
}

func (d *testDisplay) SetCell(*menu.Menu, int, *menu.Item) error { return nil }
func (d *testDisplay) ClearCell(*menu.Menu, int) error           { return nil }

func (d *testDisplay) Current(v menu.Viewer) (*menu.Menu, bool) {
	m, ok := d.current[v.UUID()]
	return m, ok
}

func (d *testDisplay) CloseMenu(v menu.Viewer) {
	m, ok := d.current[v.UUID()]
	if !ok {
		return
	}
	delete(d.current, v.UUID())
	d.closed++
	d.bus.Dispatch(&menu.CloseEvent{Viewer: v, Holder: m})
}

func (d *testDisplay) Viewers() []menu.Viewer {
	viewers := make([]menu.Viewer, 0, len(d.current))
	for id := range d.current {
		viewers = append(viewers, testViewer{id: id})
	}
	return viewers
}

type testSource struct{ out []*cmd.Output }

func (s *testSource) Name() string                    { return "Console" }
func (s *testSource) Position() mgl64.Vec3            { return mgl64.Vec3{} }
func (s *testSource) SendCommandOutput(o *cmd.Output) { s.out = append(s.out, o) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) (*Server, *testDisplay) {
	t.Helper()
	dir := t.TempDir()
	ops, err := LoadOperators(filepath.Join(dir, "operators.toml"))
	if err != nil {
		t.Fatalf("LoadOperators() error = %v", err)
	}
	srv := Config{Log: testLogger(), MenuFolder: filepath.Join(dir, "menus"), Operators: ops}.New()
	d := &testDisplay{bus: srv.Events(), current: map[uuid.UUID]*menu.Menu{}}
	srv.UseDisplay(d)
	return srv, d
}

func TestConfigDefaults(t *testing.T) {
	srv := Config{Log: testLogger(), MenuFolder: filepath.Join(t.TempDir(), "menus")}.New()
	if srv.Name() != "Gridkit Server" || srv.conf.TickRate != 20 || srv.conf.AsyncWorkers != 4 {
		t.Fatalf("defaults not applied: %+v", srv.conf)
	}
	if !srv.StartTime().IsZero() {
		t.Fatalf("StartTime() = %v before Run, want zero", srv.StartTime())
	}
	if names := srv.Layouts(); !slices.Equal(names, []string{"server"}) {
		t.Fatalf("Layouts() = %v, want example layout", names)
	}
	if srv.PluginsEnabled() {
		t.Fatalf("plugins enabled without configuration")
	}
	if _, err := srv.AddOperator("Steve"); !errors.Is(err, ErrOperatorsUnavailable) {
		t.Fatalf("AddOperator() error = %v, want ErrOperatorsUnavailable", err)
	}
}

func TestOpenLayout(t *testing.T) {
	srv, d := newTestServer(t)
	v := testViewer{id: uuid.New()}

	if err := srv.OpenLayout(v, "missing"); !errors.Is(err, layout.ErrNotFound) {
		t.Fatalf("OpenLayout(missing) error = %v, want ErrNotFound", err)
	}
	if err := srv.OpenLayout(v, "Server"); err != nil {
		t.Fatalf("OpenLayout() error = %v", err)
	}
	m, ok := d.Current(v)
	if !ok || m.Title() != layout.Example.Title {
		t.Fatalf("layout not rendered to viewer")
	}
	if n := srv.Scheduler().Pending(); n != 1 {
		t.Fatalf("Pending() = %d, want the clock refresh task", n)
	}
	if got := srv.queryData().Viewers; !slices.Equal(got, []string{"Steve"}) {
		t.Fatalf("query viewers = %v, want [Steve]", got)
	}

	srv.Events().Dispatch(&menu.ClickEvent{Viewer: v, Holder: m, Slot: 15, Current: m.Visual(15), Type: menu.ClickLeft})
	if d.closed != 1 {
		t.Fatalf("close button closed the menu %d times, want 1", d.closed)
	}
	if n := srv.Scheduler().Pending(); n != 0 {
		t.Fatalf("Pending() = %d after close, want 0", n)
	}
}

func TestOpenLayoutWithoutDisplay(t *testing.T) {
	srv := Config{Log: testLogger(), MenuFolder: filepath.Join(t.TempDir(), "menus")}.New()
	if err := srv.OpenLayout(testViewer{id: uuid.New()}, "server"); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("OpenLayout() error = %v, want ErrNoDisplay", err)
	}
}

func TestLayoutCommandRunsAsViewer(t *testing.T) {
	srv, _ := newTestServer(t)
	var ran []string
	err := srv.Commands().Register(cmd.New("shutdown").
		Permission("gridkit.command.shutdown").
		Run(func(src cmd.Source, _ []string, _ *cmd.Output) { ran = append(ran, src.Name()) }).
		MustBuild())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	v := testViewer{id: uuid.New()}
	m, err := menu.NewRows(srv.MenuHost(), "test", 1)
	if err != nil {
		t.Fatalf("NewRows() error = %v", err)
	}
	ctx := &menu.ClickContext{Viewer: v, Menu: m}

	srv.layoutAction(ctx, "/shutdown", false)
	if len(ran) != 0 {
		t.Fatalf("viewer without operator status ran a privileged command")
	}
	if _, err := srv.AddOperator("steve"); err != nil {
		t.Fatalf("AddOperator() error = %v", err)
	}
	srv.layoutAction(ctx, "/shutdown", false)
	if !slices.Equal(ran, []string{"Steve"}) {
		t.Fatalf("ran = %v, want [Steve]", ran)
	}
}

func TestRunAndStop(t *testing.T) {
	srv, _ := newTestServer(t)
	errc := make(chan error, 1)
	go func() { errc <- srv.Run(context.Background()) }()

	src := &testSource{}
	select {
	case <-srv.ExecuteCommand(src, "/stop"):
	case <-time.After(5 * time.Second):
		t.Fatalf("command did not run within 5s")
	}
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run() did not return after /stop")
	}
	if srv.StartTime().IsZero() {
		t.Fatalf("StartTime() is zero after Run")
	}
	if err := srv.Run(context.Background()); err == nil {
		t.Fatalf("second Run() succeeded")
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Scheduler().Step(context.Background())
	s := srv.Stats()
	if s.Tick != 1 || s.TickRate != 20 || s.Handlers == 0 || s.Commands == 0 {
		t.Fatalf("Stats() = %+v", s)
	}
}

func TestLoadUserConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")
	uc, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig() error = %v", err)
	}
	if uc.Server.Name != DefaultConfig().Server.Name {
		t.Fatalf("Server.Name = %q, want default", uc.Server.Name)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	data := "[Server]\nName = \"Lobby\"\n\n[Log]\nLevel = \"debug\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	uc, err = LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig() error = %v", err)
	}
	if uc.Server.Name != "Lobby" || uc.Level() != slog.LevelDebug {
		t.Fatalf("loaded name %q level %v", uc.Server.Name, uc.Level())
	}
	if uc.Menus.Folder != "menus" || uc.Scheduler.TickRate != 20 {
		t.Fatalf("defaults lost for keys missing from the file: %+v", uc)
	}

	if err := os.WriteFile(path, []byte("[Server\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadUserConfig(path); err == nil || !strings.Contains(err.Error(), "decode config") {
		t.Fatalf("LoadUserConfig(malformed) error = %v", err)
	}
}

func TestUserConfigConfig(t *testing.T) {
	uc := DefaultConfig()
	uc.Menus.OperatorsFile = filepath.Join(t.TempDir(), "operators.toml")
	uc.Query.Address = ":0"
	conf, err := uc.Config(testLogger())
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if conf.QueryAddress != "" {
		t.Fatalf("QueryAddress = %q with query disabled", conf.QueryAddress)
	}
	if !conf.Operators.Contains("console") {
		t.Fatalf("new operator list does not contain the console")
	}
	if !conf.Plugins.Enabled || conf.Plugins.Directory != "plugins" {
		t.Fatalf("plugin config = %+v", conf.Plugins)
	}
}

func TestOperatorsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operators.toml")
	ops, err := LoadOperators(path, "Console")
	if err != nil {
		t.Fatalf("LoadOperators() error = %v", err)
	}
	if added, err := ops.Add("steve"); !added || err != nil {
		t.Fatalf("Add() = %v, %v", added, err)
	}
	if added, _ := ops.Add("STEVE"); added {
		t.Fatalf("Add() added a name differing only in case")
	}
	if _, err := ops.Add("  "); !errors.Is(err, ErrInvalidOperatorName) {
		t.Fatalf("Add(blank) error = %v, want ErrInvalidOperatorName", err)
	}

	reloaded, err := LoadOperators(path)
	if err != nil {
		t.Fatalf("LoadOperators() error = %v", err)
	}
	if names := reloaded.Names(); !slices.Equal(names, []string{"Console", "steve"}) {
		t.Fatalf("Names() = %v, want [Console steve]", names)
	}
	if removed, _ := reloaded.Remove("Steve"); !removed {
		t.Fatalf("Remove() did not remove steve")
	}
	if removed, _ := reloaded.Remove("Steve"); removed {
		t.Fatalf("Remove() removed steve twice")
	}
}
