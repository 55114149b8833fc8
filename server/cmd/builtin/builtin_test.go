package builtin

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dm-vev/gridkit/server/cmd"
	"github.com/dm-vev/gridkit/server/menu"
	"github.com/dm-vev/gridkit/server/plugin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type fakeServer struct {
	closed   int
	enabled  bool
	plugins  []plugin.Info
	layouts  []string
	opened   []string
	reloaded int
	ops      []string
}

func (s *fakeServer) Close() error           { s.closed++; return nil }
func (s *fakeServer) StartTime() time.Time   { return time.Now().Add(-time.Minute) }
func (s *fakeServer) Stats() Stats           { return Stats{Tick: 1200, TickRate: 20} }
func (s *fakeServer) PluginsEnabled() bool   { return s.enabled }
func (s *fakeServer) Plugins() []plugin.Info { return s.plugins }
func (s *fakeServer) Layouts() []string      { return s.layouts }
func (s *fakeServer) ReloadLayouts() error   { s.reloaded++; return nil }

func (s *fakeServer) EnablePlugin(path string) (plugin.Info, error) {
	return plugin.Info{Name: "demo", Version: "1.0.0", Path: path}, nil
}

func (s *fakeServer) DisablePlugin(name string) (plugin.Info, error) {
	for _, info := range s.plugins {
		if strings.EqualFold(info.Name, name) {
			return info, nil
		}
	}
	return plugin.Info{}, plugin.ErrNotFound
}

func (s *fakeServer) ReloadPlugin(name string) (plugin.Info, error) {
	return s.DisablePlugin(name)
}

func (s *fakeServer) OpenLayout(v menu.Viewer, name string) error {
	if !slices.Contains(s.layouts, name) {
		return errors.New("menu layout not found")
	}
	s.opened = append(s.opened, v.Name()+":"+name)
	return nil
}

func (s *fakeServer) Operators() []string { return s.ops }

func (s *fakeServer) AddOperator(name string) (bool, error) {
	if slices.Contains(s.ops, name) {
		return false, nil
	}
	s.ops = append(s.ops, name)
	return true, nil
}

func (s *fakeServer) RemoveOperator(name string) (bool, error) {
	i := slices.Index(s.ops, name)
	if i < 0 {
		return false, nil
	}
	s.ops = slices.Delete(s.ops, i, i+1)
	return true, nil
}

type console struct{ out []*cmd.Output }

func (c *console) Name() string                    { return "Console" }
func (c *console) Position() mgl64.Vec3            { return mgl64.Vec3{} }
func (c *console) SendCommandOutput(o *cmd.Output) { c.out = append(c.out, o) }

func (c *console) last() *cmd.Output { return c.out[len(c.out)-1] }

type player struct {
	console
	id    uuid.UUID
	perms map[string]bool
}

func (p *player) Name() string                   { return "Steve" }
func (p *player) UUID() uuid.UUID                { return p.id }
func (p *player) HasPermission(perm string) bool { return p.perms[perm] }

func setup(t *testing.T, srv *fakeServer) *cmd.Registry {
	t.Helper()
	reg := cmd.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := Register(reg, srv); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return reg
}

func TestHelp(t *testing.T) {
	reg := setup(t, &fakeServer{})
	c := &console{}
	reg.Execute(c, "/help", nil)
	msgs := c.last().Messages()
	if len(msgs) != 9 || !strings.HasPrefix(msgs[0], "Available commands (8)") {
		t.Fatalf("/help = %q", msgs)
	}

	p := &player{id: uuid.New()}
	reg.Execute(p, "/help", nil)
	for _, line := range p.last().Messages() {
		if strings.HasPrefix(line, "/stop") || strings.HasPrefix(line, "/plugin") {
			t.Fatalf("/help shows %q to a player without permission", line)
		}
	}

	reg.Execute(c, "/help menus", nil)
	if msgs := c.last().Messages(); len(msgs) < 2 || msgs[1] != "/menu list" {
		t.Fatalf("/help menus = %q", msgs)
	}
	reg.Execute(p, "/help stop", nil)
	if p.last().ErrorCount() != 1 {
		t.Fatalf("/help stop revealed a command the player cannot use")
	}
}

func TestStop(t *testing.T) {
	srv := &fakeServer{}
	reg := setup(t, srv)

	reg.Execute(&player{id: uuid.New()}, "/stop", nil)
	if srv.closed != 0 {
		t.Fatalf("player without permission stopped the server")
	}
	reg.Execute(&console{}, "/stop", nil)
	if srv.closed != 1 {
		t.Fatalf("Close() called %d times, want 1", srv.closed)
	}
}

func TestPluginCommand(t *testing.T) {
	srv := &fakeServer{enabled: true, plugins: []plugin.Info{
		{Name: "zeta", Path: "plugins/zeta.so"},
		{Name: "Alpha", Version: "1.2.0", Path: "plugins/alpha.so"},
	}}
	reg := setup(t, srv)
	c := &console{}

	reg.Execute(c, "/pl", nil)
	want := []string{"Alpha v1.2.0 (plugins/alpha.so)", "zeta (plugins/zeta.so)"}
	if got := c.last().Messages(); !slices.Equal(got, want) {
		t.Fatalf("/pl = %q, want %q", got, want)
	}

	reg.Execute(c, "/plugin disable ALPHA", nil)
	if got := c.last().Messages(); len(got) != 1 || got[0] != "Disabled Alpha." {
		t.Fatalf("/plugin disable = %q", got)
	}
	reg.Execute(c, "/plugin reload missing", nil)
	if errs := c.last().Errors(); len(errs) != 1 || !errors.Is(errs[0], plugin.ErrNotFound) {
		t.Fatalf("/plugin reload missing = %v, want ErrNotFound", errs)
	}
	reg.Execute(c, "/plugin enable", nil)
	if c.last().ErrorCount() != 1 {
		t.Fatalf("/plugin enable without file did not fail")
	}

	srv.enabled = false
	reg.Execute(c, "/plugin enable demo.so", nil)
	if errs := c.last().Errors(); len(errs) != 1 || errs[0].Error() != "Plugin subsystem disabled." {
		t.Fatalf("/plugin enable with plugins disabled = %v", errs)
	}

	if got := reg.Complete(c, "/plugin disable a"); !slices.Equal(got, []string{"Alpha"}) {
		t.Fatalf("Complete() = %v, want [Alpha]", got)
	}
}

func TestMenuCommand(t *testing.T) {
	srv := &fakeServer{layouts: []string{"server", "shop"}}
	reg := setup(t, srv)

	c := &console{}
	reg.Execute(c, "/menu", nil)
	if got := c.last().Messages(); len(got) != 1 || got[0] != "Menu layouts (2): server, shop" {
		t.Fatalf("/menu = %q", got)
	}
	reg.Execute(c, "/menu open shop", nil)
	if errs := c.last().Errors(); len(errs) != 1 || errs[0].Error() != cmd.MessagePlayerOnly {
		t.Fatalf("console /menu open = %v, want player only error", errs)
	}

	p := &player{id: uuid.New()}
	reg.Execute(p, "/gui open shop", nil)
	if !slices.Equal(srv.opened, []string{"Steve:shop"}) {
		t.Fatalf("opened = %v, want [Steve:shop]", srv.opened)
	}
	reg.Execute(p, "/menu reload", nil)
	if srv.reloaded != 0 {
		t.Fatalf("player without permission reloaded layouts")
	}
	p.perms = map[string]bool{"gridkit.command.menu.reload": true}
	reg.Execute(p, "/menu reload", nil)
	if srv.reloaded != 1 {
		t.Fatalf("layouts reloaded %d times, want 1", srv.reloaded)
	}

	if got := reg.Complete(p, "/menu open s"); !slices.Equal(got, []string{"server", "shop"}) {
		t.Fatalf("Complete() = %v", got)
	}
}

func TestOpCommand(t *testing.T) {
	srv := &fakeServer{}
	reg := setup(t, srv)
	c := &console{}

	reg.Execute(c, "/op add Steve", nil)
	if got := c.last().Messages(); len(got) != 1 || got[0] != "Added Steve to the operators." {
		t.Fatalf("/op add = %q", got)
	}
	reg.Execute(c, "/op add Steve", nil)
	if got := c.last().Messages(); len(got) != 1 || got[0] != "Steve is already an operator." {
		t.Fatalf("second /op add = %q", got)
	}
	reg.Execute(c, "/ops", nil)
	if got := c.last().Messages(); !slices.Equal(got, []string{"Operators: 1 viewer(s).", "Steve"}) {
		t.Fatalf("/ops = %q", got)
	}

	p := &player{id: uuid.New()}
	reg.Execute(p, "/op remove Steve", nil)
	if len(srv.ops) != 1 {
		t.Fatalf("player without permission removed an operator")
	}
	reg.Execute(c, "/op remove Steve", nil)
	if len(srv.ops) != 0 {
		t.Fatalf("ops = %v, want none", srv.ops)
	}
	reg.Execute(c, "/op add", nil)
	if c.last().ErrorCount() != 1 {
		t.Fatalf("/op add without name did not fail")
	}
}
