package plugin

import (
	"github.com/dm-vev/gridkit/server/event"
	"github.com/dm-vev/gridkit/server/menu"
)

// PluginEvents exposes registration helpers for subscribing to core event streams.
// Handlers are owned by the plugin: they are removed when it is disabled, and a
// panic in one of them disables the plugin.
type PluginEvents[S any, C any] struct {
	api *API[S, C]
}

// Bus returns the underlying event bus.
func (pe *PluginEvents[S, C]) Bus() *event.Bus {
	return pe.api.host.Events()
}

// Owner returns the owner name handlers of the plugin are registered under.
func (pe *PluginEvents[S, C]) Owner() string {
	return pe.api.pluginName()
}

// OnClick registers fn for clicks on any inventory, including menus.
// The returned function removes the handler when called.
func (pe *PluginEvents[S, C]) OnClick(fn func(*menu.ClickEvent)) func() {
	return Listen(pe, fn)
}

// OnClose registers fn for inventories being closed.
func (pe *PluginEvents[S, C]) OnClose(fn func(*menu.CloseEvent)) func() {
	return Listen(pe, fn)
}

// OnDrag registers fn for items dragged across inventory slots.
func (pe *PluginEvents[S, C]) OnDrag(fn func(*menu.DragEvent)) func() {
	return Listen(pe, fn)
}

// OnDamage registers fn for entities taking damage.
func (pe *PluginEvents[S, C]) OnDamage(fn func(*event.Damage)) func() {
	return Listen(pe, fn)
}

// OnDeath registers fn for entity deaths.
func (pe *PluginEvents[S, C]) OnDeath(fn func(*event.Death)) func() {
	return Listen(pe, fn)
}

// OnCrystalKill registers fn for players killed by another player through an
// end crystal.
func (pe *PluginEvents[S, C]) OnCrystalKill(fn func(*event.CrystalKill)) func() {
	return Listen(pe, fn)
}

// Clear removes all handlers previously registered by the plugin.
func (pe *PluginEvents[S, C]) Clear() {
	if pe == nil {
		return
	}
	pe.Bus().Clear(pe.Owner())
}

// Listen registers fn for events of type T on behalf of the plugin with
// normal priority.
func Listen[T any, S any, C any](pe *PluginEvents[S, C], fn func(T)) func() {
	if pe == nil || fn == nil {
		return func() {}
	}
	return event.Listen(pe.Bus(), pe.Owner(), fn)
}

// Handle registers a handler built with event.New on behalf of the plugin.
func Handle[T any, S any, C any](pe *PluginEvents[S, C], h *event.Handler[T]) func() {
	if pe == nil || h == nil {
		return func() {}
	}
	return h.Register(pe.Bus(), pe.Owner())
}
