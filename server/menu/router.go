package menu

import (
	"log/slog"

	"github.com/dm-vev/gridkit/server/event"
)

// ClickType is the kind of click a viewer performed on a slot.
type ClickType int

const (
	ClickLeft ClickType = iota
	ClickRight
	ClickShiftLeft
	ClickShiftRight
	ClickMiddle
	ClickDrop
)

// String returns a lower case name of the click type.
func (t ClickType) String() string {
	switch t {
	case ClickLeft:
		return "left"
	case ClickRight:
		return "right"
	case ClickShiftLeft:
		return "shift_left"
	case ClickShiftRight:
		return "shift_right"
	case ClickMiddle:
		return "middle"
	case ClickDrop:
		return "drop"
	}
	return "unknown"
}

// Shift reports if the click was performed while holding shift.
func (t ClickType) Shift() bool {
	return t == ClickShiftLeft || t == ClickShiftRight
}

// ClickEvent is published by a Display when a viewer clicks a slot of the
// inventory it has open. Holder is whatever owns that inventory, which is a
// *Menu for menus created by this package.
type ClickEvent struct {
	event.Cancellation
	Viewer  Viewer
	Holder  any
	Slot    int
	Current *Item
	Type    ClickType
}

// CloseEvent is published by a Display when a viewer closes an inventory.
type CloseEvent struct {
	Viewer Viewer
	Holder any
}

// DragEvent is published by a Display when a viewer drags an item across one
// or more slots of an inventory.
type DragEvent struct {
	event.Cancellation
	Viewer Viewer
	Holder any
	Slots  []int
	Item   *Item
}

// ClickContext is passed to the click function of a Button.
type ClickContext struct {
	Viewer Viewer
	Menu   *Menu
	Slot   int
	Button *Button
	Type   ClickType

	ev *ClickEvent
}

// Allow lets the click through so that the host applies it normally, for
// example moving the item out of the slot. Menu clicks are cancelled unless
// allowed.
func (ctx *ClickContext) Allow() {
	ctx.ev.SetCancelled(false)
}

// Open shows another menu to the viewer that clicked.
func (ctx *ClickContext) Open(m *Menu) error {
	return m.Open(ctx.Viewer)
}

// CloseContext is passed to the close listener of a Menu.
type CloseContext struct {
	Viewer Viewer
	Menu   *Menu
}

// DragContext is passed to the drag listener of a Menu.
type DragContext struct {
	Viewer Viewer
	Menu   *Menu
	Slots  []int
	Item   *Item

	ev *DragEvent
}

// Allow lets the drag through. Drags over menu slots are cancelled unless
// allowed.
func (ctx *DragContext) Allow() {
	ctx.ev.SetCancelled(false)
}

// Router forwards interaction events published by displays to the menus and
// buttons they concern. It never changes the slots of a menu itself.
type Router struct {
	display Display
	log     *slog.Logger
}

// NewRouter returns a Router. If display is not nil, clicks are only routed to
// a menu that display reports as the viewer's current menu.
func NewRouter(display Display, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{display: display, log: log.With("subsystem", "menu")}
}

// Attach registers the router's handlers on bus on behalf of owner. The
// returned function detaches them again.
func (r *Router) Attach(bus *event.Bus, owner string) func() {
	var detach []func()
	register := func(h interface {
		Register(*event.Bus, string) func()
	}, err error) {
		if err != nil {
			r.log.Error("Could not register menu handler.", "err", err)
			return
		}
		detach = append(detach, h.Register(bus, owner))
	}
	register(event.New[*ClickEvent]().Action(r.HandleClick).Priority(event.PriorityLow).Build())
	register(event.New[*DragEvent]().Action(r.HandleDrag).Priority(event.PriorityLow).Build())
	register(event.New[*CloseEvent]().Action(r.HandleClose).Build())

	return func() {
		for _, fn := range detach {
			fn()
		}
	}
}

// HandleClick routes a click to the button in the clicked slot.
func (r *Router) HandleClick(ev *ClickEvent) {
	if ev.Current.Empty() {
		return
	}
	m, ok := ev.Holder.(*Menu)
	if !ok || m == nil {
		return
	}
	if !r.viewing(ev.Viewer, m) {
		return
	}
	ev.Cancel()

	b := m.Button(ev.Slot)
	if b == nil || !b.Clickable() {
		return
	}
	b.click(&ClickContext{
		Viewer: ev.Viewer,
		Menu:   m,
		Slot:   ev.Slot,
		Button: b,
		Type:   ev.Type,
		ev:     ev,
	})
}

// HandleDrag cancels drags over menu slots and calls the drag listener of the
// menu, if any.
func (r *Router) HandleDrag(ev *DragEvent) {
	m, ok := ev.Holder.(*Menu)
	if !ok || m == nil {
		return
	}
	inside := false
	for _, slot := range ev.Slots {
		if slot >= 0 && slot < m.Size() {
			inside = true
			break
		}
	}
	if !inside {
		return
	}
	ev.Cancel()
	if _, onDrag := m.listeners(); onDrag != nil {
		onDrag(&DragContext{Viewer: ev.Viewer, Menu: m, Slots: ev.Slots, Item: ev.Item, ev: ev})
	}
}

// HandleClose stops the refresh tasks the menu runs for the viewer and calls
// the close listener of the menu, if any.
func (r *Router) HandleClose(ev *CloseEvent) {
	m, ok := ev.Holder.(*Menu)
	if !ok || m == nil || ev.Viewer == nil {
		return
	}
	m.cancelTasks(ev.Viewer)
	if onClose, _ := m.listeners(); onClose != nil {
		onClose(&CloseContext{Viewer: ev.Viewer, Menu: m})
	}
}

func (r *Router) viewing(v Viewer, m *Menu) bool {
	if r.display == nil || v == nil {
		return true
	}
	cur, ok := r.display.Current(v)
	return ok && cur == m
}
