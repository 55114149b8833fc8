package menu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// NotFound is returned by slot lookups that did not find a match.
const NotFound = -1

var (
	// ErrInvalidSize is returned by New when the size is not a positive
	// multiple of the row width.
	ErrInvalidSize = errors.New("menu size must be a positive multiple of the row width")
	// ErrSlotOutOfRange is returned when a slot outside of [0, size) is
	// addressed.
	ErrSlotOutOfRange = errors.New("slot out of range")
)

// Cell is the content of a single slot. At most one of Item and Button is set.
type Cell struct {
	Slot   int
	Item   *Item
	Button *Button
}

// Empty reports if nothing is assigned to the cell.
func (c Cell) Empty() bool {
	return c.Item == nil && c.Button == nil
}

// Visual returns the Item the cell renders, or nil if it renders empty.
func (c Cell) Visual() *Item {
	switch {
	case c.Button != nil:
		return c.Button.Item()
	case c.Item != nil:
		return c.Item
	}
	return nil
}

// Filler returns the value assigned to the cell, or nil.
func (c Cell) Filler() Filler {
	switch {
	case c.Button != nil:
		return c.Button
	case c.Item != nil:
		return c.Item
	}
	return nil
}

// Option configures a Menu created through New.
type Option func(m *Menu)

// WithRowWidth sets the number of slots per row. The default is RowWidth.
func WithRowWidth(width int) Option {
	return func(m *Menu) {
		m.width = width
	}
}

// Menu is a fixed-size grid of slots shown to viewers through a Display. Each
// slot holds nothing, an Item or a Button. Menu is safe for concurrent use;
// a refresh running asynchronously may render a visual that is one tick behind
// a concurrent assignment.
type Menu struct {
	id    uuid.UUID
	host  Host
	log   *slog.Logger
	title string
	size  int
	width int

	mu      sync.RWMutex
	cells   []Cell
	onClose func(ctx *CloseContext)
	onDrag  func(ctx *DragContext)
	tasks   map[uuid.UUID][]Task
}

// New creates an empty menu with the title and number of slots passed. Size
// must be a positive multiple of the row width.
func New(host Host, title string, size int, opts ...Option) (*Menu, error) {
	if host.Display == nil {
		return nil, ErrNoDisplay
	}
	m := &Menu{
		id:    uuid.New(),
		host:  host,
		title: title,
		size:  size,
		width: RowWidth,
		tasks: make(map[uuid.UUID][]Task),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.width <= 0 || size <= 0 || size%m.width != 0 {
		return nil, fmt.Errorf("%w: size %d, row width %d", ErrInvalidSize, size, m.width)
	}
	m.log = host.logger().With("menu", title, "id", m.id.String())
	m.cells = make([]Cell, size)
	for i := range m.cells {
		m.cells[i].Slot = i
	}
	return m, nil
}

// NewRows creates an empty menu with rows rows of slots.
func NewRows(host Host, title string, rows int, opts ...Option) (*Menu, error) {
	probe := &Menu{width: RowWidth}
	for _, opt := range opts {
		opt(probe)
	}
	return New(host, title, rows*probe.width, opts...)
}

// ID returns the unique ID of the menu.
func (m *Menu) ID() uuid.UUID { return m.id }

// Title returns the title of the menu.
func (m *Menu) Title() string { return m.title }

// Size returns the number of slots in the menu.
func (m *Menu) Size() int { return m.size }

// RowWidth returns the number of slots in a row.
func (m *Menu) RowWidth() int { return m.width }

// Rows returns the number of rows in the menu.
func (m *Menu) Rows() int { return m.size / m.width }

// Set assigns f to slot, replacing any previous assignment, and renders the
// slot immediately. A nil filler clears the slot.
func (m *Menu) Set(slot int, f Filler) error {
	if err := m.checkSlot(slot); err != nil {
		return err
	}
	var c Cell
	switch f := f.(type) {
	case *Item:
		if f != nil {
			c.Item = f
		}
	case *Button:
		if f != nil {
			if err := f.Validate(); err != nil {
				return fmt.Errorf("set slot %d: %w", slot, err)
			}
			c.Button = f
		}
	}
	c.Slot = slot

	m.mu.Lock()
	m.cells[slot] = c
	m.mu.Unlock()

	return m.render(slot, c.Visual())
}

// SetItem assigns a static item to slot.
func (m *Menu) SetItem(slot int, it *Item) error {
	return m.Set(slot, it)
}

// SetButton assigns a button to slot.
func (m *Menu) SetButton(slot int, b *Button) error {
	return m.Set(slot, b)
}

// Clear removes the assignment of slot and empties it.
func (m *Menu) Clear(slot int) error {
	return m.Set(slot, nil)
}

// Assignment returns the value assigned to slot, or nil if the slot is empty
// or out of range.
func (m *Menu) Assignment(slot int) Filler {
	c, ok := m.cell(slot)
	if !ok {
		return nil
	}
	return c.Filler()
}

// Item returns the static item assigned to slot, or nil.
func (m *Menu) Item(slot int) *Item {
	c, _ := m.cell(slot)
	return c.Item
}

// Button returns the button assigned to slot, or nil.
func (m *Menu) Button(slot int) *Button {
	c, _ := m.cell(slot)
	return c.Button
}

// Visual returns the item slot currently renders, or nil if it renders empty.
func (m *Menu) Visual(slot int) *Item {
	c, _ := m.cell(slot)
	return c.Visual()
}

// SlotOfButton returns the lowest slot holding b, or NotFound. Buttons are
// compared by pointer, so a button placed in several slots always resolves
// to the first of them.
func (m *Menu) SlotOfButton(b *Button) int {
	if b == nil {
		return NotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, c := range m.cells {
		if c.Button == b {
			return i
		}
	}
	return NotFound
}

// SlotOfItem returns the lowest slot holding it as a static item, or
// NotFound. Items are compared by pointer.
func (m *Menu) SlotOfItem(it *Item) int {
	if it == nil {
		return NotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, c := range m.cells {
		if c.Item == it {
			return i
		}
	}
	return NotFound
}

// SlotsOfButton returns every slot holding b in ascending order.
func (m *Menu) SlotsOfButton(b *Button) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var slots []int
	for i, c := range m.cells {
		if b != nil && c.Button == b {
			slots = append(slots, i)
		}
	}
	return slots
}

// Paint assigns f to every slot marked by p. Slots that are not marked keep
// their assignment. Rows and columns outside of the menu are reported in the
// returned Paint instead of failing.
func (m *Menu) Paint(f Filler, p Pattern) (Paint, error) {
	if b, ok := f.(*Button); ok && b != nil {
		if err := b.Validate(); err != nil {
			return Paint{}, err
		}
	}
	res := p.Cells(m.Rows(), m.width)
	var errs []error
	for _, slot := range res.Painted {
		if err := m.Set(slot, f); err != nil {
			errs = append(errs, err)
		}
	}
	if res.Clipped() {
		m.log.Debug("Pattern clipped to menu bounds.", "skippedRows", res.SkippedRows, "skippedColumns", res.SkippedColumns)
	}
	return res, errors.Join(errs...)
}

// Fill assigns f to every slot marked with DefaultMarker in rows. Pattern
// rows past the last row of the menu are ignored.
func (m *Menu) Fill(f Filler, rows ...string) (Paint, error) {
	return m.Paint(f, Rows(rows...))
}

// Border assigns b to every slot marked with DefaultMarker in rows. It uses
// the same row limit as Fill.
func (m *Menu) Border(b *Button, rows ...string) (Paint, error) {
	return m.Paint(b, Rows(rows...))
}

// OnClose sets the function called when a viewer closes the menu.
func (m *Menu) OnClose(fn func(ctx *CloseContext)) *Menu {
	m.mu.Lock()
	m.onClose = fn
	m.mu.Unlock()
	return m
}

// OnDrag sets the function called when a viewer drags an item across slots of
// the menu.
func (m *Menu) OnDrag(fn func(ctx *DragContext)) *Menu {
	m.mu.Lock()
	m.onDrag = fn
	m.mu.Unlock()
	return m
}

// Snapshot returns a copy of all cells of the menu.
func (m *Menu) Snapshot() []Cell {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cells := make([]Cell, len(m.cells))
	copy(cells, m.cells)
	return cells
}

// Open shows the menu to v and starts a refresh task for every refreshing
// button in it. Opening the menu again for the same viewer replaces the
// refresh tasks started by the previous call.
func (m *Menu) Open(v Viewer) error {
	if err := m.host.Display.Render(v, m); err != nil {
		return fmt.Errorf("render menu: %w", err)
	}
	m.cancelTasks(v)

	var buttons []*Button
	seen := make(map[*Button]struct{})
	for _, c := range m.Snapshot() {
		if c.Button == nil || !c.Button.Refreshing() {
			continue
		}
		if _, ok := seen[c.Button]; ok {
			continue
		}
		seen[c.Button] = struct{}{}
		buttons = append(buttons, c.Button)
	}
	if len(buttons) == 0 {
		return nil
	}
	if m.host.Scheduler == nil {
		m.log.Warn("Menu has refreshing buttons but no scheduler.", "viewer", v.Name())
		return nil
	}

	tasks := make([]Task, 0, len(buttons))
	for _, b := range buttons {
		r := &refresher{menu: m, button: b, viewer: v, log: m.log}
		tasks = append(tasks, m.host.Scheduler.Repeat(b.RefreshDelay(), b.RefreshPeriod(), b.RefreshAsync(), r.tick))
	}
	m.mu.Lock()
	m.tasks[v.UUID()] = tasks
	m.mu.Unlock()
	return nil
}

func (m *Menu) cancelTasks(v Viewer) {
	m.mu.Lock()
	tasks := m.tasks[v.UUID()]
	delete(m.tasks, v.UUID())
	m.mu.Unlock()
	for _, t := range tasks {
		t.Cancel()
	}
}

func (m *Menu) checkSlot(slot int) error {
	if slot < 0 || slot >= m.size {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSlotOutOfRange, slot, m.size)
	}
	return nil
}

func (m *Menu) cell(slot int) (Cell, bool) {
	if slot < 0 || slot >= m.size {
		return Cell{Slot: slot}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cells[slot], true
}

func (m *Menu) render(slot int, it *Item) error {
	var err error
	if it.Empty() {
		err = m.host.Display.ClearCell(m, slot)
	} else {
		err = m.host.Display.SetCell(m, slot, it)
	}
	if err != nil {
		return fmt.Errorf("render slot %d: %w", slot, err)
	}
	return nil
}

func (m *Menu) listeners() (func(*CloseContext), func(*DragContext)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.onClose, m.onDrag
}
