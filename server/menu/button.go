package menu

import (
	"errors"
	"fmt"
)

// ErrInvalidRefresh is returned when a refreshing Button has no positive
// refresh period.
var ErrInvalidRefresh = errors.New("refreshing button needs a positive period")

// ClickFunc is called when a viewer clicks a Button.
type ClickFunc func(ctx *ClickContext)

// Button is an interactive control placed in a slot of a Menu. A Button shows
// either a fixed Item or an Item computed each time the slot is rendered, and
// may be refreshed periodically while a viewer has the menu open.
type Button struct {
	item    *Item
	dynamic func() *Item
	onClick ClickFunc

	refreshing   bool
	refreshAsync bool
	refreshDelay int
	refreshEvery int
}

// NewButton returns a Button showing it.
func NewButton(it *Item) *Button {
	return &Button{item: it}
}

// NewDynamicButton returns a Button whose Item is produced by fn on every
// render. It is typically combined with Refresh.
func NewDynamicButton(fn func() *Item) *Button {
	return &Button{dynamic: fn}
}

// OnClick sets the function called when the button is clicked.
func (b *Button) OnClick(fn ClickFunc) *Button {
	b.onClick = fn
	return b
}

// Refresh marks the button as refreshing: while a viewer has the menu open,
// the slot holding the button is re-rendered every period ticks, starting
// after delay ticks. If async is true, the render may happen off the
// scheduler's tick goroutine.
func (b *Button) Refresh(delay, period int, async bool) *Button {
	b.refreshing = true
	b.refreshDelay = max(delay, 0)
	b.refreshEvery = period
	b.refreshAsync = async
	return b
}

// Item returns the Item the button currently shows.
func (b *Button) Item() *Item {
	if b.dynamic != nil {
		return b.dynamic()
	}
	return b.item
}

// Clickable reports if the button has a click callback.
func (b *Button) Clickable() bool { return b.onClick != nil }

// Refreshing reports if the button is re-rendered periodically.
func (b *Button) Refreshing() bool { return b.refreshing }

// RefreshAsync reports if refreshes may run off the tick goroutine.
func (b *Button) RefreshAsync() bool { return b.refreshAsync }

// RefreshDelay returns the delay in ticks before the first refresh.
func (b *Button) RefreshDelay() int { return b.refreshDelay }

// RefreshPeriod returns the number of ticks between refreshes.
func (b *Button) RefreshPeriod() int { return b.refreshEvery }

// Validate checks the invariants of the button.
func (b *Button) Validate() error {
	if b.refreshing && b.refreshEvery <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidRefresh, b.refreshEvery)
	}
	return nil
}

func (b *Button) click(ctx *ClickContext) {
	if b.onClick != nil {
		b.onClick(ctx)
	}
}

// filler marks *Button as a Filler.
func (*Button) filler() {}

// Filler is a value that may be placed in a slot: either an *Item or a
// *Button. The set is closed; no other types implement Filler.
type Filler interface {
	filler()
}
