// Package layout builds menus from declarative TOML files.
//
// A layout file looks like this:
//
//	title = "<aqua>Shop</aqua>"
//	rows = 3
//
//	[[fill]]
//	pattern = ["X X X X X X X X X", "X _ _ _ _ _ _ _ X", "X X X X X X X X X"]
//	item = { material = "gray_stained_glass_pane", name = " " }
//
//	[[button]]
//	slot = 13
//	command = "/about"
//	close = true
//	item = { material = "clock", name = "Server time {time}" }
//	refresh = 20
package layout

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dm-vev/gridkit/server/menu"
	"github.com/pelletier/go-toml"
)

var (
	// ErrInvalidLayout is wrapped by errors returned when a layout is
	// malformed.
	ErrInvalidLayout = errors.New("invalid menu layout")
)

// Layout is the decoded form of a layout file.
type Layout struct {
	// Name is the name the layout is known by. It is set to the file name
	// without extension when loaded from a file.
	Name     string   `toml:"-"`
	Title    string   `toml:"title"`
	Rows     int      `toml:"rows"`
	RowWidth int      `toml:"row_width"`
	Fills    []Fill   `toml:"fill"`
	Buttons  []Button `toml:"button"`
}

// Fill paints an item over the slots marked by a pattern.
type Fill struct {
	Pattern   []string `toml:"pattern"`
	Marker    string   `toml:"marker"`
	Separator string   `toml:"separator"`
	Item      Item     `toml:"item"`
}

// Button places a clickable button in a single slot.
type Button struct {
	Slot int  `toml:"slot"`
	Item Item `toml:"item"`
	// Command is run on behalf of the viewer when the button is clicked.
	Command string `toml:"command"`
	// Close closes the menu for the viewer before Command is run.
	Close bool `toml:"close"`
	// Refresh is the number of ticks between re-renders of the button. The
	// placeholder {time} in the name and lore is replaced on every render.
	Refresh int `toml:"refresh"`
}

// Item describes a menu.Item.
type Item struct {
	Material string   `toml:"material"`
	Name     string   `toml:"name"`
	Lore     []string `toml:"lore"`
	Count    int      `toml:"count"`
	Glint    bool     `toml:"glint"`
}

// Action is called when a button with a command or the close flag is clicked.
// command is empty if the button only closes the menu.
type Action func(ctx *menu.ClickContext, command string, close bool)

// Load reads and parses the layout file at path.
func Load(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Parse decodes a layout from TOML and validates it.
func Parse(data []byte) (Layout, error) {
	var l Layout
	if err := toml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	if l.RowWidth == 0 {
		l.RowWidth = menu.RowWidth
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks that the layout can be built into a menu.
func (l Layout) Validate() error {
	if l.Rows <= 0 {
		return fmt.Errorf("%w: rows must be positive, got %d", ErrInvalidLayout, l.Rows)
	}
	if l.RowWidth <= 0 {
		return fmt.Errorf("%w: row_width must be positive, got %d", ErrInvalidLayout, l.RowWidth)
	}
	size := l.Rows * l.RowWidth
	for i, f := range l.Fills {
		if len(f.Pattern) == 0 {
			return fmt.Errorf("%w: fill %d has no pattern", ErrInvalidLayout, i)
		}
		if strings.TrimSpace(f.Item.Material) == "" {
			return fmt.Errorf("%w: fill %d has no item material", ErrInvalidLayout, i)
		}
	}
	for i, b := range l.Buttons {
		if b.Slot < 0 || b.Slot >= size {
			return fmt.Errorf("%w: button %d slot %d outside of %d slots", ErrInvalidLayout, i, b.Slot, size)
		}
		if strings.TrimSpace(b.Item.Material) == "" {
			return fmt.Errorf("%w: button %d has no item material", ErrInvalidLayout, i)
		}
		if b.Refresh < 0 {
			return fmt.Errorf("%w: button %d has negative refresh", ErrInvalidLayout, i)
		}
	}
	return nil
}

// Build creates a menu from the layout. Fills are painted in order, after
// which buttons are placed, so buttons win over fills in the same slot.
// Clicks on buttons with a command call action.
func (l Layout) Build(host menu.Host, action Action) (*menu.Menu, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	m, err := menu.NewRows(host, l.Title, l.Rows, menu.WithRowWidth(l.RowWidth))
	if err != nil {
		return nil, err
	}
	for _, f := range l.Fills {
		p := menu.Rows(f.Pattern...)
		if f.Marker != "" {
			p = p.WithMarker(f.Marker)
		}
		if f.Separator != "" {
			p = p.WithSeparator(f.Separator)
		}
		if _, err := m.Paint(f.Item.build(time.Time{}), p); err != nil {
			return nil, fmt.Errorf("paint layout fill: %w", err)
		}
	}
	for _, b := range l.Buttons {
		if err := m.SetButton(b.Slot, b.build(action)); err != nil {
			return nil, fmt.Errorf("place layout button: %w", err)
		}
	}
	return m, nil
}

func (b Button) build(action Action) *menu.Button {
	var btn *menu.Button
	if b.Refresh > 0 {
		btn = menu.NewDynamicButton(func() *menu.Item {
			return b.Item.build(time.Now())
		}).Refresh(0, b.Refresh, false)
	} else {
		btn = menu.NewButton(b.Item.build(time.Now()))
	}
	if (b.Command == "" && !b.Close) || action == nil {
		return btn
	}
	command := b.Command
	if command != "" && !strings.HasPrefix(command, "/") {
		command = "/" + command
	}
	return btn.OnClick(func(ctx *menu.ClickContext) {
		action(ctx, command, b.Close)
	})
}

func (it Item) build(now time.Time) *menu.Item {
	clock := now.Format(time.TimeOnly)
	expand := func(s string) string {
		return strings.ReplaceAll(s, "{time}", clock)
	}
	out := menu.NewItem(it.Material).Count(it.Count).Glint(it.Glint)
	if it.Name != "" {
		out.Name(expand(it.Name))
	}
	if len(it.Lore) > 0 {
		lore := make([]string, len(it.Lore))
		for i, line := range it.Lore {
			lore[i] = expand(line)
		}
		out.Lore(lore...)
	}
	return out
}
