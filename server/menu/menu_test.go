package menu

import (
	"errors"
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/text"
)

func TestNewValidatesSize(t *testing.T) {
	host := Host{Display: newDisplay(), Log: testLogger()}
	tests := map[string]struct {
		size int
		opts []Option
		ok   bool
	}{
		"one row":         {size: 9, ok: true},
		"six rows":        {size: 54, ok: true},
		"zero":            {size: 0},
		"negative":        {size: -9},
		"partial row":     {size: 10},
		"custom width":    {size: 10, opts: []Option{WithRowWidth(5)}, ok: true},
		"zero width":      {size: 9, opts: []Option{WithRowWidth(0)}},
		"custom mismatch": {size: 9, opts: []Option{WithRowWidth(2)}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := New(host, "Test", tc.size, tc.opts...)
			if tc.ok {
				if err != nil {
					t.Fatalf("New(%d) error = %v", tc.size, err)
				}
				if m.Size() != tc.size {
					t.Fatalf("Size() = %d, want %d", m.Size(), tc.size)
				}
				return
			}
			if !errors.Is(err, ErrInvalidSize) {
				t.Fatalf("New(%d) error = %v, want ErrInvalidSize", tc.size, err)
			}
		})
	}
}

func TestNewRequiresDisplay(t *testing.T) {
	if _, err := New(Host{}, "Test", 9); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("New() error = %v, want ErrNoDisplay", err)
	}
}

func TestNewRows(t *testing.T) {
	m, err := NewRows(Host{Display: newDisplay()}, "Test", 3)
	if err != nil {
		t.Fatalf("NewRows() error = %v", err)
	}
	if m.Size() != 27 || m.Rows() != 3 {
		t.Fatalf("NewRows(3) size = %d rows = %d, want 27 and 3", m.Size(), m.Rows())
	}
}

func TestSetAssignment(t *testing.T) {
	m, d, _ := newTestMenu(t, 18)
	for slot := range m.Size() {
		var f Filler = NewItem("stone")
		if slot%2 == 0 {
			f = NewButton(NewItem("diamond"))
		}
		if err := m.Set(slot, f); err != nil {
			t.Fatalf("Set(%d) error = %v", slot, err)
		}
		if got := m.Assignment(slot); got != f {
			t.Fatalf("Assignment(%d) = %v, want %v", slot, got, f)
		}
	}
	if d.sets != m.Size() {
		t.Fatalf("display received %d cell updates, want %d", d.sets, m.Size())
	}
}

func TestSetOverwrites(t *testing.T) {
	m, d, _ := newTestMenu(t, 9)
	b := NewButton(NewItem("diamond"))
	it := NewItem("stone")

	if err := m.SetButton(4, b); err != nil {
		t.Fatalf("SetButton() error = %v", err)
	}
	if err := m.SetItem(4, it); err != nil {
		t.Fatalf("SetItem() error = %v", err)
	}
	if m.Button(4) != nil {
		t.Fatalf("Button(4) = %v after overwrite, want nil", m.Button(4))
	}
	if m.Item(4) != it {
		t.Fatalf("Item(4) = %v, want %v", m.Item(4), it)
	}
	if d.cells[4] != it {
		t.Fatalf("display shows %v in slot 4, want %v", d.cells[4], it)
	}
}

func TestSetOutOfRange(t *testing.T) {
	m, _, _ := newTestMenu(t, 9)
	for _, slot := range []int{-1, 9, 100} {
		if err := m.SetItem(slot, NewItem("stone")); !errors.Is(err, ErrSlotOutOfRange) {
			t.Fatalf("SetItem(%d) error = %v, want ErrSlotOutOfRange", slot, err)
		}
		if got := m.Assignment(slot); got != nil {
			t.Fatalf("Assignment(%d) = %v, want nil", slot, got)
		}
	}
}

func TestSetRejectsInvalidRefresh(t *testing.T) {
	m, _, _ := newTestMenu(t, 9)
	b := NewButton(NewItem("clock")).Refresh(0, 0, false)
	if err := m.SetButton(0, b); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("SetButton() error = %v, want ErrInvalidRefresh", err)
	}
	if m.Button(0) != nil {
		t.Fatalf("invalid button was assigned to slot 0")
	}
}

func TestClear(t *testing.T) {
	m, d, _ := newTestMenu(t, 9)
	_ = m.SetItem(3, NewItem("stone"))
	if err := m.Clear(3); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if m.Assignment(3) != nil {
		t.Fatalf("Assignment(3) = %v after Clear, want nil", m.Assignment(3))
	}
	if _, ok := d.cells[3]; ok || d.clears != 1 {
		t.Fatalf("display cell 3 not cleared (clears = %d)", d.clears)
	}
}

func TestSetTypedNilClears(t *testing.T) {
	m, _, _ := newTestMenu(t, 9)
	_ = m.SetItem(0, NewItem("stone"))
	var b *Button
	if err := m.SetButton(0, b); err != nil {
		t.Fatalf("SetButton(nil) error = %v", err)
	}
	if m.Assignment(0) != nil {
		t.Fatalf("Assignment(0) = %v, want nil", m.Assignment(0))
	}
}

func TestSlotLookups(t *testing.T) {
	m, _, _ := newTestMenu(t, 18)
	b := NewButton(NewItem("diamond"))
	it := NewItem("stone")
	_ = m.SetButton(7, b)
	_ = m.SetButton(12, b)
	_ = m.SetItem(5, it)

	if got := m.SlotOfButton(b); got != 7 {
		t.Fatalf("SlotOfButton() = %d, want 7", got)
	}
	if got := m.SlotOfItem(it); got != 5 {
		t.Fatalf("SlotOfItem() = %d, want 5", got)
	}
	if got := m.SlotsOfButton(b); len(got) != 2 || got[0] != 7 || got[1] != 12 {
		t.Fatalf("SlotsOfButton() = %v, want [7 12]", got)
	}

	// Lookups compare pointers, not contents.
	if got := m.SlotOfItem(NewItem("stone")); got != NotFound {
		t.Fatalf("SlotOfItem(equal copy) = %d, want NotFound", got)
	}
	if got := m.SlotOfButton(NewButton(NewItem("diamond"))); got != NotFound {
		t.Fatalf("SlotOfButton(absent) = %d, want NotFound", got)
	}
	if got := m.SlotOfButton(nil); got != NotFound {
		t.Fatalf("SlotOfButton(nil) = %d, want NotFound", got)
	}
	// A button's item is not a static item of the menu.
	if got := m.SlotOfItem(b.Item()); got != NotFound {
		t.Fatalf("SlotOfItem(button item) = %d, want NotFound", got)
	}
}

func TestFillStopsAtLastRow(t *testing.T) {
	m, _, _ := newTestMenu(t, 18)
	it := NewItem("glass_pane")
	res, err := m.Fill(it,
		"X _ _ _ _ _ _ _ X",
		"X _ _ _ _ _ _ _ X",
		"X X X X X X X X X",
	)
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	want := []int{0, 8, 9, 17}
	if len(res.Painted) != len(want) {
		t.Fatalf("Painted = %v, want %v", res.Painted, want)
	}
	for i, slot := range want {
		if res.Painted[i] != slot {
			t.Fatalf("Painted = %v, want %v", res.Painted, want)
		}
		if m.Item(slot) != it {
			t.Fatalf("Item(%d) = %v, want filler", slot, m.Item(slot))
		}
	}
	if res.SkippedRows != 1 {
		t.Fatalf("SkippedRows = %d, want 1", res.SkippedRows)
	}
	for slot := range m.Size() {
		if slot != 0 && slot != 8 && slot != 9 && slot != 17 && m.Assignment(slot) != nil {
			t.Fatalf("slot %d assigned by Fill, want untouched", slot)
		}
	}
}

func TestBorderMatchesFill(t *testing.T) {
	rows := []string{"X X X X X X X X X", "X _ _ _ _ _ _ _ X", "X X X X X X X X X"}

	fm, _, _ := newTestMenu(t, 18)
	fill, err := fm.Fill(NewItem("glass"), rows...)
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	bm, _, _ := newTestMenu(t, 18)
	border, err := bm.Border(NewButton(NewItem("glass")), rows...)
	if err != nil {
		t.Fatalf("Border() error = %v", err)
	}
	if len(fill.Painted) != len(border.Painted) || fill.SkippedRows != border.SkippedRows {
		t.Fatalf("Border() = %+v, Fill() = %+v, want equal", border, fill)
	}
	for i := range fill.Painted {
		if fill.Painted[i] != border.Painted[i] {
			t.Fatalf("Border() = %v, Fill() = %v, want equal", border.Painted, fill.Painted)
		}
	}
}

func TestFillLeavesOtherTokensUntouched(t *testing.T) {
	m, _, _ := newTestMenu(t, 9)
	keep := NewItem("emerald")
	_ = m.SetItem(1, keep)
	if _, err := m.Fill(NewItem("glass"), "X O X"); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if m.Item(1) != keep {
		t.Fatalf("Item(1) = %v, want untouched item", m.Item(1))
	}
}

func TestPaintCustomPattern(t *testing.T) {
	m, _, _ := newTestMenu(t, 9)
	b := NewButton(NewItem("arrow"))
	res, err := m.Paint(b, Rows("#,.,#").WithMarker("#").WithSeparator(","))
	if err != nil {
		t.Fatalf("Paint() error = %v", err)
	}
	if len(res.Painted) != 2 || m.Button(0) != b || m.Button(2) != b {
		t.Fatalf("Paint() = %v, want slots 0 and 2", res.Painted)
	}
}

func TestPaintReportsRenderErrors(t *testing.T) {
	m, d, _ := newTestMenu(t, 9)
	d.failSet = errDisplay
	res, err := m.Fill(NewItem("glass"), "X X")
	if !errors.Is(err, errDisplay) {
		t.Fatalf("Fill() error = %v, want errDisplay", err)
	}
	// The assignment is kept even when rendering fails.
	if len(res.Painted) != 2 || m.Item(0) == nil || m.Item(1) == nil {
		t.Fatalf("Fill() painted %v, want slots 0 and 1 assigned", res.Painted)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	m, _, _ := newTestMenu(t, 9)
	it := NewItem("stone")
	_ = m.SetItem(2, it)
	cells := m.Snapshot()
	if len(cells) != 9 || cells[2].Item != it || cells[2].Slot != 2 {
		t.Fatalf("Snapshot()[2] = %+v, want stone in slot 2", cells[2])
	}
	cells[2] = Cell{}
	if m.Item(2) != it {
		t.Fatalf("modifying snapshot changed the menu")
	}
}

func TestCellVisual(t *testing.T) {
	dyn := 0
	b := NewDynamicButton(func() *Item {
		dyn++
		return NewItem("clock").Count(dyn)
	})
	c := Cell{Button: b}
	if got := c.Visual().Amount(); got != 1 {
		t.Fatalf("Visual().Amount() = %d, want 1", got)
	}
	if got := c.Visual().Amount(); got != 2 {
		t.Fatalf("Visual().Amount() = %d, want 2 on second render", got)
	}
	if (Cell{}).Visual() != nil || !(Cell{}).Empty() {
		t.Fatalf("empty cell renders a visual")
	}
}

func TestItemEmpty(t *testing.T) {
	tests := map[string]struct {
		it   *Item
		want bool
	}{
		"nil":            {nil, true},
		"blank material": {NewItem(""), true},
		"air":            {NewItem("air"), true},
		"namespaced air": {NewItem("minecraft:air"), true},
		"stone":          {NewItem("stone"), false},
	}
	for name, tc := range tests {
		if got := tc.it.Empty(); got != tc.want {
			t.Errorf("%s: Empty() = %v, want %v", name, got, tc.want)
		}
	}
}

func TestItemFingerprint(t *testing.T) {
	a := NewItem("diamond").Name("Shop").Lore("line")
	b := NewItem("diamond").Name("Shop").Lore("line")
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("equal items have different fingerprints")
	}
	if a.Fingerprint() == b.Clone().Count(2).Fingerprint() {
		t.Fatalf("count change did not change the fingerprint")
	}
	if a.Fingerprint() == b.Clone().Glint(true).Fingerprint() {
		t.Fatalf("glint change did not change the fingerprint")
	}
	if NewItem("air").Fingerprint() != 0 {
		t.Fatalf("empty item fingerprint = %d, want 0", NewItem("air").Fingerprint())
	}
}

func TestItemNameKeepsPercent(t *testing.T) {
	it := NewItem("paper").Name("100% off")
	if got := text.Clean(it.DisplayName()); got != "100% off" {
		t.Fatalf("DisplayName() = %q, want %q", got, "100% off")
	}
	if got := NewItem("paper").Count(0).Amount(); got != 1 {
		t.Fatalf("Count(0).Amount() = %d, want 1", got)
	}
}

func TestItemNamef(t *testing.T) {
	it := NewItem("clock").Namef("<red>%d</red> left", 3)
	if got := text.Clean(it.DisplayName()); got != "3 left" {
		t.Fatalf("DisplayName() = %q, want %q", got, "3 left")
	}
}
