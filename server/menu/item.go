package menu

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sandertv/gophertunnel/minecraft/text"
)

// Item is the visual shown in a slot. Items are built with NewItem and the
// chained setters. Lookups such as Menu.SlotOfItem compare items by pointer,
// so the same *Item placed in several slots is one item.
type Item struct {
	material string
	name     string
	lore     []string
	count    int
	glint    bool
}

// NewItem returns an Item of the material passed with a count of 1.
func NewItem(material string) *Item {
	return &Item{material: material, count: 1}
}

// Name sets the display name of the item. Formatting tags supported by
// text.Colourf, such as <red>, may be used.
func (it *Item) Name(name string) *Item {
	it.name = text.Colourf("%s", name)
	return it
}

// Namef formats the display name of the item using text.Colourf.
func (it *Item) Namef(format string, args ...any) *Item {
	it.name = text.Colourf(format, args...)
	return it
}

// Lore sets the lines shown below the name of the item.
func (it *Item) Lore(lines ...string) *Item {
	it.lore = make([]string, len(lines))
	for i, line := range lines {
		it.lore[i] = text.Colourf("%s", line)
	}
	return it
}

// Count sets the stack size of the item. Counts below 1 are raised to 1.
func (it *Item) Count(count int) *Item {
	it.count = max(count, 1)
	return it
}

// Glint toggles the enchantment glint of the item.
func (it *Item) Glint(glint bool) *Item {
	it.glint = glint
	return it
}

// Material returns the material identifier of the item, such as "diamond".
func (it *Item) Material() string { return it.material }

// DisplayName returns the formatted display name of the item.
func (it *Item) DisplayName() string { return it.name }

// LoreLines returns a copy of the lore lines of the item.
func (it *Item) LoreLines() []string { return slices.Clone(it.lore) }

// Amount returns the stack size of the item.
func (it *Item) Amount() int { return it.count }

// HasGlint reports if the item is rendered with an enchantment glint.
func (it *Item) HasGlint() bool { return it.glint }

// Empty reports if the item renders as an empty slot.
func (it *Item) Empty() bool {
	if it == nil {
		return true
	}
	m := strings.TrimPrefix(it.material, "minecraft:")
	return m == "" || m == "air"
}

// Clone returns a copy of the item that may be modified independently.
func (it *Item) Clone() *Item {
	c := *it
	c.lore = slices.Clone(it.lore)
	return &c
}

// Fingerprint returns a hash of everything that affects how the item renders.
// Two items with the same fingerprint look the same.
func (it *Item) Fingerprint() uint64 {
	if it.Empty() {
		return 0
	}
	d := xxhash.New()
	_, _ = d.WriteString(it.material)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(it.name)
	for _, line := range it.lore {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(line)
	}
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.Itoa(it.count))
	if it.glint {
		_, _ = d.WriteString("\x00glint")
	}
	return d.Sum64()
}

// filler marks *Item as a Filler.
func (*Item) filler() {}
