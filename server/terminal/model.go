package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dm-vev/gridkit/server/menu"
	"github.com/sandertv/gophertunnel/minecraft/text"
	"github.com/segmentio/fasthash/fnv1a"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	cellStyle = lipgloss.NewStyle().
			Width(6).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("231"))

	emptyStyle = cellStyle.
			Foreground(lipgloss.Color("240"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// redrawMsg is sent to the model when the display changed.
type redrawMsg struct{}

type model struct {
	d      *Display
	keys   keyMap
	help   help.Model
	frame  frame
	cursor int
}

func newModel(d *Display) *model {
	return &model{d: d, keys: defaultKeys(), help: help.New(), frame: d.frame()}
}

// Init ...
func (m *model) Init() tea.Cmd {
	return m.wait()
}

// wait blocks until the display changes.
func (m *model) wait() tea.Cmd {
	return func() tea.Msg {
		<-m.d.dirty
		return redrawMsg{}
	}
}

// Update ...
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case redrawMsg:
		m.frame = m.d.frame()
		m.move(0, 0)
		return m, m.wait()
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.d.conf.OnQuit()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			m.move(0, -1)
		case key.Matches(msg, m.keys.Down):
			m.move(0, 1)
		case key.Matches(msg, m.keys.Left):
			m.move(-1, 0)
		case key.Matches(msg, m.keys.Right):
			m.move(1, 0)
		case key.Matches(msg, m.keys.Click):
			return m, m.click(menu.ClickLeft)
		case key.Matches(msg, m.keys.RightClick):
			return m, m.click(menu.ClickRight)
		case key.Matches(msg, m.keys.ShiftClick):
			return m, m.click(menu.ClickShiftLeft)
		case key.Matches(msg, m.keys.Drop):
			return m, m.click(menu.ClickDrop)
		case key.Matches(msg, m.keys.Close):
			return m, func() tea.Msg {
				m.d.Close()
				return nil
			}
		}
	}
	return m, nil
}

// move moves the cursor by dx columns and dy rows, staying inside the menu.
func (m *model) move(dx, dy int) {
	mn := m.frame.menu
	if mn == nil {
		m.cursor = 0
		return
	}
	width := mn.RowWidth()
	row := min(max(m.cursor/width+dy, 0), mn.Rows()-1)
	col := min(max(m.cursor%width+dx, 0), width-1)
	m.cursor = row*width + col
}

// click returns a command clicking the slot under the cursor. Clicks are
// dispatched outside of Update so that menus may redraw the display.
func (m *model) click(t menu.ClickType) tea.Cmd {
	if m.frame.menu == nil {
		return nil
	}
	slot := m.cursor
	return func() tea.Msg {
		m.d.Click(slot, t)
		return nil
	}
}

// View ...
func (m *model) View() string {
	var b strings.Builder
	mn := m.frame.menu
	if mn == nil {
		b.WriteString(titleStyle.Render("No menu open."))
		b.WriteString("\n")
	} else {
		b.WriteString(titleStyle.Render(text.Clean(text.Colourf("%s", mn.Title()))))
		b.WriteString("\n\n")
		b.WriteString(m.grid(mn))
		b.WriteString("\n\n")
		b.WriteString(m.details(m.frame.cells[m.cursor]))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	if len(m.frame.logs) > 0 {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(strings.Join(m.frame.logs, "\n")))
	}
	return b.String()
}

func (m *model) grid(mn *menu.Menu) string {
	width := mn.RowWidth()
	rows := make([]string, 0, mn.Rows())
	for row := range mn.Rows() {
		cells := make([]string, 0, width)
		for col := range width {
			slot := row*width + col
			cells = append(cells, renderCell(m.frame.cells[slot], slot == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *model) details(it *menu.Item) string {
	line := fmt.Sprintf("Slot %d: ", m.cursor)
	if it.Empty() {
		return line + dimStyle.Render("empty")
	}
	name := strings.TrimSpace(text.Clean(it.DisplayName()))
	if name == "" {
		name = materialName(it.Material())
	}
	line += name
	if it.Amount() > 1 {
		line += fmt.Sprintf(" x%d", it.Amount())
	}
	if it.HasGlint() {
		line += " ✦"
	}
	lines := []string{line, dimStyle.Render(materialName(it.Material()))}
	for _, l := range it.LoreLines() {
		lines = append(lines, dimStyle.Render(text.Clean(l)))
	}
	return strings.Join(lines, "\n")
}

func renderCell(it *menu.Item, selected bool) string {
	style, label := emptyStyle, "·"
	if !it.Empty() {
		style = cellStyle.Background(materialColour(it.Material()))
		label = abbreviate(it.Material())
	}
	if selected {
		style = style.Reverse(true).Bold(true)
	}
	return style.Render(label)
}

// materialColour derives a stable colour from the 6x6x6 cube of the 256 colour
// palette for a material.
func materialColour(material string) lipgloss.Color {
	return lipgloss.Color(strconv.Itoa(16 + int(fnv1a.HashString32(trimNamespace(material))%216)))
}

// materialName turns an identifier such as "minecraft:gray_stained_glass" into
// "Gray Stained Glass".
func materialName(material string) string {
	words := strings.ReplaceAll(trimNamespace(material), "_", " ")
	return cases.Title(language.English).String(words)
}

// abbreviate returns the initials of up to four words of a material name.
func abbreviate(material string) string {
	words := strings.FieldsFunc(trimNamespace(material), func(r rune) bool { return r == '_' || r == ' ' })
	if len(words) == 1 {
		return strings.ToUpper(words[0][:min(len(words[0]), 3)])
	}
	var b strings.Builder
	for _, w := range words[:min(len(words), 4)] {
		b.WriteString(strings.ToUpper(w[:1]))
	}
	return b.String()
}

func trimNamespace(material string) string {
	if _, after, ok := strings.Cut(material, ":"); ok {
		return after
	}
	return material
}
