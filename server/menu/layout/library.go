package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml"
)

// ErrNotFound is returned when a layout with a given name is not loaded.
var ErrNotFound = errors.New("menu layout not found")

// Library holds every layout found in a directory, indexed by lowercase file
// name without extension.
type Library struct {
	dir string
	log *slog.Logger

	mu      sync.RWMutex
	layouts map[string]Layout
}

// NewLibrary returns an empty Library reading layouts from dir. Call Load to
// read the files.
func NewLibrary(dir string, log *slog.Logger) *Library {
	if log == nil {
		log = slog.Default()
	}
	return &Library{dir: dir, log: log.With("subsystem", "layout"), layouts: map[string]Layout{}}
}

// Dir returns the directory layouts are read from.
func (lib *Library) Dir() string { return lib.dir }

// Load replaces the loaded layouts with the *.toml files in the directory. If
// the directory does not exist yet, it is created with an example layout.
// Files that fail to parse are logged and skipped.
func (lib *Library) Load() error {
	entries, err := os.ReadDir(lib.dir)
	if errors.Is(err, fs.ErrNotExist) {
		if err := lib.writeExample(); err != nil {
			return err
		}
		entries, err = os.ReadDir(lib.dir)
	}
	if err != nil {
		return fmt.Errorf("read layout directory: %w", err)
	}

	layouts := make(map[string]Layout, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".toml") {
			continue
		}
		path := filepath.Join(lib.dir, entry.Name())
		l, err := Load(path)
		if err != nil {
			lib.log.Error("Skipping invalid menu layout.", "path", path, "error", err)
			continue
		}
		l.Name = strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		layouts[l.Name] = l
	}

	lib.mu.Lock()
	lib.layouts = layouts
	lib.mu.Unlock()
	lib.log.Debug("Loaded menu layouts.", "count", len(layouts), "dir", lib.dir)
	return nil
}

// Layout returns the layout with the case-insensitive name passed.
func (lib *Library) Layout(name string) (Layout, error) {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	l, ok := lib.layouts[strings.ToLower(name)]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return l, nil
}

// Names returns the sorted names of all loaded layouts.
func (lib *Library) Names() []string {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	names := make([]string, 0, len(lib.layouts))
	for name := range lib.layouts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Example is the layout written to a new layout directory.
var Example = Layout{
	Title:    "<aqua>Server</aqua>",
	Rows:     3,
	RowWidth: 9,
	Fills: []Fill{{
		Pattern: []string{
			"X X X X X X X X X",
			"X _ _ _ _ _ _ _ X",
			"X X X X X X X X X",
		},
		Item: Item{Material: "gray_stained_glass_pane", Name: " "},
	}},
	Buttons: []Button{
		{Slot: 11, Item: Item{Material: "book", Name: "<yellow>About</yellow>"}, Command: "/about", Close: true},
		{Slot: 13, Item: Item{Material: "clock", Name: "<green>{time}</green>"}, Refresh: 20},
		{Slot: 15, Item: Item{Material: "barrier", Name: "<red>Close</red>"}, Close: true},
	},
}

func (lib *Library) writeExample() error {
	if err := os.MkdirAll(lib.dir, 0o755); err != nil {
		return fmt.Errorf("create layout directory: %w", err)
	}
	data, err := toml.Marshal(Example)
	if err != nil {
		return fmt.Errorf("encode example layout: %w", err)
	}
	if err := os.WriteFile(filepath.Join(lib.dir, "server.toml"), data, 0o644); err != nil {
		return fmt.Errorf("write example layout: %w", err)
	}
	return nil
}
