package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrAliasTaken is returned by Registry.Register if the name or an alias of a
// command is already in use.
var ErrAliasTaken = errors.New("command alias already registered")

// Registry holds the commands available to sources, indexed by name and alias.
// It is safe for concurrent use.
type Registry struct {
	log *slog.Logger

	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry returns an empty Registry.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{log: log.With("subsystem", "cmd"), commands: make(map[string]Command)}
}

// Register adds c under its name and all of its aliases. Nothing is registered
// if any of them is taken.
func (r *Registry) Register(c Command) error {
	if c.name == "" || c.run == nil {
		return fmt.Errorf("register command: %w", ErrNoRunnable)
	}
	keys := append([]string{c.name}, c.aliases...)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		if _, ok := r.commands[key]; ok {
			return fmt.Errorf("register /%s: %w: %s", c.name, ErrAliasTaken, key)
		}
	}
	for _, key := range keys {
		r.commands[key] = c
	}
	return nil
}

// Unregister removes the command with the name passed, including its aliases.
// It reports if a command was removed.
func (r *Registry) Unregister(name string) bool {
	name = strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.commands[name]
	if !ok || c.name != name {
		return false
	}
	delete(r.commands, c.name)
	for _, alias := range c.aliases {
		if other, ok := r.commands[alias]; ok && other.name == c.name {
			delete(r.commands, alias)
		}
	}
	return true
}

// ByAlias looks up a command by its name or one of its aliases.
func (r *Registry) ByAlias(alias string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[strings.ToLower(alias)]
	return c, ok
}

// Commands returns a copy of all registered commands keyed by name and alias.
func (r *Registry) Commands() map[string]Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.commands)
}

// Names returns the names of the commands src may run, skipping hidden
// commands and aliases, in sorted order.
func (r *Registry) Names(src Source) []string {
	var names []string
	for key, c := range r.Commands() {
		if key != c.name || c.settings.Hidden || !c.Allowed(src) {
			continue
		}
		names = append(names, key)
	}
	slices.Sort(names)
	return names
}
