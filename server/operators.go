package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml"
)

var (
	// ErrOperatorsUnavailable is returned when no operator list is configured.
	ErrOperatorsUnavailable = errors.New("operator list is not configured")
	// ErrInvalidOperatorName is returned when an empty viewer name is passed to
	// an operator list operation.
	ErrInvalidOperatorName = errors.New("invalid viewer name")
)

// Operators is the list of viewers allowed to run privileged commands through
// menu buttons. Entries are persisted in a TOML file.
type Operators struct {
	mu       sync.RWMutex
	names    map[string]string
	filePath string
}

type operatorsFile struct {
	Operators []string `toml:"operators"`
}

// LoadOperators loads the operator list stored in the file at path. If the file
// does not exist yet, it is created holding the names passed.
func LoadOperators(path string, defaults ...string) (*Operators, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("operators path must not be empty")
	}
	o := &Operators{names: make(map[string]string), filePath: path}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.reloadLocked(defaults); err != nil {
		return nil, err
	}
	return o, nil
}

// Contains reports if name is an operator. Names are compared case
// insensitively.
func (o *Operators) Contains(name string) bool {
	if o == nil {
		return false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.names[normalizeName(name)]
	return ok
}

// Add inserts name into the list. The returned bool indicates if the name was
// newly added.
func (o *Operators) Add(name string) (bool, error) {
	if o == nil {
		return false, ErrOperatorsUnavailable
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false, ErrInvalidOperatorName
	}
	key := normalizeName(trimmed)

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.names[key]; exists {
		return false, nil
	}
	o.names[key] = trimmed
	if err := o.writeLocked(); err != nil {
		delete(o.names, key)
		return false, err
	}
	return true, nil
}

// Remove deletes name from the list. The returned bool indicates if the name
// was present before the call.
func (o *Operators) Remove(name string) (bool, error) {
	if o == nil {
		return false, ErrOperatorsUnavailable
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false, ErrInvalidOperatorName
	}
	key := normalizeName(trimmed)

	o.mu.Lock()
	defer o.mu.Unlock()

	original, exists := o.names[key]
	if !exists {
		return false, nil
	}
	delete(o.names, key)
	if err := o.writeLocked(); err != nil {
		o.names[key] = original
		return false, err
	}
	return true, nil
}

// Names returns the operators in case-insensitive sorted order.
func (o *Operators) Names() []string {
	if o == nil {
		return nil
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.sortedLocked()
}

func (o *Operators) reloadLocked(defaults []string) error {
	data := operatorsFile{}
	contents, err := os.ReadFile(o.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			o.names = make(map[string]string)
			o.insertLocked(defaults)
			return o.writeLocked()
		}
		return fmt.Errorf("read operators: %w", err)
	}
	if len(contents) != 0 {
		if err := toml.Unmarshal(contents, &data); err != nil {
			return fmt.Errorf("decode operators: %w", err)
		}
	}
	o.names = make(map[string]string, len(data.Operators))
	o.insertLocked(data.Operators)
	return nil
}

func (o *Operators) insertLocked(names []string) {
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			o.names[normalizeName(trimmed)] = trimmed
		}
	}
}

func (o *Operators) writeLocked() error {
	dir := filepath.Dir(o.filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("create operators directory: %w", err)
		}
	}
	encoded, err := toml.Marshal(operatorsFile{Operators: o.sortedLocked()})
	if err != nil {
		return fmt.Errorf("encode operators: %w", err)
	}
	if err := os.WriteFile(o.filePath, encoded, 0644); err != nil {
		return fmt.Errorf("write operators: %w", err)
	}
	return nil
}

func (o *Operators) sortedLocked() []string {
	names := make([]string, 0, len(o.names))
	for _, name := range o.names {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		lowerA, lowerB := strings.ToLower(a), strings.ToLower(b)
		if lowerA == lowerB {
			return strings.Compare(a, b)
		}
		return strings.Compare(lowerA, lowerB)
	})
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
