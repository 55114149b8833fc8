package event

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

var (
	// ErrNoActions is wrapped by a ConfigurationError when a handler is built
	// without any actions.
	ErrNoActions = errors.New("no actions defined")
	// ErrInvalidPriority is wrapped by a ConfigurationError when a handler is
	// built with a priority outside of the known range.
	ErrInvalidPriority = errors.New("invalid priority")
)

// ConfigurationError is returned when a handler is built from an invalid
// configuration. It is always returned before anything is registered.
type ConfigurationError struct {
	// Event is the name of the event type the handler was built for.
	Event string
	Err   error
}

// Error ...
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configure %s handler: %v", e.Event, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Builder assembles a Handler for events of type T. The zero priority of a
// Builder is PriorityNormal.
type Builder[T any] struct {
	actions         []func(T)
	priority        Priority
	ignoreCancelled bool
}

// New returns a Builder for events of type T.
func New[T any]() *Builder[T] {
	return &Builder[T]{priority: PriorityNormal}
}

// Action appends fn to the actions run when the event is dispatched. Nil
// functions are ignored.
func (b *Builder[T]) Action(fn func(T)) *Builder[T] {
	if fn != nil {
		b.actions = append(b.actions, fn)
	}
	return b
}

// Priority sets the priority of the handler.
func (b *Builder[T]) Priority(p Priority) *Builder[T] {
	b.priority = p
	return b
}

// IgnoreCancelled makes the handler skip events that were already cancelled by
// a handler that ran before it.
func (b *Builder[T]) IgnoreCancelled(ignore bool) *Builder[T] {
	b.ignoreCancelled = ignore
	return b
}

// Build validates the builder and returns an immutable Handler. A
// *ConfigurationError is returned if no actions were added.
func (b *Builder[T]) Build() (*Handler[T], error) {
	name := typeName[T]()
	if len(b.actions) == 0 {
		return nil, &ConfigurationError{Event: name, Err: ErrNoActions}
	}
	if b.priority < PriorityLowest || b.priority > PriorityMonitor {
		return nil, &ConfigurationError{Event: name, Err: fmt.Errorf("%w: %d", ErrInvalidPriority, b.priority)}
	}
	return &Handler[T]{
		actions:         slices.Clone(b.actions),
		priority:        b.priority,
		ignoreCancelled: b.ignoreCancelled,
	}, nil
}

// Handler is a validated set of actions for events of type T.
type Handler[T any] struct {
	actions         []func(T)
	priority        Priority
	ignoreCancelled bool
}

// Priority returns the priority of the handler.
func (h *Handler[T]) Priority() Priority { return h.priority }

// IgnoresCancelled reports if the handler skips cancelled events.
func (h *Handler[T]) IgnoresCancelled() bool { return h.ignoreCancelled }

// Register adds the handler to bus on behalf of owner. The returned function
// removes the handler again and may be called more than once.
func (h *Handler[T]) Register(bus *Bus, owner string) func() {
	actions := h.actions
	return bus.add(reflect.TypeFor[T](), registration{
		owner:           owner,
		priority:        h.priority,
		ignoreCancelled: h.ignoreCancelled,
		call: func(ev any) {
			v := ev.(T)
			for _, action := range actions {
				action(v)
			}
		},
	})
}

// Listen registers fn for events of type T with normal priority. It is a
// shortcut for building a Handler with a single action. If fn is nil, the
// error is logged and the returned function does nothing.
func Listen[T any](bus *Bus, owner string, fn func(T)) func() {
	h, err := New[T]().Action(fn).Build()
	if err != nil {
		bus.log.Error("Event handler not registered.", "owner", owner, "event", typeName[T](), "err", err)
		return func() {}
	}
	return h.Register(bus, owner)
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
