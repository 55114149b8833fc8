package event

import (
	"log/slog"
	"reflect"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
)

type registration struct {
	owner           string
	id              uint64
	priority        Priority
	ignoreCancelled bool
	call            func(any)
}

type chains map[reflect.Type][]registration

// Bus dispatches events to the handlers registered for their dynamic type.
// Registration is guarded by a mutex while dispatch reads a copy-on-write
// snapshot, so handlers may register or remove handlers while an event is
// being dispatched.
type Bus struct {
	log *slog.Logger

	mu    sync.Mutex
	next  uint64
	regs  chains
	chain atomic.Value // chains

	panicHook atomic.Value // func(string, any)
}

// NewBus returns an empty Bus logging to log. If log is nil, slog.Default()
// is used.
func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	bus := &Bus{log: log.With("subsystem", "event"), regs: chains{}}
	bus.chain.Store(chains{})
	return bus
}

// OnPanic installs fn to be called after a handler owned by owner panicked.
// The panic is always recovered and logged first.
func (b *Bus) OnPanic(fn func(owner string, reason any)) {
	if fn == nil {
		fn = func(string, any) {}
	}
	b.panicHook.Store(fn)
}

// Dispatch calls every handler registered for the dynamic type of ev in
// priority order. Handlers of equal priority run in registration order.
func (b *Bus) Dispatch(ev any) {
	if ev == nil {
		return
	}
	regs := b.load()[reflect.TypeOf(ev)]
	if len(regs) == 0 {
		return
	}
	c, cancellable := ev.(Cancellable)
	for _, reg := range regs {
		if reg.ignoreCancelled && cancellable && c.Cancelled() {
			continue
		}
		b.invoke(reg, ev)
	}
}

// Count returns the number of registered handlers across all event types.
func (b *Bus) Count() int {
	n := 0
	for _, regs := range b.load() {
		n += len(regs)
	}
	return n
}

// Clear removes all handlers registered by owner.
func (b *Bus) Clear(owner string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, regs := range b.regs {
		regs = slices.DeleteFunc(regs, func(r registration) bool { return r.owner == owner })
		if len(regs) == 0 {
			delete(b.regs, t)
			continue
		}
		b.regs[t] = regs
	}
	b.publishLocked()
}

// Rename moves all handlers registered by oldOwner to newOwner.
func (b *Bus) Rename(oldOwner, newOwner string) {
	if newOwner == "" || oldOwner == newOwner {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, regs := range b.regs {
		for i := range regs {
			if regs[i].owner == oldOwner {
				regs[i].owner = newOwner
			}
		}
	}
	b.publishLocked()
}

func (b *Bus) add(t reflect.Type, reg registration) func() {
	b.mu.Lock()
	reg.id = b.next
	b.next++
	b.regs[t] = append(b.regs[t], reg)
	b.publishLocked()
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			regs := slices.DeleteFunc(b.regs[t], func(r registration) bool { return r.id == reg.id })
			if len(regs) == 0 {
				delete(b.regs, t)
			} else {
				b.regs[t] = regs
			}
			b.publishLocked()
		})
	}
}

func (b *Bus) publishLocked() {
	snapshot := make(chains, len(b.regs))
	for t, regs := range b.regs {
		sorted := slices.Clone(regs)
		slices.SortStableFunc(sorted, func(x, y registration) int {
			if x.priority != y.priority {
				return int(x.priority) - int(y.priority)
			}
			if x.id < y.id {
				return -1
			}
			return 1
		})
		snapshot[t] = sorted
	}
	b.chain.Store(snapshot)
}

func (b *Bus) load() chains {
	if v := b.chain.Load(); v != nil {
		return v.(chains)
	}
	return nil
}

func (b *Bus) invoke(reg registration, ev any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Event handler panic.", "owner", reg.owner, "event", reflect.TypeOf(ev).String(), "panic", r, "stack", string(debug.Stack()))
			if hook, ok := b.panicHook.Load().(func(string, any)); ok && reg.owner != "" {
				hook(reg.owner, r)
			}
		}
	}()
	reg.call(ev)
}
