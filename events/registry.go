// Package events routes decoded realtime frames to named handlers.
package events

import (
	"fmt"
	"log/slog"
	"sync"
)

// Handler receives the typed value of an event. A returned error is logged
// and does not stop the remaining handlers.
type Handler func(v any) error

// Registry maps event names to ordered handler lists. It is safe for
// concurrent use; handlers registered while an event is being emitted take
// effect from the next emission.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger uses slog.Default.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// On appends h to the handlers of name and returns h unchanged, so it can
// wrap a function literal at declaration.
func (r *Registry) On(name string, h Handler) Handler {
	if h == nil {
		return nil
	}
	r.mu.Lock()
	r.handlers[name] = append(r.handlers[name], h)
	r.mu.Unlock()
	return h
}

// Subscribe registers fn for name with a typed argument. Values of any other
// type are skipped.
func Subscribe[T any](r *Registry, name string, fn func(T) error) Handler {
	return r.On(name, func(v any) error {
		t, ok := v.(T)
		if !ok {
			return nil
		}
		return fn(t)
	})
}

// Len reports how many handlers are registered for name.
func (r *Registry) Len(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[name])
}

// Emit calls every handler of name in registration order and returns the
// number of handlers invoked. A handler that fails or panics is logged and
// the rest still run.
func (r *Registry) Emit(name string, v any) int {
	r.mu.RLock()
	list := r.handlers[name]
	snapshot := make([]Handler, len(list))
	copy(snapshot, list)
	r.mu.RUnlock()

	for i, h := range snapshot {
		if err := r.invoke(h, v); err != nil {
			r.log.Warn("events: handler failed", "event", name, "index", i, "error", err)
		}
	}
	return len(snapshot)
}

func (r *Registry) invoke(h Handler, v any) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return h(v)
}
