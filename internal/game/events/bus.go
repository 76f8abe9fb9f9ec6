package events

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// allTypes is the route key for handlers registered without a type list
const allTypes = "*"

type route struct {
	id     uint64
	handle Handler
}

// Bus fans game events out to handlers keyed by event type. The zero value is not usable; a
// nil *Bus is, and drops everything, so components can take a *Bus without a guard.
type Bus struct {
	logger zerolog.Logger

	mu     sync.RWMutex
	nextID uint64
	routes map[string][]route

	published atomic.Int64
	panics    atomic.Int64
}

// NewBus creates an empty bus
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		logger: logger.With().Str("component", "EventBus").Logger(),
		routes: make(map[string][]route),
	}
}

// On registers handle for the given event types, or for every type when none are given.
// The returned func removes the registration and is safe to call more than once.
func (b *Bus) On(handle Handler, types ...string) (off func()) {
	if len(types) == 0 {
		types = []string{allTypes}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	for _, typ := range types {
		b.routes[typ] = append(b.routes[typ], route{id: id, handle: handle})
	}
	b.mu.Unlock()

	b.logger.Debug().Uint64("handler", id).Strs("types", types).Msg("Handler registered")

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id, types) })
	}
}

func (b *Bus) remove(id uint64, types []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, typ := range types {
		kept := b.routes[typ][:0]
		for _, r := range b.routes[typ] {
			if r.id != id {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(b.routes, typ)
		} else {
			b.routes[typ] = kept
		}
	}
}

// Publish delivers e to the handlers for its type, then to the catch-all handlers, in
// registration order. Handlers may register, unregister or publish from inside a call. A
// panicking handler is logged and skipped.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}

	typ := e.Type()
	b.mu.RLock()
	targets := make([]route, 0, len(b.routes[typ])+len(b.routes[allTypes]))
	targets = append(targets, b.routes[typ]...)
	targets = append(targets, b.routes[allTypes]...)
	b.mu.RUnlock()

	b.published.Add(1)
	for _, r := range targets {
		b.deliver(r, e)
	}
}

func (b *Bus) deliver(r route, e Event) {
	defer func() {
		if p := recover(); p != nil {
			b.panics.Add(1)
			b.logger.Error().
				Uint64("handler", r.id).
				Str("event_type", e.Type()).
				Str("game_id", e.GameID()).
				Interface("panic", p).
				Msg("Event handler panicked")
		}
	}()
	r.handle(e)
}

// Handlers returns how many handlers would receive an event of the given type
func (b *Bus) Handlers(eventType string) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.routes[eventType]) + len(b.routes[allTypes])
}

// Published returns the number of events published so far
func (b *Bus) Published() int64 {
	if b == nil {
		return 0
	}
	return b.published.Load()
}

// Panics returns how many handler calls panicked
func (b *Bus) Panics() int64 {
	if b == nil {
		return 0
	}
	return b.panics.Load()
}
