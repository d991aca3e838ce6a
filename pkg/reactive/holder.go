// Package reactive provides state holders and the combinators that derive
// views from them.
//
// A Holder keeps one value, replays it to new observers and notifies every
// observer of every new value in emission order. Values are replaced
// wholesale; there is no partial mutation. Holders are safe to Set from any
// goroutine, but observers run on whichever goroutine is draining the
// holder's queue, so UI observers expect Set to be called on the UI loop.
//
//	devices := reactive.NewHolder([]api.Device(nil))
//	unsub := devices.Subscribe(func(list []api.Device) {
//	    render(list)
//	})
//	defer unsub()
//	devices.Set(loaded)
package reactive

import (
	"sync"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

// Source is anything a combinator can watch for changes.
type Source interface {
	// Observe registers fn to run after every emission, including the
	// replay on registration, and returns an unsubscribe function.
	Observe(fn func()) (unsubscribe func())
}

type observer[T any] struct {
	fn     func(T)
	active bool
}

// Holder is a single-slot state container.
type Holder[T any] struct {
	mu        sync.Mutex
	value     T
	observers []*observer[T]
	pending   []T
	delivered T
	emitting  bool
}

// NewHolder creates a holder with an initial value.
func NewHolder[T any](initial T) *Holder[T] {
	return &Holder[T]{value: initial, delivered: initial}
}

// Value returns the most recently set value.
func (h *Holder[T]) Value() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Set replaces the value and notifies observers. A Set issued while
// observers are being notified is queued and delivered once the current
// round finishes.
func (h *Holder[T]) Set(value T) {
	h.mu.Lock()
	h.value = value
	h.pending = append(h.pending, value)
	if h.emitting {
		h.mu.Unlock()
		return
	}
	h.emitting = true
	h.mu.Unlock()

	h.drain()
}

// Update sets the value to transform(current).
func (h *Holder[T]) Update(transform func(T) T) {
	h.Set(transform(h.Value()))
}

// Subscribe registers fn and immediately replays the current value to it.
// During an emission the replay is the value being delivered, and the
// queued values follow in order.
func (h *Holder[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	obs := &observer[T]{fn: fn, active: true}
	h.mu.Lock()
	h.observers = append(h.observers, obs)
	current := h.value
	if h.emitting {
		current = h.delivered
	}
	h.mu.Unlock()

	fn(current)

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if !obs.active {
			return
		}
		obs.active = false
		for i, o := range h.observers {
			if o == obs {
				h.observers = append(h.observers[:i:i], h.observers[i+1:]...)
				break
			}
		}
	}
}

// Observe implements Source.
func (h *Holder[T]) Observe(fn func()) (unsubscribe func()) {
	return h.Subscribe(func(T) { fn() })
}

// Len returns the number of active observers.
func (h *Holder[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

func (h *Holder[T]) drain() {
	for {
		h.mu.Lock()
		if len(h.pending) == 0 {
			h.emitting = false
			h.mu.Unlock()
			return
		}
		value := h.pending[0]
		h.pending = h.pending[1:]
		h.delivered = value
		observers := append([]*observer[T](nil), h.observers...)
		h.mu.Unlock()

		for _, obs := range observers {
			h.mu.Lock()
			active := obs.active
			h.mu.Unlock()
			if active {
				notify(obs.fn, value)
			}
		}
	}
}

func notify[T any](fn func(T), value T) {
	defer errors.Recover("reactive.observer")
	fn(value)
}
