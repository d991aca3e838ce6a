// Package events provides hot multi-subscriber streams and the Bus that
// multiplexes DOM events from a single root listener per event type.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

// Subscription represents an active listener on a Broadcast.
type Subscription struct {
	cancelFn func(*Subscription)
	handler  func(any)
	canceled atomic.Bool
}

// Cancel stops delivery to this subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		s.cancelFn(s)
	}
}

// IsCanceled returns true if this subscription has been canceled.
func (s *Subscription) IsCanceled() bool {
	return s.canceled.Load()
}

// Broadcast is a hot stream: listeners only see values emitted after they
// attach, and every listener sees every such value.
type Broadcast[T any] struct {
	name          string
	mu            sync.Mutex
	subscriptions []*Subscription
}

// NewBroadcast creates an empty stream. The name appears in error reports.
func NewBroadcast[T any](name string) *Broadcast[T] {
	return &Broadcast[T]{name: name}
}

// Name returns the stream name.
func (b *Broadcast[T]) Name() string {
	return b.name
}

// Listen subscribes fn to future values.
func (b *Broadcast[T]) Listen(fn func(T)) *Subscription {
	sub := &Subscription{
		cancelFn: b.remove,
		handler:  func(v any) { fn(v.(T)) },
	}
	b.mu.Lock()
	b.subscriptions = append(b.subscriptions, sub)
	b.mu.Unlock()
	return sub
}

// Emit delivers v to every current listener in subscription order. A
// panicking listener is reported and does not stop delivery to the rest.
func (b *Broadcast[T]) Emit(v T) {
	b.mu.Lock()
	subs := make([]*Subscription, len(b.subscriptions))
	copy(subs, b.subscriptions)
	b.mu.Unlock()

	for _, sub := range subs {
		if !sub.IsCanceled() {
			b.deliver(sub, v)
		}
	}
}

// Len returns the number of live subscriptions.
func (b *Broadcast[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscriptions)
}

func (b *Broadcast[T]) deliver(sub *Subscription, v T) {
	defer errors.Recover("events." + b.name)
	sub.handler(v)
}

func (b *Broadcast[T]) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subscriptions {
		if s == sub {
			b.subscriptions = append(b.subscriptions[:i:i], b.subscriptions[i+1:]...)
			return
		}
	}
}
