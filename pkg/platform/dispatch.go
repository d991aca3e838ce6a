package platform

import (
	"context"
	"sync"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

// Loop is the single UI event loop. Callbacks queued with Dispatch run one at
// a time, in order, on the goroutine that calls Run or Drain. Effects running
// on other goroutines use it to hand results back to the UI.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Dispatch schedules a callback on the loop. It never blocks.
// Returns false if the callback is nil or the loop has stopped.
func (l *Loop) Dispatch(callback func()) bool {
	if callback == nil {
		return false
	}
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, callback)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Drain runs queued callbacks, including ones queued while draining, until
// the queue is empty. It returns the number of callbacks run.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		cb := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.run(cb)
		n++
	}
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run drains callbacks as they arrive until ctx is done. Callbacks still
// queued when ctx ends are dropped and later Dispatch calls return false.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.queue = nil
			l.mu.Unlock()
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) run(cb func()) {
	defer errors.Recover("platform.loop")
	cb()
}
