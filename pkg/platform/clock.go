// Package platform provides the UI event loop and time source the runtime
// schedules work on.
package platform

import "time"

// Timer is a scheduled callback that can be stopped before it fires.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped the timer before it fired.
	Stop() bool
}

// Clock abstracts time so that delayed work can be tested deterministically.
type Clock interface {
	Now() time.Time
	// AfterFunc runs fn once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemClock is the wall clock. Its timers fire on their own goroutine, so
// callbacks that touch UI state should hop onto the Loop.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// OnLoop wraps fn so that it runs on loop instead of the caller's goroutine.
// A nil loop returns fn unchanged.
func OnLoop(loop *Loop, fn func()) func() {
	if loop == nil {
		return fn
	}
	return func() { loop.Dispatch(fn) }
}
