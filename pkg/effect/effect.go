// Package effect defines the cancellable work an event handler returns and
// the supervisor that runs it with switch-to-latest semantics.
package effect

import (
	"context"
)

// Effect is cancellable work started in response to an event. Run must return
// promptly once ctx is done.
type Effect interface {
	Run(ctx context.Context) error
}

// Func adapts a function to Effect.
type Func func(ctx context.Context) error

// Run calls f(ctx).
func (f Func) Run(ctx context.Context) error {
	return f(ctx)
}

// None is the no-op effect. Handlers with nothing asynchronous to do return it.
var None Effect = Func(func(context.Context) error { return nil })

// Go wraps fn as an Effect.
func Go(fn func(ctx context.Context) error) Effect {
	return Func(fn)
}
