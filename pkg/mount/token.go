package mount

import (
	"context"
	"sync/atomic"

	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/effect"
	"github.com/matter2mqtt/pairui/pkg/events"
)

// Token is the disposal handle for everything one Mount call created on one
// container: bus subscriptions, per-binding effect supervisors and the
// tokens of mounted children.
type Token struct {
	container *dom.Element
	ctx       context.Context
	cancel    context.CancelFunc

	subs     []*events.Subscription
	switches []*effect.Switch
	children []*Token

	disposed  atomic.Bool
	onDispose func(*Token)
}

func newToken(parent context.Context, container *dom.Element, onDispose func(*Token)) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{
		container: container,
		ctx:       ctx,
		cancel:    cancel,
		onDispose: onDispose,
	}
}

// Container returns the element the token is bound to.
func (t *Token) Container() *dom.Element {
	return t.container
}

// Context is cancelled when the token is disposed. Effects started by the
// token's bindings run under it.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Children returns the tokens of the children mounted with this token.
func (t *Token) Children() []*Token {
	return t.children
}

// Disposed reports whether Dispose has run.
func (t *Token) Disposed() bool {
	return t.disposed.Load()
}

// Dispose synchronously severs every binding, cancels and awaits every
// in-flight effect and disposes the children. It is idempotent.
func (t *Token) Dispose() {
	if !t.disposed.CompareAndSwap(false, true) {
		return
	}
	for _, child := range t.children {
		child.Dispose()
	}
	for _, sub := range t.subs {
		sub.Cancel()
	}
	t.cancel()
	for _, sw := range t.switches {
		sw.Stop()
	}
	if t.onDispose != nil {
		t.onDispose(t)
	}
}

// Wait blocks until the in-flight effects of this token and its children
// have returned.
func (t *Token) Wait() {
	for _, sw := range t.switches {
		sw.Wait()
	}
	for _, child := range t.children {
		child.Wait()
	}
}
