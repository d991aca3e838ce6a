package mount

import (
	"context"
	"log/slog"
	"reflect"

	"golang.org/x/net/html"

	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/effect"
	"github.com/matter2mqtt/pairui/pkg/errors"
	"github.com/matter2mqtt/pairui/pkg/events"
	"github.com/matter2mqtt/pairui/pkg/metrics"
)

// Engine mounts components and tracks one live Token per container.
// It must be used from the UI loop only.
type Engine struct {
	bus     *events.Bus
	ctx     context.Context
	logger  *slog.Logger
	metrics *metrics.Metrics
	tokens  map[*html.Node]*Token
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records mounts, disposals and handler failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithContext sets the parent context of every token. Cancelling it cancels
// all in-flight effects, but does not unbind handlers; use Engine.Close.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

// New creates an engine that binds handlers through bus.
func New(bus *events.Bus, opts ...Option) *Engine {
	e := &Engine{
		bus:    bus,
		ctx:    context.Background(),
		logger: slog.New(slog.DiscardHandler),
		tokens: make(map[*html.Node]*Token),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mount renders c into container, binds its handlers and mounts its
// children. Any token already bound to container is disposed first. The
// container must already be resolved; a nil container panics.
func (e *Engine) Mount(container *dom.Element, c Component) *Token {
	return e.mount(container, c, nil)
}

// Token returns the live token bound to container, or nil.
func (e *Engine) Token(container *dom.Element) *Token {
	return e.tokens[container.Node()]
}

// Unmount disposes the token bound to container, leaving its markup intact.
func (e *Engine) Unmount(container *dom.Element) {
	if t := e.tokens[container.Node()]; t != nil {
		t.Dispose()
	}
}

// Bound returns the number of containers with a live token.
func (e *Engine) Bound() int {
	return len(e.tokens)
}

// Wait blocks until the in-flight effects of every live token have returned.
func (e *Engine) Wait() {
	for _, t := range e.tokens {
		t.Wait()
	}
}

// Close disposes every live token.
func (e *Engine) Close() {
	for _, t := range e.tokens {
		t.Dispose()
	}
}

func (e *Engine) mount(container *dom.Element, c Component, parent *Token) *Token {
	if container == nil {
		panic("mount: nil container; resolve the anchor with dom.Select before mounting")
	}

	// 1. Disposal.
	if old := e.tokens[container.Node()]; old != nil {
		old.Dispose()
	}

	token := newToken(e.ctx, container, e.forget)
	e.tokens[container.Node()] = token
	if parent != nil {
		parent.children = append(parent.children, token)
	}
	e.metrics.Mounted()

	// 2. Render.
	if err := container.SetInnerHTML(c.Markup); err != nil {
		errors.Report(&errors.RuntimeError{Op: "mount.render", Kind: errors.KindRender, Err: err})
	}

	// 3. Bind.
	for _, b := range c.Bindings {
		e.bind(token, b)
	}

	// 4. Children.
	for _, child := range c.Children {
		el := container.Query(child.Selector)
		if el == nil {
			e.logger.Warn("mount.child.missing", "selector", child.Selector)
			continue
		}
		e.mount(el, child.Component, token)
	}

	return token
}

func (e *Engine) forget(t *Token) {
	node := t.container.Node()
	if e.tokens[node] == t {
		delete(e.tokens, node)
	}
	e.metrics.Disposed()
}

func (e *Engine) bind(token *Token, b Binding) {
	key := b.Key()
	if _, err := dom.Compile(b.Selector); err != nil {
		errors.Report(&errors.RuntimeError{Op: "mount.bind", Kind: errors.KindHandler, Selector: b.Selector, Err: err})
		e.metrics.HandlerFailed("selector")
		return
	}
	if b.Handler == nil {
		e.contractViolation(key, nil)
		return
	}

	container := token.container
	sw := &effect.Switch{Name: key}
	sub := e.bus.Get(b.Event).Listen(func(ev *dom.Event) {
		if token.Disposed() || !Delegates(container, b.Selector, ev.Target) {
			return
		}
		eff := e.invoke(key, b.Handler, ev)
		if eff == nil {
			return
		}
		sw.Start(token.ctx, eff)
	})
	token.subs = append(token.subs, sub)
	token.switches = append(token.switches, sw)
}

// invoke runs the handler and returns its effect, or nil when the handler
// panicked or broke its contract.
func (e *Engine) invoke(key string, h Handler, ev *dom.Event) (eff effect.Effect) {
	defer errors.Recover("mount.handler "+key, func(*errors.PanicError) {
		e.metrics.HandlerFailed("panic")
		eff = nil
	})

	eff = h(ev)
	if isNilEffect(eff) {
		e.contractViolation(key, eff)
		return nil
	}
	return eff
}

func (e *Engine) contractViolation(key string, got any) {
	errors.Report(&errors.RuntimeError{
		Op:   "mount.handler",
		Kind: errors.KindHandler,
		Err:  &errors.HandlerContractError{Binding: key, Got: got},
	})
	e.metrics.HandlerFailed("contract")
}

func isNilEffect(eff effect.Effect) bool {
	if eff == nil {
		return true
	}
	v := reflect.ValueOf(eff)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Delegates reports whether an event with target should reach a binding for
// selector on container: the target lies inside container and it, or an
// ancestor still inside container, matches selector.
func Delegates(container *dom.Element, selector string, target *dom.Element) bool {
	if target == nil || !container.Contains(target) {
		return false
	}
	matched := target.Closest(selector)
	return matched != nil && container.Contains(matched)
}
