package events

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/matter2mqtt/pairui/pkg/dom"
	"github.com/matter2mqtt/pairui/pkg/metrics"
)

// DefaultTypes are the event types the bus pre-creates on Warm.
var DefaultTypes = []string{"click", "input", "submit", "change", "keypress", "keydown", "focusout"}

// Bus lazily creates one shared stream per DOM event type. Each stream is fed
// by exactly one listener on the root element, no matter how many bindings
// subscribe to it, so repeated re-renders never grow the listener count.
type Bus struct {
	root    *dom.Element
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	streams map[string]*Broadcast[*dom.Event]
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// WithMetrics records root listener counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) { b.metrics = m }
}

// NewBus creates a bus rooted at root, typically the document body.
func NewBus(root *dom.Element, opts ...Option) *Bus {
	b := &Bus{
		root:    root,
		logger:  slog.New(slog.DiscardHandler),
		streams: make(map[string]*Broadcast[*dom.Event]),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Root returns the element the bus listens on.
func (b *Bus) Root() *dom.Element {
	return b.root
}

// Get returns the shared stream for eventType, creating it and attaching its
// root listener on first use. Unknown types are created on demand.
func (b *Bus) Get(eventType string) *Broadcast[*dom.Event] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if stream, ok := b.streams[eventType]; ok {
		return stream
	}
	stream := NewBroadcast[*dom.Event](eventType)
	b.root.AddEventListener(eventType, stream.Emit)
	b.streams[eventType] = stream
	b.metrics.RootListenerAdded(eventType)
	b.logger.Debug("events.stream.created", "type", eventType)
	return stream
}

// Warm creates the streams for DefaultTypes up front.
func (b *Bus) Warm() {
	for _, t := range DefaultTypes {
		b.Get(t)
	}
}

// Types returns the event types with a cached stream, sorted.
func (b *Bus) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.streams))
	for t := range b.streams {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
