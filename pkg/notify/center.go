// Package notify keeps the list of user-facing notifications.
//
// Success and info notifications dismiss themselves after a fixed delay;
// warning and error notifications stay until the user closes them.
package notify

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matter2mqtt/pairui/pkg/errors"
	"github.com/matter2mqtt/pairui/pkg/metrics"
	"github.com/matter2mqtt/pairui/pkg/platform"
	"github.com/matter2mqtt/pairui/pkg/reactive"
)

// DefaultDelay is how long success and info notifications stay listed.
const DefaultDelay = 3 * time.Second

// Kind is the severity of a notification.
type Kind string

const (
	Success Kind = "success"
	Info    Kind = "info"
	Warning Kind = "warning"
	Error   Kind = "error"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{Success, Info, Warning, Error}

// AutoDismiss reports whether notifications of this kind remove themselves.
func (k Kind) AutoDismiss() bool {
	return k == Success || k == Info
}

// Notification is one listed message.
type Notification struct {
	ID        string
	Kind      Kind
	Message   string
	Timestamp time.Time
}

// Center adds and removes notifications on a shared holder. Add and Remove
// must be called on the UI loop; dismissal timers hop onto the loop given
// with WithLoop.
type Center struct {
	list    *reactive.Holder[[]Notification]
	clock   platform.Clock
	loop    *platform.Loop
	delay   time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	timers map[string]platform.Timer
}

// Option configures a Center.
type Option func(*Center)

// WithClock sets the time source for timestamps and dismissal timers.
func WithClock(c platform.Clock) Option {
	return func(n *Center) { n.clock = c }
}

// WithLoop runs dismissal callbacks on loop.
func WithLoop(l *platform.Loop) Option {
	return func(n *Center) { n.loop = l }
}

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(n *Center) { n.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Center) { n.logger = l }
}

// WithMetrics records the listed notifications per kind.
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Center) { n.metrics = m }
}

// NewCenter creates a center that publishes to list.
func NewCenter(list *reactive.Holder[[]Notification], opts ...Option) *Center {
	c := &Center{
		list:   list,
		clock:  platform.SystemClock{},
		delay:  DefaultDelay,
		logger: slog.New(slog.DiscardHandler),
		timers: make(map[string]platform.Timer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the holder the center publishes to.
func (c *Center) List() *reactive.Holder[[]Notification] {
	return c.list
}

// Add lists a notification and returns its id.
func (c *Center) Add(kind Kind, message string) string {
	n := Notification{
		ID:        "notification-" + uuid.NewString(),
		Kind:      kind,
		Message:   message,
		Timestamp: c.clock.Now(),
	}
	c.list.Update(func(list []Notification) []Notification {
		out := make([]Notification, 0, len(list)+1)
		out = append(out, list...)
		return append(out, n)
	})
	c.record()
	c.logger.Debug("notify.added", "id", n.ID, "kind", string(kind))

	if kind.AutoDismiss() {
		id := n.ID
		t := c.clock.AfterFunc(c.delay, platform.OnLoop(c.loop, func() { c.expire(id) }))
		c.mu.Lock()
		c.timers[id] = t
		c.mu.Unlock()
	}
	return n.ID
}

// Remove drops the notification with id. Unknown ids are ignored.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()
	c.remove(id)
}

func (c *Center) expire(id string) {
	c.mu.Lock()
	delete(c.timers, id)
	c.mu.Unlock()
	c.remove(id)
}

func (c *Center) remove(id string) {
	found := false
	for _, n := range c.list.Value() {
		if n.ID == id {
			found = true
			break
		}
	}
	if !found {
		return
	}
	c.list.Update(func(list []Notification) []Notification {
		out := make([]Notification, 0, len(list))
		for _, n := range list {
			if n.ID != id {
				out = append(out, n)
			}
		}
		return out
	})
	c.record()
	c.logger.Debug("notify.removed", "id", id)
}

// Successf lists a formatted success notification.
func (c *Center) Successf(format string, args ...any) string {
	return c.Add(Success, fmt.Sprintf(format, args...))
}

// Infof lists a formatted info notification.
func (c *Center) Infof(format string, args ...any) string {
	return c.Add(Info, fmt.Sprintf(format, args...))
}

// Warnf lists a formatted warning notification.
func (c *Center) Warnf(format string, args ...any) string {
	return c.Add(Warning, fmt.Sprintf(format, args...))
}

// Errorf lists a formatted error notification.
func (c *Center) Errorf(format string, args ...any) string {
	return c.Add(Error, fmt.Sprintf(format, args...))
}

// ReportTransport lists an error notification "<op> failed: <message>" for
// a failed call and returns its id.
func (c *Center) ReportTransport(op string, err error) string {
	msg := "Unknown error"
	var te *errors.TransportError
	switch {
	case stderrors.As(err, &te) && te.Message != "":
		msg = te.Message
	case err != nil && err.Error() != "":
		msg = err.Error()
	}
	c.logger.Warn("notify.transport", "op", op, "err", err)
	return c.Errorf("%s failed: %s", op, msg)
}

// Stop cancels every pending dismissal timer.
func (c *Center) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}

func (c *Center) record() {
	if c.metrics == nil {
		return
	}
	counts := make(map[Kind]int, len(Kinds))
	for _, n := range c.list.Value() {
		counts[n.Kind]++
	}
	for _, k := range Kinds {
		c.metrics.SetNotifications(string(k), counts[k])
	}
}
