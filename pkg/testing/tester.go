package testing

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matter2mqtt/pairui/pkg/dom"
	rterrors "github.com/matter2mqtt/pairui/pkg/errors"
	"github.com/matter2mqtt/pairui/pkg/events"
	"github.com/matter2mqtt/pairui/pkg/metrics"
	"github.com/matter2mqtt/pairui/pkg/mount"
	"github.com/matter2mqtt/pairui/pkg/platform"
)

// ErrSettleTimeout is returned when Settle exceeds its timeout.
var ErrSettleTimeout = errors.New("Settle timed out: effects or loop work did not finish")

// Waiter is anything whose in-flight work can be awaited.
type Waiter interface {
	Wait()
}

// Tester wires a document, loop, bus, engine and metrics registry the way the
// application does, with a fake clock and a recording error handler. The
// test goroutine plays the UI loop: Pump drains work that effects dispatched.
type Tester struct {
	Doc      *dom.Document
	Loop     *platform.Loop
	Clock    *FakeClock
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Bus      *events.Bus
	Engine   *mount.Engine

	recorder       *Recorder
	restoreHandler func()
}

// NewTester creates a tester whose document body holds body. Call Cleanup
// when done, or use NewTesterWithT instead.
func NewTester(body string) *Tester {
	doc, err := dom.Parse("<!DOCTYPE html><html><head></head><body>" + body + "</body></html>")
	if err != nil {
		panic(err)
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	bus := events.NewBus(doc.Root(), events.WithMetrics(m))
	t := &Tester{
		Doc:      doc,
		Loop:     platform.NewLoop(),
		Clock:    NewFakeClock(),
		Registry: reg,
		Metrics:  m,
		Bus:      bus,
		Engine:   mount.New(bus, mount.WithMetrics(m)),
		recorder: &Recorder{},
	}
	t.restoreHandler = rterrors.SetHandler(t.recorder)
	return t
}

// NewTesterWithT creates a tester that cleans up via tb.Cleanup. This is
// the recommended constructor for tests.
func NewTesterWithT(tb testing.TB, body string) *Tester {
	tb.Helper()
	tester := NewTester(body)
	tb.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup disposes every mounted token and restores the global error
// handler.
func (t *Tester) Cleanup() {
	t.Engine.Close()
	t.Loop.Drain()
	t.restoreHandler()
}

// Errors returns the runtime errors reported since the tester was created.
func (t *Tester) Errors() *Recorder {
	return t.recorder
}

// Mount resolves selector and mounts c into it.
func (t *Tester) Mount(selector string, c mount.Component) (*mount.Token, error) {
	container, err := t.Doc.Select(selector)
	if err != nil {
		return nil, err
	}
	return t.Engine.Mount(container, c), nil
}

// Pump runs every callback queued on the loop, including callbacks queued
// while draining. It returns the number run.
func (t *Tester) Pump() int {
	total := 0
	for {
		n := t.Loop.Drain()
		if n == 0 {
			return total
		}
		total += n
	}
}

// Settle waits for in-flight effects of every mounted token and of extra,
// pumping the loop between rounds, until both are quiet.
func (t *Tester) Settle(timeout time.Duration, extra ...Waiter) error {
	deadline := time.Now().Add(timeout)
	for {
		done := make(chan struct{})
		go func() {
			defer close(done)
			for _, w := range extra {
				w.Wait()
			}
		}()
		t.Engine.Wait()
		select {
		case <-done:
		case <-time.After(time.Until(deadline)):
			return ErrSettleTimeout
		}
		if t.Pump() == 0 && t.Loop.Pending() == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrSettleTimeout
		}
	}
}

// Recorder is an error handler that keeps every report.
type Recorder struct {
	mu     sync.Mutex
	errs   []*rterrors.RuntimeError
	panics []*rterrors.PanicError
}

// HandleError records err.
func (r *Recorder) HandleError(err *rterrors.RuntimeError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// HandlePanic records err.
func (r *Recorder) HandlePanic(err *rterrors.PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, err)
}

// Reported returns a copy of the recorded errors.
func (r *Recorder) Reported() []*rterrors.RuntimeError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*rterrors.RuntimeError(nil), r.errs...)
}

// Panics returns a copy of the recorded panics.
func (r *Recorder) Panics() []*rterrors.PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*rterrors.PanicError(nil), r.panics...)
}

// Kinds returns the kind of each recorded error, in order.
func (r *Recorder) Kinds() []rterrors.ErrorKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]rterrors.ErrorKind, len(r.errs))
	for i, e := range r.errs {
		out[i] = e.Kind
	}
	return out
}
