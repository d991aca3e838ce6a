package effect

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

func TestSwitch_CancelsPreviousBeforeStartingNext(t *testing.T) {
	var s Switch
	var mu sync.Mutex
	var log []string
	record := func(v string) {
		mu.Lock()
		log = append(log, v)
		mu.Unlock()
	}

	started := make(chan struct{})
	s.Start(context.Background(), Go(func(ctx context.Context) error {
		record("first:start")
		close(started)
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		record("first:teardown")
		return ctx.Err()
	}))
	<-started

	s.Start(context.Background(), Go(func(context.Context) error { record("second:start"); return nil }))
	s.Wait()

	want := []string{"first:start", "first:teardown", "second:start"}
	mu.Lock()
	defer mu.Unlock()
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

func TestSwitch_StopWaitsForTeardown(t *testing.T) {
	var s Switch
	tornDown := false
	started := make(chan struct{})
	s.Start(context.Background(), Go(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		tornDown = true
		return nil
	}))
	<-started
	if !s.Running() {
		t.Error("Running() should be true while the effect blocks")
	}

	s.Stop()
	if !tornDown {
		t.Error("Stop should return only after the effect returned")
	}
	if s.Running() {
		t.Error("Running() should be false after Stop")
	}
}

func TestSwitch_CancelledParentSkipsStart(t *testing.T) {
	var s Switch
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	s.Start(ctx, Go(func(context.Context) error { ran = true; return nil }))
	s.Wait()
	if ran {
		t.Error("effect should not start under a cancelled parent")
	}
}

func TestSwitch_ReportsErrors(t *testing.T) {
	var got *errors.RuntimeError
	var panics int
	defer errors.SetHandler(&recordingHandler{
		onError: func(err *errors.RuntimeError) { got = err },
		onPanic: func(*errors.PanicError) { panics++ },
	})()

	s := Switch{Name: "button:click"}
	s.Start(context.Background(), Go(func(context.Context) error {
		return &errors.TransportError{Op: "pair()", Message: "HTTP 500"}
	}))
	s.Wait()
	if got == nil || got.Kind != errors.KindTransport || got.Op != "effect.button:click" {
		t.Errorf("reported %+v, want transport error for effect.button:click", got)
	}

	s.Start(context.Background(), Go(func(context.Context) error { panic("boom") }))
	s.Wait()
	if panics != 1 {
		t.Errorf("panics = %d, want 1", panics)
	}
}

type recordingHandler struct {
	onError func(*errors.RuntimeError)
	onPanic func(*errors.PanicError)
}

func (h *recordingHandler) HandleError(err *errors.RuntimeError) { h.onError(err) }
func (h *recordingHandler) HandlePanic(err *errors.PanicError)   { h.onPanic(err) }
