package platform

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

func TestLoop_DrainRunsInOrder(t *testing.T) {
	loop := NewLoop()
	var got []int
	for i := range 3 {
		loop.Dispatch(func() { got = append(got, i) })
	}
	if n := loop.Drain(); n != 3 {
		t.Errorf("Drain() = %d, want 3", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v, want 0,1,2", got)
		}
	}
}

func TestLoop_DispatchDuringDrain(t *testing.T) {
	loop := NewLoop()
	var got []string
	loop.Dispatch(func() {
		got = append(got, "a")
		loop.Dispatch(func() { got = append(got, "c") })
	})
	loop.Dispatch(func() { got = append(got, "b") })
	loop.Drain()

	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("got %v, want [a b c]", got)
	}
}

func TestLoop_DispatchNil(t *testing.T) {
	if NewLoop().Dispatch(nil) {
		t.Error("Dispatch(nil) should return false")
	}
}

func TestLoop_PanicIsIsolated(t *testing.T) {
	var panics int
	defer errors.SetHandler(&countingHandler{onPanic: func() { panics++ }})()

	loop := NewLoop()
	ran := false
	loop.Dispatch(func() { panic("boom") })
	loop.Dispatch(func() { ran = true })
	loop.Drain()

	if panics != 1 {
		t.Errorf("panics = %d, want 1", panics)
	}
	if !ran {
		t.Error("callback after a panicking one should still run")
	}
}

func TestLoop_RunFromOtherGoroutines(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for range 10 {
		wg.Add(1)
		go func() {
			loop.Dispatch(func() {
				mu.Lock()
				count++
				mu.Unlock()
				wg.Done()
			})
		}()
	}
	wg.Wait()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
	if loop.Dispatch(func() {}) {
		t.Error("Dispatch after Run returned should report false")
	}
}

type countingHandler struct {
	onPanic func()
}

func (h *countingHandler) HandleError(*errors.RuntimeError) {}

func (h *countingHandler) HandlePanic(*errors.PanicError) {
	if h.onPanic != nil {
		h.onPanic()
	}
}
