package effect

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/matter2mqtt/pairui/pkg/errors"
)

// Switch supervises the effects of one binding. Starting a new effect
// requests cancellation of the previous one and waits for it to finish
// before the new one begins, so at most one effect per binding is in flight.
type Switch struct {
	// Name identifies the binding in error reports.
	Name string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start cancels and awaits the running effect, then runs e on a new
// goroutine with a context derived from parent.
func (s *Switch) Start(parent context.Context, e Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if parent.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		defer cancel()
		defer errors.Recover("effect." + s.Name)
		if err := e.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
			errors.Report(&errors.RuntimeError{
				Op:   "effect." + s.Name,
				Kind: kindOf(err),
				Err:  err,
			})
		}
	}()
}

// Stop cancels the running effect, if any, and waits for it to return.
func (s *Switch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Wait blocks until the running effect, if any, returns on its own.
func (s *Switch) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether an effect is in flight.
func (s *Switch) Running() bool {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (s *Switch) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func kindOf(err error) errors.ErrorKind {
	var transport *errors.TransportError
	if stderrors.As(err, &transport) {
		return errors.KindTransport
	}
	var validation *errors.ValidationError
	if stderrors.As(err, &validation) {
		return errors.KindValidation
	}
	return errors.KindUnknown
}
