package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	handlerMu sync.RWMutex
	handler   ErrorHandler = &LogHandler{}
)

// Handler returns the handler that receives reported errors and panics.
func Handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

// SetHandler routes reported errors and panics to h and returns a function
// that restores the previous handler. A nil h restores a LogHandler on
// slog's default logger.
//
//	defer errors.SetHandler(recorder)()
func SetHandler(h ErrorHandler) (restore func()) {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	prev := handler
	handler = h
	handlerMu.Unlock()
	return func() {
		handlerMu.Lock()
		handler = prev
		handlerMu.Unlock()
	}
}

// Report stamps err and hands it to the current handler.
func Report(err *RuntimeError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleError(err)
}

// ReportPanic stamps err and hands it to the current handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandlePanic(err)
}

func stamp(ts *time.Time) {
	if ts.IsZero() {
		*ts = time.Now()
	}
}

// Recover reports a panic in the calling goroutine as a PanicError for op
// and then passes the report to each of then. It must be deferred directly:
//
//	defer errors.Recover("mount.handler", func(*errors.PanicError) { eff = nil })
func Recover(op string, then ...func(*PanicError)) {
	r := recover()
	if r == nil {
		return
	}
	p := &PanicError{Op: op, Value: r, StackTrace: CaptureStack()}
	ReportPanic(p)
	for _, fn := range then {
		fn(p)
	}
}

const (
	stackDepth = 32
	selfPrefix = "github.com/matter2mqtt/pairui/pkg/errors."
)

// CaptureStack returns the caller's stack, one "function\n\tfile:line" entry
// per frame. Runtime frames and the reporting helpers of this package are
// left out, so a stack captured in Recover starts at the panicking code.
func CaptureStack() string {
	var pcs [stackDepth]uintptr
	n := runtime.Callers(1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		if !internalFrame(frame.Function) {
			sb.WriteString(frame.Function)
			sb.WriteString("\n\t")
			sb.WriteString(frame.File)
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(frame.Line))
			sb.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func internalFrame(fn string) bool {
	if strings.HasPrefix(fn, "runtime.") {
		return true
	}
	switch strings.TrimPrefix(fn, selfPrefix) {
	case "CaptureStack", "Recover":
		return strings.HasPrefix(fn, selfPrefix)
	}
	return false
}
