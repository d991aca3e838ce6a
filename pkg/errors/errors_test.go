package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRuntimeErrorString(t *testing.T) {
	err := &RuntimeError{
		Op:   "mount.bind",
		Kind: KindHandler,
		Err:  &HandlerContractError{Binding: "button:click", Got: nil},
	}
	got := err.Error()
	if !strings.HasPrefix(got, "mount.bind [handler]") {
		t.Errorf("error string %q should start with op and kind", got)
	}
}

func TestRuntimeErrorWithSelector(t *testing.T) {
	err := &RuntimeError{
		Op:       "dom.select",
		Kind:     KindSelection,
		Selector: "#app",
		Err:      &SelectionError{Selector: "#app"},
	}
	want := "selector=#app"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestRuntimeErrorUnwrap(t *testing.T) {
	inner := &SelectionError{Selector: ".missing"}
	err := &RuntimeError{Op: "x", Kind: KindSelection, Err: inner}

	var sel *SelectionError
	if !stderrors.As(err, &sel) {
		t.Fatal("expected errors.As to find SelectionError")
	}
	if sel.Selector != ".missing" {
		t.Errorf("Selector = %q, want %q", sel.Selector, ".missing")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindSelection, "selection"},
		{KindHandler, "handler"},
		{KindValidation, "validation"},
		{KindTransport, "transport"},
		{KindPanic, "panic"},
		{KindRender, "render"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestValidationErrorString(t *testing.T) {
	single := &ValidationError{Messages: []string{"Pairing code is required"}}
	if got, want := single.Error(), "validation failed: Pairing code is required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	multi := &ValidationError{Messages: []string{"a", "b"}}
	if got := multi.Error(); !strings.Contains(got, "2 errors: a; b") {
		t.Errorf("Error() = %q, want ordered messages", got)
	}
}

func TestTransportErrorString(t *testing.T) {
	err := &TransportError{Op: "devices()", Status: 502, Message: "HTTP 502 Bad Gateway"}
	if got, want := err.Error(), "devices() failed: HTTP 502 Bad Gateway"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "boom", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: boom"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "effect.run"
	if got, want := err.Error(), "panic in effect.run: boom"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *RuntimeError
	handler := &testHandler{onError: func(err *RuntimeError) { captured = err }}

	defer SetHandler(handler)()

	Report(&RuntimeError{Op: "test.op", Kind: KindRender})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{onPanic: func(err *PanicError) { captured = err }}

	defer SetHandler(handler)()

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
}

func TestRecoverPassesReportToCallbacks(t *testing.T) {
	var reported *PanicError
	defer SetHandler(&testHandler{onPanic: func(err *PanicError) { reported = err }})()

	var got []*PanicError
	func() {
		defer Recover("test.cb", func(p *PanicError) { got = append(got, p) }, func(p *PanicError) { got = append(got, p) })
		panic(42)
	}()
	if len(got) != 2 || got[0] != reported || got[1] != reported {
		t.Fatalf("callbacks got %v, want the reported panic twice", got)
	}
	if reported.Value != 42 || reported.Op != "test.cb" {
		t.Errorf("reported = %+v", reported)
	}
}

func TestRecoverWithoutPanicSkipsCallbacks(t *testing.T) {
	called := false
	func() {
		defer Recover("test.quiet", func(*PanicError) { called = true })
	}()
	if called {
		t.Error("callback ran without a panic")
	}
}

func TestSetHandlerRestores(t *testing.T) {
	before := Handler()
	first := &testHandler{}
	restoreFirst := SetHandler(first)
	restoreNil := SetHandler(nil)
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should install a LogHandler, got %T", Handler())
	}
	restoreNil()
	if Handler() != first {
		t.Errorf("restore should reinstate the previous handler, got %T", Handler())
	}
	restoreFirst()
	if Handler() != before {
		t.Errorf("handler = %T, want the original", Handler())
	}
}

func TestLogHandlerWritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	h.HandleError(&RuntimeError{Op: "mount.bind", Kind: KindHandler, Selector: "button", Err: stderrors.New("nil effect")})
	out := buf.String()
	for _, want := range []string{"pairui.error", "op=mount.bind", "kind=handler", "selector=button"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if !strings.Contains(stack, "TestCaptureStack") {
		t.Errorf("stack should start at the caller, got: %s", stack)
	}
	for _, hidden := range []string{"errors.CaptureStack", "runtime.Callers"} {
		if strings.Contains(stack, hidden) {
			t.Errorf("stack should omit %s, got: %s", hidden, stack)
		}
	}
}

func TestRecoverStackStartsAtPanic(t *testing.T) {
	var stack string
	defer SetHandler(&testHandler{onPanic: func(err *PanicError) { stack = err.StackTrace }})()

	func() {
		defer Recover("test.stack")
		explode()
	}()
	if !strings.Contains(stack, "explode") {
		t.Errorf("stack should contain the panicking function, got: %s", stack)
	}
	if strings.Contains(stack, "runtime.gopanic") || strings.Contains(stack, "errors.Recover\n") {
		t.Errorf("stack should omit runtime and recovery frames, got: %s", stack)
	}
}

//go:noinline
func explode() {
	panic("explode")
}

type testHandler struct {
	onError func(*RuntimeError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *RuntimeError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
