// Package errors provides structured error handling for the pairui runtime.
//
// Errors are grouped by Kind. Selection errors are returned to the caller,
// handler contract errors are reported and degraded to no-ops, validation
// errors surface at the terminal check of a validation schema, and transport
// errors are normalized into message-bearing values for the notification
// channel.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindSelection indicates a required DOM anchor could not be resolved.
	KindSelection
	// KindHandler indicates a bound handler broke its contract.
	KindHandler
	// KindValidation indicates one or more rule failures.
	KindValidation
	// KindTransport indicates a failed network call or non-success status.
	KindTransport
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindRender indicates markup could not be rendered into a container.
	KindRender
)

func (k ErrorKind) String() string {
	switch k {
	case KindSelection:
		return "selection"
	case KindHandler:
		return "handler"
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindPanic:
		return "panic"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// RuntimeError represents a structured error raised inside the runtime.
type RuntimeError struct {
	// Op is the operation that failed (e.g., "mount.bind").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Selector is the selector involved, if applicable.
	Selector string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RuntimeError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("%s [%s] selector=%s: %v", e.Op, e.Kind, e.Selector, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// SelectionError reports a selector that resolved to no element.
type SelectionError struct {
	Selector string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("element not found for selector: %s", e.Selector)
}

// HandlerContractError reports a handler that did not return a cancellable effect.
type HandlerContractError struct {
	// Binding is the "selector:event" key of the offending binding.
	Binding string
	// Got is what the handler returned or panicked with.
	Got any
}

func (e *HandlerContractError) Error() string {
	return fmt.Sprintf("handler for %q must return an effect, got %T", e.Binding, e.Got)
}

// ValidationError carries the ordered messages of every failed rule.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 1 {
		return "validation failed: " + e.Messages[0]
	}
	return fmt.Sprintf("validation failed: %d errors: %s", len(e.Messages), strings.Join(e.Messages, "; "))
}

// TransportError is a failed network call normalized into a message.
type TransportError struct {
	// Op is the API operation, e.g. "devices()".
	Op string
	// Status is the HTTP status code, or zero when no response was received.
	Status int
	// Message is the human readable failure.
	Message string
	// Err is the underlying error, if any.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "effect.run").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *RuntimeError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
