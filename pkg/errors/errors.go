// Package errors provides structured error handling for the weft lifecycle engine.
package errors

import (
	"fmt"
	"time"

	"golang.org/x/net/html"
)

// UnknownExpression is attached to directive failures whose originating
// expression could not be determined.
const UnknownExpression = "[UNKNOWN]"

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindDirective indicates a directive resolution or activation failure.
	KindDirective
	// KindSelector indicates an invalid or failing selector.
	KindSelector
	// KindInit indicates an engine initialization error.
	KindInit
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindUncaught indicates an error re-raised on the host loop.
	KindUncaught
)

func (k ErrorKind) String() string {
	switch k {
	case KindDirective:
		return "directive"
	case KindSelector:
		return "selector"
	case KindInit:
		return "init"
	case KindPanic:
		return "panic"
	case KindUncaught:
		return "uncaught"
	default:
		return "unknown"
	}
}

// WeftError represents a structured error in the engine.
type WeftError struct {
	// Op is the operation that failed (e.g., "lifecycle.Start").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *WeftError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *WeftError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "loop.task").
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

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// DirectiveError is a failure raised while resolving or activating a
// directive, annotated with the element and expression it came from.
type DirectiveError struct {
	// Element is the element the directive is attached to.
	Element *html.Node
	// Expression is the attribute value evaluated by the directive.
	Expression string
	// Directive is the original attribute name (e.g., "x-on:click").
	Directive string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *DirectiveError) Error() string {
	label := "<nil>"
	if e.Element != nil {
		label = e.Element.Data
	}
	if e.Directive != "" {
		return fmt.Sprintf("directive %s on <%s> (expression %q): %v", e.Directive, label, e.Expression, e.Err)
	}
	return fmt.Sprintf("directive on <%s> (expression %q): %v", label, e.Expression, e.Err)
}

func (e *DirectiveError) Unwrap() error {
	return e.Err
}

// HasContext reports whether both the originating element and expression
// are known.
func (e *DirectiveError) HasContext() bool {
	return e != nil && e.Element != nil && e.Expression != ""
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *WeftError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleDirectiveError is called when a directive failure surfaces
	// on the host loop.
	HandleDirectiveError(err *DirectiveError)
}
