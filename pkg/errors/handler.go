package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler receives every reported failure.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler swaps the global handler. Pass nil for the default LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	DefaultHandler = h
	handlerMu.Unlock()
}

func current() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// Report hands a general engine failure to the global handler.
func Report(err *WeftError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	if h := current(); h != nil {
		h.HandleError(err)
	}
}

// ReportPanic hands a recovered panic to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	if h := current(); h != nil {
		h.HandlePanic(err)
	}
}

// ReportDirectiveError hands a directive failure to the global handler.
func ReportDirectiveError(err *DirectiveError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	if h := current(); h != nil {
		h.HandleDirectiveError(err)
	}
}

// Recover reports a panic in the deferring goroutine and swallows it.
//
//	defer errors.Recover("loop.task")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(newPanicError(op, r))
	}
}

// Capture runs fn and returns its error. A panic inside fn is returned as a
// *PanicError tagged with op instead of unwinding further; it is not
// reported, the caller decides where it goes.
func Capture(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(op, r)
		}
	}()
	return fn()
}

// newPanicError must be called directly from the deferred function that
// recovered r, so the trace starts at the panicking frame.
func newPanicError(op string, r any) *PanicError {
	return &PanicError{
		Op:         op,
		Value:      r,
		StackTrace: callers(5),
		Timestamp:  time.Now(),
	}
}

// CaptureStack returns the stack of its caller's caller, one frame per
// function/file:line pair.
func CaptureStack() string {
	return callers(4)
}

func callers(skip int) string {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		sb.WriteString(f.Function)
		sb.WriteString("\n\t")
		sb.WriteString(f.File)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(f.Line))
		sb.WriteByte('\n')
		if !more {
			return sb.String()
		}
	}
}
