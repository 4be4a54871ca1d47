package errors

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogHandler is an ErrorHandler that writes errors to a zerolog logger.
// The zero value logs through the global zerolog logger.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Logger overrides the global logger when set.
	Logger *zerolog.Logger
}

func (h *LogHandler) logger() *zerolog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return &log.Logger
}

// HandleError logs a WeftError.
func (h *LogHandler) HandleError(err *WeftError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().
		Str("op", err.Op).
		Str("kind", err.Kind.String()).
		Err(err.Err)
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("weft error")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().Interface("value", err.Value)
	if err.Op != "" {
		ev = ev.Str("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("weft panic")
}

// HandleDirectiveError logs a DirectiveError.
func (h *LogHandler) HandleDirectiveError(err *DirectiveError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().
		Str("expression", err.Expression).
		Err(err.Err)
	if err.Directive != "" {
		ev = ev.Str("directive", err.Directive)
	}
	if err.Element != nil {
		ev = ev.Str("element", err.Element.Data)
	}
	ev.Msg("uncaught directive error")
}
