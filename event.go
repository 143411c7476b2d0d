package rpalog

import (
	"time"

	"github.com/rs/zerolog"
)

// LogContext provides a fluent interface for building a context logger with pre-populated fields.
// Fields added through LogContext will be included in all subsequent log messages.
type LogContext interface {
	Str(key, val string) LogContext
	Int(key string, val int) LogContext
	Int64(key string, val int64) LogContext
	Float64(key string, val float64) LogContext
	Bool(key string, val bool) LogContext
	Time(key string, val time.Time) LogContext
	Err(err error) LogContext
	Interface(key string, val interface{}) LogContext
	// Logger creates and returns the new context logger
	Logger() Logger
}

// LogEvent provides a fluent interface for structured logging with type-safe field methods.
// It wraps zerolog.Event and adds the step fields understood by the JSON-lines sink.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Int(key string, val int) LogEvent
	Int64(key string, val int64) LogEvent
	Float64(key string, val float64) LogEvent
	Bool(key string, val bool) LogEvent
	Time(key string, val time.Time) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Err(err error) LogEvent
	AnErr(key string, err error) LogEvent
	Interface(key string, val interface{}) LogEvent
	Dict(key string, dict func(LogEvent)) LogEvent

	// Func overrides the originating function recorded for this event.
	Func(name string) LogEvent
	// Status tags the event with a step phase.
	Status(s Status) LogEvent
	// Elapsed records a duration in seconds under duration_s.
	Elapsed(d time.Duration) LogEvent
	// Exception attaches the rendered error (type, message, cause chain).
	Exception(err error) LogEvent

	Msg(msg string)
	Msgf(format string, v ...interface{})
	Send()
}

// logEvent implements LogEvent by wrapping zerolog.Event
type logEvent struct {
	event *zerolog.Event
	fn    string
}

// newLogEvent creates a new LogEvent wrapper; a nil event yields a no-op.
func newLogEvent(e *zerolog.Event, fn string) LogEvent {
	return &logEvent{event: e, fn: fn}
}

// eventFor starts an event on logger at level, or a no-op if the level is disabled.
func eventFor(logger *zerolog.Logger, level zerolog.Level, fn string) LogEvent {
	if logger == nil || logger.GetLevel() > level {
		return newLogEvent(nil, emptyString)
	}

	var event *zerolog.Event
	switch level {
	case zerolog.DebugLevel:
		event = logger.Debug()
	case zerolog.InfoLevel:
		event = logger.Info()
	case zerolog.WarnLevel:
		event = logger.Warn()
	case zerolog.ErrorLevel:
		event = logger.Error()
	default:
		return newLogEvent(nil, emptyString)
	}
	return newLogEvent(event, fn)
}

func (e *logEvent) Str(key, val string) LogEvent {
	if e.event != nil {
		e.event.Str(key, val)
	}
	return e
}

func (e *logEvent) Strs(key string, vals []string) LogEvent {
	if e.event != nil {
		e.event.Strs(key, vals)
	}
	return e
}

func (e *logEvent) Int(key string, val int) LogEvent {
	if e.event != nil {
		e.event.Int(key, val)
	}
	return e
}

func (e *logEvent) Int64(key string, val int64) LogEvent {
	if e.event != nil {
		e.event.Int64(key, val)
	}
	return e
}

func (e *logEvent) Float64(key string, val float64) LogEvent {
	if e.event != nil {
		e.event.Float64(key, val)
	}
	return e
}

func (e *logEvent) Bool(key string, val bool) LogEvent {
	if e.event != nil {
		e.event.Bool(key, val)
	}
	return e
}

func (e *logEvent) Time(key string, val time.Time) LogEvent {
	if e.event != nil {
		e.event.Time(key, val)
	}
	return e
}

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	if e.event != nil {
		e.event.Dur(key, val)
	}
	return e
}

func (e *logEvent) Err(err error) LogEvent {
	if e.event != nil {
		e.event.Err(err)
		if err != nil {
			chain, ops, root, rootOp := buildErrorChain(err)
			if len(chain) > 0 {
				// include array and joined string for readability
				e.event.Strs("error_chain", chain)
				e.event.Str("error_root", root)
				e.event.Str("error_history", joinChain(chain))
				e.event.Strs("error_ops", ops)
				if rootOp != "" {
					e.event.Str("error_root_op", rootOp)
				}
			}
		}
	}
	return e
}

func (e *logEvent) AnErr(key string, err error) LogEvent {
	if e.event != nil {
		e.event.AnErr(key, err)
		if err != nil {
			chain, ops, root, rootOp := buildErrorChain(err)
			if len(chain) > 0 {
				e.event.Strs(key+"_chain", chain)
				e.event.Str(key+"_root", root)
				e.event.Str(key+"_history", joinChain(chain))
				e.event.Strs(key+"_ops", ops)
				if rootOp != "" {
					e.event.Str(key+"_root_op", rootOp)
				}
			}
		}
	}
	return e
}

func (e *logEvent) Interface(key string, val interface{}) LogEvent {
	if e.event != nil {
		e.event.Interface(key, val)
	}
	return e
}

// Dict for nested objects
func (e *logEvent) Dict(key string, dict func(LogEvent)) LogEvent {
	if e.event != nil {
		dictEvent := zerolog.Dict()
		dict(newLogEvent(dictEvent, emptyString))
		e.event.Dict(key, dictEvent)
	}
	return e
}

func (e *logEvent) Func(name string) LogEvent {
	e.fn = name
	return e
}

func (e *logEvent) Status(s Status) LogEvent {
	if e.event != nil {
		e.event.Str(FieldStatus, string(s))
	}
	return e
}

func (e *logEvent) Elapsed(d time.Duration) LogEvent {
	if e.event != nil {
		e.event.Float64(FieldDuration, d.Seconds())
	}
	return e
}

func (e *logEvent) Exception(err error) LogEvent {
	if e.event != nil && err != nil {
		e.event.Str(FieldException, exceptionText(err))
	}
	return e
}

// finish stamps the function name once, right before the event is written.
func (e *logEvent) finish() bool {
	if e.event == nil {
		return false
	}
	if e.fn != emptyString {
		e.event.Str(FieldFunction, e.fn)
	}
	return true
}

func (e *logEvent) Msg(msg string) {
	if e.finish() {
		e.event.Msg(msg)
	}
}

func (e *logEvent) Msgf(format string, v ...interface{}) {
	if e.finish() {
		e.event.Msgf(format, v...)
	}
}

func (e *logEvent) Send() {
	if e.finish() {
		e.event.Send()
	}
}

// logContext implements LogContext by wrapping zerolog.Context
type logContext struct {
	context zerolog.Context
	parent  *BotLogger
}

func (c *logContext) Str(key, val string) LogContext {
	c.context = c.context.Str(key, val)
	return c
}

func (c *logContext) Int(key string, val int) LogContext {
	c.context = c.context.Int(key, val)
	return c
}

func (c *logContext) Int64(key string, val int64) LogContext {
	c.context = c.context.Int64(key, val)
	return c
}

func (c *logContext) Float64(key string, val float64) LogContext {
	c.context = c.context.Float64(key, val)
	return c
}

func (c *logContext) Bool(key string, val bool) LogContext {
	c.context = c.context.Bool(key, val)
	return c
}

func (c *logContext) Time(key string, val time.Time) LogContext {
	c.context = c.context.Time(key, val)
	return c
}

func (c *logContext) Err(err error) LogContext {
	c.context = c.context.Err(err)
	return c
}

func (c *logContext) Interface(key string, val interface{}) LogContext {
	c.context = c.context.Interface(key, val)
	return c
}

func (c *logContext) Logger() Logger {
	logger := c.context.Logger()
	return &contextLogger{
		logger: &logger,
		parent: c.parent,
	}
}

// contextLogger shares its parent's sinks, so closing or re-provisioning the
// parent bot applies to it as well.
type contextLogger struct {
	logger *zerolog.Logger
	parent *BotLogger
}

func (cl *contextLogger) event(level zerolog.Level) LogEvent {
	if cl.logger == nil || cl.parent == nil || cl.parent.closed.Load() {
		return newLogEvent(nil, emptyString)
	}
	if cl.logger.GetLevel() > level {
		return newLogEvent(nil, emptyString)
	}
	return eventFor(cl.logger, level, callerFunc(3))
}

func (cl *contextLogger) DebugWith() LogEvent { return cl.event(zerolog.DebugLevel) }
func (cl *contextLogger) InfoWith() LogEvent  { return cl.event(zerolog.InfoLevel) }
func (cl *contextLogger) WarnWith() LogEvent  { return cl.event(zerolog.WarnLevel) }
func (cl *contextLogger) ErrorWith() LogEvent { return cl.event(zerolog.ErrorLevel) }

func (cl *contextLogger) With() LogContext {
	if cl.logger == nil || cl.parent == nil || cl.parent.closed.Load() {
		return &noopLogContext{}
	}
	return &logContext{
		context: cl.logger.With(),
		parent:  cl.parent,
	}
}

// noopLogContext is a no-op implementation of LogContext
type noopLogContext struct{}

func (n *noopLogContext) Str(key, val string) LogContext             { return n }
func (n *noopLogContext) Int(key string, val int) LogContext         { return n }
func (n *noopLogContext) Int64(key string, val int64) LogContext     { return n }
func (n *noopLogContext) Float64(key string, val float64) LogContext { return n }
func (n *noopLogContext) Bool(key string, val bool) LogContext       { return n }
func (n *noopLogContext) Time(key string, val time.Time) LogContext  { return n }
func (n *noopLogContext) Err(err error) LogContext                   { return n }
func (n *noopLogContext) Interface(key string, val interface{}) LogContext {
	return n
}
func (n *noopLogContext) Logger() Logger { return &noopLogger{} }

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (n *noopLogger) DebugWith() LogEvent { return newLogEvent(nil, emptyString) }
func (n *noopLogger) InfoWith() LogEvent  { return newLogEvent(nil, emptyString) }
func (n *noopLogger) WarnWith() LogEvent  { return newLogEvent(nil, emptyString) }
func (n *noopLogger) ErrorWith() LogEvent { return newLogEvent(nil, emptyString) }
func (n *noopLogger) With() LogContext    { return &noopLogContext{} }

func (cl *contextLogger) observeStep(step string, status Status, elapsed time.Duration) {
	cl.parent.observeStep(step, status, elapsed)
}
