package rpalog

import (
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// BotLogger is the logger of one named bot. The same *BotLogger survives
// re-provisioning; only the sinks behind it are replaced.
type BotLogger struct {
	name    string
	logger  zerolog.Logger
	out     *sinkSwitch
	closed  atomic.Bool
	pinned  bool
	metrics *stepMetrics
}

// clockHook stamps every event with the logger's clock in ISO-8601.
type clockHook struct {
	now func() time.Time
}

func (h clockHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(zerolog.TimestampFieldName, h.now().Format(jsonTimeFmt))
}

func newBotLogger(name string, level zerolog.Level, now func() time.Time, metrics *stepMetrics) *BotLogger {
	b := &BotLogger{
		name:    name,
		out:     &sinkSwitch{},
		metrics: metrics,
	}
	b.logger = zerolog.New(b.out).
		Level(level).
		With().Str(FieldLoggerName, name).Logger().
		Hook(clockHook{now: now})
	return b
}

// attach installs next as the live sinks and returns the ones it replaced.
func (b *BotLogger) attach(next *sinkSet) *sinkSet {
	old := b.out.swap(next)
	b.closed.Store(false)
	return old
}

// Name returns the bot name, which is also the logger_name of every record.
func (b *BotLogger) Name() string {
	if b == nil {
		return emptyString
	}
	return b.name
}

// Dir returns the bot's log directory ("" for console-only loggers).
func (b *BotLogger) Dir() string {
	if b == nil {
		return emptyString
	}
	return b.out.current().dir
}

// TextPath returns the plain-text log file, or "" when that sink is disabled.
func (b *BotLogger) TextPath() string {
	if b == nil {
		return emptyString
	}
	return b.out.current().textPath
}

// JSONPath returns the JSON-lines log file, or "" when that sink is disabled.
func (b *BotLogger) JSONPath() string {
	if b == nil {
		return emptyString
	}
	return b.out.current().jsonPath
}

// Close releases the bot's file sinks. Records logged afterwards are dropped.
// It's safe to call Close multiple times. Close is a no-op on Fallback().
func (b *BotLogger) Close() error {
	if b == nil || b.pinned || b.closed.Swap(true) {
		return nil
	}
	b.out.mu.Lock()
	old := b.out.cur
	b.out.cur = old.detached()
	b.out.mu.Unlock()
	return old.close()
}

func (b *BotLogger) event(level zerolog.Level) LogEvent {
	if b == nil || b.closed.Load() {
		return newLogEvent(nil, emptyString)
	}
	// Early return if the level is not enabled
	if b.logger.GetLevel() > level {
		return newLogEvent(nil, emptyString)
	}
	return eventFor(&b.logger, level, callerFunc(3))
}

// InfoWith returns a LogEvent for structured Info-level logging.
// Example: bot.InfoWith().Int("rows", 500).Msg("report extracted")
func (b *BotLogger) InfoWith() LogEvent { return b.event(zerolog.InfoLevel) }

// WarnWith returns a LogEvent for structured Warn-level logging.
func (b *BotLogger) WarnWith() LogEvent { return b.event(zerolog.WarnLevel) }

// ErrorWith returns a LogEvent for structured Error-level logging.
func (b *BotLogger) ErrorWith() LogEvent { return b.event(zerolog.ErrorLevel) }

// DebugWith returns a LogEvent for Debug-level logging. Bot loggers record
// INFO and above, so this is a no-op unless the level was lowered in code.
func (b *BotLogger) DebugWith() LogEvent { return b.event(zerolog.DebugLevel) }

// With returns a LogContext for creating a child logger with pre-populated fields.
func (b *BotLogger) With() LogContext {
	if b == nil || b.closed.Load() {
		return &noopLogContext{}
	}
	return &logContext{
		context: b.logger.With(),
		parent:  b,
	}
}

func (b *BotLogger) observeStep(step string, status Status, elapsed time.Duration) {
	if b == nil || b.metrics == nil {
		return
	}
	b.metrics.observe(b.name, step, status, elapsed)
}
