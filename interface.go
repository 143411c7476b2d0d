package rpalog

// Logger is the leveled-logging capability a bot holds and the step tracker
// writes through. *BotLogger implements it; so do context loggers from With().
type Logger interface {
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent
	DebugWith() LogEvent

	// With for context logger creation
	// Creates a new logger with pre-populated fields that will be included in all subsequent logs
	// Example: stepLogger := logger.With().Str("order_id", id).Logger()
	With() LogContext
}
