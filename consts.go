package rpalog

// Status tags the phase of a tracked step.
type Status string

const (
	StatusStart   Status = "START"
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
	StatusInfo    Status = "INFO"
)

// Field names shared by the zerolog event and the JSON-lines sink.
const (
	FieldLoggerName = "logger_name"
	FieldFunction   = "function"
	FieldDuration   = "duration_s"
	FieldStatus     = "status"
	FieldException  = "exception"
	FieldExtra      = "extra"
)

const (
	// FallbackName is the logger name used when a step is tracked without a logger.
	FallbackName = "GenericBot"

	// DefaultBaseDir is the base log directory when none is configured.
	DefaultBaseDir = "logs"

	emptyString   = ""
	fileDateFmt   = "2006-01-02"
	jsonTimeFmt   = "2006-01-02T15:04:05.000000Z07:00"
	textTimeFmt   = "2006-01-02 15:04:05.000"
	textFileExt   = ".txt"
	jsonFileExt   = ".jsonl"
	dirPermission = 0o755
)

const (
	errMsgNilConfig      = "Logging config is nil."
	errMsgNilRegistry    = "Logger registry is nil."
	errMsgConfigInvalid  = "Logging configuration is invalid."
	errMsgNoChannels     = "no logging channels enabled"
	errMsgBadBotName     = "Bot name is invalid."
	errMsgBotDir         = "failed to create bot log directory"
	errMsgRegistryClosed = "Logger registry is closed."
	errMsgLoadConfig     = "Failed to load logging config file."
	errMsgCloseSinks     = "Failed to close bot sinks."
	errMsgMetrics        = "Failed to register step metrics."
)
