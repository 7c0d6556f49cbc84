package types

// LogLevel is the severity of a log entry.
type LogLevel int

// SinkType names a log destination.
type SinkType string

const (
	FileSink   SinkType = "file"
	StdoutSink SinkType = "stdout"
	StderrSink SinkType = "stderr"
)

const (
	DebugLevel  LogLevel = iota // Per-cell and per-upload detail.
	InfoLevel                   // Run and file progress.
	WarnLevel                   // Recoverable conditions (passthrough pulses, clipping, publish failures).
	ErrorLevel                  // A file failed.
	DPanicLevel                 // Panics in development, error in production.
	PanicLevel                  // Logs then panics.
	FatalLevel                  // Logs then exits.
)

// SinkConfig configures one additional log destination.
type SinkConfig struct {
	Type   string                 // "file", "stdout" or "stderr"
	Config map[string]interface{} // Type-specific settings, e.g. {"path": "..."} for files.
}

// Logger is the structured logging surface every component depends on.
type Logger interface {
	GetLevel() LogLevel
	SetLevel(LogLevel)
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	DPanic(msg string, keysAndValues ...interface{})
	Panic(msg string, keysAndValues ...interface{})
	Fatal(msg string, keysAndValues ...interface{})
	Flush() error
	AddSink(identifier string, config SinkConfig) error
	RemoveSink(identifier string) error
	ListSinks() ([]string, error)
}
