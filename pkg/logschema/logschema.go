package logschema

// Log schema constants for structured sweep logs.
const (
	SchemaID    = "radarml.sweep.log.v1"
	FieldSchema = "log_schema"

	FieldTimestamp = "ts"
	FieldLevel     = "level"
	FieldMessage   = "msg"
	FieldLogger    = "logger"
	FieldCaller    = "caller"
	FieldStack     = "stack"

	FieldComponent = "component"
	FieldEvent     = "event"
	FieldResult    = "result"
	FieldError     = "error"

	FieldInput    = "input"
	FieldOutput   = "output"
	FieldChannel  = "channel"
	FieldSNR      = "snr_db"
	FieldRepeat   = "repeat"
	FieldSeed     = "seed"
	FieldProgress = "progress"
)

// LogRecord is a generic map representation of a log entry.
type LogRecord map[string]interface{}
