// Package builder is the public surface of Radar-ML: constructors and option re-exports for the
// sweep configuration, dataset builder, dispatcher, sinks and logging.
package builder

import (
	internalLogger "github.com/UCLRadarGroup/Radar-ML/pkg/internal/internallogger"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/logschema"
)

type LoggerOption = internalLogger.LoggerOption

type SinkConfig = types.SinkConfig

type SinkType = types.SinkType

type ComponentMetadata = types.ComponentMetadata

type Logger = types.Logger

type Sensor = types.Sensor

const (
	FileSink   = types.FileSink
	StdoutSink = types.StdoutSink
	StderrSink = types.StderrSink
)

func NewLogger(options ...internalLogger.LoggerOption) types.Logger {
	return internalLogger.NewLogger(options...)
}

// LoggerWithLevel sets the minimum level: "debug", "info", "warn" or "error".
func LoggerWithLevel(levelStr string) LoggerOption {
	return internalLogger.LoggerWithLevel(levelStr)
}

// LoggerWithDevelopment enables or disables development mode
func LoggerWithDevelopment(dev bool) LoggerOption {
	return internalLogger.LoggerWithDevelopment(dev)
}

// LoggerWithFields attaches fields to every log line.
func LoggerWithFields(fields map[string]interface{}) LoggerOption {
	return internalLogger.LoggerWithFields(fields)
}

// LoggerWithSchema overrides the log schema identifier field.
func LoggerWithSchema(schema string) LoggerOption {
	return internalLogger.LoggerWithSchema(schema)
}

// Log schema constants for the sweep log format.
const (
	LogSchemaID    = logschema.SchemaID
	LogSchemaField = logschema.FieldSchema
)

type LogLevel = types.LogLevel

const (
	DebugLevel  = types.DebugLevel
	InfoLevel   = types.InfoLevel
	WarnLevel   = types.WarnLevel
	ErrorLevel  = types.ErrorLevel
	DPanicLevel = types.DPanicLevel
	PanicLevel  = types.PanicLevel
	FatalLevel  = types.FatalLevel
)
