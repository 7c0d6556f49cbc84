package internallogger

import (
	"github.com/UCLRadarGroup/Radar-ML/pkg/logschema"
	"go.uber.org/zap/zapcore"
)

// LoggerWithLevel sets the minimum level from its name ("debug", "info", ...).
// Unknown names fall back to info.
func LoggerWithLevel(levelStr string) LoggerOption {
	return func(s *loggerSettings) {
		s.level = ConvertLevel(parseLogLevel(levelStr))
	}
}

// LoggerWithDevelopment switches to capitalized level names for local runs.
func LoggerWithDevelopment(dev bool) LoggerOption {
	return func(s *loggerSettings) {
		s.development = dev
	}
}

// LoggerWithFields attaches fields to every log line.
func LoggerWithFields(fields map[string]interface{}) LoggerOption {
	return func(s *loggerSettings) {
		for key, value := range fields {
			if key == "" {
				continue
			}
			s.fields[key] = value
		}
	}
}

// LoggerWithSchema overrides the log schema identifier field.
func LoggerWithSchema(schema string) LoggerOption {
	return func(s *loggerSettings) {
		s.fields[logschema.FieldSchema] = schema
	}
}

// LoggerWithOutput replaces the base stdout writer.
func LoggerWithOutput(ws zapcore.WriteSyncer) LoggerOption {
	return func(s *loggerSettings) {
		if ws != nil {
			s.output = ws
		}
	}
}

// ZapAdapterWithCallerSkip adds frames to skip when reporting the caller.
func ZapAdapterWithCallerSkip(skip int) LoggerOption {
	return func(s *loggerSettings) {
		s.callerDepth += skip
	}
}
