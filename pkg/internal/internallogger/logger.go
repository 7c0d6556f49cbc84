package internallogger

import (
	"os"
	"sync"

	"github.com/UCLRadarGroup/Radar-ML/pkg/logschema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLoggerAdapter implements types.Logger on top of zap with hot-pluggable sinks.
type ZapLoggerAdapter struct {
	mu          sync.Mutex
	logger      *zap.Logger
	atomicLevel zap.AtomicLevel
	encConfig   zapcore.EncoderConfig
	baseCore    zapcore.Core
	baseFields  []zap.Field
	callerDepth int
	callerOn    bool
	sinks       map[string]sinkEntry
}

type loggerSettings struct {
	level       zapcore.Level
	development bool
	callerDepth int
	fields      map[string]interface{}
	output      zapcore.WriteSyncer
}

// LoggerOption mutates logger settings before construction.
type LoggerOption func(*loggerSettings)

// NewLogger builds a JSON logger writing to stdout at info level unless overridden.
func NewLogger(options ...LoggerOption) *ZapLoggerAdapter {
	s := &loggerSettings{
		level:       zapcore.InfoLevel,
		callerDepth: 2,
		fields:      map[string]interface{}{logschema.FieldSchema: logschema.SchemaID},
		output:      zapcore.Lock(os.Stdout),
	}
	for _, opt := range options {
		opt(s)
	}

	encCfg := standardEncoderConfig()
	if s.development {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	z := &ZapLoggerAdapter{
		atomicLevel: zap.NewAtomicLevelAt(s.level),
		encConfig:   encCfg,
		baseFields:  fieldsFromMap(s.fields),
		callerDepth: s.callerDepth,
		callerOn:    true,
		sinks:       make(map[string]sinkEntry),
	}
	z.baseCore = zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), s.output, z.atomicLevel)

	z.mu.Lock()
	z.rebuildLoggerLocked()
	z.mu.Unlock()
	return z
}
