// Package dataset turns one capture into its degraded dataset: every (channel, SNR, repeat) cell
// receives complex Gaussian noise scaled to the target SNR and seeded from the cell's identity.
package dataset

import (
	"errors"
	"sync"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/config"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

var ErrMalformedCapture = errors.New("dataset: malformed capture")

// Builder degrades captures under a fixed sweep configuration. A Builder is safe for concurrent
// use by several dispatcher workers.
type Builder struct {
	componentMetadata types.ComponentMetadata
	cfg               *config.Sweep
	cellConcurrency   int

	loggers     []types.Logger
	loggersLock sync.Mutex
	sensors     []types.Sensor
	sensorsLock sync.Mutex
}

// NewBuilder returns a Builder for cfg. Cell concurrency defaults to cfg.CellConcurrency().
func NewBuilder(cfg *config.Sweep, options ...types.Option[*Builder]) *Builder {
	b := &Builder{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "DATASET_BUILDER",
		},
		cfg:             cfg,
		cellConcurrency: cfg.CellConcurrency(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	if b.cellConcurrency < 1 {
		b.cellConcurrency = 1
	}
	return b
}

// Config returns the sweep the builder was created with.
func (b *Builder) Config() *config.Sweep { return b.cfg }

// GetComponentMetadata returns the builder metadata.
func (b *Builder) GetComponentMetadata() types.ComponentMetadata { return b.componentMetadata }

// ConnectLogger attaches loggers.
func (b *Builder) ConnectLogger(loggers ...types.Logger) {
	b.loggersLock.Lock()
	defer b.loggersLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			b.loggers = append(b.loggers, l)
		}
	}
}

// ConnectSensor attaches sensors that receive one OnCellDegraded call per cell.
func (b *Builder) ConnectSensor(sensors ...types.Sensor) {
	b.sensorsLock.Lock()
	defer b.sensorsLock.Unlock()
	for _, s := range sensors {
		if s != nil {
			b.sensors = append(b.sensors, s)
		}
	}
}

func (b *Builder) snapshotSensors() []types.Sensor {
	b.sensorsLock.Lock()
	defer b.sensorsLock.Unlock()
	return append([]types.Sensor(nil), b.sensors...)
}

// NotifyLoggers writes msg to every connected logger at level.
func (b *Builder) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	b.loggersLock.Lock()
	loggers := append([]types.Logger(nil), b.loggers...)
	b.loggersLock.Unlock()

	for _, logger := range loggers {
		if logger.GetLevel() > level {
			continue
		}
		switch level {
		case types.DebugLevel:
			logger.Debug(msg, keysAndValues...)
		case types.InfoLevel:
			logger.Info(msg, keysAndValues...)
		case types.WarnLevel:
			logger.Warn(msg, keysAndValues...)
		case types.ErrorLevel:
			logger.Error(msg, keysAndValues...)
		case types.DPanicLevel:
			logger.DPanic(msg, keysAndValues...)
		case types.PanicLevel:
			logger.Panic(msg, keysAndValues...)
		case types.FatalLevel:
			logger.Fatal(msg, keysAndValues...)
		}
	}
}
