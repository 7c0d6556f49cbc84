// Package dispatcher fans a directory of captures out to a bounded pool of workers, each of which
// owns one file from load to persisted output.
package dispatcher

import (
	"errors"
	"sync"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/config"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/dataset"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/meter"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

// CPUFraction is the share of logical CPUs used when no worker count is given.
const CPUFraction = 0.8

var ErrFilesFailed = errors.New("dispatcher: one or more files failed")

// Dispatcher runs the sweep over many files.
type Dispatcher struct {
	componentMetadata types.ComponentMetadata

	cfg       *config.Sweep
	workers   int
	cellConc  int
	outputDir string

	meter     types.Meter
	uploader  types.OutputUploader
	publisher types.ProgressPublisher

	loggers     []types.Logger
	loggersLock sync.Mutex

	sensors     []types.Sensor
	sensorsLock sync.Mutex

	builder *dataset.Builder
}

// New creates a dispatcher for cfg. Without WithMeter a host meter backed by gopsutil is used.
func New(cfg *config.Sweep, options ...types.Option[*Dispatcher]) *Dispatcher {
	d := &Dispatcher{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "DISPATCHER",
		},
		cfg:      cfg,
		cellConc: cfg.CellConcurrency(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}

	loggers := d.snapshotLoggers()
	if d.meter == nil {
		d.meter = meter.New(meter.WithLogger(loggers...))
	}
	d.builder = dataset.NewBuilder(cfg,
		dataset.WithLogger(loggers...),
		dataset.WithSensor(d.snapshotSensors()...),
		dataset.WithCellConcurrency(d.cellConc),
	)
	return d
}

// Config returns the sweep configuration.
func (d *Dispatcher) Config() *config.Sweep { return d.cfg }

// Builder returns the dataset builder every worker shares. It holds no per-file state.
func (d *Dispatcher) Builder() *dataset.Builder { return d.builder }

func (d *Dispatcher) GetComponentMetadata() types.ComponentMetadata { return d.componentMetadata }

// ConnectLogger attaches loggers. Loggers connected after New do not reach the builder.
func (d *Dispatcher) ConnectLogger(loggers ...types.Logger) {
	d.loggersLock.Lock()
	defer d.loggersLock.Unlock()
	for _, l := range loggers {
		if l != nil {
			d.loggers = append(d.loggers, l)
		}
	}
}

// ConnectSensor attaches sensors.
func (d *Dispatcher) ConnectSensor(sensors ...types.Sensor) {
	d.sensorsLock.Lock()
	defer d.sensorsLock.Unlock()
	for _, s := range sensors {
		if s != nil {
			d.sensors = append(d.sensors, s)
		}
	}
}

func (d *Dispatcher) snapshotLoggers() []types.Logger {
	d.loggersLock.Lock()
	defer d.loggersLock.Unlock()
	return append([]types.Logger(nil), d.loggers...)
}

func (d *Dispatcher) snapshotSensors() []types.Sensor {
	d.sensorsLock.Lock()
	defer d.sensorsLock.Unlock()
	return append([]types.Sensor(nil), d.sensors...)
}

// NotifyLoggers writes msg to every connected logger at level.
func (d *Dispatcher) NotifyLoggers(level types.LogLevel, msg string, keysAndValues ...interface{}) {
	for _, logger := range d.snapshotLoggers() {
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
		default:
			logger.Error(msg, keysAndValues...)
		}
	}
}
