// Package sensor provides callback hooks for run telemetry. The dispatcher and the dataset builder
// invoke them; connected meters receive the matching counters automatically.
package sensor

import (
	"sync"
	"time"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

// Sensor holds registered callbacks, loggers and meters.
type Sensor struct {
	componentMetadata types.ComponentMetadata
	metadataLock      sync.Mutex

	OnRunStart     []func(types.ComponentMetadata, int, int)
	OnFileStart    []func(types.ComponentMetadata, string)
	OnFileComplete []func(types.ComponentMetadata, types.FileResult)
	OnFileError    []func(types.ComponentMetadata, string, error)
	OnCellDegraded []func(types.ComponentMetadata, types.CellRecord)
	OnUpload       []func(types.ComponentMetadata, string, int64, time.Duration)
	OnRunComplete  []func(types.ComponentMetadata, int, int, time.Duration)

	callbackLock sync.Mutex
	loggers      []types.Logger
	loggersLock  sync.Mutex
	meters       []types.Meter
	metersLock   sync.Mutex
}

// NewSensor constructs a Sensor with optional configuration.
func NewSensor(options ...types.Option[types.Sensor]) types.Sensor {
	s := &Sensor{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "SENSOR",
		},
	}

	for _, opt := range s.decorateCallbacks(options...) {
		if opt == nil {
			continue
		}
		opt(s)
	}

	return s
}
