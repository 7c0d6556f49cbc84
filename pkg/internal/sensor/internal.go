package sensor

import (
	"time"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

func (s *Sensor) snapshotMeters() []types.Meter {
	s.metersLock.Lock()
	meters := append([]types.Meter(nil), s.meters...)
	s.metersLock.Unlock()
	return meters
}

func (s *Sensor) incrementMeterCounters(metric string) {
	for _, m := range s.snapshotMeters() {
		m.IncrementCount(metric)
	}
}

func (s *Sensor) addMeterCounters(metric string, delta uint64) {
	if delta == 0 {
		return
	}
	for _, m := range s.snapshotMeters() {
		m.AddCount(metric, delta)
	}
}

// decorateCallbacks appends the built-in hooks that feed connected meters and loggers.
func (s *Sensor) decorateCallbacks(options ...types.Option[types.Sensor]) []types.Option[types.Sensor] {
	return append(
		options,
		WithOnRunStartFunc(func(c types.ComponentMetadata, files int, workers int) {
			s.addMeterCounters(types.MetricFilesSubmitted, uint64(files))
			s.NotifyLoggers(types.DebugLevel, "Run started",
				"component", c, "event", "RunStart", "files", files, "workers", workers)
		}),
		WithOnFileCompleteFunc(func(c types.ComponentMetadata, r types.FileResult) {
			s.incrementMeterCounters(types.MetricFilesCompleted)
			s.addMeterCounters(types.MetricCellsWritten, uint64(r.Cells))
			s.addMeterCounters(types.MetricSamplesClipped, uint64(r.Clipped))
			s.addMeterCounters(types.MetricBytesWritten, uint64(r.Bytes))
		}),
		WithOnFileErrorFunc(func(c types.ComponentMetadata, input string, err error) {
			s.incrementMeterCounters(types.MetricFilesFailed)
		}),
		WithOnUploadFunc(func(c types.ComponentMetadata, key string, bytes int64, dur time.Duration) {
			s.addMeterCounters(types.MetricBytesUploaded, uint64(bytes))
			s.NotifyLoggers(types.DebugLevel, "Object uploaded",
				"component", c, "event", "Upload", "key", key, "bytes", bytes, "duration", dur)
		}),
	)
}
