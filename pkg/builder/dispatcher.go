package builder

import (
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/dispatcher"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

type Dispatcher = dispatcher.Dispatcher

type DispatchReport = dispatcher.Report

type DispatcherOption = types.Option[*Dispatcher]

type FileResult = types.FileResult

type ProgressEvent = types.ProgressEvent

var ErrFilesFailed = dispatcher.ErrFilesFailed

// NewDispatcher creates the file-level worker pool for cfg.
func NewDispatcher(cfg *Sweep, options ...types.Option[*Dispatcher]) *Dispatcher {
	return dispatcher.New(cfg, options...)
}

// DiscoverInputs lists eligible captures in dir for cfg.
func DiscoverInputs(cfg *Sweep, dir string) ([]string, error) {
	return dispatcher.Discover(dir, cfg.InputExtension(), cfg.OutputSuffix())
}

func DispatcherWithWorkers(n int) types.Option[*Dispatcher] { return dispatcher.WithWorkers(n) }

func DispatcherWithCellConcurrency(n int) types.Option[*Dispatcher] {
	return dispatcher.WithCellConcurrency(n)
}

func DispatcherWithOutputDir(dir string) types.Option[*Dispatcher] {
	return dispatcher.WithOutputDir(dir)
}

func DispatcherWithLogger(l ...types.Logger) types.Option[*Dispatcher] {
	return dispatcher.WithLogger(l...)
}

func DispatcherWithSensor(s ...types.Sensor) types.Option[*Dispatcher] {
	return dispatcher.WithSensor(s...)
}

func DispatcherWithMeter(m types.Meter) types.Option[*Dispatcher] { return dispatcher.WithMeter(m) }

// DispatcherWithUploader copies each persisted output set to object storage.
func DispatcherWithUploader(u types.OutputUploader) types.Option[*Dispatcher] {
	return dispatcher.WithUploader(u)
}

// DispatcherWithPublisher publishes a progress event per finished file.
func DispatcherWithPublisher(p types.ProgressPublisher) types.Option[*Dispatcher] {
	return dispatcher.WithPublisher(p)
}

func DispatcherWithComponentMetadata(name, id string) types.Option[*Dispatcher] {
	return dispatcher.WithComponentMetadata(name, id)
}
