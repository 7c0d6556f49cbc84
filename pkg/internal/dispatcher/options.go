package dispatcher

import "github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"

// WithWorkers fixes the pool width. It is still capped by the memory budget.
func WithWorkers(n int) types.Option[*Dispatcher] {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithCellConcurrency overrides the configured per-file cell concurrency.
func WithCellConcurrency(n int) types.Option[*Dispatcher] {
	return func(d *Dispatcher) {
		if n > 0 {
			d.cellConc = n
		}
	}
}

// WithOutputDir writes every output into dir. By default outputs land beside their input.
func WithOutputDir(dir string) types.Option[*Dispatcher] {
	return func(d *Dispatcher) {
		d.outputDir = dir
	}
}

func WithLogger(logger ...types.Logger) types.Option[*Dispatcher] {
	return func(d *Dispatcher) {
		d.ConnectLogger(logger...)
	}
}

func WithSensor(sensor ...types.Sensor) types.Option[*Dispatcher] {
	return func(d *Dispatcher) {
		d.ConnectSensor(sensor...)
	}
}

func WithMeter(m types.Meter) types.Option[*Dispatcher] {
	return func(d *Dispatcher) {
		d.meter = m
	}
}

// WithUploader copies every persisted output set to object storage.
func WithUploader(u types.OutputUploader) types.Option[*Dispatcher] {
	return func(d *Dispatcher) {
		d.uploader = u
	}
}

// WithPublisher publishes one progress event per finished file.
func WithPublisher(p types.ProgressPublisher) types.Option[*Dispatcher] {
	return func(d *Dispatcher) {
		d.publisher = p
	}
}

// WithComponentMetadata sets the dispatcher name and id.
func WithComponentMetadata(name string, id string) types.Option[*Dispatcher] {
	return func(d *Dispatcher) {
		d.componentMetadata.Name = name
		d.componentMetadata.ID = id
	}
}
