package sensor

import (
	"time"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// WithLogger connects loggers to the sensor.
func WithLogger(logger ...types.Logger) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.ConnectLogger(logger...)
	}
}

// WithMeter connects meters that receive run counters.
func WithMeter(meter ...types.Meter) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.ConnectMeter(meter...)
	}
}

// WithComponentMetadata sets the sensor name and id.
func WithComponentMetadata(name string, id string) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.SetComponentMetadata(name, id)
	}
}

// WithOnRunStartFunc registers callbacks invoked once the worker pool is sized.
func WithOnRunStartFunc(callback ...func(c types.ComponentMetadata, files int, workers int)) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.RegisterOnRunStart(callback...)
	}
}

// WithOnFileStartFunc registers callbacks invoked when a worker picks up a file.
func WithOnFileStartFunc(callback ...func(c types.ComponentMetadata, input string)) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.RegisterOnFileStart(callback...)
	}
}

// WithOnFileCompleteFunc registers callbacks invoked after a file's outputs are persisted.
func WithOnFileCompleteFunc(callback ...func(c types.ComponentMetadata, result types.FileResult)) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.RegisterOnFileComplete(callback...)
	}
}

// WithOnFileErrorFunc registers callbacks invoked when a file fails.
func WithOnFileErrorFunc(callback ...func(c types.ComponentMetadata, input string, err error)) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.RegisterOnFileError(callback...)
	}
}

// WithOnCellDegradedFunc registers callbacks invoked for every dataset cell.
func WithOnCellDegradedFunc(callback ...func(c types.ComponentMetadata, rec types.CellRecord)) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.RegisterOnCellDegraded(callback...)
	}
}

// WithOnUploadFunc registers callbacks invoked after each object upload.
func WithOnUploadFunc(callback ...func(c types.ComponentMetadata, key string, bytes int64, dur time.Duration)) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.RegisterOnUpload(callback...)
	}
}

// WithOnRunCompleteFunc registers callbacks invoked when every file has finished.
func WithOnRunCompleteFunc(callback ...func(c types.ComponentMetadata, completed int, failed int, elapsed time.Duration)) types.Option[types.Sensor] {
	return func(s types.Sensor) {
		s.RegisterOnRunComplete(callback...)
	}
}
