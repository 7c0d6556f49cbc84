package builder

import (
	"time"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/sensor"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// NewSensor creates a lifecycle sensor. Connected meters are fed automatically.
func NewSensor(options ...types.Option[types.Sensor]) types.Sensor {
	return sensor.NewSensor(options...)
}

func SensorWithLogger(l ...types.Logger) types.Option[types.Sensor] { return sensor.WithLogger(l...) }

func SensorWithMeter(m ...types.Meter) types.Option[types.Sensor] { return sensor.WithMeter(m...) }

func SensorWithComponentMetadata(name, id string) types.Option[types.Sensor] {
	return sensor.WithComponentMetadata(name, id)
}

// SensorWithOnRunStartFunc registers a callback for the start of a dispatch run.
func SensorWithOnRunStartFunc(callback ...func(c ComponentMetadata, files int, workers int)) types.Option[types.Sensor] {
	return sensor.WithOnRunStartFunc(callback...)
}

// SensorWithOnFileStartFunc registers a callback invoked when a worker picks up a file.
func SensorWithOnFileStartFunc(callback ...func(c ComponentMetadata, input string)) types.Option[types.Sensor] {
	return sensor.WithOnFileStartFunc(callback...)
}

// SensorWithOnFileCompleteFunc registers a callback for each persisted file.
func SensorWithOnFileCompleteFunc(callback ...func(c ComponentMetadata, result FileResult)) types.Option[types.Sensor] {
	return sensor.WithOnFileCompleteFunc(callback...)
}

// SensorWithOnFileErrorFunc registers a callback for each failed file.
func SensorWithOnFileErrorFunc(callback ...func(c ComponentMetadata, input string, err error)) types.Option[types.Sensor] {
	return sensor.WithOnFileErrorFunc(callback...)
}

// SensorWithOnCellDegradedFunc registers a callback for every dataset cell. It runs on the hot path.
func SensorWithOnCellDegradedFunc(callback ...func(c ComponentMetadata, rec CellRecord)) types.Option[types.Sensor] {
	return sensor.WithOnCellDegradedFunc(callback...)
}

// SensorWithOnUploadFunc registers a callback for every uploaded object.
func SensorWithOnUploadFunc(callback ...func(c ComponentMetadata, key string, bytes int64, dur time.Duration)) types.Option[types.Sensor] {
	return sensor.WithOnUploadFunc(callback...)
}

// SensorWithOnRunCompleteFunc registers a callback for the end of a dispatch run.
func SensorWithOnRunCompleteFunc(callback ...func(c ComponentMetadata, completed int, failed int, elapsed time.Duration)) types.Option[types.Sensor] {
	return sensor.WithOnRunCompleteFunc(callback...)
}
