package dataset

import "github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"

// WithLogger connects loggers to the builder.
func WithLogger(logger ...types.Logger) types.Option[*Builder] {
	return func(b *Builder) {
		b.ConnectLogger(logger...)
	}
}

// WithSensor connects sensors to the builder.
func WithSensor(sensor ...types.Sensor) types.Option[*Builder] {
	return func(b *Builder) {
		b.ConnectSensor(sensor...)
	}
}

// WithCellConcurrency splits each file's (channel, SNR) rows across n goroutines. Output is
// identical for every n.
func WithCellConcurrency(n int) types.Option[*Builder] {
	return func(b *Builder) {
		b.cellConcurrency = n
	}
}

// WithComponentMetadata sets the builder name and id.
func WithComponentMetadata(name string, id string) types.Option[*Builder] {
	return func(b *Builder) {
		b.componentMetadata.Name = name
		b.componentMetadata.ID = id
	}
}
