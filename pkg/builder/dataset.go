package builder

import (
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/dataset"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/noise"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

type DatasetBuilder = dataset.Builder

type DatasetResult = dataset.Result

type DatasetOutputs = dataset.Outputs

type Sidecar = dataset.Sidecar

type Capture = types.Capture

type Dataset = types.Dataset

type CellRecord = types.CellRecord

var (
	ErrMalformedCapture = dataset.ErrMalformedCapture
	ErrSilentSignal     = noise.ErrSilentSignal
)

// NewDatasetBuilder creates a builder that degrades captures under cfg.
func NewDatasetBuilder(cfg *Sweep, options ...types.Option[*DatasetBuilder]) *DatasetBuilder {
	return dataset.NewBuilder(cfg, options...)
}

func DatasetBuilderWithLogger(l ...types.Logger) types.Option[*DatasetBuilder] {
	return dataset.WithLogger(l...)
}

func DatasetBuilderWithSensor(s ...types.Sensor) types.Option[*DatasetBuilder] {
	return dataset.WithSensor(s...)
}

// DatasetBuilderWithCellConcurrency splits one file's (channel, SNR) rows over n goroutines.
func DatasetBuilderWithCellConcurrency(n int) types.Option[*DatasetBuilder] {
	return dataset.WithCellConcurrency(n)
}

func DatasetBuilderWithComponentMetadata(name, id string) types.Option[*DatasetBuilder] {
	return dataset.WithComponentMetadata(name, id)
}

// LoadCapture reads a [channels, repeats, 2*samples] int16 .npy capture.
func LoadCapture(path string) (*Capture, error) { return dataset.Load(path) }

// LoadDataset reads a degraded [channels, snrs, repeats, 2*samples] .npy array.
func LoadDataset(path string) (*Dataset, error) { return dataset.LoadDataset(path) }

// ReadSidecar decodes the JSON metadata written beside an output.
func ReadSidecar(path string) (Sidecar, error) { return dataset.ReadSidecar(path) }
