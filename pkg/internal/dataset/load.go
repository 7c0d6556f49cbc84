package dataset

import (
	"fmt"
	"os"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// Load reads a [channels, repeats, interleaved] int16 capture. Anything that is not such an
// array wraps ErrMalformedCapture.
func Load(path string) (*types.Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open capture: %w", err)
	}
	defer f.Close()

	h, data, err := codec.ReadNPYInt16(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedCapture, path, err)
	}
	if len(h.Shape) != 3 {
		return nil, fmt.Errorf("%w: %s: rank %d, want 3", ErrMalformedCapture, path, len(h.Shape))
	}
	return &types.Capture{Shape: [3]int{h.Shape[0], h.Shape[1], h.Shape[2]}, Data: data}, nil
}

// Probe reads only the array header of a capture and returns its shape. Headers whose claimed
// shape does not fit the file are malformed.
func Probe(path string) ([3]int, error) {
	var shape [3]int
	f, err := os.Open(path)
	if err != nil {
		return shape, fmt.Errorf("dataset: open capture: %w", err)
	}
	defer f.Close()

	h, err := codec.ProbeNPYInt16(f)
	if err != nil {
		return shape, fmt.Errorf("%w: %s: %w", ErrMalformedCapture, path, err)
	}
	if len(h.Shape) != 3 {
		return shape, fmt.Errorf("%w: %s: rank %d, want 3", ErrMalformedCapture, path, len(h.Shape))
	}
	copy(shape[:], h.Shape)
	return shape, nil
}

// Footprint estimates the peak memory one worker needs for a capture of the given shape: the
// input samples, the output dataset, the cell records and the float scratch of each cell worker.
func (b *Builder) Footprint(shape [3]int) int64 {
	const recordBytes = 128
	in := int64(shape[0]) * int64(shape[1]) * int64(shape[2]) * 2
	ds := b.cfg.DatasetShape(shape[2])
	cells := int64(ds[0]) * int64(ds[1]) * int64(ds[2])
	out := cells * int64(shape[2]) * 2
	scratch := int64(b.cellConcurrency) * int64(shape[2]) * 8
	return in + out + cells*recordBytes + scratch
}

// LoadDataset reads a degraded [channels, snrs, repeats, interleaved] array.
func LoadDataset(path string) (*types.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open dataset: %w", err)
	}
	defer f.Close()

	h, data, err := codec.ReadNPYInt16(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	if len(h.Shape) != 4 {
		return nil, fmt.Errorf("dataset: %s: rank %d, want 4", path, len(h.Shape))
	}
	return &types.Dataset{Shape: [4]int{h.Shape[0], h.Shape[1], h.Shape[2], h.Shape[3]}, Data: data}, nil
}
