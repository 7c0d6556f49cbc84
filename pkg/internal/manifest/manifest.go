// Package manifest stores one parquet row per dataset cell, recording the seed and powers
// that produced it.
package manifest

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

const readBatch = 1024

// Write encodes records as a zstd-compressed parquet file.
func Write(w io.Writer, records []types.CellRecord) error {
	pw := parquet.NewGenericWriter[types.CellRecord](w, parquet.Compression(&parquet.Zstd))
	if _, err := pw.Write(records); err != nil {
		_ = pw.Close()
		return fmt.Errorf("manifest: write rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("manifest: close writer: %w", err)
	}
	return nil
}

// Read decodes every row of a manifest.
func Read(ra io.ReaderAt) ([]types.CellRecord, error) {
	gr := parquet.NewGenericReader[types.CellRecord](ra)
	defer gr.Close()

	out := make([]types.CellRecord, 0, gr.NumRows())
	batch := make([]types.CellRecord, readBatch)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			out = append(out, batch[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("manifest: read rows: %w", err)
		}
	}
	return out, nil
}

// WriteFile writes the manifest to path atomically.
func WriteFile(path string, records []types.CellRecord) error {
	return utils.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		return Write(w, records)
	})
}

// ReadFile reads the manifest at path.
func ReadFile(path string) ([]types.CellRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	defer f.Close()
	return Read(f)
}
