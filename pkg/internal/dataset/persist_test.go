package dataset_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/dataset"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/manifest"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

func writeCapture(t *testing.T, dir, name string, c *types.Capture) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var buf bytes.Buffer
	require.NoError(t, codec.WriteNPYInt16(&buf, c.Shape[:], c.Data))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadAndProbe(t *testing.T) {
	dir := t.TempDir()
	c := makeCapture(3, 4, testSamples, 1000, 11)
	path := writeCapture(t, dir, "capture.npy", c)

	shape, err := dataset.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, c.Shape, shape)

	got, err := dataset.Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Shape, got.Shape)
	assert.Equal(t, c.Data, got.Data)
}

func TestLoadRejectsWrongRank(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flat.npy")
	var buf bytes.Buffer
	require.NoError(t, codec.WriteNPYInt16(&buf, []int{4}, []int16{1, 2, 3, 4}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err := dataset.Load(path)
	require.ErrorIs(t, err, dataset.ErrMalformedCapture)
	_, err = dataset.Probe(path)
	require.ErrorIs(t, err, dataset.ErrMalformedCapture)
}

func TestLoadRejectsWrongDtype(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.npy")
	dict := "{'descr': '<f8', 'fortran_order': False, 'shape': (1, 1, 2), }\n"
	raw := append([]byte("\x93NUMPY\x01\x00"), byte(len(dict)), 0)
	raw = append(raw, dict...)
	raw = append(raw, make([]byte, 16)...)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err := dataset.Load(path)
	require.ErrorIs(t, err, dataset.ErrMalformedCapture)
	require.ErrorIs(t, err, codec.ErrUnsupportedArray)
}

func TestPersistWritesOutputs(t *testing.T) {
	cfg := testSweep(t)
	b := dataset.NewBuilder(cfg)
	res, err := b.Build(context.Background(), "capture.npy", makeCapture(3, 4, testSamples, 1000, 12))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out", "nested")
	out, err := b.Persist(dir, "capture.npy", res)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "capture_degraded.npy"), out.Array)
	assert.Equal(t, filepath.Join(dir, "capture_degraded.json"), out.Sidecar)
	assert.Equal(t, filepath.Join(dir, "capture_degraded.manifest.parquet"), out.Manifest)
	assert.Positive(t, out.Bytes)

	ds, err := dataset.LoadDataset(out.Array)
	require.NoError(t, err)
	assert.Equal(t, res.Dataset.Shape, ds.Shape)
	assert.Equal(t, res.Dataset.Data, ds.Data)

	side, err := dataset.ReadSidecar(out.Sidecar)
	require.NoError(t, err)
	assert.Equal(t, cfg.Fingerprint(), side.Fingerprint)
	assert.Equal(t, "capture.npy", side.SourceFile)
	assert.Equal(t, []int{3, 3, 4, 2 * testSamples}, side.Shape)
	assert.Equal(t, cfg.SNRs(), side.SNRs)
	back, err := side.Sweep()
	require.NoError(t, err)
	require.NoError(t, cfg.Compatible(back))
	assert.Equal(t, cfg.Fingerprint(), back.Fingerprint())

	rows, err := manifest.ReadFile(out.Manifest)
	require.NoError(t, err)
	assert.Equal(t, res.Records, rows)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestPersistLeavesNothingOnFailure(t *testing.T) {
	cfg := testSweep(t)
	b := dataset.NewBuilder(cfg)
	res, err := b.Build(context.Background(), "capture.npy", makeCapture(3, 4, testSamples, 1000, 13))
	require.NoError(t, err)

	dir := t.TempDir()
	// A directory squatting on the manifest name makes the final rename fail.
	blocker := filepath.Join(dir, cfg.ManifestName("capture.npy"))
	require.NoError(t, os.Mkdir(blocker, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocker, "keep"), []byte("x"), 0o644))

	_, err = b.Persist(dir, "capture.npy", res)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(blocker), entries[0].Name())
}

func TestFootprint(t *testing.T) {
	cfg := testSweep(t)
	b := dataset.NewBuilder(cfg, dataset.WithCellConcurrency(2))
	fp := b.Footprint([3]int{3, 10, 256})

	in := int64(3 * 10 * 256 * 2)
	out := int64(3 * 3 * 4 * 256 * 2)
	assert.Greater(t, fp, in+out)
}
