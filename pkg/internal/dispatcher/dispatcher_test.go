package dispatcher_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shirou/gopsutil/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/config"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/dataset"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/dispatcher"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/meter"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/sensor"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

const samples = 128

func testSweep(t *testing.T) *config.Sweep {
	t.Helper()
	spec := config.DefaultSpec()
	spec.SamplingFrequency = 1e6
	spec.SNRs = []float64{10, 0, -10}
	spec.RepeatsPerSNR = 3
	cfg, err := config.New(spec)
	require.NoError(t, err)
	return cfg
}

func testMeter(cpus int, avail uint64) *meter.Meter {
	return meter.New(
		meter.WithCPUCountProbe(func() (int, error) { return cpus, nil }),
		meter.WithCPUPercentProbe(func() (float64, error) { return 10, nil }),
		meter.WithMemoryProbe(func() (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Available: avail, UsedPercent: 50}, nil
		}),
	)
}

func writeNPY(t *testing.T, path string, shape []int, data []int16) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, codec.WriteNPYInt16(f, shape, data))
	require.NoError(t, f.Close())
}

func writeCapture(t *testing.T, dir, name string, n int, seed uint64) string {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, 3))
	repeats := 4
	data := make([]int16, 3*repeats*2*n)
	for i := 0; i < len(data); i += 2 {
		k := (i / 2) % n
		if k >= 21 && k < 119 {
			ph := 0.3 * float64(k)
			data[i] = int16(800 * math.Cos(ph))
			data[i+1] = int16(800 * math.Sin(ph))
			continue
		}
		data[i] = int16(rng.IntN(9) - 4)
		data[i+1] = int16(rng.IntN(9) - 4)
	}
	path := filepath.Join(dir, name)
	writeNPY(t, path, []int{3, repeats, 2 * n}, data)
	return path
}

type fakeUploader struct {
	mu    sync.Mutex
	paths [][]string
	err   error
}

func (f *fakeUploader) GetComponentMetadata() types.ComponentMetadata {
	return types.ComponentMetadata{Type: "FAKE_UPLOADER"}
}

func (f *fakeUploader) Upload(_ context.Context, paths ...string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.paths = append(f.paths, paths)
	return paths, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []types.ProgressEvent
	err    error
}

func (f *fakePublisher) GetComponentMetadata() types.ComponentMetadata {
	return types.ComponentMetadata{Type: "FAKE_PUBLISHER"}
}

func (f *fakePublisher) Publish(_ context.Context, ev types.ProgressEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.npy", "A.NPY", "c_degraded.npy", "notes.txt", "d.npz"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "e.npy"), 0o755))

	got, err := dispatcher.Discover(dir, ".npy", "_degraded")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "A.NPY"), filepath.Join(dir, "b.npy")}, got)

	d := dispatcher.New(testSweep(t), dispatcher.WithMeter(testMeter(2, 0)))
	got, err = d.Discover(dir)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = dispatcher.Discover(filepath.Join(dir, "missing"), ".npy", "_degraded")
	require.Error(t, err)
}

func TestRunProcessesEveryFile(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	var paths []string
	for i, name := range []string{"a.npy", "b.npy", "c.npy"} {
		paths = append(paths, writeCapture(t, in, name, samples, uint64(i+1)))
	}

	m := testMeter(8, 1<<40)
	s := sensor.NewSensor(sensor.WithMeter(m))
	up := &fakeUploader{}
	pub := &fakePublisher{}
	d := dispatcher.New(testSweep(t),
		dispatcher.WithOutputDir(out),
		dispatcher.WithMeter(m),
		dispatcher.WithSensor(s),
		dispatcher.WithUploader(up),
		dispatcher.WithPublisher(pub),
	)

	report, err := d.Run(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Workers, "6 CPU workers capped by 3 files")
	require.Len(t, report.Completed, 3)
	assert.Empty(t, report.Failed)
	assert.Equal(t, 3, report.Total())

	for i, r := range report.Completed {
		assert.Equal(t, paths[i], r.Input)
		assert.Equal(t, types.FileCompleted, r.Status)
		assert.Equal(t, 3*3*3, r.Cells)
		assert.FileExists(t, r.Output)
		assert.FileExists(t, r.Sidecar)
		assert.FileExists(t, r.Manifest)
		assert.Equal(t, out, filepath.Dir(r.Output))
	}
	assert.FileExists(t, filepath.Join(out, "a_degraded.npy"))

	ds, err := dataset.LoadDataset(filepath.Join(out, "b_degraded.npy"))
	require.NoError(t, err)
	assert.Equal(t, [4]int{3, 3, 3, 2 * samples}, ds.Shape)

	assert.Len(t, up.paths, 3)
	for _, p := range up.paths {
		assert.Len(t, p, 3)
	}
	require.Len(t, pub.events, 3)
	seen := map[int]bool{}
	for _, ev := range pub.events {
		assert.Equal(t, types.FileCompleted, ev.Status)
		assert.Equal(t, 3, ev.Total)
		seen[ev.Completed] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, seen)

	assert.Equal(t, uint64(3), m.GetMetricCount(types.MetricFilesSubmitted))
	assert.Equal(t, uint64(3), m.GetMetricCount(types.MetricFilesCompleted))
	assert.Equal(t, uint64(81), m.GetMetricCount(types.MetricCellsWritten))
}

func TestRunIsIndependentOfWorkerCount(t *testing.T) {
	in := t.TempDir()
	var paths []string
	for i, name := range []string{"a.npy", "b.npy", "c.npy", "d.npy"} {
		paths = append(paths, writeCapture(t, in, name, samples, uint64(10+i)))
	}

	run := func(workers, cells int) string {
		out := t.TempDir()
		d := dispatcher.New(testSweep(t),
			dispatcher.WithOutputDir(out),
			dispatcher.WithWorkers(workers),
			dispatcher.WithCellConcurrency(cells),
			dispatcher.WithMeter(testMeter(8, 0)),
		)
		_, err := d.Run(context.Background(), paths)
		require.NoError(t, err)
		return out
	}

	serial, parallel := run(1, 1), run(4, 3)
	for _, name := range []string{"a_degraded.npy", "b_degraded.npy", "c_degraded.npy", "d_degraded.npy"} {
		want, err := os.ReadFile(filepath.Join(serial, name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(parallel, name))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(want, got), name)
	}
}

func TestRunIsolatesFailingFiles(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	bad := filepath.Join(in, "a.npy")
	writeNPY(t, bad, []int{4, 2 * samples}, make([]int16, 8*samples))
	good := writeCapture(t, in, "b.npy", samples, 1)
	short := filepath.Join(in, "c.npy")
	writeNPY(t, short, []int{3, 1, 2 * samples}, make([]int16, 6*samples))

	var mu sync.Mutex
	var failed []string
	s := sensor.NewSensor(sensor.WithOnFileErrorFunc(func(_ types.ComponentMetadata, input string, _ error) {
		mu.Lock()
		failed = append(failed, input)
		mu.Unlock()
	}))
	pub := &fakePublisher{}
	d := dispatcher.New(testSweep(t),
		dispatcher.WithOutputDir(out),
		dispatcher.WithWorkers(2),
		dispatcher.WithSensor(s),
		dispatcher.WithPublisher(pub),
		dispatcher.WithMeter(testMeter(4, 0)),
	)

	report, err := d.Run(context.Background(), []string{bad, good, short})
	require.ErrorIs(t, err, dispatcher.ErrFilesFailed)
	require.ErrorIs(t, err, dataset.ErrMalformedCapture)

	require.Len(t, report.Completed, 1)
	assert.Equal(t, good, report.Completed[0].Input)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, bad, report.Failed[0].Input)
	assert.Equal(t, short, report.Failed[1].Input)
	for _, f := range report.Failed {
		assert.Equal(t, types.FileFailed, f.Status)
		assert.ErrorIs(t, f.Err, dataset.ErrMalformedCapture)
	}
	assert.ElementsMatch(t, []string{bad, short}, failed)

	assert.FileExists(t, filepath.Join(out, "b_degraded.npy"))
	assert.NoFileExists(t, filepath.Join(out, "a_degraded.npy"))
	assert.NoFileExists(t, filepath.Join(out, "c_degraded.npy"))

	var errored int
	for _, ev := range pub.events {
		if ev.Status == types.FileFailed {
			errored++
			assert.NotEmpty(t, ev.Error)
		}
	}
	assert.Equal(t, 2, errored)
}

func TestRunPreflightRejectsShortPulses(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	// 64 samples cannot hold the [21,119) signal window.
	paths := []string{
		writeCapture(t, in, "a.npy", 64, 1),
		writeCapture(t, in, "b.npy", 64, 2),
	}

	started := 0
	s := sensor.NewSensor(sensor.WithOnFileStartFunc(func(types.ComponentMetadata, string) { started++ }))
	d := dispatcher.New(testSweep(t), dispatcher.WithOutputDir(out), dispatcher.WithSensor(s),
		dispatcher.WithMeter(testMeter(4, 0)))

	_, err := d.Run(context.Background(), paths)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.NotErrorIs(t, err, dispatcher.ErrFilesFailed)
	assert.Zero(t, started)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunUploadFailureFailsFile(t *testing.T) {
	in := t.TempDir()
	path := writeCapture(t, in, "a.npy", samples, 1)
	boom := errors.New("bucket gone")

	d := dispatcher.New(testSweep(t),
		dispatcher.WithUploader(&fakeUploader{err: boom}),
		dispatcher.WithPublisher(&fakePublisher{err: errors.New("broker down")}),
		dispatcher.WithMeter(testMeter(1, 0)),
	)
	report, err := d.Run(context.Background(), []string{path})
	require.ErrorIs(t, err, boom)
	require.Len(t, report.Failed, 1)
	// Local outputs are kept; they land beside the input by default.
	assert.FileExists(t, filepath.Join(in, "a_degraded.npy"))
}

func TestRunCancelled(t *testing.T) {
	in := t.TempDir()
	paths := []string{writeCapture(t, in, "a.npy", samples, 1), writeCapture(t, in, "b.npy", samples, 2)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := dispatcher.New(testSweep(t), dispatcher.WithMeter(testMeter(2, 0)))
	report, err := d.Run(ctx, paths)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Failed, 2)
	assert.NoFileExists(t, filepath.Join(in, "a_degraded.npy"))
}

func TestRunEmpty(t *testing.T) {
	d := dispatcher.New(testSweep(t), dispatcher.WithMeter(testMeter(2, 0)))
	report, err := d.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Total())
}

func TestPoolCappedByMemory(t *testing.T) {
	in := t.TempDir()
	var paths []string
	for i, name := range []string{"a.npy", "b.npy", "c.npy", "d.npy"} {
		paths = append(paths, writeCapture(t, in, name, samples, uint64(i)))
	}
	cfg := testSweep(t)
	probe := dispatcher.New(cfg, dispatcher.WithMeter(testMeter(1, 0)))
	fp := probe.Builder().Footprint([3]int{3, 4, 2 * samples})

	// Room for exactly two files at 80% headroom.
	avail := uint64(float64(2*fp)/meter.MemoryHeadroom) + 1
	d := dispatcher.New(cfg, dispatcher.WithWorkers(4), dispatcher.WithOutputDir(t.TempDir()),
		dispatcher.WithMeter(testMeter(16, avail)))

	report, err := d.Run(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Workers)
	assert.Len(t, report.Completed, 4)
}

// writeHeaderOnly writes an int16 npy header claiming shape, followed by a few data bytes.
func writeHeaderOnly(t *testing.T, path, shape string) {
	t.Helper()
	dict := "{'descr': '<i2', 'fortran_order': False, 'shape': " + shape + ", }\n"
	raw := append([]byte("\x93NUMPY\x01\x00"), byte(len(dict)), 0)
	raw = append(raw, dict...)
	raw = append(raw, make([]byte, 16)...)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func TestRunSurvivesImpossibleHeaders(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	good := writeCapture(t, in, "b.npy", samples, 1)
	huge := filepath.Join(in, "y.npy")
	writeHeaderOnly(t, huge, "(3, 100000, 100000)")
	overflow := filepath.Join(in, "z.npy")
	writeHeaderOnly(t, overflow, "(3, 3037000500, 3037000500)")

	d := dispatcher.New(testSweep(t),
		dispatcher.WithOutputDir(out),
		dispatcher.WithWorkers(1),
		dispatcher.WithMeter(testMeter(4, 0)),
	)
	report, err := d.Run(context.Background(), []string{good, huge, overflow})
	require.ErrorIs(t, err, dispatcher.ErrFilesFailed)

	require.Len(t, report.Completed, 1)
	assert.Equal(t, good, report.Completed[0].Input)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, huge, report.Failed[0].Input)
	assert.ErrorIs(t, report.Failed[0].Err, dataset.ErrMalformedCapture)
	assert.ErrorIs(t, report.Failed[0].Err, codec.ErrNotNPY)
	assert.Equal(t, overflow, report.Failed[1].Input)
	assert.ErrorIs(t, report.Failed[1].Err, dataset.ErrMalformedCapture)
	assert.ErrorIs(t, report.Failed[1].Err, codec.ErrUnsupportedArray)
	assert.FileExists(t, filepath.Join(out, "b_degraded.npy"))
}

func TestRunShortFileDoesNotAbortOthers(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	// a.npy sorts first and its 64-sample pulses cannot hold the [21,119) signal window.
	short := writeCapture(t, in, "a.npy", 64, 1)
	good := writeCapture(t, in, "b.npy", samples, 2)

	d := dispatcher.New(testSweep(t),
		dispatcher.WithOutputDir(out),
		dispatcher.WithWorkers(1),
		dispatcher.WithMeter(testMeter(4, 0)),
	)
	report, err := d.Run(context.Background(), []string{short, good})
	require.ErrorIs(t, err, dispatcher.ErrFilesFailed)

	require.Len(t, report.Completed, 1)
	assert.Equal(t, good, report.Completed[0].Input)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, short, report.Failed[0].Input)
	assert.ErrorIs(t, report.Failed[0].Err, dataset.ErrMalformedCapture)
	assert.FileExists(t, filepath.Join(out, "b_degraded.npy"))
	assert.NoFileExists(t, filepath.Join(out, "a_degraded.npy"))
}
