package builder_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shirou/gopsutil/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UCLRadarGroup/Radar-ML/pkg/builder"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
)

const sweepYAML = `
sampling_frequency_hz: 1000000
global_seed: 7
snr_db: [20, 5]
repeats_per_snr: 8
noise_window: {start_s: 0, end_s: 20.0e-6}
signal_window: {start_s: 21.0e-6, end_s: 119.0e-6}
overflow: saturate
`

func writeTone(t *testing.T, path string) {
	t.Helper()
	const n, repeats = 128, 8
	data := make([]int16, 3*repeats*2*n)
	for i := 0; i < len(data); i += 2 {
		k := (i / 2) % n
		if k >= 21 && k < 119 {
			ph := 2 * math.Pi * 0.125 * float64(k)
			data[i] = int16(500 * math.Cos(ph))
			data[i+1] = int16(500 * math.Sin(ph))
		} else {
			data[i], data[i+1] = int16(k%3-1), int16(k%5-2)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, codec.WriteNPYInt16(f, []int{3, repeats, 2 * n}, data))
	require.NoError(t, f.Close())
}

func TestSweepEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(sweepYAML), 0o644))

	cfg, err := builder.LoadSweep(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 5}, cfg.SNRs())

	in, out := filepath.Join(dir, "in"), filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(in, 0o755))
	writeTone(t, filepath.Join(in, "p1.npy"))
	writeTone(t, filepath.Join(in, "p2.npy"))

	logger := builder.NewLogger(builder.LoggerWithLevel("error"))
	m := builder.NewMeter(
		builder.MeterWithCPUCountProbe(func() (int, error) { return 4, nil }),
		builder.MeterWithMemoryProbe(func() (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Available: 1 << 34, UsedPercent: 10}, nil
		}),
	)
	var cells atomic.Int64
	s := builder.NewSensor(
		builder.SensorWithMeter(m),
		builder.SensorWithOnCellDegradedFunc(func(builder.ComponentMetadata, builder.CellRecord) { cells.Add(1) }),
		builder.SensorWithOnRunCompleteFunc(func(_ builder.ComponentMetadata, completed, failed int, _ time.Duration) {
			assert.Equal(t, 2, completed)
			assert.Zero(t, failed)
		}),
	)

	inputs, err := builder.DiscoverInputs(cfg, in)
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	d := builder.NewDispatcher(cfg,
		builder.DispatcherWithOutputDir(out),
		builder.DispatcherWithLogger(logger),
		builder.DispatcherWithSensor(s),
		builder.DispatcherWithMeter(m),
	)
	report, err := d.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, report.Completed, 2)
	assert.Equal(t, int64(2*3*2*8), cells.Load())
	assert.Equal(t, uint64(2), m.GetMetricCount(builder.MetricFilesCompleted))

	sum, err := builder.Inspect(cfg, filepath.Join(out, "p1_degraded.npy"))
	require.NoError(t, err)
	require.Len(t, sum.Cells, 6)
	for _, c := range sum.Cells {
		assert.InDelta(t, c.SNRdB, c.MeasuredSNRdB, 2.5)
		assert.InDelta(t, 0.125*1e6, c.DominantHz, 1e-6)
	}

	other, err := builder.NewSweep(builder.DefaultSweepSpec())
	require.NoError(t, err)
	_, err = builder.Inspect(other, filepath.Join(out, "p1_degraded.npy"))
	require.ErrorIs(t, err, builder.ErrConfigMismatch)
}
