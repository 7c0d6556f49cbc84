package meter

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shirou/gopsutil/mem"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

type stubLogger struct {
	level     types.LogLevel
	infoCount int32
	warnCount int32
	mu        sync.Mutex
	last      string
}

func (s *stubLogger) GetLevel() types.LogLevel      { return s.level }
func (s *stubLogger) SetLevel(level types.LogLevel) { s.level = level }
func (s *stubLogger) record(msg string) {
	s.mu.Lock()
	s.last = msg
	s.mu.Unlock()
}
func (s *stubLogger) Debug(msg string, _ ...interface{}) { s.record(msg) }
func (s *stubLogger) Info(msg string, _ ...interface{}) {
	atomic.AddInt32(&s.infoCount, 1)
	s.record(msg)
}
func (s *stubLogger) Warn(msg string, _ ...interface{}) {
	atomic.AddInt32(&s.warnCount, 1)
	s.record(msg)
}
func (s *stubLogger) Error(msg string, _ ...interface{})     { s.record(msg) }
func (s *stubLogger) DPanic(msg string, _ ...interface{})    { s.record(msg) }
func (s *stubLogger) Panic(msg string, _ ...interface{})     { s.record(msg) }
func (s *stubLogger) Fatal(msg string, _ ...interface{})     { s.record(msg) }
func (s *stubLogger) Flush() error                           { return nil }
func (s *stubLogger) AddSink(string, types.SinkConfig) error { return nil }
func (s *stubLogger) RemoveSink(string) error                { return nil }
func (s *stubLogger) ListSinks() ([]string, error)           { return nil, nil }

func fixedCPUs(n int) types.Option[*Meter] {
	return WithCPUCountProbe(func() (int, error) { return n, nil })
}

func fixedMemory(avail uint64) types.Option[*Meter] {
	return WithMemoryProbe(func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Available: avail, UsedPercent: 42}, nil
	})
}

func TestCountsAreConcurrencySafe(t *testing.T) {
	m := New(fixedCPUs(4))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.IncrementCount(types.MetricCellsWritten)
			}
		}()
	}
	wg.Wait()
	m.AddCount(types.MetricCellsWritten, 5)

	if got := m.GetMetricCount(types.MetricCellsWritten); got != 8005 {
		t.Fatalf("cells written = %d, want 8005", got)
	}
	if got := m.GetMetricCount("custom_metric"); got != 0 {
		t.Fatalf("untouched metric = %d, want 0", got)
	}
}

func TestRecommendedWorkersCPUFraction(t *testing.T) {
	cases := []struct {
		cpus int
		want int
	}{
		{1, 1},
		{2, 1},
		{5, 4},
		{10, 8},
		{64, 51},
	}
	for _, tc := range cases {
		m := New(fixedCPUs(tc.cpus), fixedMemory(0))
		if got := m.RecommendedWorkers(0.8, 1<<30); got != tc.want {
			t.Errorf("cpus=%d: workers = %d, want %d", tc.cpus, got, tc.want)
		}
	}
}

func TestRecommendedWorkersMemoryCap(t *testing.T) {
	logger := &stubLogger{level: types.DebugLevel}
	m := New(fixedCPUs(32), fixedMemory(10<<30), WithLogger(logger))

	// 10 GiB * 0.8 / 2 GiB = 4 workers.
	if got := m.RecommendedWorkers(0.8, 2<<30); got != 4 {
		t.Fatalf("workers = %d, want 4", got)
	}
	if atomic.LoadInt32(&logger.infoCount) != 1 {
		t.Fatalf("expected one pool-capped log line")
	}

	// A single file larger than the budget still gets one worker.
	if got := m.RecommendedWorkers(0.8, 100<<30); got != 1 {
		t.Fatalf("workers = %d, want 1", got)
	}
}

func TestMemoryBudget(t *testing.T) {
	m := New(fixedCPUs(4), fixedMemory(10<<30))
	if got := m.MemoryBudget(1 << 30); got != 8 {
		t.Fatalf("budget = %d, want 8", got)
	}
	if got := m.MemoryBudget(0); got != 0 {
		t.Fatalf("budget without footprint = %d, want 0", got)
	}
	if got := New(fixedMemory(0)).MemoryBudget(1 << 30); got != 0 {
		t.Fatalf("budget with unknown memory = %d, want 0", got)
	}
}

func TestProbeFailuresFallBack(t *testing.T) {
	logger := &stubLogger{level: types.DebugLevel}
	m := New(
		WithCPUCountProbe(func() (int, error) { return 0, errors.New("no cpuinfo") }),
		WithMemoryProbe(func() (*mem.VirtualMemoryStat, error) { return nil, errors.New("no meminfo") }),
		WithLogger(logger),
	)

	if got := m.LogicalCPUs(); got != runtime.NumCPU() {
		t.Fatalf("cpus = %d, want runtime.NumCPU() = %d", got, runtime.NumCPU())
	}
	if got := m.AvailableMemory(); got != 0 {
		t.Fatalf("available = %d, want 0", got)
	}
	if atomic.LoadInt32(&logger.warnCount) != 2 {
		t.Fatalf("warn count = %d, want 2", logger.warnCount)
	}
}

func TestSnapshot(t *testing.T) {
	m := New(fixedCPUs(2), fixedMemory(1<<30), WithCPUPercentProbe(func() (float64, error) { return 12.5, nil }))
	m.AddCount(types.MetricFilesCompleted, 3)
	m.AddCount(types.MetricCellsWritten, 300)

	snap := m.Snapshot()
	if snap.Counts[types.MetricFilesCompleted] != 3 || snap.Counts[types.MetricCellsWritten] != 300 {
		t.Fatalf("unexpected counts: %v", snap.Counts)
	}
	if _, ok := snap.Counts[types.MetricFilesFailed]; !ok {
		t.Fatalf("snapshot should include every predeclared metric")
	}
	if snap.CPUPercent != 12.5 || snap.MemPercent != 42 {
		t.Fatalf("cpu=%v mem=%v", snap.CPUPercent, snap.MemPercent)
	}
	if snap.Elapsed <= 0 || snap.FilesPerSec <= 0 {
		t.Fatalf("expected positive elapsed and throughput, got %v %v", snap.Elapsed, snap.FilesPerSec)
	}
}
