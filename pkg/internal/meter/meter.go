// Package meter counts run progress and probes the host for worker pool sizing.
package meter

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

// MemoryHeadroom is the share of available memory the worker pool may plan to use.
const MemoryHeadroom = 0.8

// Meter is the gopsutil-backed types.Meter.
type Meter struct {
	componentMetadata types.ComponentMetadata

	mu        sync.Mutex
	counts    map[string]*uint64
	startTime time.Time

	cpuCount   func() (int, error)
	cpuPercent func() (float64, error)
	memory     func() (*mem.VirtualMemoryStat, error)

	loggers     []types.Logger
	loggersLock sync.Mutex
}

// New constructs a Meter. The clock starts immediately.
func New(options ...types.Option[*Meter]) *Meter {
	m := &Meter{
		componentMetadata: types.ComponentMetadata{
			ID:   utils.GenerateUniqueHash(),
			Type: "METER",
		},
		counts:    make(map[string]*uint64),
		startTime: time.Now(),
		cpuCount: func() (int, error) {
			return cpu.Counts(true)
		},
		cpuPercent: func() (float64, error) {
			p, err := cpu.Percent(0, false)
			if err != nil || len(p) == 0 {
				return 0, err
			}
			return p[0], nil
		},
		memory: mem.VirtualMemory,
	}
	for _, metric := range []string{
		types.MetricFilesSubmitted,
		types.MetricFilesCompleted,
		types.MetricFilesFailed,
		types.MetricCellsWritten,
		types.MetricSamplesClipped,
		types.MetricBytesWritten,
		types.MetricBytesUploaded,
	} {
		m.counts[metric] = new(uint64)
	}

	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *Meter) counter(metric string) *uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counts[metric]
	if !ok {
		c = new(uint64)
		m.counts[metric] = c
	}
	return c
}

// IncrementCount adds one to metric.
func (m *Meter) IncrementCount(metric string) {
	atomic.AddUint64(m.counter(metric), 1)
}

// AddCount adds delta to metric.
func (m *Meter) AddCount(metric string, delta uint64) {
	atomic.AddUint64(m.counter(metric), delta)
}

// GetMetricCount returns the current value of metric (zero if never touched).
func (m *Meter) GetMetricCount(metric string) uint64 {
	return atomic.LoadUint64(m.counter(metric))
}

// ResetClock restarts the elapsed-time clock used by Snapshot.
func (m *Meter) ResetClock() {
	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}

// Snapshot copies every counter and derives throughput since the clock started.
func (m *Meter) Snapshot() types.MeterSnapshot {
	m.mu.Lock()
	counts := make(map[string]uint64, len(m.counts))
	for k, v := range m.counts {
		counts[k] = atomic.LoadUint64(v)
	}
	elapsed := time.Since(m.startTime)
	m.mu.Unlock()

	snap := types.MeterSnapshot{Counts: counts, Elapsed: elapsed}
	if secs := elapsed.Seconds(); secs > 0 {
		snap.FilesPerSec = float64(counts[types.MetricFilesCompleted]) / secs
		snap.CellsPerSec = float64(counts[types.MetricCellsWritten]) / secs
	}
	if p, err := m.cpuPercent(); err == nil {
		snap.CPUPercent = p
	}
	if vm, err := m.memory(); err == nil && vm != nil {
		snap.MemPercent = vm.UsedPercent
	}
	return snap
}
