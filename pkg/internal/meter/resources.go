package meter

import (
	"runtime"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// LogicalCPUs reports the logical CPU count, falling back to runtime.NumCPU when the probe fails.
func (m *Meter) LogicalCPUs() int {
	n, err := m.cpuCount()
	if err != nil || n < 1 {
		m.NotifyLoggers(types.WarnLevel, "CPU probe failed, using runtime.NumCPU",
			"component", m.GetComponentMetadata(), "event", "LogicalCPUs", "error", err)
		return runtime.NumCPU()
	}
	return n
}

// AvailableMemory reports available physical memory in bytes, or 0 when unknown.
func (m *Meter) AvailableMemory() uint64 {
	vm, err := m.memory()
	if err != nil || vm == nil {
		m.NotifyLoggers(types.WarnLevel, "Memory probe failed",
			"component", m.GetComponentMetadata(), "event", "AvailableMemory", "error", err)
		return 0
	}
	return vm.Available
}

// MemoryBudget returns how many workers of perFileBytes each fit in MemoryHeadroom of available
// memory, at least 1. It returns 0 when there is no cap to apply.
func (m *Meter) MemoryBudget(perFileBytes int64) int {
	if perFileBytes <= 0 {
		return 0
	}
	avail := m.AvailableMemory()
	if avail == 0 {
		return 0
	}
	return max(1, int(float64(avail)*MemoryHeadroom/float64(perFileBytes)))
}

// RecommendedWorkers returns max(1, floor(fraction * logical CPUs)), capped so that the pool's
// combined footprint of perFileBytes per worker stays within MemoryHeadroom of available memory.
// A non-positive perFileBytes or an unknown memory size disables the cap.
func (m *Meter) RecommendedWorkers(fraction float64, perFileBytes int64) int {
	n := max(1, int(float64(m.LogicalCPUs())*fraction))
	if budget := m.MemoryBudget(perFileBytes); budget > 0 && budget < n {
		m.NotifyLoggers(types.InfoLevel, "Worker pool capped by memory",
			"component", m.GetComponentMetadata(), "event", "RecommendedWorkers",
			"cpuWorkers", n, "memoryWorkers", budget, "perFileBytes", perFileBytes)
		n = budget
	}
	return n
}
