package meter

import (
	"github.com/shirou/gopsutil/mem"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// WithLogger connects loggers to the meter.
func WithLogger(logger ...types.Logger) types.Option[*Meter] {
	return func(m *Meter) {
		m.ConnectLogger(logger...)
	}
}

// WithComponentMetadata sets the meter name and id.
func WithComponentMetadata(name string, id string) types.Option[*Meter] {
	return func(m *Meter) {
		m.componentMetadata.Name = name
		m.componentMetadata.ID = id
	}
}

// WithCPUCountProbe replaces the logical CPU probe.
func WithCPUCountProbe(probe func() (int, error)) types.Option[*Meter] {
	return func(m *Meter) {
		if probe != nil {
			m.cpuCount = probe
		}
	}
}

// WithCPUPercentProbe replaces the CPU utilisation probe used by Snapshot.
func WithCPUPercentProbe(probe func() (float64, error)) types.Option[*Meter] {
	return func(m *Meter) {
		if probe != nil {
			m.cpuPercent = probe
		}
	}
}

// WithMemoryProbe replaces the virtual memory probe.
func WithMemoryProbe(probe func() (*mem.VirtualMemoryStat, error)) types.Option[*Meter] {
	return func(m *Meter) {
		if probe != nil {
			m.memory = probe
		}
	}
}
