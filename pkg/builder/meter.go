package builder

import (
	"github.com/shirou/gopsutil/mem"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/meter"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

type Meter = meter.Meter

type MeterSnapshot = types.MeterSnapshot

// Counter names maintained by sensors with a connected meter.
const (
	MetricFilesSubmitted = types.MetricFilesSubmitted
	MetricFilesCompleted = types.MetricFilesCompleted
	MetricFilesFailed    = types.MetricFilesFailed
	MetricCellsWritten   = types.MetricCellsWritten
	MetricSamplesClipped = types.MetricSamplesClipped
	MetricBytesWritten   = types.MetricBytesWritten
	MetricBytesUploaded  = types.MetricBytesUploaded
)

// NewMeter creates a counter set with host CPU and memory probes.
func NewMeter(options ...types.Option[*Meter]) *Meter { return meter.New(options...) }

func MeterWithLogger(l ...types.Logger) types.Option[*Meter] { return meter.WithLogger(l...) }

func MeterWithComponentMetadata(name, id string) types.Option[*Meter] {
	return meter.WithComponentMetadata(name, id)
}

// MeterWithCPUCountProbe replaces the logical CPU probe, e.g. to honour a container quota.
func MeterWithCPUCountProbe(probe func() (int, error)) types.Option[*Meter] {
	return meter.WithCPUCountProbe(probe)
}

func MeterWithMemoryProbe(probe func() (*mem.VirtualMemoryStat, error)) types.Option[*Meter] {
	return meter.WithMemoryProbe(probe)
}
