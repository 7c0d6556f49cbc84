package types

import "time"

const (
	MetricFilesSubmitted = "files_submitted_total_count"
	MetricFilesCompleted = "files_completed_total_count"
	MetricFilesFailed    = "files_failed_total_count"
	MetricCellsWritten   = "cells_written_total_count"
	MetricSamplesClipped = "samples_clipped_total_count"
	MetricBytesWritten   = "bytes_written_total_count"
	MetricBytesUploaded  = "bytes_uploaded_total_count"
)

// MeterSnapshot is a point-in-time copy of the meter counters.
type MeterSnapshot struct {
	Counts      map[string]uint64
	Elapsed     time.Duration
	FilesPerSec float64
	CellsPerSec float64
	CPUPercent  float64
	MemPercent  float64
}

// Meter tracks run counters and probes host resources for pool sizing.
type Meter interface {
	GetComponentMetadata() ComponentMetadata
	IncrementCount(metric string)
	AddCount(metric string, delta uint64)
	GetMetricCount(metric string) uint64
	Snapshot() MeterSnapshot
	LogicalCPUs() int
	AvailableMemory() uint64
	MemoryBudget(perFileBytes int64) int
	RecommendedWorkers(fraction float64, perFileBytes int64) int
	ConnectLogger(...Logger)
}
