package types

import "time"

// SeedKey identifies the noise realization of one (file, SNR, repeat) cell.
type SeedKey struct {
	GlobalSeed int64
	FileID     string
	SNRdB      float64
	Repeat     int
}

// CellRecord is one manifest row describing how a dataset cell was produced.
type CellRecord struct {
	SourceFile      string  `parquet:"source_file,dict" json:"source_file"`
	ChannelIndex    int32   `parquet:"channel_index" json:"channel_index"`
	ChannelName     string  `parquet:"channel_name,dict" json:"channel_name"`
	SNRIndex        int32   `parquet:"snr_index" json:"snr_index"`
	SNRdB           float64 `parquet:"snr_db" json:"snr_db"`
	Repeat          int32   `parquet:"repeat" json:"repeat"`
	Seed            uint64  `parquet:"seed" json:"seed"`
	NoiseFloorPower float64 `parquet:"noise_floor_power" json:"noise_floor_power"`
	SignalPower     float64 `parquet:"signal_power" json:"signal_power"`
	AddedNoisePower float64 `parquet:"added_noise_power" json:"added_noise_power"`
	Clipped         int32   `parquet:"clipped" json:"clipped"`
	Passthrough     bool    `parquet:"passthrough" json:"passthrough"`
}

// FileStatus is the terminal state of one dispatched file.
type FileStatus string

const (
	FileCompleted FileStatus = "completed"
	FileFailed    FileStatus = "failed"
)

// FileResult reports what happened to one input file.
type FileResult struct {
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Sidecar  string        `json:"sidecar,omitempty"`
	Manifest string        `json:"manifest,omitempty"`
	Status   FileStatus    `json:"status"`
	Err      error         `json:"-"`
	Cells    int           `json:"cells"`
	Clipped  int64         `json:"clipped"`
	Bytes    int64         `json:"bytes"`
	Elapsed  time.Duration `json:"elapsed"`
}

// ProgressEvent is published once per finished file.
type ProgressEvent struct {
	File      string     `json:"file"`
	Output    string     `json:"output,omitempty"`
	Status    FileStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	Completed int        `json:"completed"`
	Total     int        `json:"total"`
	ElapsedMs int64      `json:"elapsed_ms"`
	Timestamp time.Time  `json:"ts"`
}
