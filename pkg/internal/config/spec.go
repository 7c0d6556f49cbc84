// Package config holds the sweep configuration: the label-relevant constants shared by every
// file in a run, plus the runtime knobs that do not affect output content.
package config

import (
	"errors"
	"math"
)

var (
	ErrInvalidConfig = errors.New("config: invalid sweep configuration")
	ErrIncompatible  = errors.New("config: sweep configurations differ")
)

const (
	DefaultSamplingFrequency = 3.84e9 / 32
	DefaultGlobalSeed        = 42
	DefaultRepeatsPerSNR     = 300
	DefaultOutputSuffix      = "_degraded"
	DefaultInputExtension    = ".npy"

	ChannelCount = 3
)

// DefaultChannels names the three receive channels in storage order.
var DefaultChannels = []string{"ADC0", "ADC2", "ADC4"}

// TimeWindow is a half-open interval in seconds from the start of a pulse.
type TimeWindow struct {
	Start float64 `yaml:"start_s" json:"start_s"`
	End   float64 `yaml:"end_s" json:"end_s"`
}

// Range is an inclusive arithmetic SNR sweep such as 30, 27, ..., -30.
type Range struct {
	Start float64 `yaml:"start_db"`
	Stop  float64 `yaml:"stop_db"`
	Step  float64 `yaml:"step_db"`
}

// Values expands the range. A zero step, or one pointing away from Stop, yields nil.
func (r Range) Values() []float64 {
	if r.Step == 0 || math.IsNaN(r.Step) || (r.Stop-r.Start)/r.Step < 0 {
		return nil
	}
	n := int(math.Floor((r.Stop-r.Start)/r.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Start + float64(i)*r.Step
	}
	return out
}

// Spec is the mutable, serializable form of a sweep. New turns it into a validated Sweep.
type Spec struct {
	SamplingFrequency float64    `yaml:"sampling_frequency_hz"`
	Channels          []string   `yaml:"channels"`
	GlobalSeed        int64      `yaml:"global_seed"`
	SNRs              []float64  `yaml:"snr_db"`
	SNRRange          *Range     `yaml:"snr_range,omitempty"`
	RepeatsPerSNR     int        `yaml:"repeats_per_snr"`
	NoiseWindow       TimeWindow `yaml:"noise_window"`
	SignalWindow      TimeWindow `yaml:"signal_window"`

	OutputSuffix    string `yaml:"output_suffix"`
	InputExtension  string `yaml:"input_extension"`
	Overflow        string `yaml:"overflow"`
	SilentSignal    string `yaml:"silent_signal"`
	CellConcurrency int    `yaml:"cell_concurrency"`
}

// DefaultSpec matches the 120 MHz three-channel acquisition setup.
func DefaultSpec() Spec {
	return Spec{
		SamplingFrequency: DefaultSamplingFrequency,
		Channels:          append([]string(nil), DefaultChannels...),
		GlobalSeed:        DefaultGlobalSeed,
		SNRs:              Range{Start: 30, Stop: -30, Step: -3}.Values(),
		RepeatsPerSNR:     DefaultRepeatsPerSNR,
		NoiseWindow:       TimeWindow{Start: 0, End: 20e-6},
		SignalWindow:      TimeWindow{Start: 21e-6, End: 119e-6},
		OutputSuffix:      DefaultOutputSuffix,
		InputExtension:    DefaultInputExtension,
		Overflow:          "saturate",
		SilentSignal:      "fail",
		CellConcurrency:   1,
	}
}
