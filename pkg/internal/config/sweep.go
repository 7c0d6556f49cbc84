package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/power"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

// SilentPolicy decides what happens to a pulse whose signal window has zero power.
type SilentPolicy int

const (
	SilentFail SilentPolicy = iota
	SilentPassthrough
)

func (p SilentPolicy) String() string {
	if p == SilentPassthrough {
		return "passthrough"
	}
	return "fail"
}

// ParseSilentPolicy accepts "fail" (or "") and "passthrough".
func ParseSilentPolicy(s string) (SilentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail", "error":
		return SilentFail, nil
	case "passthrough", "copy":
		return SilentPassthrough, nil
	default:
		return SilentFail, fmt.Errorf("%w: unknown silent_signal policy %q", ErrInvalidConfig, s)
	}
}

// Sweep is a validated, read-only sweep configuration. It is safe to share between goroutines.
type Sweep struct {
	fs        float64
	channels  []string
	seed      int64
	snrs      []float64
	repeats   int
	noise     TimeWindow
	signal    TimeWindow
	suffix    string
	ext       string
	overflow  codec.OverflowPolicy
	silent    SilentPolicy
	cellConc  int
	snrLookup map[float64]int
}

// New validates spec and freezes it. Every failure wraps ErrInvalidConfig.
func New(spec Spec) (*Sweep, error) {
	snrs := spec.SNRs
	if spec.SNRRange != nil {
		snrs = spec.SNRRange.Values()
	}

	if !(spec.SamplingFrequency > 0) || math.IsInf(spec.SamplingFrequency, 0) {
		return nil, fmt.Errorf("%w: sampling frequency %v", ErrInvalidConfig, spec.SamplingFrequency)
	}
	if len(spec.Channels) != ChannelCount {
		return nil, fmt.Errorf("%w: need %d channels, got %d", ErrInvalidConfig, ChannelCount, len(spec.Channels))
	}
	for i, c := range spec.Channels {
		if strings.TrimSpace(c) == "" || utils.Contains(spec.Channels[:i], c) {
			return nil, fmt.Errorf("%w: channel names must be unique and non-empty: %v", ErrInvalidConfig, spec.Channels)
		}
	}
	if len(snrs) == 0 {
		return nil, fmt.Errorf("%w: empty snr list", ErrInvalidConfig)
	}
	lookup := make(map[float64]int, len(snrs))
	for i, v := range snrs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: snr %v is not finite", ErrInvalidConfig, v)
		}
		if _, dup := lookup[v]; dup {
			return nil, fmt.Errorf("%w: duplicate snr %v", ErrInvalidConfig, v)
		}
		lookup[v] = i
	}
	if spec.RepeatsPerSNR < 1 {
		return nil, fmt.Errorf("%w: repeats_per_snr %d", ErrInvalidConfig, spec.RepeatsPerSNR)
	}
	for name, w := range map[string]TimeWindow{"noise_window": spec.NoiseWindow, "signal_window": spec.SignalWindow} {
		if w.Start < 0 || !(w.End > w.Start) || math.IsInf(w.End, 0) {
			return nil, fmt.Errorf("%w: %s [%v, %v)", ErrInvalidConfig, name, w.Start, w.End)
		}
		if power.SampleIndex(w.End, spec.SamplingFrequency) <= power.SampleIndex(w.Start, spec.SamplingFrequency) {
			return nil, fmt.Errorf("%w: %s covers no samples at %v Hz", ErrInvalidConfig, name, spec.SamplingFrequency)
		}
	}
	if spec.OutputSuffix == "" {
		return nil, fmt.Errorf("%w: empty output suffix", ErrInvalidConfig)
	}
	ext := spec.InputExtension
	if ext == "" {
		ext = DefaultInputExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	overflow, err := codec.ParseOverflowPolicy(spec.Overflow)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	silent, err := ParseSilentPolicy(spec.SilentSignal)
	if err != nil {
		return nil, err
	}
	cellConc := spec.CellConcurrency
	if cellConc < 1 {
		cellConc = 1
	}

	return &Sweep{
		fs:        spec.SamplingFrequency,
		channels:  append([]string(nil), spec.Channels...),
		seed:      spec.GlobalSeed,
		snrs:      append([]float64(nil), snrs...),
		repeats:   spec.RepeatsPerSNR,
		noise:     spec.NoiseWindow,
		signal:    spec.SignalWindow,
		suffix:    spec.OutputSuffix,
		ext:       strings.ToLower(ext),
		overflow:  overflow,
		silent:    silent,
		cellConc:  cellConc,
		snrLookup: lookup,
	}, nil
}

// Default is New(DefaultSpec()).
func Default() *Sweep {
	s, err := New(DefaultSpec())
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Sweep) SamplingFrequency() float64     { return s.fs }
func (s *Sweep) GlobalSeed() int64              { return s.seed }
func (s *Sweep) RepeatsPerSNR() int             { return s.repeats }
func (s *Sweep) NoiseWindow() TimeWindow        { return s.noise }
func (s *Sweep) SignalWindow() TimeWindow       { return s.signal }
func (s *Sweep) OutputSuffix() string           { return s.suffix }
func (s *Sweep) InputExtension() string         { return s.ext }
func (s *Sweep) Overflow() codec.OverflowPolicy { return s.overflow }
func (s *Sweep) SilentPolicy() SilentPolicy     { return s.silent }
func (s *Sweep) CellConcurrency() int           { return s.cellConc }

// Channels returns a copy of the channel names.
func (s *Sweep) Channels() []string { return append([]string(nil), s.channels...) }

// Channel returns the name of channel i.
func (s *Sweep) Channel(i int) string { return s.channels[i] }

// SNRs returns a copy of the canonical SNR list.
func (s *Sweep) SNRs() []float64 { return append([]float64(nil), s.snrs...) }

func (s *Sweep) SNR(i int) float64 { return s.snrs[i] }
func (s *Sweep) SNRCount() int     { return len(s.snrs) }

// SNRIndex maps a target SNR to its position on the dataset's SNR axis.
func (s *Sweep) SNRIndex(db float64) (int, bool) {
	i, ok := s.snrLookup[db]
	return i, ok
}

// Spec returns an editable copy of the configuration.
func (s *Sweep) Spec() Spec {
	return Spec{
		SamplingFrequency: s.fs,
		Channels:          s.Channels(),
		GlobalSeed:        s.seed,
		SNRs:              s.SNRs(),
		RepeatsPerSNR:     s.repeats,
		NoiseWindow:       s.noise,
		SignalWindow:      s.signal,
		OutputSuffix:      s.suffix,
		InputExtension:    s.ext,
		Overflow:          s.overflow.String(),
		SilentSignal:      s.silent.String(),
		CellConcurrency:   s.cellConc,
	}
}

// Windows converts the noise and signal windows to sample indices for a pulse of n complex
// samples.
func (s *Sweep) Windows(n int) (noise, signal power.Window, err error) {
	noise, err = power.WindowFromTime(s.noise.Start, s.noise.End, s.fs, n)
	if err != nil {
		return noise, signal, fmt.Errorf("%w: noise window: %v", ErrInvalidConfig, err)
	}
	signal, err = power.WindowFromTime(s.signal.Start, s.signal.End, s.fs, n)
	if err != nil {
		return noise, signal, fmt.Errorf("%w: signal window: %v", ErrInvalidConfig, err)
	}
	return noise, signal, nil
}

// ValidateSampleCount checks that both windows fit inside a pulse of n complex samples.
func (s *Sweep) ValidateSampleCount(n int) error {
	_, _, err := s.Windows(n)
	return err
}

// DatasetShape is the output shape for pulses of the given interleaved length.
func (s *Sweep) DatasetShape(interleaved int) [4]int {
	return [4]int{len(s.channels), len(s.snrs), s.repeats, interleaved}
}

// OutputName maps an input base name such as "a.npy" to "a_degraded.npy".
func (s *Sweep) OutputName(base string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + s.suffix + ext
}

// SidecarName is the JSON metadata file written beside an output.
func (s *Sweep) SidecarName(base string) string {
	return strings.TrimSuffix(base, filepath.Ext(base)) + s.suffix + ".json"
}

// ManifestName is the parquet cell manifest written beside an output.
func (s *Sweep) ManifestName(base string) string {
	return strings.TrimSuffix(base, filepath.Ext(base)) + s.suffix + ".manifest.parquet"
}

type fingerprintFields struct {
	SamplingFrequency float64    `json:"fs"`
	Channels          []string   `json:"channels"`
	GlobalSeed        int64      `json:"seed"`
	SNRs              []float64  `json:"snrs"`
	RepeatsPerSNR     int        `json:"repeats"`
	NoiseWindow       TimeWindow `json:"noise"`
	SignalWindow      TimeWindow `json:"signal"`
}

func (s *Sweep) fingerprintFields() fingerprintFields {
	return fingerprintFields{s.fs, s.channels, s.seed, s.snrs, s.repeats, s.noise, s.signal}
}

// Fingerprint identifies the label-relevant part of the configuration. Runtime knobs such as
// cell concurrency do not change it.
func (s *Sweep) Fingerprint() string {
	b, err := json.Marshal(s.fingerprintFields())
	if err != nil {
		panic(err)
	}
	return utils.Sha256Hex(b)
}

// Compatible returns nil when producer and consumer agree on every label-relevant field, or an
// ErrIncompatible naming the first field that differs.
func (s *Sweep) Compatible(other *Sweep) error {
	a, b := s.fingerprintFields(), other.fingerprintFields()
	switch {
	case a.SamplingFrequency != b.SamplingFrequency:
		return fmt.Errorf("%w: sampling frequency %v vs %v", ErrIncompatible, a.SamplingFrequency, b.SamplingFrequency)
	case !slices.Equal(a.Channels, b.Channels):
		return fmt.Errorf("%w: channels %v vs %v", ErrIncompatible, a.Channels, b.Channels)
	case a.GlobalSeed != b.GlobalSeed:
		return fmt.Errorf("%w: global seed %d vs %d", ErrIncompatible, a.GlobalSeed, b.GlobalSeed)
	case !slices.Equal(a.SNRs, b.SNRs):
		return fmt.Errorf("%w: snr list %v vs %v", ErrIncompatible, a.SNRs, b.SNRs)
	case a.RepeatsPerSNR != b.RepeatsPerSNR:
		return fmt.Errorf("%w: repeats per snr %d vs %d", ErrIncompatible, a.RepeatsPerSNR, b.RepeatsPerSNR)
	case a.NoiseWindow != b.NoiseWindow:
		return fmt.Errorf("%w: noise window %v vs %v", ErrIncompatible, a.NoiseWindow, b.NoiseWindow)
	case a.SignalWindow != b.SignalWindow:
		return fmt.Errorf("%w: signal window %v vs %v", ErrIncompatible, a.SignalWindow, b.SignalWindow)
	}
	return nil
}
