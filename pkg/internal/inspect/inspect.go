// Package inspect reads degraded datasets back and measures what the sweep actually produced.
package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/compression"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/config"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/dataset"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/power"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

var (
	ErrConfigMismatch = errors.New("inspect: dataset was produced with a different configuration")
	ErrShapeMismatch  = errors.New("inspect: dataset shape does not match configuration")
)

// CellStats summarizes every repeat of one (channel, SNR) row.
type CellStats struct {
	Channel       string
	ChannelIndex  int
	SNRIndex      int
	SNRdB         float64
	NoisePower    float64 // mean over repeats of the noise-window power
	NoiseStdDev   float64
	SignalPower   float64 // mean over repeats of the signal-window power
	MeasuredSNRdB float64 // -Inf when the signal window carries no more power than the noise window
	DominantHz    float64 // strongest FFT bin of the first repeat, signed
}

// Summary is the result of inspecting one degraded array.
type Summary struct {
	Path    string
	Sidecar dataset.Sidecar
	Shape   [4]int
	Cells   []CellStats
}

// SidecarPath returns the sidecar that accompanies a degraded array, accepting compressed
// object names such as "a_degraded.npy.zst".
func SidecarPath(path string) string {
	if alg, ok := compression.FromExtension(path); ok {
		path = strings.TrimSuffix(path, path[len(path)-len(compression.Extension(alg)):])
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}

// Summarize verifies that path was produced under cfg and measures each (channel, SNR) row.
func Summarize(cfg *config.Sweep, path string) (Summary, error) {
	sum := Summary{Path: path}

	side, err := dataset.ReadSidecar(SidecarPath(path))
	if err != nil {
		return sum, err
	}
	sum.Sidecar = side
	if err := checkConfig(cfg, side); err != nil {
		return sum, err
	}

	ds, err := loadArray(path)
	if err != nil {
		return sum, err
	}
	sum.Shape = ds.Shape
	if want := cfg.DatasetShape(ds.Shape[3]); ds.Shape != want {
		return sum, fmt.Errorf("%w: %v, want %v", ErrShapeMismatch, ds.Shape, want)
	}

	noiseW, sigW, err := cfg.Windows(ds.Shape[3] / 2)
	if err != nil {
		return sum, err
	}

	for ch := 0; ch < ds.Shape[0]; ch++ {
		for k := 0; k < ds.Shape[1]; k++ {
			cs, err := rowStats(cfg, ds, ch, k, noiseW, sigW)
			if err != nil {
				return sum, err
			}
			sum.Cells = append(sum.Cells, cs)
		}
	}
	return sum, nil
}

func checkConfig(cfg *config.Sweep, side dataset.Sidecar) error {
	if side.Fingerprint == cfg.Fingerprint() {
		return nil
	}
	recorded, err := side.Sweep()
	if err != nil {
		return fmt.Errorf("%w: sidecar configuration invalid: %w", ErrConfigMismatch, err)
	}
	if err := cfg.Compatible(recorded); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigMismatch, err)
	}
	return fmt.Errorf("%w: fingerprint %s, sidecar %s", ErrConfigMismatch, cfg.Fingerprint(), side.Fingerprint)
}

func loadArray(path string) (*types.Dataset, error) {
	alg, compressed := compression.FromExtension(path)
	if !compressed {
		return dataset.LoadDataset(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("inspect: open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := compression.Decompress(&buf, f, alg); err != nil {
		return nil, fmt.Errorf("inspect: %s: %w", path, err)
	}
	return decodeDataset(path, &buf)
}

func decodeDataset(path string, r io.Reader) (*types.Dataset, error) {
	h, data, err := codec.ReadNPYInt16(r)
	if err != nil {
		return nil, fmt.Errorf("inspect: %s: %w", path, err)
	}
	if len(h.Shape) != 4 {
		return nil, fmt.Errorf("%w: rank %d, want 4", ErrShapeMismatch, len(h.Shape))
	}
	return &types.Dataset{Shape: [4]int{h.Shape[0], h.Shape[1], h.Shape[2], h.Shape[3]}, Data: data}, nil
}

func rowStats(cfg *config.Sweep, ds *types.Dataset, ch, k int, noiseW, sigW power.Window) (CellStats, error) {
	repeats := ds.Shape[2]
	noise := make([]float64, repeats)
	signal := make([]float64, repeats)

	n := ds.Shape[3] / 2
	re := make([]float64, n)
	im := make([]float64, n)

	var dominant float64
	for r := 0; r < repeats; r++ {
		if err := codec.DeinterleaveInto(ds.Cell(ch, k, r), re, im); err != nil {
			return CellStats{}, err
		}
		var err error
		if noise[r], err = power.Estimate(re, im, noiseW); err != nil {
			return CellStats{}, err
		}
		if signal[r], err = power.Estimate(re, im, sigW); err != nil {
			return CellStats{}, err
		}
		if r == 0 {
			dominant = DominantFrequency(re, im, cfg.SamplingFrequency())
		}
	}

	cs := CellStats{
		Channel:      cfg.Channel(ch),
		ChannelIndex: ch,
		SNRIndex:     k,
		SNRdB:        cfg.SNR(k),
		NoisePower:   stat.Mean(noise, nil),
		SignalPower:  stat.Mean(signal, nil),
		DominantHz:   dominant,
	}
	if repeats > 1 {
		cs.NoiseStdDev = stat.StdDev(noise, nil)
	}
	cs.MeasuredSNRdB = MeasuredSNR(cs.SignalPower, cs.NoisePower)
	return cs, nil
}

// MeasuredSNR estimates the SNR of a pulse from the total power in its signal window and the
// noise power seen in its noise window.
func MeasuredSNR(signalWindowPower, noisePower float64) float64 {
	excess := signalWindowPower - noisePower
	if excess <= 0 || noisePower <= 0 {
		return math.Inf(-1)
	}
	return power.DB(excess / noisePower)
}

// DominantFrequency returns the signed frequency of the strongest bin of the complex sequence.
func DominantFrequency(re, im []float64, fs float64) float64 {
	n := len(re)
	if n == 0 {
		return 0
	}
	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(re[i], im[i])
	}
	spec := fft.FFT(x)
	mags := make([]float64, n)
	for i, v := range spec {
		mags[i] = cmplx.Abs(v)
	}
	k := floats.MaxIdx(mags)
	if k > n/2 {
		k -= n
	}
	return float64(k) * fs / float64(n)
}
