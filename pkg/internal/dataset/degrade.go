package dataset

import (
	"errors"
	"fmt"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/config"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/noise"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/power"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/seed"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// Degraded is one pulse after noise injection, before integer encoding.
type Degraded struct {
	Re, Im []float64
	Seed   seed.Seed

	NoiseFloorPower float64
	SignalPower     float64
	AddedNoisePower float64
	Passthrough     bool
}

type cellStats struct {
	seed        seed.Seed
	noiseFloor  float64
	signal      float64
	added       float64
	passthrough bool
}

// DegradePulse degrades one interleaved pulse for the SNR at snrIdx and the given repeat.
func (b *Builder) DegradePulse(fileID string, pulse []int16, snrIdx, repeat int) (Degraded, error) {
	if len(pulse)%2 != 0 || len(pulse) == 0 {
		return Degraded{}, fmt.Errorf("%w: pulse length %d", ErrMalformedCapture, len(pulse))
	}
	if snrIdx < 0 || snrIdx >= b.cfg.SNRCount() {
		return Degraded{}, fmt.Errorf("dataset: snr index %d out of range [0,%d)", snrIdx, b.cfg.SNRCount())
	}
	noiseW, sigW, err := b.cfg.Windows(len(pulse) / 2)
	if err != nil {
		return Degraded{}, err
	}

	re := make([]float64, len(pulse)/2)
	im := make([]float64, len(pulse)/2)
	st, err := b.degradeInto(re, im, fileID, pulse, noiseW, sigW, snrIdx, repeat)
	if err != nil {
		return Degraded{}, err
	}
	return Degraded{
		Re:              re,
		Im:              im,
		Seed:            st.seed,
		NoiseFloorPower: st.noiseFloor,
		SignalPower:     st.signal,
		AddedNoisePower: st.added,
		Passthrough:     st.passthrough,
	}, nil
}

// degradeInto deinterleaves pulse into (re, im) and adds the cell's noise in place.
func (b *Builder) degradeInto(re, im []float64, fileID string, pulse []int16, noiseW, sigW power.Window, snrIdx, repeat int) (cellStats, error) {
	var st cellStats
	if err := codec.DeinterleaveInto(pulse, re, im); err != nil {
		return st, fmt.Errorf("%w: %v", ErrMalformedCapture, err)
	}

	var err error
	if st.noiseFloor, err = power.Estimate(re, im, noiseW); err != nil {
		return st, err
	}
	if st.signal, err = power.Estimate(re, im, sigW); err != nil {
		return st, err
	}

	rng, sd := seed.ForKey(types.SeedKey{
		GlobalSeed: b.cfg.GlobalSeed(),
		FileID:     fileID,
		SNRdB:      b.cfg.SNR(snrIdx),
		Repeat:     repeat,
	})
	st.seed = sd

	st.added, err = noise.AdditivePower(st.signal, b.cfg.SNR(snrIdx))
	if errors.Is(err, noise.ErrSilentSignal) && b.cfg.SilentPolicy() == config.SilentPassthrough {
		st.passthrough = true
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("dataset: repeat %d at %v dB: %w", repeat, b.cfg.SNR(snrIdx), err)
	}
	if err := noise.Inject(re, im, st.added, rng); err != nil {
		return st, err
	}
	return st, nil
}
