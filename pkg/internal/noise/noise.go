// Package noise synthesizes circularly symmetric complex Gaussian noise calibrated to a target SNR.
package noise

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	ErrInvalidPower   = errors.New("noise: invalid power")
	ErrInvalidSNR     = errors.New("noise: invalid target snr")
	ErrSilentSignal   = errors.New("noise: signal window has zero power")
	ErrLengthMismatch = errors.New("noise: sequence lengths differ")
)

// AdditivePower returns the noise power that brings a signal of signalPower to snrDB.
// At exactly 0 dB the result is signalPower itself.
func AdditivePower(signalPower, snrDB float64) (float64, error) {
	if math.IsNaN(snrDB) || math.IsInf(snrDB, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSNR, snrDB)
	}
	if math.IsNaN(signalPower) || math.IsInf(signalPower, 0) || signalPower < 0 {
		return 0, fmt.Errorf("%w: signal power %v", ErrInvalidPower, signalPower)
	}
	if signalPower == 0 {
		return 0, ErrSilentSignal
	}
	if snrDB == 0 {
		return signalPower, nil
	}
	return signalPower / math.Pow(10, snrDB/10), nil
}

// Synthesize draws n in-phase samples followed by n quadrature samples, each N(0, noisePower/2),
// so the complex sum is circularly symmetric with total variance noisePower.
func Synthesize(noisePower float64, n int, rng *rand.Rand) (re, im []float64, err error) {
	if math.IsNaN(noisePower) || math.IsInf(noisePower, 0) || noisePower < 0 {
		return nil, nil, fmt.Errorf("%w: noise power %v", ErrInvalidPower, noisePower)
	}
	if n < 0 {
		return nil, nil, fmt.Errorf("noise: negative length %d", n)
	}
	re = make([]float64, n)
	im = make([]float64, n)
	fill(re, noisePower, rng)
	fill(im, noisePower, rng)
	return re, im, nil
}

func fill(dst []float64, noisePower float64, rng *rand.Rand) {
	sigma := math.Sqrt(noisePower / 2)
	for i := range dst {
		dst[i] = sigma * rng.NormFloat64()
	}
}

// Add adds (nre, nim) to (re, im) in place over the full length. No clipping is applied.
func Add(re, im, nre, nim []float64) error {
	if len(re) != len(im) || len(re) != len(nre) || len(nre) != len(nim) {
		return fmt.Errorf("%w: signal %d/%d noise %d/%d", ErrLengthMismatch, len(re), len(im), len(nre), len(nim))
	}
	for i := range re {
		re[i] += nre[i]
		im[i] += nim[i]
	}
	return nil
}

// Inject adds noise of noisePower to (re, im) in place without allocating. It consumes the
// generator in the same order as Synthesize, so Inject(x) equals Add(x, Synthesize(...)) bit for bit.
func Inject(re, im []float64, noisePower float64, rng *rand.Rand) error {
	if math.IsNaN(noisePower) || math.IsInf(noisePower, 0) || noisePower < 0 {
		return fmt.Errorf("%w: noise power %v", ErrInvalidPower, noisePower)
	}
	if len(re) != len(im) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(re), len(im))
	}
	sigma := math.Sqrt(noisePower / 2)
	// The conversions keep the product rounded before the add (no fused multiply-add).
	for i := range re {
		re[i] += float64(sigma * rng.NormFloat64())
	}
	for i := range im {
		im[i] += float64(sigma * rng.NormFloat64())
	}
	return nil
}
