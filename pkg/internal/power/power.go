// Package power measures mean complex power over sample windows given in time or index units.
package power

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrEmptyWindow      = errors.New("power: empty estimation window")
	ErrWindowOutOfRange = errors.New("power: estimation window out of range")
	ErrLengthMismatch   = errors.New("power: real and imaginary lengths differ")
)

// indexEpsilon absorbs floating error in t*fs products such as 20e-6*120e6.
const indexEpsilon = 1e-9

// Window is a half-open sample index range [Start, End).
type Window struct {
	Start int
	End   int
}

// Len is the number of samples in the window.
func (w Window) Len() int { return w.End - w.Start }

func (w Window) String() string { return fmt.Sprintf("[%d,%d)", w.Start, w.End) }

// Validate checks that w is non-empty and lies inside a sequence of n samples.
func (w Window) Validate(n int) error {
	if w.Start < 0 || w.End > n {
		return fmt.Errorf("%w: %s for %d samples", ErrWindowOutOfRange, w, n)
	}
	if w.End <= w.Start {
		return fmt.Errorf("%w: %s", ErrEmptyWindow, w)
	}
	return nil
}

// SampleIndex converts an absolute time to a sample index, truncating toward zero.
func SampleIndex(seconds, fs float64) int {
	return int(math.Floor(seconds*fs + indexEpsilon))
}

// WindowFromTime converts [startSec, endSec) to sample indices at fs and validates the result
// against a sequence of n samples.
func WindowFromTime(startSec, endSec, fs float64, n int) (Window, error) {
	w := Window{Start: SampleIndex(startSec, fs), End: SampleIndex(endSec, fs)}
	if err := w.Validate(n); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Estimate returns the mean squared magnitude of the complex sequence (re, im) over w.
func Estimate(re, im []float64, w Window) (float64, error) {
	if len(re) != len(im) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(re), len(im))
	}
	if err := w.Validate(len(re)); err != nil {
		return 0, err
	}
	r := re[w.Start:w.End]
	i := im[w.Start:w.End]
	return (floats.Dot(r, r) + floats.Dot(i, i)) / float64(w.Len()), nil
}

// EstimateComplex is Estimate over a complex128 sequence.
func EstimateComplex(x []complex128, w Window) (float64, error) {
	if err := w.Validate(len(x)); err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range x[w.Start:w.End] {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return sum / float64(w.Len()), nil
}

// DB converts a linear power ratio to decibels.
func DB(ratio float64) float64 { return 10 * math.Log10(ratio) }

// Linear converts decibels to a linear power ratio.
func Linear(db float64) float64 { return math.Pow(10, db/10) }
