package codec

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrOddLength      = errors.New("codec: interleaved sequence has odd length")
	ErrLengthMismatch = errors.New("codec: sequence lengths differ")
	ErrUnknownPolicy  = errors.New("codec: unknown overflow policy")
)

// OverflowPolicy decides how truncated samples outside the int16 range are encoded.
type OverflowPolicy int

const (
	// Saturate clamps to [math.MinInt16, math.MaxInt16].
	Saturate OverflowPolicy = iota
	// Wrap keeps the low 16 bits of the truncated value (two's-complement wraparound).
	Wrap
)

func (p OverflowPolicy) String() string {
	switch p {
	case Saturate:
		return "saturate"
	case Wrap:
		return "wrap"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy accepts "saturate" (or "") and "wrap".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "saturate", "clamp":
		return Saturate, nil
	case "wrap":
		return Wrap, nil
	default:
		return Saturate, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// EncodeSample truncates v toward zero and applies policy. The second result reports whether v
// was outside the representable range (or NaN, which encodes as 0).
func EncodeSample(v float64, policy OverflowPolicy) (int16, bool) {
	if math.IsNaN(v) {
		return 0, true
	}
	t := math.Trunc(v)
	if t >= math.MinInt16 && t <= math.MaxInt16 {
		return int16(t), false
	}
	if policy == Wrap && t > math.MinInt64 && t < math.MaxInt64 {
		return int16(int64(t)), true
	}
	if t > 0 {
		return math.MaxInt16, true
	}
	return math.MinInt16, true
}

// Deinterleave splits [re0, im0, re1, im1, ...] into real and imaginary sequences.
func Deinterleave(src []int16) (re, im []float64, err error) {
	if len(src)%2 != 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrOddLength, len(src))
	}
	n := len(src) / 2
	re = make([]float64, n)
	im = make([]float64, n)
	return re, im, DeinterleaveInto(src, re, im)
}

// DeinterleaveInto is Deinterleave into caller-owned buffers of length len(src)/2.
func DeinterleaveInto(src []int16, re, im []float64) error {
	if len(src)%2 != 0 {
		return fmt.Errorf("%w: %d", ErrOddLength, len(src))
	}
	n := len(src) / 2
	if len(re) != n || len(im) != n {
		return fmt.Errorf("%w: need %d, got %d/%d", ErrLengthMismatch, n, len(re), len(im))
	}
	for i := 0; i < n; i++ {
		re[i] = float64(src[2*i])
		im[i] = float64(src[2*i+1])
	}
	return nil
}

// Interleave encodes (re, im) into dst at alternating positions and returns how many values
// fell outside the int16 range. dst must have length 2*len(re).
func Interleave(re, im []float64, dst []int16, policy OverflowPolicy) (int, error) {
	if len(re) != len(im) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(re), len(im))
	}
	if len(dst) != 2*len(re) {
		return 0, fmt.Errorf("%w: dst %d for %d complex samples", ErrLengthMismatch, len(dst), len(re))
	}
	clipped := 0
	for i := range re {
		r, cr := EncodeSample(re[i], policy)
		q, ci := EncodeSample(im[i], policy)
		dst[2*i] = r
		dst[2*i+1] = q
		if cr {
			clipped++
		}
		if ci {
			clipped++
		}
	}
	return clipped, nil
}
