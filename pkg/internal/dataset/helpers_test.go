package dataset_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/config"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
)

// At 1 MHz the default-shaped windows become [0,20) and [21,119) samples.
const (
	testFS      = 1e6
	testSamples = 128
)

func testSweep(t *testing.T, mutate ...func(*config.Spec)) *config.Sweep {
	t.Helper()
	spec := config.DefaultSpec()
	spec.SamplingFrequency = testFS
	spec.SNRs = []float64{10, 0, -10}
	spec.RepeatsPerSNR = 4
	for _, m := range mutate {
		m(&spec)
	}
	cfg, err := config.New(spec)
	require.NoError(t, err)
	return cfg
}

// makeCapture builds a capture with a tone of amplitude amp inside [21,119) and a low integer
// noise floor elsewhere.
func makeCapture(channels, repeats, samples int, amp float64, seed uint64) *types.Capture {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	c := &types.Capture{
		Shape: [3]int{channels, repeats, 2 * samples},
		Data:  make([]int16, channels*repeats*2*samples),
	}
	for ch := 0; ch < channels; ch++ {
		for rep := 0; rep < repeats; rep++ {
			p := c.Pulse(ch, rep)
			for i := 0; i < samples; i++ {
				if i >= 21 && i < 119 {
					phase := 2*math.Pi*0.05*float64(i) + float64(ch)
					p[2*i] = int16(amp * math.Cos(phase))
					p[2*i+1] = int16(amp * math.Sin(phase))
					continue
				}
				p[2*i] = int16(rng.IntN(7) - 3)
				p[2*i+1] = int16(rng.IntN(7) - 3)
			}
		}
	}
	return c
}
