package builder

import (
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/config"
)

type Sweep = config.Sweep

type SweepSpec = config.Spec

type TimeWindow = config.TimeWindow

type SNRRange = config.Range

type OverflowPolicy = codec.OverflowPolicy

type SilentPolicy = config.SilentPolicy

const (
	OverflowSaturate  = codec.Saturate
	OverflowWrap      = codec.Wrap
	SilentFail        = config.SilentFail
	SilentPassthrough = config.SilentPassthrough
)

var (
	ErrInvalidConfig = config.ErrInvalidConfig
	ErrIncompatible  = config.ErrIncompatible
)

// DefaultSweepSpec returns the 120 MHz, 21-point, 300-repeat defaults.
func DefaultSweepSpec() SweepSpec { return config.DefaultSpec() }

// NewSweep validates spec.
func NewSweep(spec SweepSpec) (*Sweep, error) { return config.New(spec) }

// LoadSweep reads a YAML file (empty path for defaults) and applies RADARML_* overrides.
func LoadSweep(path string) (*Sweep, error) { return config.FromFile(path) }
