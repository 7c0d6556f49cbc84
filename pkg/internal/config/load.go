package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RADARML_"

// Load reads a YAML file over DefaultSpec, so omitted keys keep their defaults.
func Load(path string) (Spec, error) {
	spec := DefaultSpec()
	raw, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Parse(raw, &spec); err != nil {
		return spec, fmt.Errorf("config: %s: %w", path, err)
	}
	return spec, nil
}

// Parse decodes YAML into spec. Unknown keys are rejected.
func Parse(raw []byte, spec *Spec) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overlays RADARML_* variables from the process environment.
func ApplyEnv(spec Spec) (Spec, error) {
	return ApplyEnvFrom(spec, os.LookupEnv)
}

// ApplyEnvFrom overlays variables resolved through lookup. Unset or blank variables leave the
// field alone; values that do not parse are configuration errors.
func ApplyEnvFrom(spec Spec, lookup func(string) (string, bool)) (Spec, error) {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(strings.Trim(v, `"`))
		return v, ok && v != ""
	}
	bad := func(name, v string, err error) error {
		return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidConfig, EnvPrefix, name, v, err)
	}

	if v, ok := get("SAMPLING_FREQUENCY"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return spec, bad("SAMPLING_FREQUENCY", v, err)
		}
		spec.SamplingFrequency = f
	}
	if v, ok := get("GLOBAL_SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return spec, bad("GLOBAL_SEED", v, err)
		}
		spec.GlobalSeed = n
	}
	if v, ok := get("REPEATS_PER_SNR"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return spec, bad("REPEATS_PER_SNR", v, err)
		}
		spec.RepeatsPerSNR = n
	}
	if v, ok := get("SNR_DB"); ok {
		var snrs []float64
		for _, part := range strings.Split(v, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return spec, bad("SNR_DB", v, err)
			}
			snrs = append(snrs, f)
		}
		spec.SNRs = snrs
		spec.SNRRange = nil
	}
	if v, ok := get("CHANNELS"); ok {
		var chans []string
		for _, part := range strings.Split(v, ",") {
			chans = append(chans, strings.TrimSpace(part))
		}
		spec.Channels = chans
	}
	if v, ok := get("OUTPUT_SUFFIX"); ok {
		spec.OutputSuffix = v
	}
	if v, ok := get("INPUT_EXTENSION"); ok {
		spec.InputExtension = v
	}
	if v, ok := get("OVERFLOW"); ok {
		spec.Overflow = v
	}
	if v, ok := get("SILENT_SIGNAL"); ok {
		spec.SilentSignal = v
	}
	if v, ok := get("CELL_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return spec, bad("CELL_CONCURRENCY", v, err)
		}
		spec.CellConcurrency = n
	}
	return spec, nil
}

// FromFile loads path (defaults when empty), applies the environment and validates.
func FromFile(path string) (*Sweep, error) {
	spec := DefaultSpec()
	if path != "" {
		var err error
		if spec, err = Load(path); err != nil {
			return nil, err
		}
	}
	spec, err := ApplyEnv(spec)
	if err != nil {
		return nil, err
	}
	return New(spec)
}
