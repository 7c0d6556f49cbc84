package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/config"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/manifest"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/utils"
)

// Sidecar is the JSON metadata written beside every output array. It carries the label-relevant
// configuration so a consumer can verify it reads the dataset with the same SNR axis.
type Sidecar struct {
	SourceFile        string            `json:"source_file"`
	Fingerprint       string            `json:"config_fingerprint"`
	SamplingFrequency float64           `json:"sampling_frequency_hz"`
	Channels          []string          `json:"channels"`
	GlobalSeed        int64             `json:"global_seed"`
	SNRs              []float64         `json:"snr_db"`
	RepeatsPerSNR     int               `json:"repeats_per_snr"`
	NoiseWindow       config.TimeWindow `json:"noise_window"`
	SignalWindow      config.TimeWindow `json:"signal_window"`
	Shape             []int             `json:"shape"`
	Overflow          string            `json:"overflow"`
	Clipped           int64             `json:"clipped"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Sweep rebuilds the label-relevant configuration recorded in the sidecar.
func (s Sidecar) Sweep() (*config.Sweep, error) {
	spec := config.DefaultSpec()
	spec.SamplingFrequency = s.SamplingFrequency
	spec.Channels = s.Channels
	spec.GlobalSeed = s.GlobalSeed
	spec.SNRs = s.SNRs
	spec.RepeatsPerSNR = s.RepeatsPerSNR
	spec.NoiseWindow = s.NoiseWindow
	spec.SignalWindow = s.SignalWindow
	return config.New(spec)
}

// ReadSidecar decodes a sidecar file.
func ReadSidecar(path string) (Sidecar, error) {
	var s Sidecar
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("dataset: read sidecar: %w", err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("dataset: decode sidecar %s: %w", path, err)
	}
	return s, nil
}

// Outputs names the files written for one input.
type Outputs struct {
	Array    string
	Sidecar  string
	Manifest string
	Bytes    int64
}

// Paths lists the outputs in upload order.
func (o Outputs) Paths() []string { return []string{o.Array, o.Sidecar, o.Manifest} }

// Persist writes the dataset array, its sidecar and its cell manifest into dir. Each file is
// written to a temp file and renamed into place; if any step fails, files already written by this
// call are removed so no partial output set remains.
func (b *Builder) Persist(dir, fileID string, res *Result) (out Outputs, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return out, fmt.Errorf("dataset: create output dir: %w", err)
	}

	var written []string
	defer func() {
		if err != nil {
			for _, p := range written {
				_ = os.Remove(p)
			}
		}
	}()

	ds := res.Dataset
	out.Array = filepath.Join(dir, b.cfg.OutputName(fileID))
	err = utils.WriteFileAtomic(out.Array, 0o644, func(w io.Writer) error {
		return codec.WriteNPYInt16(w, ds.Shape[:], ds.Data)
	})
	if err != nil {
		return out, fmt.Errorf("dataset: write %s: %w", out.Array, err)
	}
	written = append(written, out.Array)

	side := Sidecar{
		SourceFile:        fileID,
		Fingerprint:       b.cfg.Fingerprint(),
		SamplingFrequency: b.cfg.SamplingFrequency(),
		Channels:          b.cfg.Channels(),
		GlobalSeed:        b.cfg.GlobalSeed(),
		SNRs:              b.cfg.SNRs(),
		RepeatsPerSNR:     b.cfg.RepeatsPerSNR(),
		NoiseWindow:       b.cfg.NoiseWindow(),
		SignalWindow:      b.cfg.SignalWindow(),
		Shape:             ds.Shape[:],
		Overflow:          b.cfg.Overflow().String(),
		Clipped:           res.Clipped,
		CreatedAt:         time.Now().UTC(),
	}
	out.Sidecar = filepath.Join(dir, b.cfg.SidecarName(fileID))
	err = utils.WriteFileAtomic(out.Sidecar, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(side)
	})
	if err != nil {
		return out, fmt.Errorf("dataset: write %s: %w", out.Sidecar, err)
	}
	written = append(written, out.Sidecar)

	out.Manifest = filepath.Join(dir, b.cfg.ManifestName(fileID))
	if err = manifest.WriteFile(out.Manifest, res.Records); err != nil {
		return out, fmt.Errorf("dataset: write %s: %w", out.Manifest, err)
	}
	written = append(written, out.Manifest)

	for _, p := range written {
		if fi, statErr := os.Stat(p); statErr == nil {
			out.Bytes += fi.Size()
		}
	}
	return out, nil
}
