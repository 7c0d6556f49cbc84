package builder

import "github.com/UCLRadarGroup/Radar-ML/pkg/internal/inspect"

type InspectSummary = inspect.Summary

type InspectCellStats = inspect.CellStats

var ErrConfigMismatch = inspect.ErrConfigMismatch

// Inspect checks that path was produced under cfg and measures every (channel, SNR) row.
func Inspect(cfg *Sweep, path string) (InspectSummary, error) { return inspect.Summarize(cfg, path) }

// SidecarPath names the JSON sidecar of an output array, compressed or not.
func SidecarPath(arrayPath string) string { return inspect.SidecarPath(arrayPath) }
