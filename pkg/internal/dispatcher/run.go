package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/dataset"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/logschema"
)

// Report lists what happened to every submitted file, each slice sorted by input path.
type Report struct {
	Completed []types.FileResult
	Failed    []types.FileResult
	Workers   int
	Elapsed   time.Duration
}

// Total is the number of files the run accounted for.
func (r Report) Total() int { return len(r.Completed) + len(r.Failed) }

// Run degrades every path. A file that fails never stops the others; when any file fails the
// returned error wraps ErrFilesFailed and every per-file error. When no input's pulses fit the
// configured windows the run aborts before any worker starts.
func (d *Dispatcher) Run(ctx context.Context, paths []string) (Report, error) {
	start := time.Now()
	var report Report
	if len(paths) == 0 {
		d.NotifyLoggers(types.InfoLevel, "No input files",
			"component", d.componentMetadata, "event", "Run", "result", "SUCCESS")
		return report, nil
	}

	footprint, err := d.preflight(paths)
	if err != nil {
		d.NotifyLoggers(types.ErrorLevel, "Pre-flight failed",
			"component", d.componentMetadata, "event", "Preflight", "result", "FAILURE", "error", err)
		return report, err
	}
	report.Workers = d.poolSize(footprint, len(paths))

	for _, s := range d.snapshotSensors() {
		s.InvokeOnRunStart(d.componentMetadata, len(paths), report.Workers)
	}
	d.NotifyLoggers(types.InfoLevel, "Sweep started",
		"component", d.componentMetadata,
		"event", "Run",
		"files", len(paths),
		"workers", report.Workers,
		"perFileBytes", footprint,
		"snrs", d.cfg.SNRCount(),
		"repeatsPerSNR", d.cfg.RepeatsPerSNR(),
	)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
		jobs      = make(chan string)
	)
	for w := 0; w < report.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				res := d.processFile(ctx, path)

				mu.Lock()
				completed++
				done := completed
				if res.Status == types.FileCompleted {
					report.Completed = append(report.Completed, res)
				} else {
					report.Failed = append(report.Failed, res)
				}
				mu.Unlock()

				d.finish(ctx, res, done, len(paths))
			}
		}()
	}
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	sort.Slice(report.Completed, func(i, j int) bool { return report.Completed[i].Input < report.Completed[j].Input })
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Input < report.Failed[j].Input })
	report.Elapsed = time.Since(start)

	for _, s := range d.snapshotSensors() {
		s.InvokeOnRunComplete(d.componentMetadata, len(report.Completed), len(report.Failed), report.Elapsed)
	}
	snap := d.meter.Snapshot()
	d.NotifyLoggers(types.InfoLevel, "Sweep finished",
		"component", d.componentMetadata,
		"event", "Run",
		"completed", len(report.Completed),
		"failed", len(report.Failed),
		"elapsed", report.Elapsed,
		"counts", snap.Counts,
		"filesPerSec", snap.FilesPerSec,
		"cellsPerSec", snap.CellsPerSec,
		"cpuPercent", snap.CPUPercent,
		"memPercent", snap.MemPercent,
	)

	if len(report.Failed) > 0 {
		errs := make([]error, 0, len(report.Failed))
		for _, f := range report.Failed {
			errs = append(errs, fmt.Errorf("%s: %w", f.Input, f.Err))
		}
		return report, fmt.Errorf("%w: %w", ErrFilesFailed, errors.Join(errs...))
	}
	return report, nil
}

// preflight probes every header. Files that cannot be probed or whose pulses are too short for
// the configured windows are left for their workers to report; the run aborts with a configuration
// error only when readable headers exist and none of them fits. The footprint is that of the
// largest fitting shape.
func (d *Dispatcher) preflight(paths []string) (int64, error) {
	var (
		footprint int64
		fitting   int
		misfit    error
	)
	for _, p := range paths {
		shape, err := dataset.Probe(p)
		if err != nil {
			d.NotifyLoggers(types.DebugLevel, "Pre-flight probe skipped file",
				"component", d.componentMetadata, "event", "Preflight", logschema.FieldInput, p, "error", err)
			continue
		}
		if err := d.cfg.ValidateSampleCount(shape[2] / 2); err != nil {
			if misfit == nil {
				misfit = fmt.Errorf("dispatcher: pre-flight %s: %w", p, err)
			}
			d.NotifyLoggers(types.WarnLevel, "Pre-flight: pulses do not fit the windows",
				"component", d.componentMetadata, "event", "Preflight", logschema.FieldInput, p, "error", err)
			continue
		}
		fitting++
		footprint = max(footprint, d.builder.Footprint(shape))
	}
	if fitting == 0 && misfit != nil {
		return 0, misfit
	}
	return footprint, nil
}

// poolSize applies the explicit or CPU-derived width, the memory budget and the file count.
func (d *Dispatcher) poolSize(footprint int64, files int) int {
	var n int
	if d.workers > 0 {
		n = d.workers
		if budget := d.meter.MemoryBudget(footprint); budget > 0 && budget < n {
			d.NotifyLoggers(types.InfoLevel, "Worker pool capped by memory",
				"component", d.componentMetadata, "event", "PoolSize", "requested", n, "memoryWorkers", budget)
			n = budget
		}
	} else {
		n = d.meter.RecommendedWorkers(CPUFraction, footprint)
	}
	return max(1, min(n, files))
}

func (d *Dispatcher) outputDirFor(path string) string {
	if d.outputDir != "" {
		return d.outputDir
	}
	return filepath.Dir(path)
}

// processFile runs one capture end to end. It never panics the pool on a bad file.
func (d *Dispatcher) processFile(ctx context.Context, path string) types.FileResult {
	start := time.Now()
	res := types.FileResult{Input: path, Status: types.FileFailed}
	fail := func(err error) types.FileResult {
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}

	for _, s := range d.snapshotSensors() {
		s.InvokeOnFileStart(d.componentMetadata, path)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	capture, err := dataset.Load(path)
	if err != nil {
		return fail(err)
	}
	fileID := filepath.Base(path)
	built, err := d.builder.Build(ctx, fileID, capture)
	if err != nil {
		return fail(err)
	}

	out, err := d.builder.Persist(d.outputDirFor(path), fileID, built)
	if err != nil {
		return fail(err)
	}
	res.Output, res.Sidecar, res.Manifest = out.Array, out.Sidecar, out.Manifest
	res.Cells = len(built.Records)
	res.Clipped = built.Clipped
	res.Bytes = out.Bytes

	if d.uploader != nil {
		if _, err := d.uploader.Upload(ctx, out.Paths()...); err != nil {
			return fail(fmt.Errorf("dispatcher: upload: %w", err))
		}
	}

	res.Status = types.FileCompleted
	res.Elapsed = time.Since(start)
	return res
}

// finish reports one file to sensors, logs and the progress publisher.
func (d *Dispatcher) finish(ctx context.Context, res types.FileResult, done, total int) {
	progress := fmt.Sprintf("%d/%d", done, total)
	ev := types.ProgressEvent{
		File:      filepath.Base(res.Input),
		Output:    res.Output,
		Status:    res.Status,
		Completed: done,
		Total:     total,
		ElapsedMs: res.Elapsed.Milliseconds(),
		Timestamp: time.Now().UTC(),
	}

	if res.Status == types.FileCompleted {
		for _, s := range d.snapshotSensors() {
			s.InvokeOnFileComplete(d.componentMetadata, res)
		}
		d.NotifyLoggers(types.InfoLevel, "File degraded",
			"component", d.componentMetadata,
			"event", "ProcessFile",
			"result", "SUCCESS",
			logschema.FieldInput, res.Input,
			logschema.FieldOutput, res.Output,
			logschema.FieldProgress, progress,
			"cells", res.Cells,
			"clipped", res.Clipped,
			"bytes", res.Bytes,
			"elapsed", res.Elapsed,
		)
	} else {
		ev.Error = res.Err.Error()
		for _, s := range d.snapshotSensors() {
			s.InvokeOnFileError(d.componentMetadata, res.Input, res.Err)
		}
		d.NotifyLoggers(types.ErrorLevel, "File failed",
			"component", d.componentMetadata,
			"event", "ProcessFile",
			"result", "FAILURE",
			logschema.FieldInput, res.Input,
			logschema.FieldProgress, progress,
			"error", res.Err,
		)
	}

	if d.publisher == nil {
		return
	}
	// Failures caused by cancellation are still published.
	if err := d.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		d.NotifyLoggers(types.WarnLevel, "Progress event dropped",
			"component", d.componentMetadata,
			"event", "Publish",
			logschema.FieldInput, res.Input,
			"error", err,
		)
	}
}
