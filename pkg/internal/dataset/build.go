package dataset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/power"
	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/types"
	"github.com/UCLRadarGroup/Radar-ML/pkg/logschema"
)

// Result is a fully built dataset and its per-cell records, in cell order.
type Result struct {
	Dataset *types.Dataset
	Records []types.CellRecord
	Clipped int64
}

// ValidateCapture checks a capture against the sweep before any noise is drawn.
func (b *Builder) ValidateCapture(c *types.Capture) (noiseW, sigW power.Window, err error) {
	if c == nil {
		return noiseW, sigW, fmt.Errorf("%w: nil capture", ErrMalformedCapture)
	}
	if want := len(b.cfg.Channels()); c.Channels() != want {
		return noiseW, sigW, fmt.Errorf("%w: %d channels, want %d", ErrMalformedCapture, c.Channels(), want)
	}
	if c.Repeats() < b.cfg.RepeatsPerSNR() {
		return noiseW, sigW, fmt.Errorf("%w: %d repeats, need at least %d", ErrMalformedCapture, c.Repeats(), b.cfg.RepeatsPerSNR())
	}
	if c.Interleaved() <= 0 || c.Interleaved()%2 != 0 {
		return noiseW, sigW, fmt.Errorf("%w: interleaved length %d must be positive and even", ErrMalformedCapture, c.Interleaved())
	}
	if n := c.Shape[0] * c.Shape[1] * c.Shape[2]; n != len(c.Data) {
		return noiseW, sigW, fmt.Errorf("%w: shape %v holds %d samples, data has %d", ErrMalformedCapture, c.Shape, n, len(c.Data))
	}
	noiseW, sigW, err = b.cfg.Windows(c.Interleaved() / 2)
	if err != nil {
		return noiseW, sigW, fmt.Errorf("%w: %w", ErrMalformedCapture, err)
	}
	return noiseW, sigW, nil
}

// Build produces the degraded dataset for one capture. Only repeats [0, RepeatsPerSNR) are used.
// A cancelled context or any cell failure returns no dataset.
func (b *Builder) Build(ctx context.Context, fileID string, c *types.Capture) (*Result, error) {
	noiseW, sigW, err := b.ValidateCapture(c)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	nCh, nSNR, nRep := len(b.cfg.Channels()), b.cfg.SNRCount(), b.cfg.RepeatsPerSNR()
	ds := types.NewDataset(nCh, nSNR, nRep, c.Interleaved())
	records := make([]types.CellRecord, nCh*nSNR*nRep)
	clipped := make([]int64, nCh*nSNR)

	rows := nCh * nSNR
	workers := min(b.cellConcurrency, rows)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		next     = make(chan int)
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			re := make([]float64, c.Interleaved()/2)
			im := make([]float64, c.Interleaved()/2)
			for row := range next {
				n, err := b.buildRow(ctx, fileID, c, ds, records, row/nSNR, row%nSNR, noiseW, sigW, re, im)
				if err != nil {
					fail(err)
					continue
				}
				clipped[row] = n
			}
		}()
	}

feed:
	for row := 0; row < rows; row++ {
		select {
		case <-ctx.Done():
			break feed
		case next <- row:
		}
	}
	close(next)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var total int64
	for _, n := range clipped {
		total += n
	}
	b.NotifyLoggers(types.DebugLevel, "Dataset built",
		logschema.FieldComponent, b.componentMetadata,
		logschema.FieldEvent, "Build",
		logschema.FieldResult, "SUCCESS",
		logschema.FieldInput, fileID,
		"cells", len(records),
		"clipped", total,
		"cellWorkers", workers,
		"elapsed", time.Since(start),
	)
	if total > 0 {
		b.NotifyLoggers(types.WarnLevel, "Samples clipped to int16 range",
			logschema.FieldComponent, b.componentMetadata,
			logschema.FieldEvent, "Build",
			logschema.FieldInput, fileID,
			"clipped", total,
			"policy", b.cfg.Overflow().String(),
		)
	}
	return &Result{Dataset: ds, Records: records, Clipped: total}, nil
}

// buildRow fills every repeat of one (channel, SNR) row. Cells are index-addressed, so rows can
// be built in any order by any goroutine.
func (b *Builder) buildRow(
	ctx context.Context,
	fileID string,
	c *types.Capture,
	ds *types.Dataset,
	records []types.CellRecord,
	ch, snrIdx int,
	noiseW, sigW power.Window,
	re, im []float64,
) (int64, error) {
	sensors := b.snapshotSensors()
	var clipped int64
	for rep := 0; rep < b.cfg.RepeatsPerSNR(); rep++ {
		if err := ctx.Err(); err != nil {
			return clipped, err
		}

		st, err := b.degradeInto(re, im, fileID, c.Pulse(ch, rep), noiseW, sigW, snrIdx, rep)
		if err != nil {
			return clipped, fmt.Errorf("channel %s: %w", b.cfg.Channel(ch), err)
		}
		n, err := codec.Interleave(re, im, ds.Cell(ch, snrIdx, rep), b.cfg.Overflow())
		if err != nil {
			return clipped, err
		}
		clipped += int64(n)

		rec := types.CellRecord{
			SourceFile:      fileID,
			ChannelIndex:    int32(ch),
			ChannelName:     b.cfg.Channel(ch),
			SNRIndex:        int32(snrIdx),
			SNRdB:           b.cfg.SNR(snrIdx),
			Repeat:          int32(rep),
			Seed:            st.seed.Uint64(),
			NoiseFloorPower: st.noiseFloor,
			SignalPower:     st.signal,
			AddedNoisePower: st.added,
			Clipped:         int32(n),
			Passthrough:     st.passthrough,
		}
		records[(ch*ds.Shape[1]+snrIdx)*ds.Shape[2]+rep] = rec

		if st.passthrough {
			b.NotifyLoggers(types.WarnLevel, "Silent signal window, pulse written unchanged",
				logschema.FieldComponent, b.componentMetadata,
				logschema.FieldEvent, "DegradePulse",
				logschema.FieldInput, fileID,
				logschema.FieldChannel, rec.ChannelName,
				logschema.FieldSNR, rec.SNRdB,
				logschema.FieldRepeat, rep,
			)
		}
		for _, s := range sensors {
			s.InvokeOnCellDegraded(b.componentMetadata, rec)
		}
	}
	return clipped, nil
}
