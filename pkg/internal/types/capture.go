package types

// Capture is one input recording: logically [channels, repeats, interleaved] int16 samples
// stored row-major in Data.
type Capture struct {
	Shape [3]int
	Data  []int16
}

// Channels returns the number of sensor channels in the capture.
func (c *Capture) Channels() int { return c.Shape[0] }

// Repeats returns the number of recorded repeats per channel.
func (c *Capture) Repeats() int { return c.Shape[1] }

// Interleaved returns the interleaved row length (2 x complex samples).
func (c *Capture) Interleaved() int { return c.Shape[2] }

// Pulse returns the row for (channel, repeat). The slice aliases Data.
func (c *Capture) Pulse(channel, repeat int) []int16 {
	n := c.Shape[2]
	off := (channel*c.Shape[1] + repeat) * n
	return c.Data[off : off+n : off+n]
}

// Dataset is one degraded output: [channels, snrs, repeatsPerSNR, interleaved] int16 samples
// in a single pre-sized buffer.
type Dataset struct {
	Shape [4]int
	Data  []int16
}

// NewDataset allocates a zeroed dataset for the given shape.
func NewDataset(channels, snrs, repeats, interleaved int) *Dataset {
	return &Dataset{
		Shape: [4]int{channels, snrs, repeats, interleaved},
		Data:  make([]int16, channels*snrs*repeats*interleaved),
	}
}

// Cell returns the index-addressed row for (channel, snrIdx, repeat). The slice aliases Data.
func (d *Dataset) Cell(channel, snrIdx, repeat int) []int16 {
	n := d.Shape[3]
	off := ((channel*d.Shape[1]+snrIdx)*d.Shape[2] + repeat) * n
	return d.Data[off : off+n : off+n]
}

// SizeBytes is the in-memory size of the sample buffer.
func (d *Dataset) SizeBytes() int64 { return int64(len(d.Data)) * 2 }
