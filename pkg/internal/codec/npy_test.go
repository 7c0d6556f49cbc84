package codec_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UCLRadarGroup/Radar-ML/pkg/internal/codec"
)

func TestNPYWriteRead(t *testing.T) {
	shape := []int{2, 3, 4}
	data := make([]int16, 24)
	for i := range data {
		data[i] = int16(i*1000 - 12000)
	}

	var buf bytes.Buffer
	require.NoError(t, codec.WriteNPYInt16(&buf, shape, data))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte("\x93NUMPY\x01\x00")))
	hlen := int(binary.LittleEndian.Uint16(raw[8:10]))
	assert.Zero(t, (10+hlen)%64, "data offset must be 64-byte aligned")
	assert.Equal(t, byte('\n'), raw[10+hlen-1])
	assert.Contains(t, string(raw[10:10+hlen]), "'shape': (2, 3, 4)")
	assert.Equal(t, 10+hlen+2*len(data), len(raw))

	h, got, err := codec.ReadNPYInt16(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "<i2", h.Descr)
	assert.Equal(t, shape, h.Shape)
	assert.Equal(t, data, got)
}

func TestNPYOneDimensionalTuple(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.WriteNPYInt16(&buf, []int{3}, []int16{1, 2, 3}))
	assert.Contains(t, buf.String(), "'shape': (3,)")

	h, got, err := codec.ReadNPYInt16(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, h.Shape)
	assert.Equal(t, []int16{1, 2, 3}, got)
}

func TestNPYLargerThanChunk(t *testing.T) {
	data := make([]int16, 3*40000)
	for i := range data {
		data[i] = int16(i)
	}
	var buf bytes.Buffer
	require.NoError(t, codec.WriteNPYInt16(&buf, []int{3, 40000}, data))
	_, got, err := codec.ReadNPYInt16(&buf)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func handMade(descr, shape string, payload []byte) []byte {
	dict := "{'descr': '" + descr + "', 'fortran_order': False, 'shape': " + shape + ", }\n"
	out := append([]byte("\x93NUMPY\x01\x00"), 0, 0)
	binary.LittleEndian.PutUint16(out[8:], uint16(len(dict)))
	out = append(out, dict...)
	return append(out, payload...)
}

func TestNPYReadBigEndian(t *testing.T) {
	raw := handMade(">i2", "(2,)", []byte{0x01, 0x02, 0xff, 0xfe})
	_, got, err := codec.ReadNPYInt16(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, []int16{0x0102, -2}, got)
}

func TestNPYRejectsOtherDtypes(t *testing.T) {
	raw := handMade("<f4", "(1,)", []byte{0, 0, 0, 0})
	_, _, err := codec.ReadNPYInt16(bytes.NewReader(raw))
	require.ErrorIs(t, err, codec.ErrUnsupportedArray)
}

func TestNPYRejectsGarbage(t *testing.T) {
	_, err := codec.ReadNPYHeader(bytes.NewReader([]byte("not an array at all")))
	require.ErrorIs(t, err, codec.ErrNotNPY)
}

func TestNPYTruncatedData(t *testing.T) {
	raw := handMade("<i2", "(4,)", []byte{1, 0, 2, 0})
	_, _, err := codec.ReadNPYInt16(bytes.NewReader(raw))
	require.Error(t, err)
}

func TestNPYShapeMismatch(t *testing.T) {
	err := codec.WriteNPYInt16(&bytes.Buffer{}, []int{2, 2}, []int16{1, 2, 3})
	require.ErrorIs(t, err, codec.ErrShapeMismatch)
}

func TestNPYRejectsOverflowingShape(t *testing.T) {
	raw := handMade("<i2", "(3, 3037000500, 3037000500)", []byte{1, 0, 2, 0})

	_, _, err := codec.ReadNPYInt16(bytes.NewReader(raw))
	require.ErrorIs(t, err, codec.ErrUnsupportedArray)
	_, err = codec.ProbeNPYInt16(io.MultiReader(bytes.NewReader(raw)))
	require.ErrorIs(t, err, codec.ErrUnsupportedArray)

	_, err = codec.NPYHeader{Shape: []int{3, 3037000500, 3037000500}}.Elements()
	require.ErrorIs(t, err, codec.ErrUnsupportedArray)
	n, err := codec.NPYHeader{Shape: []int{3, 4, 0}}.Elements()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNPYRejectsShapeLargerThanStream(t *testing.T) {
	raw := handMade("<i2", "(3, 100000, 100000)", []byte{1, 0, 2, 0})

	_, _, err := codec.ReadNPYInt16(bytes.NewReader(raw))
	require.ErrorIs(t, err, codec.ErrNotNPY)

	path := filepath.Join(t.TempDir(), "claims-too-much.npy")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = codec.ProbeNPYInt16(f)
	require.ErrorIs(t, err, codec.ErrNotNPY)
}

func TestNPYUnsizedStreamIsCapped(t *testing.T) {
	raw := handMade("<i2", "(3, 100000, 100000)", nil)
	_, _, err := codec.ReadNPYInt16(io.MultiReader(bytes.NewReader(raw)))
	require.ErrorIs(t, err, codec.ErrUnsupportedArray)
}

func TestNPYReadsFromFile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.WriteNPYInt16(&buf, []int{2, 2}, []int16{1, -2, 3, -4}))
	path := filepath.Join(t.TempDir(), "small.npy")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	h, got, err := codec.ReadNPYInt16(f)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, h.Shape)
	assert.Equal(t, []int16{1, -2, 3, -4}, got)
}
