package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNotNPY           = errors.New("codec: not an npy stream")
	ErrUnsupportedArray = errors.New("codec: unsupported npy array")
	ErrShapeMismatch    = errors.New("codec: shape does not match data length")
)

var npyMagic = []byte("\x93NUMPY")

const (
	npyAlign       = 64
	chunkBytes     = 64 << 10
	maxHeaderBytes = 1 << 20
)

// MaxNPYElements bounds the element count of an array read from a stream whose length is unknown.
const MaxNPYElements int64 = 1 << 31

// NPYHeader is the parsed preamble of an .npy file.
type NPYHeader struct {
	Major        byte
	Minor        byte
	Descr        string
	FortranOrder bool
	Shape        []int
}

// Elements is the product of Shape (1 for a scalar array). A product that does not fit in an
// int is ErrUnsupportedArray.
func (h NPYHeader) Elements() (int, error) {
	n := 1
	for _, d := range h.Shape {
		if d < 0 || (d != 0 && n > math.MaxInt/d) {
			return 0, fmt.Errorf("%w: shape %v overflows", ErrUnsupportedArray, h.Shape)
		}
		n *= d
	}
	return n, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// remaining reports how many unread bytes r holds, when that is knowable without consuming it.
func remaining(r io.Reader) (int64, bool) {
	switch v := r.(type) {
	case interface{ Len() int }:
		return int64(v.Len()), true
	case interface {
		io.Seeker
		Stat() (fs.FileInfo, error)
	}:
		fi, err := v.Stat()
		if err != nil || !fi.Mode().IsRegular() {
			return 0, false
		}
		pos, err := v.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, false
		}
		return fi.Size() - pos, true
	}
	return 0, false
}

var (
	descrRe   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranRe = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// ReadNPYHeader consumes the magic, version and header dictionary, leaving r at the first data byte.
func ReadNPYHeader(r io.Reader) (NPYHeader, error) {
	var h NPYHeader
	pre := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(r, pre); err != nil {
		return h, fmt.Errorf("%w: %v", ErrNotNPY, err)
	}
	if string(pre[:len(npyMagic)]) != string(npyMagic) {
		return h, ErrNotNPY
	}
	h.Major, h.Minor = pre[6], pre[7]

	var hlen int
	switch h.Major {
	case 1:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return h, fmt.Errorf("%w: header length: %v", ErrNotNPY, err)
		}
		hlen = int(binary.LittleEndian.Uint16(b[:]))
	case 2, 3:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return h, fmt.Errorf("%w: header length: %v", ErrNotNPY, err)
		}
		hlen = int(binary.LittleEndian.Uint32(b[:]))
	default:
		return h, fmt.Errorf("%w: version %d.%d", ErrUnsupportedArray, h.Major, h.Minor)
	}

	if hlen > maxHeaderBytes {
		return h, fmt.Errorf("%w: header length %d", ErrNotNPY, hlen)
	}
	raw := make([]byte, hlen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return h, fmt.Errorf("%w: header: %v", ErrNotNPY, err)
	}
	dict := string(raw)

	m := descrRe.FindStringSubmatch(dict)
	if m == nil {
		return h, fmt.Errorf("%w: header has no descr", ErrNotNPY)
	}
	h.Descr = m[1]
	if m := fortranRe.FindStringSubmatch(dict); m != nil {
		h.FortranOrder = m[1] == "True"
	}
	m = shapeRe.FindStringSubmatch(dict)
	if m == nil {
		return h, fmt.Errorf("%w: header has no shape", ErrNotNPY)
	}
	shape, err := parseShape(m[1])
	if err != nil {
		return h, err
	}
	h.Shape = shape
	return h, nil
}

func parseShape(s string) ([]int, error) {
	shape := []int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.TrimSuffix(part, "L")
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: bad shape dimension %q", ErrNotNPY, part)
		}
		shape = append(shape, d)
	}
	return shape, nil
}

func readInt16Header(r io.Reader) (NPYHeader, int, *bufio.Reader, error) {
	avail, sized := remaining(r)
	br := bufio.NewReaderSize(r, chunkBytes)
	cr := &countingReader{r: br}
	h, err := ReadNPYHeader(cr)
	if err != nil {
		return h, 0, nil, err
	}
	if _, err := int16Order(h.Descr); err != nil {
		return h, 0, nil, err
	}
	if h.FortranOrder {
		return h, 0, nil, fmt.Errorf("%w: fortran order", ErrUnsupportedArray)
	}
	n, err := h.Elements()
	if err != nil {
		return h, 0, nil, err
	}
	if sized {
		have := avail - cr.n
		if int64(n) > math.MaxInt64/2 || int64(n)*2 > have {
			return h, 0, nil, fmt.Errorf("%w: shape %v needs %d elements, stream holds %d bytes", ErrNotNPY, h.Shape, n, have)
		}
	} else if int64(n) > MaxNPYElements {
		return h, 0, nil, fmt.Errorf("%w: %d elements exceeds limit %d", ErrUnsupportedArray, n, MaxNPYElements)
	}
	return h, n, br, nil
}

func int16Order(descr string) (binary.ByteOrder, error) {
	switch descr {
	case "<i2":
		return binary.LittleEndian, nil
	case ">i2":
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: dtype %q, want int16", ErrUnsupportedArray, descr)
	}
}

// ProbeNPYInt16 reads the header of a C-ordered int16 array and checks that the element count
// it claims fits in the bytes left in r (files and in-memory readers) or, when that is unknown,
// within MaxNPYElements. Nothing proportional to the claimed shape is allocated.
func ProbeNPYInt16(r io.Reader) (NPYHeader, error) {
	h, _, _, err := readInt16Header(r)
	return h, err
}

// ReadNPYInt16 reads a C-ordered int16 array, rejecting headers ProbeNPYInt16 would reject
// before allocating.
func ReadNPYInt16(r io.Reader) (NPYHeader, []int16, error) {
	h, n, br, err := readInt16Header(r)
	if err != nil {
		return h, nil, err
	}
	order, _ := int16Order(h.Descr)

	data := make([]int16, n)
	buf := make([]byte, chunkBytes)
	for off := 0; off < len(data); {
		n := min(len(data)-off, chunkBytes/2)
		b := buf[:2*n]
		if _, err := io.ReadFull(br, b); err != nil {
			return h, nil, fmt.Errorf("codec: read data at element %d of %d: %w", off, len(data), err)
		}
		for i := 0; i < n; i++ {
			data[off+i] = int16(order.Uint16(b[2*i:]))
		}
		off += n
	}
	return h, data, nil
}

// WriteNPYInt16 writes data as a little-endian, C-ordered int16 array of the given shape.
// The header is padded so the data starts on a 64-byte boundary.
func WriteNPYInt16(w io.Writer, shape []int, data []int16) error {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension %d", ErrShapeMismatch, d)
		}
		n *= d
	}
	if n != len(data) {
		return fmt.Errorf("%w: shape %v holds %d elements, data has %d", ErrShapeMismatch, shape, n, len(data))
	}

	if err := writeNPYHeader(w, shape); err != nil {
		return err
	}

	buf := make([]byte, chunkBytes)
	for off := 0; off < len(data); {
		k := min(len(data)-off, chunkBytes/2)
		b := buf[:2*k]
		for i := 0; i < k; i++ {
			binary.LittleEndian.PutUint16(b[2*i:], uint16(data[off+i]))
		}
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("codec: write data: %w", err)
		}
		off += k
	}
	return nil
}

func writeNPYHeader(w io.Writer, shape []int) error {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	tuple := strings.Join(dims, ", ")
	if len(shape) == 1 {
		tuple += ","
	}
	dict := fmt.Sprintf("{'descr': '<i2', 'fortran_order': False, 'shape': (%s), }", tuple)

	major, lenBytes := byte(1), 2
	pad := func(lb int) int {
		total := len(npyMagic) + 2 + lb + len(dict) + 1
		return (npyAlign - total%npyAlign) % npyAlign
	}
	if len(dict)+1+pad(2) > 0xFFFF {
		major, lenBytes = 2, 4
	}
	hdr := dict + strings.Repeat(" ", pad(lenBytes)) + "\n"

	out := make([]byte, 0, len(npyMagic)+2+lenBytes+len(hdr))
	out = append(out, npyMagic...)
	out = append(out, major, 0)
	if lenBytes == 2 {
		out = binary.LittleEndian.AppendUint16(out, uint16(len(hdr)))
	} else {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(hdr)))
	}
	out = append(out, hdr...)
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("codec: write header: %w", err)
	}
	return nil
}
