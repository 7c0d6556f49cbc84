// Package compression streams objects through the codecs supported for uploaded outputs.
package compression

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// Algorithm identifies an object codec.
type Algorithm int

const (
	None Algorithm = iota
	Deflate
	Snappy
	Zstd
	Brotli
	LZ4
)

var ErrUnknownAlgorithm = errors.New("compression: unknown algorithm")

var names = map[Algorithm]string{
	None:    "none",
	Deflate: "deflate",
	Snappy:  "snappy",
	Zstd:    "zstd",
	Brotli:  "brotli",
	LZ4:     "lz4",
}

var extensions = map[Algorithm]string{
	None:    "",
	Deflate: ".gz",
	Snappy:  ".sz",
	Zstd:    ".zst",
	Brotli:  ".br",
	LZ4:     ".lz4",
}

func (a Algorithm) String() string {
	if n, ok := names[a]; ok {
		return n
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Parse maps a configuration name to an Algorithm. "gzip" and "gz" alias deflate.
func Parse(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "off":
		return None, nil
	case "deflate", "gzip", "gz":
		return Deflate, nil
	case "snappy":
		return Snappy, nil
	case "zstd", "zst":
		return Zstd, nil
	case "brotli", "br":
		return Brotli, nil
	case "lz4":
		return LZ4, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Extension is the object-key suffix for a.
func Extension(a Algorithm) string { return extensions[a] }

// FromExtension reports the algorithm whose suffix ends name, e.g. "a.npy.zst".
func FromExtension(name string) (Algorithm, bool) {
	lower := strings.ToLower(name)
	for a, ext := range extensions {
		if ext != "" && strings.HasSuffix(lower, ext) {
			return a, true
		}
	}
	return None, false
}

// ContentEncoding is the HTTP Content-Encoding value for a, empty when there is no standard token.
func ContentEncoding(a Algorithm) string {
	switch a {
	case Deflate:
		return "gzip"
	case Zstd:
		return "zstd"
	case Brotli:
		return "br"
	default:
		return ""
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newWriter(dst io.Writer, a Algorithm) (io.WriteCloser, error) {
	switch a {
	case None:
		return nopCloser{dst}, nil
	case Deflate:
		return gzip.NewWriter(dst), nil
	case Snappy:
		return snappy.NewBufferedWriter(dst), nil
	case Zstd:
		return zstd.NewWriter(dst)
	case Brotli:
		return brotli.NewWriterLevel(dst, brotli.DefaultCompression), nil
	case LZ4:
		return lz4.NewWriter(dst), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
}

// Compress copies src into dst through a and returns the number of uncompressed bytes read.
func Compress(dst io.Writer, src io.Reader, a Algorithm) (int64, error) {
	w, err := newWriter(dst, a)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, src)
	if err != nil {
		_ = w.Close()
		return n, fmt.Errorf("compression: %s: %w", a, err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("compression: %s close: %w", a, err)
	}
	return n, nil
}

// Decompress copies the decoded form of src into dst and returns the bytes written.
func Decompress(dst io.Writer, src io.Reader, a Algorithm) (int64, error) {
	var r io.Reader
	switch a {
	case None:
		r = src
	case Deflate:
		gr, err := gzip.NewReader(src)
		if err != nil {
			return 0, fmt.Errorf("compression: gzip header: %w", err)
		}
		defer gr.Close()
		r = gr
	case Snappy:
		r = snappy.NewReader(src)
	case Zstd:
		zr, err := zstd.NewReader(src)
		if err != nil {
			return 0, fmt.Errorf("compression: zstd: %w", err)
		}
		defer zr.Close()
		r = zr
	case Brotli:
		r = brotli.NewReader(src)
	case LZ4:
		r = lz4.NewReader(src)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}

	n, err := io.Copy(dst, r)
	if err != nil {
		return n, fmt.Errorf("compression: %s: %w", a, err)
	}
	return n, nil
}
