// Package input opens dump files, possibly compressed, and frames them into entity lines
package input

import (
	"bufio"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the codec of a dump file, chosen from its extension
type Compression string

const (
	CompressionNone  Compression = "none"
	CompressionGzip  Compression = "gzip"
	CompressionZstd  Compression = "zstd"
	CompressionLZ4   Compression = "lz4"
	CompressionBzip2 Compression = "bzip2" // Read only
)

const readBufferSize = 1 << 20

// ErrUnsupportedCompression is returned when writing a codec that is read-only
var ErrUnsupportedCompression = errors.New("unsupported compression")

// DetectCompression returns the codec implied by the file extension
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	case ".bz2":
		return CompressionBzip2
	default:
		return CompressionNone
	}
}

// Open opens path for reading, transparently decompressing it
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	buffered := bufio.NewReaderSize(f, readBufferSize)

	switch DetectCompression(path) {
	case CompressionGzip:
		zr, err := gzip.NewReader(buffered)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("gzip reader %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(buffered)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd reader %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }, f.Close}}, nil
	case CompressionLZ4:
		return &readCloser{Reader: lz4.NewReader(buffered), closers: []func() error{f.Close}}, nil
	case CompressionBzip2:
		return &readCloser{Reader: bzip2.NewReader(buffered), closers: []func() error{f.Close}}, nil
	default:
		return &readCloser{Reader: buffered, closers: []func() error{f.Close}}, nil
	}
}

// Create creates path for writing, compressing according to its extension
func Create(path string) (io.WriteCloser, error) {
	codec := DetectCompression(path)
	if codec == CompressionBzip2 {
		return nil, fmt.Errorf("%w: %s cannot be written", ErrUnsupportedCompression, codec)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	switch codec {
	case CompressionGzip:
		zw := gzip.NewWriter(f)
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("zstd writer %s: %w", path, err)
		}
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	case CompressionLZ4:
		zw := lz4.NewWriter(f)
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	default:
		return &writeCloser{Writer: f, closers: []func() error{f.Close}}, nil
	}
}

// readCloser closes its layers innermost first and keeps the first error
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	return closeAll(r.closers)
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	return closeAll(w.closers)
}

func closeAll(closers []func() error) error {
	var first error
	for _, c := range closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
