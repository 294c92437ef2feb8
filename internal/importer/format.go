package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format identifies an archived log file format.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	XML  Format = "xml"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, CSV, XML}

// DetectFormat infers the format from the file extension, ignoring a
// trailing .gz or .zst.
func DetectFormat(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".zst")

	switch filepath.Ext(name) {
	case ".json", ".jsonl", ".ndjson", ".log":
		return JSON, nil
	case ".csv":
		return CSV, nil
	case ".xml":
		return XML, nil
	default:
		return "", fmt.Errorf("cannot detect log format of %s; use --format", path)
	}
}

// OpenFile opens path for reading, decompressing .gz and .zst files.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("error reading gzip stream: %w", err)
		}
		return &stackedReader{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("error reading zstd stream: %w", err)
		}
		closeZstd := func() error {
			zr.Close()
			return nil
		}
		return &stackedReader{Reader: zr, closers: []func() error{closeZstd, f.Close}}, nil
	default:
		return f, nil
	}
}

// stackedReader closes a decompressor and the file underneath it.
type stackedReader struct {
	io.Reader
	closers []func() error
}

func (r *stackedReader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
