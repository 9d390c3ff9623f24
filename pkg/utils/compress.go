package utils

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// MaxDecompressedSize bounds what Decompress will inflate.
const MaxDecompressedSize = 16 << 20

// Compress gzips data.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, errors.Wrap(err, "failed to compress data")
	}
	if err := gz.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close gzip writer")
	}
	return buf.Bytes(), nil
}

// Decompress inflates a gzip stream of at most MaxDecompressedSize bytes.
func Decompress(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gzip reader")
	}
	defer gz.Close()
	data, err := io.ReadAll(io.LimitReader(gz, MaxDecompressedSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decompress data")
	}
	if len(data) > MaxDecompressedSize {
		return nil, errors.Errorf("decompressed body exceeds %d bytes", MaxDecompressedSize)
	}
	return data, nil
}
