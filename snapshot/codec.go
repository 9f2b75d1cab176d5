package snapshot

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// newCompressor wraps w with the requested codec. The returned closer
// flushes the codec's buffers; it does not close w.
func newCompressor(codec uint16, level uint8, w io.Writer) (io.WriteCloser, error) {
	switch codec {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecZstd:
		zlevel := zstd.SpeedDefault
		if level > 0 {
			zlevel = zstd.EncoderLevelFromZstd(int(level))
		}
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zlevel))
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd writer: %w", err)
		}
		return enc, nil
	case CodecLZ4:
		lw := lz4.NewWriter(w)
		if level > 0 {
			if level > 9 {
				level = 9
			}
			if err := lw.Apply(lz4.CompressionLevelOption(lz4.CompressionLevel(1 << (8 + level)))); err != nil {
				return nil, fmt.Errorf("snapshot: lz4 writer: %w", err)
			}
		}
		return lw, nil
	default:
		return nil, ErrInvalidCodec
	}
}

// newDecompressor wraps r with the requested codec. The returned
// closer releases codec resources; it does not close r.
func newDecompressor(codec uint16, r io.Reader) (io.ReadCloser, error) {
	switch codec {
	case CodecNone:
		return io.NopCloser(r), nil
	case CodecZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, ErrInvalidCodec
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
