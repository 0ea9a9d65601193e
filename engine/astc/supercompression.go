package astc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is a lossless supercompression wrapped around a whole .astc file.
type Codec uint8

const (
	// CodecNone writes a plain .astc file.
	CodecNone Codec = iota

	// CodecZstd wraps the file in a zstd frame. Good ratio for large uniform regions.
	CodecZstd

	// CodecLZ4 wraps the file in an LZ4 frame. Fastest to decode.
	CodecLZ4
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Extension returns the file extension for an .astc file written with the codec.
func (c Codec) Extension() string {
	switch c {
	case CodecZstd:
		return ".astc.zst"
	case CodecLZ4:
		return ".astc.lz4"
	default:
		return ".astc"
	}
}

// ParseCodec parses a codec name as printed by Codec.String. An empty name selects CodecNone.
//
// Parameters:
//   - name: the codec name
//
// Returns:
//   - Codec: the parsed codec
//   - error: an error wrapping ErrUnknownCodec for unknown names
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return CodecNone, nil
	case "zstd", "zst":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// newCodecWriter wraps w so that everything written is supercompressed with c. Close flushes the
// frame without closing w.
func newCodecWriter(w io.Writer, c Codec) (io.WriteCloser, error) {
	switch c {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return enc, nil
	case CodecLZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4.Level5)); err != nil {
			return nil, fmt.Errorf("lz4 writer: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, uint8(c))
	}
}

// newCodecReader sniffs the frame magic at the start of r and returns a reader producing the
// decompressed stream. The returned release function must be called once reading is done.
func newCodecReader(r io.Reader) (io.Reader, Codec, func(), error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && len(head) < 4 {
		return nil, CodecNone, nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	switch {
	case bytes.Equal(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, CodecZstd, nil, fmt.Errorf("zstd reader: %w", err)
		}
		return dec, CodecZstd, dec.Close, nil
	case bytes.Equal(head, lz4Magic):
		return lz4.NewReader(br), CodecLZ4, func() {}, nil
	default:
		return br, CodecNone, func() {}, nil
	}
}
