package astc

import (
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the size in bytes of an .astc file header.
const HeaderSize = 16

var fileMagic = [4]byte{0x13, 0xAB, 0xA1, 0x5C}

// maxFileDim is the largest size representable in the 24-bit header fields.
const maxFileDim = 1<<24 - 1

// Header is the .astc file header: block footprint and the unpadded image size.
type Header struct {
	BlockX, BlockY, BlockZ uint8
	SizeX, SizeY, SizeZ    uint32
}

// NewHeader returns the header for a 2D image compressed with block size b.
//
// Parameters:
//   - b: the block size
//   - width: source width in texels
//   - height: source height in texels
//
// Returns:
//   - Header: the header with a depth of one block and one slice
func NewHeader(b BlockSize, width, height int) Header {
	return Header{
		BlockX: uint8(b), BlockY: uint8(b), BlockZ: 1,
		SizeX: uint32(width), SizeY: uint32(height), SizeZ: 1,
	}
}

func (h Header) String() string {
	return fmt.Sprintf("ASTC %dx%dx%d blocks, %dx%dx%d texels", h.BlockX, h.BlockY, h.BlockZ, h.SizeX, h.SizeY, h.SizeZ)
}

// Validate checks for zero or oversized dimensions.
func (h Header) Validate() error {
	if h.BlockX == 0 || h.BlockY == 0 || h.BlockZ == 0 {
		return fmt.Errorf("%w: zero block dimension", ErrInvalidHeader)
	}
	if h.SizeX == 0 || h.SizeY == 0 || h.SizeZ == 0 {
		return fmt.Errorf("%w: zero image dimension", ErrInvalidHeader)
	}
	if h.SizeX > maxFileDim || h.SizeY > maxFileDim || h.SizeZ > maxFileDim {
		return fmt.Errorf("%w: image dimension exceeds 24 bits", ErrInvalidHeader)
	}
	return nil
}

// BlockCount returns the number of blocks the payload following the header must hold.
func (h Header) BlockCount() int {
	bx := (int(h.SizeX) + int(h.BlockX) - 1) / int(h.BlockX)
	by := (int(h.SizeY) + int(h.BlockY) - 1) / int(h.BlockY)
	bz := (int(h.SizeZ) + int(h.BlockZ) - 1) / int(h.BlockZ)
	return bx * by * bz
}

// MarshalBinary encodes the 16-byte header.
func (h Header) MarshalBinary() ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, HeaderSize)
	copy(out[0:4], fileMagic[:])
	out[4], out[5], out[6] = h.BlockX, h.BlockY, h.BlockZ
	putU24(out[7:10], h.SizeX)
	putU24(out[10:13], h.SizeY)
	putU24(out[13:16], h.SizeZ)
	return out, nil
}

// UnmarshalBinary decodes a 16-byte header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncated, HeaderSize, len(data))
	}
	if [4]byte(data[0:4]) != fileMagic {
		return fmt.Errorf("%w: bad magic % x", ErrInvalidHeader, data[0:4])
	}
	parsed := Header{
		BlockX: data[4], BlockY: data[5], BlockZ: data[6],
		SizeX: u24(data[7:10]), SizeY: u24(data[10:13]), SizeZ: u24(data[13:16]),
	}
	if err := parsed.Validate(); err != nil {
		return err
	}
	*h = parsed
	return nil
}

// WriteFile writes an .astc file, optionally supercompressed.
//
// Parameters:
//   - w: the destination stream
//   - h: the file header
//   - blocks: the compressed payload, exactly h.BlockCount() blocks of 16 bytes
//   - codec: the supercompression to wrap the file in
//
// Returns:
//   - error: error if the header is invalid, the payload size does not match, or writing fails
func WriteFile(w io.Writer, h Header, blocks []byte, codec Codec) error {
	header, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if want := h.BlockCount() * BlockBytes; len(blocks) != want {
		return fmt.Errorf("astc: payload is %d bytes, header %s needs %d", len(blocks), h, want)
	}

	cw, err := newCodecWriter(w, codec)
	if err != nil {
		return err
	}
	if _, err := cw.Write(header); err != nil {
		cw.Close()
		return fmt.Errorf("astc: write header: %w", err)
	}
	if _, err := cw.Write(blocks); err != nil {
		cw.Close()
		return fmt.Errorf("astc: write blocks: %w", err)
	}
	return cw.Close()
}

// ReadFile reads an .astc file written by WriteFile. The supercompression codec is detected from
// the stream.
//
// Parameters:
//   - r: the source stream
//
// Returns:
//   - Header: the file header
//   - []byte: the compressed blocks
//   - Codec: the detected supercompression
//   - error: error wrapping ErrInvalidHeader or ErrTruncated for malformed files
func ReadFile(r io.Reader) (Header, []byte, Codec, error) {
	cr, codec, release, err := newCodecReader(r)
	if err != nil {
		return Header{}, nil, CodecNone, err
	}
	defer release()

	raw := make([]byte, HeaderSize)
	if _, err := io.ReadFull(cr, raw); err != nil {
		return Header{}, nil, codec, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	var h Header
	if err := h.UnmarshalBinary(raw); err != nil {
		return Header{}, nil, codec, err
	}

	blocks := make([]byte, h.BlockCount()*BlockBytes)
	if _, err := io.ReadFull(cr, blocks); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, nil, codec, fmt.Errorf("%w: want %d block bytes", ErrTruncated, len(blocks))
		}
		return Header{}, nil, codec, err
	}
	return h, blocks, codec, nil
}

func u24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func putU24(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
}
