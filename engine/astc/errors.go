package astc

import "errors"

var (
	// ErrUnsupportedBlockSize is raised when a block size outside 4x4, 5x5 and 6x6 reaches a
	// configuration switch. It is a programmer error.
	ErrUnsupportedBlockSize = errors.New("astc: unsupported block size")

	// ErrInvalidHeader is returned when an .astc header has a bad magic or zero dimensions.
	ErrInvalidHeader = errors.New("astc: invalid header")

	// ErrTruncated is returned when an .astc payload holds fewer blocks than its header declares.
	ErrTruncated = errors.New("astc: truncated payload")

	// ErrUnknownCodec is returned for a supercompression codec that is not registered.
	ErrUnknownCodec = errors.New("astc: unknown supercompression codec")
)
