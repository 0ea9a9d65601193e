package compressor

import "errors"

var (
	// ErrMissingProgram is returned by NewSession when the selected backend has no program.
	ErrMissingProgram = errors.New("compressor: missing compression program")

	// ErrMissingEntryPoint is returned by NewSession when the program lacks the entry point of
	// the selected backend.
	ErrMissingEntryPoint = errors.New("compressor: program lacks its entry point")

	// ErrSessionBusy is returned by Compress while another call on the same session is running.
	ErrSessionBusy = errors.New("compressor: session is busy")

	// ErrSessionReleased is returned by Compress after Release.
	ErrSessionReleased = errors.New("compressor: session released")

	// ErrInvalidSource is returned by Compress for a nil, released or empty source texture.
	ErrInvalidSource = errors.New("compressor: invalid source texture")

	// ErrComputeUnsupported is returned by NewSession when the compute backend is forced on a
	// device without compute shaders.
	ErrComputeUnsupported = errors.New("compressor: device does not support compute shaders")
)
