package compressor

import "fmt"

// State is the phase of a compression call. A session returns to StateIdle when a call ends,
// whether it succeeded or not.
type State int32

const (
	StateIdle State = iota
	StateConfiguring
	StateDispatching
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateDispatching:
		return "dispatching"
	case StateFinalizing:
		return "finalizing"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// PreviewMode controls whether a session produces a decoded preview instead of ASTC blocks.
type PreviewMode int

const (
	// PreviewOff always produces native ASTC textures.
	PreviewOff PreviewMode = iota

	// PreviewOn always produces an RGBA8 texture holding the decoded blocks.
	PreviewOn

	// PreviewAuto produces a preview only when the device cannot sample ASTC textures.
	PreviewAuto
)

func (m PreviewMode) String() string {
	switch m {
	case PreviewOff:
		return "off"
	case PreviewOn:
		return "on"
	case PreviewAuto:
		return "auto"
	default:
		return fmt.Sprintf("PreviewMode(%d)", int(m))
	}
}

// ParsePreviewMode parses "off", "on" or "auto".
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - PreviewMode: the parsed mode
//   - error: an error for any other name
func ParsePreviewMode(s string) (PreviewMode, error) {
	for _, m := range []PreviewMode{PreviewOff, PreviewOn, PreviewAuto} {
		if s == m.String() {
			return m, nil
		}
	}
	return PreviewOff, fmt.Errorf("compressor: unknown preview mode %q", s)
}
