package compressor

import "testing"

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateIdle:        "idle",
		StateConfiguring: "configuring",
		StateDispatching: "dispatching",
		StateFinalizing:  "finalizing",
		State(9):         "State(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int32(s), got, want)
		}
	}
}

func TestParsePreviewMode(t *testing.T) {
	for _, m := range []PreviewMode{PreviewOff, PreviewOn, PreviewAuto} {
		got, err := ParsePreviewMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParsePreviewMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParsePreviewMode("sometimes"); err == nil {
		t.Error("ParsePreviewMode accepted an unknown mode")
	}
}
