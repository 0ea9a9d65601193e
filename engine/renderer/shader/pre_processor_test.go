package shader

import (
	"slices"
	"strings"
	"testing"
)

const conditionalSource = `//@oxy:multi_compile A B _
//@oxy:multi_compile DECOMPRESS _
fn common() {}
//@oxy:if A
fn only_a() {}
//@oxy:else
fn not_a() {}
//@oxy:endif
//@oxy:if !DECOMPRESS
fn no_decompress() {}
//@oxy:endif
//@oxy:if B
//@oxy:if DECOMPRESS
fn b_and_decompress() {}
//@oxy:endif
//@oxy:endif
`

func TestPreProcessorScan(t *testing.T) {
	groups, err := NewPreProcessor().Scan(conditionalSource)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []KeywordGroup{{"A", "B", "_"}, {"DECOMPRESS", "_"}}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i := range want {
		if !slices.Equal(groups[i], want[i]) {
			t.Errorf("group %d = %v, want %v", i, groups[i], want[i])
		}
	}
}

func TestPreProcessorScanErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unknown directive", "//@oxy:pragma X\n"},
		{"empty directive", "//@oxy:\n"},
		{"single entry group", "//@oxy:multi_compile A\n"},
		{"repeated keyword", "//@oxy:multi_compile A A\n"},
		{"if without keyword", "//@oxy:if\n//@oxy:endif\n"},
		{"unterminated if", "//@oxy:if A\nfn f() {}\n"},
		{"stray else", "//@oxy:else\n"},
		{"stray endif", "//@oxy:endif\n"},
		{"unknown include", "//@oxy:include nothing_here\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPreProcessor().Scan(tt.source); err == nil {
				t.Errorf("Scan(%q) returned nil error", tt.source)
			}
		})
	}
}

func TestPreProcessorProcess(t *testing.T) {
	tests := []struct {
		name    string
		enabled []string
		want    []string
		notWant []string
	}{
		{
			name:    "nothing enabled",
			want:    []string{"fn common", "fn not_a", "fn no_decompress"},
			notWant: []string{"fn only_a", "fn b_and_decompress"},
		},
		{
			name:    "A enabled",
			enabled: []string{"A"},
			want:    []string{"fn common", "fn only_a", "fn no_decompress"},
			notWant: []string{"fn not_a", "fn b_and_decompress"},
		},
		{
			name:    "nested B and DECOMPRESS",
			enabled: []string{"B", "DECOMPRESS"},
			want:    []string{"fn not_a", "fn b_and_decompress"},
			notWant: []string{"fn only_a", "fn no_decompress"},
		},
		{
			name:    "nested block dropped with its parent",
			enabled: []string{"DECOMPRESS"},
			want:    []string{"fn not_a"},
			notWant: []string{"fn b_and_decompress", "fn no_decompress"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enabled := make(map[string]bool)
			for _, kw := range tt.enabled {
				enabled[kw] = true
			}
			out, err := NewPreProcessor().Process(conditionalSource, enabled)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if strings.Contains(out, "@oxy:") {
				t.Errorf("output still contains directives:\n%s", out)
			}
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output unexpectedly contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestPreProcessorInclude(t *testing.T) {
	src := "//@oxy:include astc_block\nfn main() {}\n"
	out, err := NewPreProcessor().Process(src, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(out, "fn astc_void_extent") {
		t.Errorf("include was not expanded:\n%s", out)
	}
}

func TestPreProcessorProcessRejectsSecondElse(t *testing.T) {
	src := "//@oxy:if A\n//@oxy:else\n//@oxy:else\n//@oxy:endif\n"
	if _, err := NewPreProcessor().Process(src, nil); err == nil {
		t.Error("expected an error for a second else")
	}
}
