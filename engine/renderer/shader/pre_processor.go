// pre_processor.go implements the Oxy WGSL pre-processor. It expands @oxy:include directives
// from a registry of embedded WGSL snippets and resolves @oxy:if blocks against the set of
// enabled keywords, producing the source of one program variant.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
)

// KeywordGroup is the member list of one @oxy:multi_compile directive in declaration order.
// A NoKeyword member allows the group to have no keyword enabled.
type KeywordGroup []string

// Contains reports whether kw is a member of the group.
func (g KeywordGroup) Contains(kw string) bool {
	for _, k := range g {
		if k == kw {
			return true
		}
	}
	return false
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includes maps @oxy:include names to the WGSL source they expand to.
	includes map[string]string
}

// PreProcessor scans and expands @oxy: directives in WGSL source.
type PreProcessor interface {
	// Scan collects the keyword groups declared by @oxy:multi_compile and checks that every
	// directive is well formed and every if block is closed.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - []KeywordGroup: the declared groups in source order
	//   - error: an error describing the first malformed directive
	Scan(source string) ([]KeywordGroup, error)

	// Process produces the WGSL of one variant. Include directives are replaced with their
	// registered source, if blocks are kept or dropped according to enabled, and the remaining
	// directive lines are removed.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//   - enabled: the set of enabled keywords
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error for malformed directives or unknown include names
	Process(source string, enabled map[string]bool) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's WGSL snippets registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		includes: map[string]string{
			"astc_block": astc.GPUBlockSource,
		},
	}
}

func (p *preProcessor) Scan(source string) ([]KeywordGroup, error) {
	var groups []KeywordGroup
	depth := 0
	for i, line := range strings.Split(source, "\n") {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		switch a.Type {
		case AnnotationTypeMultiCompile:
			groups = append(groups, KeywordGroup(a.Args))
		case AnnotationTypeIf:
			depth++
		case AnnotationTypeElse:
			if depth == 0 {
				return nil, fmt.Errorf("line %d: @oxy:else without @oxy:if", a.Line)
			}
		case AnnotationTypeEndif:
			if depth == 0 {
				return nil, fmt.Errorf("line %d: @oxy:endif without @oxy:if", a.Line)
			}
			depth--
		case AnnotationTypeInclude:
			if _, ok := p.includes[a.Args[0]]; !ok {
				return nil, fmt.Errorf("line %d: unknown @oxy:include name %q", a.Line, a.Args[0])
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%d unterminated @oxy:if block(s)", depth)
	}
	return groups, nil
}

// condFrame tracks one open if block: whether its current branch is emitted and whether the
// enclosing block was emitting when it opened.
type condFrame struct {
	active bool
	parent bool
	line   int
	inElse bool
}

func (p *preProcessor) Process(source string, enabled map[string]bool) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	var stack []condFrame
	emitting := true

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			if emitting {
				out = append(out, line)
			}
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			src, ok := p.includes[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @oxy:include name %q", a.Line, a.Args[0])
			}
			if emitting {
				out = append(out, src)
			}
		case AnnotationTypeMultiCompile:
		case AnnotationTypeIf:
			kw, negate := strings.CutPrefix(a.Args[0], "!")
			cond := enabled[kw] != negate
			stack = append(stack, condFrame{active: cond, parent: emitting, line: a.Line})
			emitting = emitting && cond
		case AnnotationTypeElse:
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: @oxy:else without @oxy:if", a.Line)
			}
			top := &stack[len(stack)-1]
			if top.inElse {
				return "", fmt.Errorf("line %d: second @oxy:else for @oxy:if on line %d", a.Line, top.line)
			}
			top.inElse = true
			top.active = !top.active
			emitting = top.parent && top.active
		case AnnotationTypeEndif:
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: @oxy:endif without @oxy:if", a.Line)
			}
			emitting = stack[len(stack)-1].parent
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 0 {
		return "", fmt.Errorf("line %d: unterminated @oxy:if", stack[len(stack)-1].line)
	}
	return strings.Join(out, "\n"), nil
}
