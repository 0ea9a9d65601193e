// annotations.go defines the @oxy: directives understood by the WGSL pre-processor.
// Directives are single-line WGSL comments, so an unprocessed program is still valid WGSL
// with every conditional block present.
//
//	//@oxy:include <name>            inject a registered WGSL snippet
//	//@oxy:multi_compile A B _       declare a keyword group; at most one member is enabled
//	//@oxy:if KEYWORD                keep the following lines when KEYWORD is enabled
//	//@oxy:if !KEYWORD               keep the following lines when KEYWORD is disabled
//	//@oxy:else
//	//@oxy:endif
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy directive within a WGSL comment line.
const annotationPrefix = "@oxy:"

// NoKeyword is the multi_compile placeholder for "no keyword of this group enabled".
const NoKeyword = "_"

// AnnotationType identifies the kind of directive parsed from a WGSL comment line.
type AnnotationType string

const (
	// AnnotationTypeInclude injects the WGSL source registered under its single argument.
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeMultiCompile declares a group of mutually exclusive keywords. Every
	// combination of one keyword per group is a separate program variant.
	AnnotationTypeMultiCompile AnnotationType = "multi_compile"

	// AnnotationTypeIf opens a block kept only when its keyword condition holds.
	AnnotationTypeIf AnnotationType = "if"

	// AnnotationTypeElse flips the innermost open if block.
	AnnotationTypeElse AnnotationType = "else"

	// AnnotationTypeEndif closes the innermost open if block.
	AnnotationTypeEndif AnnotationType = "endif"
)

// Annotation is one parsed @oxy: directive.
type Annotation struct {
	// Type identifies which directive was parsed.
	Type AnnotationType

	// Args holds the directive arguments: the include name, the keyword group members, or the
	// if condition (optionally prefixed with "!").
	Args []string

	// Line is the 1-based source line, used for error reporting.
	Line int
}

// parseAnnotation parses one source line. Lines without the directive prefix return nil with
// no error.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed directive, or nil for ordinary lines
//   - error: a descriptive error for malformed directives
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(after)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy directive", lineNum)
	}

	a := &Annotation{Type: AnnotationType(fields[0]), Args: fields[1:], Line: lineNum}
	switch a.Type {
	case AnnotationTypeInclude:
		if len(a.Args) != 1 {
			return nil, fmt.Errorf("line %d: @oxy:include takes exactly one name", lineNum)
		}
	case AnnotationTypeMultiCompile:
		if len(a.Args) < 2 {
			return nil, fmt.Errorf("line %d: @oxy:multi_compile needs at least two entries", lineNum)
		}
		seen := make(map[string]bool, len(a.Args))
		for _, kw := range a.Args {
			if seen[kw] {
				return nil, fmt.Errorf("line %d: keyword %q repeated in @oxy:multi_compile", lineNum, kw)
			}
			seen[kw] = true
		}
	case AnnotationTypeIf:
		if len(a.Args) != 1 || strings.TrimPrefix(a.Args[0], "!") == "" {
			return nil, fmt.Errorf("line %d: @oxy:if takes exactly one keyword", lineNum)
		}
	case AnnotationTypeElse, AnnotationTypeEndif:
		if len(a.Args) != 0 {
			return nil, fmt.Errorf("line %d: @oxy:%s takes no arguments", lineNum, a.Type)
		}
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy directive %q", lineNum, fields[0])
	}
	return a, nil
}
