package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// ErrInvalidShader is returned when a variant fails to compile.
var ErrInvalidShader = errors.New("shader: variant failed validation")

// Validate compiles a processed variant with naga to catch WGSL errors before the GPU driver sees
// the source. Failures caused by language features naga does not implement yet are logged and
// treated as success, as the driver's own compiler is the authority for those.
//
// Parameters:
//   - v: the variant to validate
//
// Returns:
//   - error: ErrInvalidShader wrapping the compiler message, or nil
func Validate(v Variant) error {
	spirv, err := naga.Compile(v.Source())
	if err != nil {
		if isUnsupportedFeature(err) {
			common.Logger().Debug("shader validation skipped", "variant", v.Key(), "reason", err.Error())
			return nil
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidShader, v.Key(), err)
	}
	if len(spirv) < 4 || binary.LittleEndian.Uint32(spirv) != spirvMagic {
		return fmt.Errorf("%w: %s: compiler produced no SPIR-V module", ErrInvalidShader, v.Key())
	}
	return nil
}

func isUnsupportedFeature(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported")
}
