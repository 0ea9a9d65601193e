package compressor

import (
	"github.com/Carmen-Shannon/oxy-astc/engine/astc"
)

// keywordTarget is anything a block size can be configured on. Materials satisfy it.
type keywordTarget interface {
	EnableKeyword(kw string)
	DisableKeyword(kw string)
	SetFloatArray(name string, values []float32)
}

// configureBlockSize is the one configuration routine shared by both backends. It leaves
// exactly one block-size keyword enabled, uploads the quantization tables for 6x6 and toggles
// the decode preview keyword. An unsupported block size panics before the target is touched.
//
// Parameters:
//   - target: the material to configure
//   - b: the block size
//   - preview: whether the program also writes the decoded colours
func configureBlockSize(target keywordTarget, b astc.BlockSize, preview bool) {
	enabled := b.Keyword()
	for _, kw := range astc.BlockSizeKeywords() {
		if kw == enabled {
			target.EnableKeyword(kw)
		} else {
			target.DisableKeyword(kw)
		}
	}

	if b.NeedsQuantTables() {
		tables := astc.Tables()
		target.SetFloatArray(astc.IntegerFromQuintsName, tables.IntegerFromQuints())
		target.SetFloatArray(astc.ColorQuantTableName, tables.ColorQuant())
	}

	if preview {
		target.EnableKeyword(KeywordDecompressRGB)
	} else {
		target.DisableKeyword(KeywordDecompressRGB)
	}
}
