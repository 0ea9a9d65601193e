package astc

const (
	// IntegerFromQuintsName is the program binding receiving the index-remap table.
	IntegerFromQuintsName = "integer_from_quints"

	// ColorQuantTableName is the program binding receiving the endpoint-quantization table.
	ColorQuantTableName = "color_quant_table"

	// IntegerFromQuintsLen is the number of entries in the index-remap table (5^3 quint triplets).
	IntegerFromQuintsLen = 125

	// ColorQuantTableLen is the number of entries in the endpoint-quantization table (one per 8-bit value).
	ColorQuantTableLen = 256

	// tableBias moves every integer entry to its texel centre so the program can truncate on read.
	tableBias = 0.5
)

// integerFromQuints maps a packed quint triplet index to its 7-bit integer sequence encoding.
var integerFromQuints = [IntegerFromQuintsLen]uint8{
	0, 1, 2, 3, 4, 8, 9, 10, 11, 12, 16, 17, 18, 19, 20, 24, 25, 26, 27, 28, 5, 13, 21, 29, 6,
	32, 33, 34, 35, 36, 40, 41, 42, 43, 44, 48, 49, 50, 51, 52, 56, 57, 58, 59, 60, 37, 45, 53, 61, 14,
	64, 65, 66, 67, 68, 72, 73, 74, 75, 76, 80, 81, 82, 83, 84, 88, 89, 90, 91, 92, 69, 77, 85, 93, 22,
	96, 97, 98, 99, 100, 104, 105, 106, 107, 108, 112, 113, 114, 115, 116, 120, 121, 122, 123, 124, 101, 109, 117, 125, 30,
	102, 103, 70, 71, 38, 110, 111, 78, 79, 46, 118, 119, 86, 87, 54, 126, 127, 94, 95, 62, 39, 47, 55, 63, 31,
}

// colorQuantTable maps an 8-bit endpoint value to its quantized endpoint code.
var colorQuantTable = [ColorQuantTableLen]uint8{
	0, 0, 16, 16, 16, 32, 32, 32, 48, 48, 48, 48, 64, 64, 64, 2,
	2, 2, 18, 18, 18, 34, 34, 34, 50, 50, 50, 50, 66, 66, 66, 4,
	4, 4, 20, 20, 20, 36, 36, 36, 36, 52, 52, 52, 68, 68, 68, 6,
	6, 6, 22, 22, 22, 38, 38, 38, 38, 54, 54, 54, 70, 70, 70, 8,
	8, 8, 24, 24, 24, 24, 40, 40, 40, 56, 56, 56, 72, 72, 72, 10,
	10, 10, 26, 26, 26, 26, 42, 42, 42, 58, 58, 58, 74, 74, 74, 12,
	12, 12, 12, 28, 28, 28, 44, 44, 44, 60, 60, 60, 76, 76, 76, 14,
	14, 14, 14, 30, 30, 30, 46, 46, 46, 62, 62, 62, 78, 78, 78, 78,
	79, 79, 79, 79, 63, 63, 63, 47, 47, 47, 31, 31, 31, 15, 15, 15,
	15, 77, 77, 77, 61, 61, 61, 45, 45, 45, 29, 29, 29, 13, 13, 13,
	13, 75, 75, 75, 59, 59, 59, 43, 43, 43, 27, 27, 27, 27, 11, 11,
	11, 73, 73, 73, 57, 57, 57, 41, 41, 41, 25, 25, 25, 25, 9, 9,
	9, 71, 71, 71, 55, 55, 55, 39, 39, 39, 39, 23, 23, 23, 7, 7,
	7, 69, 69, 69, 53, 53, 53, 37, 37, 37, 37, 21, 21, 21, 5, 5,
	5, 67, 67, 67, 51, 51, 51, 51, 35, 35, 35, 19, 19, 19, 3, 3,
	3, 65, 65, 65, 49, 49, 49, 49, 33, 33, 33, 17, 17, 17, 1, 1,
}

// QuantTables holds the biased 6x6 lookup tables in the float layout the program reads.
type QuantTables struct {
	integerFromQuints [IntegerFromQuintsLen]float32
	colorQuant        [ColorQuantTableLen]float32
}

// tables is built once at package initialization and never written afterwards.
var tables = newQuantTables()

func newQuantTables() *QuantTables {
	t := &QuantTables{}
	for i, v := range integerFromQuints {
		t.integerFromQuints[i] = float32(v) + tableBias
	}
	for i, v := range colorQuantTable {
		t.colorQuant[i] = float32(v) + tableBias
	}
	return t
}

// Tables returns the process-wide quantization tables. Every backend binds the same instance.
//
// Returns:
//   - *QuantTables: the shared tables
func Tables() *QuantTables {
	return tables
}

// IntegerFromQuints returns the biased index-remap table. The slice aliases the shared tables
// and must not be modified.
func (t *QuantTables) IntegerFromQuints() []float32 {
	return t.integerFromQuints[:]
}

// ColorQuant returns the biased endpoint-quantization table. The slice aliases the shared
// tables and must not be modified.
func (t *QuantTables) ColorQuant() []float32 {
	return t.colorQuant[:]
}
