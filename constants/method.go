package constants

// Method names the extraction strategy used for a pass. The strategy factory
// rejects anything outside this set before a pass row is created.
type Method string

// Stable values (store these exact strings in DB).
const (
	MethodTextDirect    Method = "text_direct"
	MethodOCRTable      Method = "ocr_table"
	MethodOCRPlain      Method = "ocr_plain"
	MethodOCRAggressive Method = "ocr_aggressive"
	MethodHybrid        Method = "hybrid"
)

// Methods lists every valid extraction method.
var Methods = []Method{
	MethodTextDirect,
	MethodOCRTable,
	MethodOCRPlain,
	MethodOCRAggressive,
	MethodHybrid,
}

func ValidMethod(m Method) bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}
