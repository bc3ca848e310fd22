// Package extract pulls structured catalog fields (part numbers, prices,
// brand codes, price-type labels) out of reconstructed rows or plain text.
package extract

import "github.com/partstream/catalog-extractor/internal/ocr"

// DefaultCurrency is assumed for every extracted price; the source catalogs
// carry no currency markers beyond "$"/"USD".
const DefaultCurrency = "USD"

// Item is one extracted candidate record. Empty strings mean "not found";
// a nil PriceValue means no price was extracted.
type Item struct {
	BrandCode  string
	PartNumber string
	PriceType  string
	PriceValue *float64
	Currency   string
	Page       int
	Confidence float64 // 0..100, overwritten later by validation
	RawText    string
	Box        *ocr.Box // nil when the source had no geometry
}

// HasPart reports whether a part number was extracted.
func (it Item) HasPart() bool { return it.PartNumber != "" }

// Price returns the price value or 0 when absent.
func (it Item) Price() float64 {
	if it.PriceValue == nil {
		return 0
	}
	return *it.PriceValue
}
