package extract

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/partstream/catalog-extractor/internal/ocr"
	"github.com/partstream/catalog-extractor/internal/table"
)

const (
	// Accepted price range; anything outside is OCR garbage, not a price.
	minPrice = 0.01
	maxPrice = 1_000_000
	// plainTextConfidence is assumed for lines with no OCR word data
	// (native-text pages).
	plainTextConfidence = 80.0
)

// Extractor applies the pattern recognizers to rows or plain text.
type Extractor struct {
	Logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Logger: logger}
}

// FromRows extracts candidate items from reconstructed table rows.
func (e *Extractor) FromRows(rows []table.Row, page int) []Item {
	var items []Item
	for _, row := range rows {
		box := row.Box
		items = append(items, e.fromUnit(row.Text(), page, row.Confidence, &box)...)
	}
	e.Logger.Debug("extracted from rows", "page", page, "rows", len(rows), "items", len(items))
	return items
}

// FromText extracts candidate items line by line from plain page text.
// words, when available, supply per-line confidence; otherwise the
// plain-text default applies.
func (e *Extractor) FromText(text string, page int, words []ocr.Word) []Item {
	var items []Item
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, e.fromUnit(line, page, lineConfidence(line, words), nil)...)
	}
	e.Logger.Debug("extracted from text", "page", page, "items", len(items))
	return items
}

// fromUnit applies the item construction policy to one text unit:
// parts+prices cross each part with the first price; part-only and
// price-only units emit partial items; units with neither emit nothing.
func (e *Extractor) fromUnit(text string, page int, confidence float64, box *ocr.Box) []Item {
	partNumbers := matchAll(partNumberPatterns, text)
	prices := parsePrices(text)
	if len(partNumbers) == 0 && len(prices) == 0 {
		return nil
	}

	brandCode := ""
	if brands := matchAll(brandCodePatterns, text); len(brands) > 0 {
		brandCode = brands[0]
	}
	priceType := "retail"
	if types := matchAll(priceTypePatterns, text); len(types) > 0 {
		priceType = types[0]
	}

	base := Item{
		BrandCode:  brandCode,
		Currency:   DefaultCurrency,
		Page:       page,
		Confidence: confidence,
		RawText:    text,
		Box:        box,
	}

	var items []Item
	switch {
	case len(partNumbers) > 0 && len(prices) > 0:
		first := prices[0]
		for _, part := range partNumbers {
			it := base
			it.PartNumber = part
			it.PriceType = priceType
			it.PriceValue = ptr(first)
			items = append(items, it)
		}
	case len(partNumbers) > 0:
		for _, part := range partNumbers {
			it := base
			it.PartNumber = part
			items = append(items, it)
		}
	default:
		for _, price := range prices {
			it := base
			it.PriceType = priceType
			it.PriceValue = ptr(price)
			items = append(items, it)
		}
	}
	return items
}

// parsePrices extracts price strings and converts them to range-checked
// float values.
func parsePrices(text string) []float64 {
	var prices []float64
	for _, raw := range matchAll(pricePatterns, text) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			continue
		}
		if v >= minPrice && v <= maxPrice {
			prices = append(prices, v)
		}
	}
	return prices
}

// lineConfidence averages the confidences of OCR words appearing in the
// line, defaulting when no word data is available.
func lineConfidence(line string, words []ocr.Word) float64 {
	if len(words) == 0 {
		return plainTextConfidence
	}
	sum, n := 0.0, 0
	for _, w := range words {
		if strings.Contains(line, w.Text) {
			sum += w.Confidence
			n++
		}
	}
	if n == 0 {
		return plainTextConfidence
	}
	return sum / float64(n)
}

func ptr(v float64) *float64 { return &v }
