// Package validate scores extracted candidates for plausibility, filters
// below a confidence floor, and deduplicates by (part number, page).
package validate

import (
	"log/slog"
	"math"
	"strings"
	"unicode"

	"github.com/partstream/catalog-extractor/internal/extract"
)

const (
	// Weights blending the inbound OCR confidence with the structural
	// sub-scores.
	baseWeight       = 0.4
	structuralWeight = 0.6
)

// Validator recomputes item confidence and enforces the floor.
type Validator struct {
	MinConfidence float64
	Logger        *slog.Logger
}

func NewValidator(minConfidence float64, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{MinConfidence: minConfidence, Logger: logger}
}

// Validate overwrites every item's confidence with the recomputed score and
// drops items under the floor. Dropped items are not retried.
func (v *Validator) Validate(items []extract.Item) []extract.Item {
	kept := make([]extract.Item, 0, len(items))
	for _, item := range items {
		item.Confidence = v.score(item)
		if item.Confidence >= v.MinConfidence {
			kept = append(kept, item)
			continue
		}
		v.Logger.Debug("item dropped below confidence floor",
			"confidence", item.Confidence,
			"part_number", item.PartNumber,
			"price", item.Price(),
		)
	}
	v.Logger.Info("items validated", "in", len(items), "kept", len(kept))
	return kept
}

// score blends the base OCR confidence (0.4) with the mean of the
// applicable structural sub-scores (0.6). Sub-scores exist only for fields
// that are present; with none present the base confidence stands alone.
func (v *Validator) score(item extract.Item) float64 {
	var subs []float64
	if item.PartNumber != "" {
		subs = append(subs, scorePartNumber(item.PartNumber))
	}
	if item.PriceValue != nil {
		subs = append(subs, scorePrice(*item.PriceValue))
	}
	if item.BrandCode != "" {
		subs = append(subs, scoreBrandCode(item.BrandCode))
	}
	subs = append(subs, scoreCompleteness(item))

	if len(subs) == 0 {
		return item.Confidence
	}
	sum := 0.0
	for _, s := range subs {
		sum += s
	}
	return baseWeight*item.Confidence + structuralWeight*(sum/float64(len(subs)))
}

func scorePartNumber(part string) float64 {
	score := 50.0

	// typical catalog part numbers run 5-15 characters
	if n := len(part); n >= 5 && n <= 15 {
		score += 20
	} else if n > 15 {
		score -= 10
	}

	hasLetters, hasDigits := false, false
	for _, r := range part {
		switch {
		case unicode.IsLetter(r):
			hasLetters = true
		case unicode.IsDigit(r):
			hasDigits = true
		}
	}
	if hasLetters && hasDigits {
		score += 20
	} else if hasDigits {
		score += 10 // pure numeric is okay
	}

	if strings.ContainsAny(part, "- ") {
		score += 10
	}

	special := 0
	for _, r := range part {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && !unicode.IsSpace(r) {
			special++
		}
	}
	if special > 2 {
		score -= 20
	}

	return clamp(score)
}

func scorePrice(price float64) float64 {
	score := 50.0

	switch {
	case price >= 0.10 && price <= 10000:
		score += 30
	case price > 10000 && price <= 100000:
		score += 15
	default:
		score -= 20
	}

	// a cents component makes a real catalog price more likely
	if math.Mod(price, 1) != 0 {
		score += 20
	}

	// round numbers in the mid band are statistically suspicious
	if math.Mod(price, 10) == 0 && price > 10 && price < 1000 {
		score -= 10
	}

	return clamp(score)
}

func scoreBrandCode(brand string) float64 {
	score := 50.0

	if n := len(brand); n >= 2 && n <= 4 {
		score += 30
	} else {
		score -= 20
	}

	if brand == strings.ToUpper(brand) {
		score += 20
	}

	allAlpha := true
	for _, r := range brand {
		if !unicode.IsLetter(r) {
			allAlpha = false
			break
		}
	}
	if allAlpha {
		score += 10
	} else {
		score -= 20
	}

	return clamp(score)
}

func scoreCompleteness(item extract.Item) float64 {
	present := 0
	if item.BrandCode != "" {
		present++
	}
	if item.PartNumber != "" {
		present++
	}
	if item.PriceValue != nil {
		present++
	}
	if item.PriceType != "" {
		present++
	}
	return float64(present) / 4 * 100
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Deduplicate groups items by (part number, page) and keeps the highest
// confidence item per group, first seen winning ties. Items without a part
// number carry no identity to collide on, so all of them survive.
func Deduplicate(items []extract.Item) []extract.Item {
	type key struct {
		part string
		page int
	}
	best := map[key]int{}
	var out []extract.Item

	for _, item := range items {
		if item.PartNumber == "" {
			out = append(out, item)
			continue
		}
		k := key{part: item.PartNumber, page: item.Page}
		if idx, ok := best[k]; ok {
			if item.Confidence > out[idx].Confidence {
				out[idx] = item
			}
			continue
		}
		best[k] = len(out)
		out = append(out, item)
	}
	return out
}
