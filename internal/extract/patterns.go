package extract

import "regexp"

// Pattern recognizers for catalog fields. All matching is case-insensitive
// and duplicate matches within one text unit are dropped keeping first-seen
// order.
var (
	// Part numbers: specific catalog shapes only, not generic alphanumerics.
	partNumberPatterns = []*regexp.Regexp{
		// 41-3525, 28-9313PT, 11-1413P6, 35-133P-16, 36-9313PT-1
		regexp.MustCompile(`(?i)\b(\d{2}[-]\d{3,4}[A-Z0-9]{0,6}(?:[-]\d+)?)\b`),
		// 43D7276, 36U-9332
		regexp.MustCompile(`(?i)\b(\d{2}[A-Z][-]?\d{4})\b`),
		// ABC-12345, SUM-715030
		regexp.MustCompile(`(?i)\b([A-Z]{2,4}[-]\d{4,6}[-]?[A-Z0-9]{0,6})\b`),
		// SUM715030, EXG1181
		regexp.MustCompile(`(?i)\b([A-Z]{3}\d{4,6})\b`),
		// 45-517A, 45-417A
		regexp.MustCompile(`(?i)\b(\d{2}[-]\d{3,4}[A-Z])\b`),
	}

	// Prices: currency-prefixed or -suffixed decimals with optional
	// thousands separators.
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)USD\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*\.\d{2})\s*(?:USD|\$)?`),
	}

	// Brand codes: 2-4 letter prefixes.
	brandCodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b([A-Z]{2,4})\b`),
	}

	// Price-type labels: fixed vocabulary.
	priceTypePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(retail|sale|each|per\s*unit|list\s*price|your\s*price)\b`),
	}
)

// matchAll collects capture-group matches across patterns, deduplicated
// preserving first-seen order.
func matchAll(patterns []*regexp.Regexp, text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			if _, dup := seen[m[1]]; dup {
				continue
			}
			seen[m[1]] = struct{}{}
			out = append(out, m[1])
		}
	}
	return out
}
