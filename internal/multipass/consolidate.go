package multipass

import (
	"sort"

	"github.com/partstream/catalog-extractor/internal/entity"
)

type groupKey struct {
	part string
	page int
}

// consolidate reduces every extracted item from the document's completed
// passes to one winner per (part number, page). Items without a part
// number carry no identity across passes and are left out. The winner is
// the highest-confidence item holding a positive price; when no group
// member has a price, plain highest confidence decides.
func consolidate(items []*entity.ExtractedItem) []*entity.ConsolidatedItem {
	groups := make(map[groupKey][]*entity.ExtractedItem)
	var order []groupKey
	for _, it := range items {
		if it.PartNumber == "" {
			continue
		}
		k := groupKey{part: it.PartNumber, page: it.Page}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], it)
	}

	out := make([]*entity.ConsolidatedItem, 0, len(order))
	for _, k := range order {
		members := groups[k]
		winner := pickWinner(members)

		var sum float64
		for _, m := range members {
			sum += m.Confidence
		}

		out = append(out, &entity.ConsolidatedItem{
			BrandCode:     winner.BrandCode,
			PartNumber:    winner.PartNumber,
			PriceType:     winner.PriceType,
			PriceValue:    winner.PriceValue,
			Currency:      winner.Currency,
			Page:          winner.Page,
			Confidence:    winner.Confidence,
			AvgConfidence: sum / float64(len(members)),
			SourceCount:   len(members),
			RawText:       winner.RawText,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].PartNumber < out[j].PartNumber
	})
	return out
}

func pickWinner(members []*entity.ExtractedItem) *entity.ExtractedItem {
	var best, bestPriced *entity.ExtractedItem
	for _, m := range members {
		if best == nil || m.Confidence > best.Confidence {
			best = m
		}
		if m.PriceValue != nil && *m.PriceValue > 0 {
			if bestPriced == nil || m.Confidence > bestPriced.Confidence {
				bestPriced = m
			}
		}
	}
	if bestPriced != nil {
		return bestPriced
	}
	return best
}
