package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/internal/ocr"
)

// ExtractedItem is one validated candidate persisted for a pass. Empty
// strings mean the field was not extracted; a nil PriceValue means no
// price.
type ExtractedItem struct {
	ID         uuid.UUID
	PassID     uuid.UUID
	BrandCode  string
	PartNumber string
	PriceType  string
	PriceValue *float64
	Currency   string
	Page       int
	Confidence float64
	RawText    string
	Box        *ocr.Box
	CreatedAt  time.Time
}

// ConsolidatedItem is the best candidate across all completed passes for
// one (part number, page) key. The document's consolidated set is rebuilt
// whole on every consolidation run, never partially updated.
type ConsolidatedItem struct {
	ID            uuid.UUID
	DocumentID    uuid.UUID
	BrandCode     string
	PartNumber    string
	PriceType     string
	PriceValue    *float64
	Currency      string
	Page          int
	Confidence    float64 // winning item's confidence
	AvgConfidence float64 // mean over all group members
	SourceCount   int     // group size across passes
	RawText       string
	CreatedAt     time.Time
}
