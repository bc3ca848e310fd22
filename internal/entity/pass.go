package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/constants"
)

// ExtractionPass is one controller-invoked run of a strategy over a page
// range with fixed configuration. Immutable once terminal except for
// consolidation bookkeeping.
type ExtractionPass struct {
	ID             uuid.UUID
	DocumentID     uuid.UUID
	PassNumber     int
	Method         constants.Method
	DPI            int
	MinConfidence  float64
	ForceOCR       bool
	Status         constants.PassStatus
	ItemsExtracted int
	AvgConfidence  float64
	Duration       time.Duration
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     *time.Time
}
