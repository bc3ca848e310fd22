package strategy

import (
	"context"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/extract"
)

// ocrAggressive renders at a raised resolution floor and unions table-based
// and plain-text extraction from the same recognition run. Duplicates are
// accepted here; validation dedup resolves them downstream.
type ocrAggressive struct {
	deps Deps
}

func (s *ocrAggressive) Name() constants.Method { return constants.MethodOCRAggressive }

func (s *ocrAggressive) Extract(ctx context.Context, src Source, page int, opts Options) ([]extract.Item, error) {
	dpi := opts.DPI
	if dpi < aggressiveDPIFloor {
		dpi = aggressiveDPIFloor
	}

	binary, res, err := s.deps.ocrPage(ctx, src, page, dpi)
	if err != nil {
		return nil, err
	}

	var items []extract.Item
	if rows := s.deps.Reconstructor.Reconstruct(binary, res.Lines, page); len(rows) > 0 {
		items = append(items, s.deps.Extractor.FromRows(rows, page)...)
	}
	items = append(items, s.deps.Extractor.FromText(res.Text, page, res.Words)...)

	s.deps.Logger.Info("strategy done", "strategy", s.Name(), "page", page, "dpi", dpi, "items", len(items))
	return items, nil
}
