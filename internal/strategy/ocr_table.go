package strategy

import (
	"context"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/extract"
)

// ocrTable renders, preprocesses and recognizes the page, then extracts
// from reconstructed table rows.
type ocrTable struct {
	deps Deps
}

func (s *ocrTable) Name() constants.Method { return constants.MethodOCRTable }

func (s *ocrTable) Extract(ctx context.Context, src Source, page int, opts Options) ([]extract.Item, error) {
	binary, res, err := s.deps.ocrPage(ctx, src, page, opts.DPI)
	if err != nil {
		return nil, err
	}

	rows := s.deps.Reconstructor.Reconstruct(binary, res.Lines, page)
	var items []extract.Item
	if len(rows) > 0 {
		items = s.deps.Extractor.FromRows(rows, page)
	}
	s.deps.Logger.Info("strategy done", "strategy", s.Name(), "page", page, "items", len(items))
	return items, nil
}
