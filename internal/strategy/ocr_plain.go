package strategy

import (
	"context"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/extract"
)

// ocrPlain skips table reconstruction and extracts straight from the
// recognized full text. A different failure mode than ocr_table: it loses
// column structure but survives pages whose layout confuses the grid and
// position tiers.
type ocrPlain struct {
	deps Deps
}

func (s *ocrPlain) Name() constants.Method { return constants.MethodOCRPlain }

func (s *ocrPlain) Extract(ctx context.Context, src Source, page int, opts Options) ([]extract.Item, error) {
	_, res, err := s.deps.ocrPage(ctx, src, page, opts.DPI)
	if err != nil {
		return nil, err
	}
	items := s.deps.Extractor.FromText(res.Text, page, res.Words)
	s.deps.Logger.Info("strategy done", "strategy", s.Name(), "page", page, "items", len(items))
	return items, nil
}
