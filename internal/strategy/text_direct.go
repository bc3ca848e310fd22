package strategy

import (
	"context"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/extract"
)

// textDirect extracts from the page's native text. Fastest strategy;
// useful only on text-based pages.
type textDirect struct {
	deps Deps
}

func (s *textDirect) Name() constants.Method { return constants.MethodTextDirect }

func (s *textDirect) Extract(ctx context.Context, src Source, page int, opts Options) ([]extract.Item, error) {
	text, err := src.ExtractText(page)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	items := s.deps.Extractor.FromText(text, page, nil)
	s.deps.Logger.Info("strategy done", "strategy", s.Name(), "page", page, "items", len(items))
	return items, nil
}
