package strategy

import (
	"context"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/extract"
)

// hybrid runs text-direct (unless OCR is forced), ocr_table and ocr_plain
// in sequence, unioning every sub-strategy's results. A sub-strategy
// failure is logged and skipped, never propagated: partial recall beats an
// empty page.
type hybrid struct {
	deps     Deps
	text     Strategy
	ocrTable Strategy
	ocrPlain Strategy
}

func newHybrid(deps Deps) *hybrid {
	return &hybrid{
		deps:     deps,
		text:     &textDirect{deps},
		ocrTable: &ocrTable{deps},
		ocrPlain: &ocrPlain{deps},
	}
}

func (s *hybrid) Name() constants.Method { return constants.MethodHybrid }

func (s *hybrid) Extract(ctx context.Context, src Source, page int, opts Options) ([]extract.Item, error) {
	var items []extract.Item

	subs := []Strategy{s.ocrTable, s.ocrPlain}
	if !opts.ForceOCR {
		subs = append([]Strategy{s.text}, subs...)
	}

	for _, sub := range subs {
		got, err := sub.Extract(ctx, src, page, opts)
		if err != nil {
			s.deps.Logger.Warn("hybrid sub-strategy failed",
				"strategy", sub.Name(), "page", page, "error", err)
			continue
		}
		items = append(items, got...)
	}

	s.deps.Logger.Info("strategy done", "strategy", s.Name(), "page", page, "items", len(items))
	return items, nil
}
