// Package strategy composes the renderer, preprocessor, recognizer, table
// reconstructor and field extractor into named per-page extraction
// policies, each a different tradeoff of speed versus recall.
package strategy

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/common"
	"github.com/partstream/catalog-extractor/internal/extract"
	"github.com/partstream/catalog-extractor/internal/imaging"
	"github.com/partstream/catalog-extractor/internal/ocr"
	"github.com/partstream/catalog-extractor/internal/table"
)

// aggressiveDPIFloor is the minimum render resolution for the aggressive
// strategy regardless of the caller's DPI.
const aggressiveDPIFloor = 400

// Options tunes one strategy invocation.
type Options struct {
	DPI      int
	ForceOCR bool
}

// Source is the per-page PDF view strategies read from. *pdfdoc.Document
// implements it; tests substitute fakes.
type Source interface {
	PageCount() int
	IsTextBased(page int) bool
	ExtractText(page int) (string, error)
	RenderPage(ctx context.Context, page int, dpi int) (image.Image, error)
}

// Recognizer abstracts the OCR engine so page processing can be tested
// without tesseract installed.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, page int) (ocr.Result, error)
}

// Strategy extracts candidate items from one page.
type Strategy interface {
	Name() constants.Method
	Extract(ctx context.Context, src Source, page int, opts Options) ([]extract.Item, error)
}

// Deps carries the shared pipeline components strategies compose.
type Deps struct {
	Preprocessor  *imaging.Preprocessor
	Recognizer    Recognizer
	Reconstructor *table.Reconstructor
	Extractor     *extract.Extractor
	Logger        *slog.Logger
}

// New builds the named strategy. Unknown names fail here, before any page
// is processed.
func New(method constants.Method, deps Deps) (Strategy, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	switch method {
	case constants.MethodTextDirect:
		return &textDirect{deps}, nil
	case constants.MethodOCRTable:
		return &ocrTable{deps}, nil
	case constants.MethodOCRPlain:
		return &ocrPlain{deps}, nil
	case constants.MethodOCRAggressive:
		return &ocrAggressive{deps}, nil
	case constants.MethodHybrid:
		return newHybrid(deps), nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownStrategy, method)
	}
}

// ocrPage is the shared render -> preprocess -> recognize front half of the
// OCR strategies.
func (d Deps) ocrPage(ctx context.Context, src Source, page, dpi int) (*image.Gray, ocr.Result, error) {
	img, err := src.RenderPage(ctx, page, dpi)
	if err != nil {
		return nil, ocr.Result{}, fmt.Errorf("render: %w", err)
	}
	binary, _ := d.Preprocessor.Preprocess(img)
	res, err := d.Recognizer.Recognize(ctx, binary, page)
	if err != nil {
		return nil, ocr.Result{}, fmt.Errorf("recognize: %w", err)
	}
	return binary, res, nil
}
