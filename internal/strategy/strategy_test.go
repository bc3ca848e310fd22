package strategy

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"testing"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/common"
	"github.com/partstream/catalog-extractor/internal/extract"
	"github.com/partstream/catalog-extractor/internal/imaging"
	"github.com/partstream/catalog-extractor/internal/ocr"
	"github.com/partstream/catalog-extractor/internal/table"
)

type fakeSource struct {
	pages     int
	textBased bool
	text      map[int]string
	renderErr error
}

func (f *fakeSource) PageCount() int          { return f.pages }
func (f *fakeSource) IsTextBased(page int) bool { return f.textBased }

func (f *fakeSource) ExtractText(page int) (string, error) {
	text, ok := f.text[page]
	if !ok {
		return "", fmt.Errorf("page %d has no text", page)
	}
	return text, nil
}

func (f *fakeSource) RenderPage(_ context.Context, page, dpi int) (image.Image, error) {
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img, nil
}

type fakeRecognizer struct {
	result ocr.Result
	err    error
}

func (f *fakeRecognizer) Recognize(_ context.Context, img image.Image, page int) (ocr.Result, error) {
	return f.result, f.err
}

func testDeps(rec Recognizer) Deps {
	return Deps{
		Preprocessor:  imaging.NewPreprocessor(slog.Default(), false),
		Recognizer:    rec,
		Reconstructor: table.NewReconstructor(slog.Default()),
		Extractor:     extract.NewExtractor(slog.Default()),
		Logger:        slog.Default(),
	}
}

func TestNewRejectsUnknownMethod(t *testing.T) {
	_, err := New(constants.Method("telepathy"), testDeps(&fakeRecognizer{}))
	if !errors.Is(err, common.ErrUnknownStrategy) {
		t.Fatalf("err = %v, want ErrUnknownStrategy", err)
	}
}

func TestNewBuildsEveryMethod(t *testing.T) {
	for _, method := range constants.Methods {
		s, err := New(method, testDeps(&fakeRecognizer{}))
		if err != nil {
			t.Fatalf("New(%s): %v", method, err)
		}
		if s.Name() != method {
			t.Errorf("Name() = %s, want %s", s.Name(), method)
		}
	}
}

func TestTextDirectExtractsFromNativeText(t *testing.T) {
	src := &fakeSource{
		pages:     1,
		textBased: true,
		text:      map[int]string{0: "SUM-715030 $29.99 retail\nsee also the index"},
	}

	s, err := New(constants.MethodTextDirect, testDeps(&fakeRecognizer{}))
	if err != nil {
		t.Fatal(err)
	}
	items, err := s.Extract(context.Background(), src, 0, Options{DPI: 300})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	it := items[0]
	if it.PartNumber != "SUM-715030" {
		t.Errorf("part = %q", it.PartNumber)
	}
	if it.PriceValue == nil || *it.PriceValue != 29.99 {
		t.Errorf("price = %v", it.PriceValue)
	}
	if it.PriceType != "retail" {
		t.Errorf("price type = %q", it.PriceType)
	}
}

func TestTextDirectPropagatesTextError(t *testing.T) {
	src := &fakeSource{pages: 1, text: map[int]string{}}
	s, _ := New(constants.MethodTextDirect, testDeps(&fakeRecognizer{}))
	if _, err := s.Extract(context.Background(), src, 0, Options{}); err == nil {
		t.Fatal("expected error for missing page text")
	}
}

func TestOCRPlainExtractsFromRecognizedText(t *testing.T) {
	rec := &fakeRecognizer{
		result: ocr.Result{
			Text: "41-3525 $24.50",
			Words: []ocr.Word{
				{Text: "41-3525", Confidence: 90},
				{Text: "$24.50", Confidence: 80},
			},
		},
	}
	s, _ := New(constants.MethodOCRPlain, testDeps(rec))
	items, err := s.Extract(context.Background(), &fakeSource{pages: 1}, 0, Options{DPI: 300})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Confidence != 85 {
		t.Errorf("confidence = %.1f, want word mean 85", items[0].Confidence)
	}
}

func TestOCRTableUsesPositionFallbackRows(t *testing.T) {
	word := ocr.Word{Text: "41-3525", Confidence: 90, Box: ocr.Box{X: 10, Y: 10, W: 60, H: 12}}
	price := ocr.Word{Text: "$24.50", Confidence: 86, Box: ocr.Box{X: 200, Y: 11, W: 50, H: 12}}
	rec := &fakeRecognizer{
		result: ocr.Result{
			Words: []ocr.Word{word, price},
			Lines: []ocr.Line{
				{Text: word.Text, Words: []ocr.Word{word}, Box: word.Box, Confidence: 90},
				{Text: price.Text, Words: []ocr.Word{price}, Box: price.Box, Confidence: 86},
			},
		},
	}

	s, _ := New(constants.MethodOCRTable, testDeps(rec))
	items, err := s.Extract(context.Background(), &fakeSource{pages: 1}, 0, Options{DPI: 300})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].PartNumber != "41-3525" || items[0].PriceValue == nil || *items[0].PriceValue != 24.5 {
		t.Errorf("item = %+v", items[0])
	}
}

func TestOCRStrategiesPropagateRenderErrors(t *testing.T) {
	src := &fakeSource{pages: 1, renderErr: errors.New("pdftoppm exploded")}
	for _, method := range []constants.Method{
		constants.MethodOCRTable, constants.MethodOCRPlain, constants.MethodOCRAggressive,
	} {
		s, _ := New(method, testDeps(&fakeRecognizer{}))
		if _, err := s.Extract(context.Background(), src, 0, Options{DPI: 300}); err == nil {
			t.Errorf("%s: expected render error", method)
		}
	}
}

func TestHybridUnionsAndSurvivesSubFailures(t *testing.T) {
	// native text works, OCR fails to render: hybrid should still return
	// the text-direct items
	src := &fakeSource{
		pages:     1,
		textBased: true,
		text:      map[int]string{0: "SUM-715030 $29.99"},
		renderErr: errors.New("no renderer"),
	}
	s, _ := New(constants.MethodHybrid, testDeps(&fakeRecognizer{}))
	items, err := s.Extract(context.Background(), src, 0, Options{DPI: 300})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 from the text sub-strategy", len(items))
	}
}

func TestHybridForceOCRSkipsNativeText(t *testing.T) {
	src := &fakeSource{
		pages:     1,
		textBased: true,
		text:      map[int]string{0: "SUM-715030 $29.99"},
	}
	rec := &fakeRecognizer{result: ocr.Result{}}
	s, _ := New(constants.MethodHybrid, testDeps(rec))
	items, err := s.Extract(context.Background(), src, 0, Options{DPI: 300, ForceOCR: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0 when native text is skipped and OCR sees nothing", len(items))
	}
}
