package repository

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/common"
	"github.com/partstream/catalog-extractor/internal/entity"
	"github.com/partstream/catalog-extractor/internal/extract"
	"github.com/partstream/catalog-extractor/internal/ocr"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(":memory:", slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close(slog.Default()) })
	if err := store.Migrate(context.Background(), slog.Default()); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestDocumentRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	docs := NewDocumentRepository(store, slog.Default())

	doc, err := docs.Create(ctx, "catalog.pdf", "/data/catalog.pdf", 12)
	if err != nil {
		t.Fatal(err)
	}

	got, err := docs.Get(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "catalog.pdf" || got.Path != "/data/catalog.pdf" || got.PageCount != 12 {
		t.Errorf("got %+v", got)
	}

	if _, err := docs.Get(ctx, uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing document err = %v, want ErrNotFound", err)
	}
}

func TestPassLifecycle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	docs := NewDocumentRepository(store, slog.Default())
	passes := NewPassRepository(store, slog.Default())

	doc, err := docs.Create(ctx, "catalog.pdf", "/data/catalog.pdf", 3)
	if err != nil {
		t.Fatal(err)
	}

	pass, err := passes.Create(ctx, doc.ID, 1, constants.MethodOCRTable, 300, 50, true)
	if err != nil {
		t.Fatal(err)
	}
	if pass.Status != constants.PassStatusProcessing {
		t.Errorf("status = %s", pass.Status)
	}

	if err := passes.MarkCompleted(ctx, pass.ID, 7, 82.5, 1500*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	got, err := passes.Get(ctx, pass.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != constants.PassStatusCompleted || got.ItemsExtracted != 7 || got.AvgConfidence != 82.5 {
		t.Errorf("got %+v", got)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", got.Duration)
	}
	if !got.ForceOCR {
		t.Error("force_ocr lost in round trip")
	}
	if got.FinishedAt == nil {
		t.Error("finished_at not set")
	}

	failed, err := passes.Create(ctx, doc.ID, 2, constants.MethodOCRAggressive, 400, 50, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := passes.MarkFailed(ctx, failed.ID, "tesseract missing", time.Second); err != nil {
		t.Fatal(err)
	}

	completed, err := passes.ListCompletedByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].ID != pass.ID {
		t.Errorf("completed = %+v, want only the first pass", completed)
	}
}

func TestItemsAcrossPasses(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	docs := NewDocumentRepository(store, slog.Default())
	passes := NewPassRepository(store, slog.Default())
	items := NewItemRepository(store, slog.Default())

	doc, _ := docs.Create(ctx, "catalog.pdf", "/data/catalog.pdf", 2)
	good, _ := passes.Create(ctx, doc.ID, 1, constants.MethodOCRTable, 300, 50, false)
	bad, _ := passes.Create(ctx, doc.ID, 2, constants.MethodOCRPlain, 450, 50, false)

	price := 24.55
	inserted, err := items.InsertBatch(ctx, good.ID, []extract.Item{
		{
			BrandCode:  "SUM",
			PartNumber: "SUM-715030",
			PriceType:  "retail",
			PriceValue: &price,
			Currency:   "USD",
			Page:       0,
			Confidence: 91.5,
			RawText:    "SUM-715030 $24.55 retail",
			Box:        &ocr.Box{X: 10, Y: 20, W: 200, H: 14},
		},
		{PartNumber: "41-3525", Page: 1, Confidence: 60, Currency: "USD"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(inserted) != 2 {
		t.Fatalf("inserted = %d", len(inserted))
	}
	if _, err := items.InsertBatch(ctx, bad.ID, []extract.Item{
		{PartNumber: "99-9999", Page: 0, Confidence: 30, Currency: "USD"},
	}); err != nil {
		t.Fatal(err)
	}

	byPass, err := items.ListByPass(ctx, good.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(byPass) != 2 {
		t.Fatalf("byPass = %d", len(byPass))
	}
	first := byPass[0]
	if first.PartNumber != "SUM-715030" || first.PriceValue == nil || *first.PriceValue != price {
		t.Errorf("first = %+v", first)
	}
	if first.Box == nil || *first.Box != (ocr.Box{X: 10, Y: 20, W: 200, H: 14}) {
		t.Errorf("box = %+v", first.Box)
	}
	if byPass[1].PriceValue != nil || byPass[1].Box != nil {
		t.Errorf("nullable fields should stay nil: %+v", byPass[1])
	}

	// only the completed pass feeds consolidation
	if err := passes.MarkCompleted(ctx, good.ID, 2, 75, time.Second); err != nil {
		t.Fatal(err)
	}
	fromCompleted, err := items.ListByCompletedPasses(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(fromCompleted) != 2 {
		t.Fatalf("completed-pass items = %d, want 2 (in-flight pass excluded)", len(fromCompleted))
	}
}

func TestConsolidatedReplace(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	docs := NewDocumentRepository(store, slog.Default())
	consolidated := NewConsolidatedRepository(store, slog.Default())

	doc, _ := docs.Create(ctx, "catalog.pdf", "/data/catalog.pdf", 2)
	price := 24.55
	set := []*entity.ConsolidatedItem{
		{
			PartNumber:    "SUM-715030",
			BrandCode:     "SUM",
			PriceType:     "retail",
			PriceValue:    &price,
			Currency:      "USD",
			Page:          0,
			Confidence:    91,
			AvgConfidence: 85.5,
			SourceCount:   2,
		},
		{PartNumber: "41-3525", Page: 1, Confidence: 70, AvgConfidence: 70, SourceCount: 1, Currency: "USD"},
	}

	if err := consolidated.Replace(ctx, doc.ID, set); err != nil {
		t.Fatal(err)
	}
	got, err := consolidated.ListByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got = %d", len(got))
	}
	if got[0].PartNumber != "SUM-715030" || got[0].SourceCount != 2 {
		t.Errorf("got[0] = %+v", got[0])
	}

	// replacing swaps the whole set
	if err := consolidated.Replace(ctx, doc.ID, set[:1]); err != nil {
		t.Fatal(err)
	}
	got, err = consolidated.ListByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("after replace got = %d, want 1", len(got))
	}
}
