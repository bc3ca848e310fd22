package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/partstream/catalog-extractor/internal/entity"
)

type fakeConsolidated struct {
	items []*entity.ConsolidatedItem
}

func (f *fakeConsolidated) Replace(_ context.Context, _ uuid.UUID, items []*entity.ConsolidatedItem) error {
	f.items = items
	return nil
}

func (f *fakeConsolidated) ListByDocument(_ context.Context, _ uuid.UUID) ([]*entity.ConsolidatedItem, error) {
	return f.items, nil
}

func testItems() []*entity.ConsolidatedItem {
	price := 24.55
	return []*entity.ConsolidatedItem{
		{
			BrandCode:     "SUM",
			PartNumber:    "SUM-715030",
			PriceType:     "retail",
			PriceValue:    &price,
			Currency:      "USD",
			Page:          0,
			Confidence:    91,
			AvgConfidence: 85.5,
			SourceCount:   2,
		},
		{
			PartNumber:    "41-3525",
			Currency:      "USD",
			Page:          3,
			Confidence:    70,
			AvgConfidence: 70,
			SourceCount:   1,
		},
	}
}

func TestExportCSV(t *testing.T) {
	svc := NewService(&fakeConsolidated{items: testItems()}, slog.Default())

	data, err := svc.ExportCSV(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}
	if records[0][0] != "Brand" || records[0][1] != "Part Number" {
		t.Errorf("header = %v", records[0])
	}

	first := records[1]
	if first[1] != "SUM-715030" || first[3] != "24.55" || first[5] != "1" || first[7] != "2" {
		t.Errorf("row 1 = %v", first)
	}
	second := records[2]
	if second[1] != "41-3525" || second[3] != "" || second[5] != "4" {
		t.Errorf("row 2 = %v", second)
	}
}

func TestExportXLSX(t *testing.T) {
	svc := NewService(&fakeConsolidated{items: testItems()}, slog.Default())

	data, err := svc.ExportXLSX(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("Catalog Items")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][1] != "Part Number" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "SUM-715030" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][5] != "4" {
		t.Errorf("row 2 page cell = %v, want 1-based page", rows[2])
	}
}

func TestExportEmptyDocument(t *testing.T) {
	svc := NewService(&fakeConsolidated{}, slog.Default())

	data, err := svc.ExportCSV(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("empty document should still export the header, got %d records", len(records))
	}
}
