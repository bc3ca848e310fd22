package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/partstream/catalog-extractor/internal/entity"
	"github.com/partstream/catalog-extractor/internal/repository"
)

// Service is a tiny façade over the consolidated-item repository that
// produces XLSX or CSV bytes for exports.
type Service struct {
	consolidated repository.ConsolidatedRepository
	logger       *slog.Logger
}

func NewService(consolidated repository.ConsolidatedRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{consolidated: consolidated, logger: logger}
}

var headers = []string{
	"Brand",
	"Part Number",
	"Price Type",
	"Price",
	"Currency",
	"Page",
	"Confidence",
	"Sources",
}

// ExportXLSX returns an XLSX workbook (as bytes) holding the document's
// consolidated items.
func (s *Service) ExportXLSX(ctx context.Context, documentID uuid.UUID) ([]byte, error) {
	start := time.Now()

	items, err := s.consolidated.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("query consolidated items: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Catalog Items"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, it := range items {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, it.BrandCode)
		write(2, it.PartNumber)
		write(3, it.PriceType)
		if it.PriceValue != nil {
			write(4, *it.PriceValue)
		} else {
			write(4, "")
		}
		write(5, it.Currency)
		write(6, it.Page+1) // humans count pages from 1
		write(7, fmt.Sprintf("%.1f", it.AvgConfidence))
		write(8, it.SourceCount)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 10) // brand
	_ = f.SetColWidth(sheet, "B", "B", 24) // part number
	_ = f.SetColWidth(sheet, "C", "C", 14) // price type
	_ = f.SetColWidth(sheet, "D", "D", 12) // price
	_ = f.SetColWidth(sheet, "G", "G", 12) // confidence

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"document_id", documentID.String(),
		"rows", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportCSV returns the same rows as RFC 4180 CSV.
func (s *Service) ExportCSV(ctx context.Context, documentID uuid.UUID) ([]byte, error) {
	start := time.Now()

	items, err := s.consolidated.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("query consolidated items: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := w.Write(csvRecord(it)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}

	s.logger.Info("export.csv.ok",
		"document_id", documentID.String(),
		"rows", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func csvRecord(it *entity.ConsolidatedItem) []string {
	price := ""
	if it.PriceValue != nil {
		price = strconv.FormatFloat(*it.PriceValue, 'f', 2, 64)
	}
	return []string{
		it.BrandCode,
		it.PartNumber,
		it.PriceType,
		price,
		it.Currency,
		strconv.Itoa(it.Page + 1),
		strconv.FormatFloat(it.AvgConfidence, 'f', 1, 64),
		strconv.Itoa(it.SourceCount),
	}
}
