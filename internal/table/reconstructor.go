package table

import (
	"image"
	"log/slog"

	"github.com/partstream/catalog-extractor/internal/ocr"
)

// Reconstructor converts recognized lines into table rows. Grid detection
// is tried first; when the page carries no usable ruling it falls back to
// position-based grouping.
type Reconstructor struct {
	Logger *slog.Logger
}

func NewReconstructor(logger *slog.Logger) *Reconstructor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{Logger: logger}
}

// Reconstruct rebuilds the rows of one page. A page with zero lines yields
// zero rows, not an error.
func (r *Reconstructor) Reconstruct(binary *image.Gray, lines []ocr.Line, page int) []Row {
	if len(lines) == 0 {
		return nil
	}

	var rows []Row
	if cells := detectGridCells(binary); cells != nil {
		r.Logger.Debug("table grid detected", "page", page, "candidate_cells", len(cells))
		rows = buildRowsFromGrid(cells, lines)
	}
	if rows == nil {
		r.Logger.Debug("no table grid, grouping by position", "page", page)
		rows = buildRowsFromPositions(lines)
	}

	r.Logger.Info("table rows reconstructed", "page", page, "rows", len(rows))
	return rows
}
