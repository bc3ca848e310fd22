package table

import (
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/partstream/catalog-extractor/internal/ocr"
)

// ruledPage draws a 4x4 rule grid (ink black on white) enclosing 9 cells.
func ruledPage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	ink := color.Gray{}
	for _, y := range []int{10, 60, 110, 160} {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, ink)
		}
	}
	for _, x := range []int{10, 70, 130, 190} {
		for y := 0; y < h; y++ {
			img.SetGray(x, y, ink)
		}
	}
	return img
}

func TestDetectGridCellsOnRuledPage(t *testing.T) {
	cells := detectGridCells(ruledPage(200, 200))
	if len(cells) < minGridCells {
		t.Fatalf("cells = %d, want at least %d", len(cells), minGridCells)
	}

	pageArea := 200 * 200
	for _, c := range cells {
		area := c.W * c.H
		if area <= minCellArea || area >= pageArea/2 {
			t.Errorf("cell %+v area %d outside (%d, %d)", c, area, minCellArea, pageArea/2)
		}
	}
}

func TestDetectGridCellsBlankPage(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	if cells := detectGridCells(blank); cells != nil {
		t.Fatalf("blank page produced %d cells", len(cells))
	}
}

func TestReconstructFallsBackToPositions(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	lines := []ocr.Line{
		line("41-3525", 10, 10, 90),
		line("$15.00", 100, 12, 80),
	}

	r := NewReconstructor(slog.Default())
	rows := r.Reconstruct(blank, lines, 0)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if got := rows[0].Text(); got != "41-3525 $15.00" {
		t.Errorf("row text = %q", got)
	}
}

func TestReconstructGridFillsCells(t *testing.T) {
	page := ruledPage(200, 200)
	// one word inside the top-left cell, one inside the cell to its right
	lines := []ocr.Line{
		{
			Words: []ocr.Word{{Text: "41-3525", Confidence: 90, Box: ocr.Box{X: 20, Y: 30, W: 40, H: 10}}},
		},
		{
			Words: []ocr.Word{{Text: "$15.00", Confidence: 80, Box: ocr.Box{X: 80, Y: 30, W: 40, H: 10}}},
		},
	}

	r := NewReconstructor(slog.Default())
	rows := r.Reconstruct(page, lines, 0)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if got := rows[0].Text(); got != "41-3525 $15.00" {
		t.Errorf("row text = %q", got)
	}
}

func TestReconstructNoLines(t *testing.T) {
	r := NewReconstructor(slog.Default())
	if rows := r.Reconstruct(ruledPage(200, 200), nil, 0); rows != nil {
		t.Fatalf("expected nil rows, got %d", len(rows))
	}
}
