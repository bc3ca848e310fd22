// Package table rebuilds logical table rows from recognized words and
// lines, either by detecting ruled grid strokes on the page image or by
// clustering lines on vertical position when no grid exists.
package table

import "github.com/partstream/catalog-extractor/internal/ocr"

// Cell is a text unit assigned to a (row, column) slot of a reconstructed
// table. Cells live only between row building and field extraction.
type Cell struct {
	Text       string
	Box        ocr.Box
	Confidence float64
	Row        int
	Col        int
	Words      []ocr.Word
}

// Row is an ordered run of cells sharing a row index.
type Row struct {
	Cells      []Cell
	Num        int
	Box        ocr.Box // union of cell boxes
	Confidence float64 // mean of cell confidences
}

// Text joins the row's cell texts with single spaces, the unit the field
// extractor matches against.
func (r Row) Text() string {
	out := ""
	for i, c := range r.Cells {
		if i > 0 {
			out += " "
		}
		out += c.Text
	}
	return out
}
