// Package ocr turns preprocessed page images into recognized words and
// lines with per-word confidence, using the tesseract CLI.
package ocr

// Box is a pixel-space bounding box.
type Box struct {
	X int
	Y int
	W int
	H int
}

// Union returns the smallest box covering both.
func (b Box) Union(o Box) Box {
	if b.W == 0 && b.H == 0 {
		return o
	}
	if o.W == 0 && o.H == 0 {
		return b
	}
	x0, y0 := min(b.X, o.X), min(b.Y, o.Y)
	x1, y1 := max(b.X+b.W, o.X+o.W), max(b.Y+b.H, o.Y+o.H)
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether o lies fully inside b.
func (b Box) Contains(o Box) bool {
	return o.X >= b.X && o.Y >= b.Y &&
		o.X+o.W <= b.X+b.W && o.Y+o.H <= b.Y+b.H
}

// Word is one recognized token. Immutable once created.
type Word struct {
	Text       string
	Confidence float64 // 0..100; the engine's -1 "no confidence" is normalized to 0
	Box        Box
	Page       int
}

// Line is an ordered run of words sharing the recognizer's own line
// segmentation. Geometry-based grouping happens later, in table
// reconstruction, and only when no ruled grid exists.
type Line struct {
	Text       string // space-joined word texts
	Words      []Word
	Box        Box     // union of word boxes
	Confidence float64 // mean of word confidences
	Page       int
}

// Result is the full output for one page image.
type Result struct {
	Text  string
	Words []Word
	Lines []Line
}
