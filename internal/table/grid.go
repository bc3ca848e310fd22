package table

import (
	"image"

	"github.com/partstream/catalog-extractor/internal/imaging"
	"github.com/partstream/catalog-extractor/internal/ocr"
)

const (
	// ruleKernelLen is the long side of the directional kernels that keep
	// only extended ruling strokes.
	ruleKernelLen = 40
	ruleIterations = 2
	// minMaskPixels is the foreground floor under which the page is deemed
	// to have no usable grid.
	minMaskPixels = 1000
	// minCellArea and the half-page cap reject contour noise and the page
	// border region.
	minCellArea = 500
	// minGridCells is the fewest surviving cells that still count as a table.
	minGridCells = 3
)

// detectGridCells looks for ruled table structure on a binary page (ink
// black on white). It returns candidate cell boxes, or nil when grid
// detection failed and the caller should fall back to position grouping.
func detectGridCells(binary *image.Gray) []ocr.Box {
	ink := imaging.Invert(binary) // strokes as foreground

	horizontal := imaging.Open(ink, ruleKernelLen, 1, ruleIterations)
	vertical := imaging.Open(ink, 1, ruleKernelLen, ruleIterations)
	mask := imaging.Add(horizontal, vertical)

	if imaging.CountNonZero(mask) < minMaskPixels {
		return nil
	}

	b := binary.Bounds()
	pageArea := b.Dx() * b.Dy()

	// Enclosed regions are the connected components of everything that is
	// not a ruling stroke; their bounding boxes are the candidate cells.
	var cells []ocr.Box
	for _, box := range connectedComponents(imaging.Invert(mask)) {
		area := box.W * box.H
		if area > minCellArea && area < pageArea/2 {
			cells = append(cells, box)
		}
	}
	if len(cells) < minGridCells {
		return nil
	}
	return cells
}

// connectedComponents returns the bounding box of every 4-connected
// foreground (non-zero) region.
func connectedComponents(src *image.Gray) []ocr.Box {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	visited := make([]bool, w*h)
	var boxes []ocr.Box
	var stack []int

	for start := 0; start < w*h; start++ {
		if visited[start] || src.Pix[start] == 0 {
			continue
		}
		minX, minY := start%w, start/w
		maxX, maxY := minX, minY

		stack = stack[:0]
		stack = append(stack, start)
		visited[start] = true
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%w, i/w
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			for _, n := range [4]int{i - 1, i + 1, i - w, i + w} {
				if n < 0 || n >= w*h || visited[n] || src.Pix[n] == 0 {
					continue
				}
				// no wrapping across row edges
				if (n == i-1 && x == 0) || (n == i+1 && x == w-1) {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}
		boxes = append(boxes, ocr.Box{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1})
	}
	return boxes
}

// buildRowsFromGrid fills detected cell boxes with the words they fully
// contain, drops empty cells, and groups the survivors into rows.
func buildRowsFromGrid(cellBoxes []ocr.Box, lines []ocr.Line) []Row {
	var filled []Cell
	for _, box := range cellBoxes {
		var words []ocr.Word
		for _, line := range lines {
			for _, word := range line.Words {
				if box.Contains(word.Box) {
					words = append(words, word)
				}
			}
		}
		if len(words) == 0 {
			continue
		}

		text := ""
		sum := 0.0
		for i, w := range words {
			if i > 0 {
				text += " "
			}
			text += w.Text
			sum += w.Confidence
		}
		filled = append(filled, Cell{
			Text:       text,
			Box:        box,
			Confidence: sum / float64(len(words)),
			Words:      words,
		})
	}
	return groupCellsIntoRows(filled)
}
