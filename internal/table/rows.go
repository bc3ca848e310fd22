package table

import (
	"sort"

	"github.com/partstream/catalog-extractor/internal/ocr"
)

// sameRowGapPx is the vertical distance, in pixels, under which two text
// units belong to the same row.
const sameRowGapPx = 15

// buildRowsFromPositions groups OCR lines into rows purely by vertical
// position: walk top to bottom, continue the current row while the gap to
// the previous line is under the threshold, start a new row otherwise.
func buildRowsFromPositions(lines []ocr.Line) []Row {
	if len(lines) == 0 {
		return nil
	}

	sorted := make([]ocr.Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.Y < sorted[j].Box.Y
	})

	var rows []Row
	current := []ocr.Line{sorted[0]}
	rowNum := 0

	for _, line := range sorted[1:] {
		prev := current[len(current)-1]
		if abs(line.Box.Y-prev.Box.Y) < sameRowGapPx {
			current = append(current, line)
			continue
		}
		rows = append(rows, rowFromLines(current, rowNum))
		current = []ocr.Line{line}
		rowNum++
	}
	rows = append(rows, rowFromLines(current, rowNum))
	return rows
}

// rowFromLines turns the lines of one visual row into cells ordered left to
// right.
func rowFromLines(lines []ocr.Line, rowNum int) Row {
	sorted := make([]ocr.Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.X < sorted[j].Box.X
	})

	cells := make([]Cell, 0, len(sorted))
	for col, line := range sorted {
		cells = append(cells, Cell{
			Text:       line.Text,
			Box:        line.Box,
			Confidence: line.Confidence,
			Row:        rowNum,
			Col:        col,
			Words:      line.Words,
		})
	}
	return finishRow(cells, rowNum)
}

// groupCellsIntoRows clusters already-built cells by y position using the
// same gap threshold, then orders each row's cells by x.
func groupCellsIntoRows(cells []Cell) []Row {
	if len(cells) == 0 {
		return nil
	}

	sorted := make([]Cell, len(cells))
	copy(sorted, cells)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.Y < sorted[j].Box.Y
	})

	var rows []Row
	current := []Cell{sorted[0]}
	rowNum := 0

	for _, cell := range sorted[1:] {
		prev := current[len(current)-1]
		if abs(cell.Box.Y-prev.Box.Y) < sameRowGapPx {
			current = append(current, cell)
			continue
		}
		rows = append(rows, finalizeRow(current, rowNum))
		current = []Cell{cell}
		rowNum++
	}
	rows = append(rows, finalizeRow(current, rowNum))
	return rows
}

func finalizeRow(cells []Cell, rowNum int) Row {
	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].Box.X < cells[j].Box.X
	})
	for col := range cells {
		cells[col].Row = rowNum
		cells[col].Col = col
	}
	return finishRow(cells, rowNum)
}

func finishRow(cells []Cell, rowNum int) Row {
	var (
		union ocr.Box
		sum   float64
	)
	for _, c := range cells {
		union = union.Union(c.Box)
		sum += c.Confidence
	}
	row := Row{Cells: cells, Num: rowNum, Box: union}
	if len(cells) > 0 {
		row.Confidence = sum / float64(len(cells))
	}
	return row
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
