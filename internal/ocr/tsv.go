package ocr

import (
	"strconv"
	"strings"
)

// tesseract TSV columns:
// level page_num block_num par_num line_num word_num left top width height conf text
const (
	tsvColumns  = 12
	tsvWordRow  = 5 // "level" value for word rows
	colBlockNum = 2
	colParNum   = 3
	colLineNum  = 4
	colLeft     = 6
	colTop      = 7
	colWidth    = 8
	colHeight   = 9
	colConf     = 10
	colText     = 11
)

// parseTSV converts tesseract TSV output into words grouped into lines by
// the engine's block/paragraph/line numbering. Empty words are dropped and
// conf -1 (no confidence reported) becomes 0.
func parseTSV(data string, page int) ([]Word, []Line) {
	var words []Word
	var lines []Line
	lineIndex := map[string]int{}

	for i, row := range strings.Split(data, "\n") {
		if i == 0 || len(row) == 0 {
			continue // skip header
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvColumns {
			continue // defensive
		}
		level, err := strconv.Atoi(cols[0])
		if err != nil || level != tsvWordRow {
			continue
		}
		text := strings.TrimSpace(cols[colText])
		if text == "" {
			continue
		}

		conf, err := strconv.ParseFloat(cols[colConf], 64)
		if err != nil || conf < 0 {
			conf = 0
		}
		if conf > 100 {
			conf = 100
		}

		x, _ := strconv.Atoi(cols[colLeft])
		y, _ := strconv.Atoi(cols[colTop])
		w, _ := strconv.Atoi(cols[colWidth])
		h, _ := strconv.Atoi(cols[colHeight])

		word := Word{
			Text:       text,
			Confidence: conf,
			Box:        Box{X: x, Y: y, W: w, H: h},
			Page:       page,
		}
		words = append(words, word)

		key := cols[colBlockNum] + "/" + cols[colParNum] + "/" + cols[colLineNum]
		idx, ok := lineIndex[key]
		if !ok {
			idx = len(lines)
			lineIndex[key] = idx
			lines = append(lines, Line{Page: page})
		}
		lines[idx].Words = append(lines[idx].Words, word)
	}

	for i := range lines {
		finishLine(&lines[i])
	}
	return words, lines
}

func finishLine(l *Line) {
	var (
		texts []string
		box   Box
		sum   float64
	)
	for _, w := range l.Words {
		texts = append(texts, w.Text)
		box = box.Union(w.Box)
		sum += w.Confidence
	}
	l.Text = strings.Join(texts, " ")
	l.Box = box
	if n := len(l.Words); n > 0 {
		l.Confidence = sum / float64(n)
	}
}
