package reader

import (
	"fmt"
	"math"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFReader extracts text runs with real font metrics. The library yields one
// Text element per show-string operation (often a word or a few glyphs), so
// runs are rebuilt here by grouping elements into visual lines.
type PDFReader struct{}

func (p *PDFReader) Read(path string) (*Source, error) {
	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", ErrUnreadable, err)
	}
	defer f.Close()

	src := &Source{PageCount: r.NumPage()}
	for i := 1; i <= src.PageCount; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines := buildLines(pageTexts(page))
		for _, ln := range lines {
			text := ln.joined()
			if strings.TrimSpace(text) == "" {
				continue
			}
			src.Runs = append(src.Runs, TextRun{
				Text:   text,
				Size:   ln.size,
				Bold:   isBoldFont(ln.font),
				Italic: isItalicFont(ln.font),
				Page:   i,
				Y:      ln.topY,
			})
		}
		src.Tables = append(src.Tables, detectTables(i, lines)...)
	}
	return src, nil
}

// pageTexts pulls the raw text elements of one page. Malformed content
// streams can panic inside the decoder; such pages are treated as empty and
// left to the OCR fallback policy.
func pageTexts(page pdflib.Page) (texts []pdflib.Text) {
	defer func() {
		if recover() != nil {
			texts = nil
		}
	}()
	return page.Content().Text
}

// cell is a horizontally contiguous stretch of text within a line.
type cell struct {
	x    float64
	text strings.Builder
}

// line is one visual line: text elements sharing a baseline.
type line struct {
	y     float64 // raw PDF baseline (origin bottom-left)
	topY  float64 // distance from page top, filled in after grouping
	size  float64
	font  string
	cells []*cell
}

func (ln *line) joined() string {
	parts := make([]string, 0, len(ln.cells))
	for _, c := range ln.cells {
		s := strings.TrimSpace(c.text.String())
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

const baselineTol = 2.0

// buildLines groups raw text elements into visual lines in reading order.
// Wide horizontal gaps split a line into cells, which table detection uses.
func buildLines(texts []pdflib.Text) []*line {
	if len(texts) == 0 {
		return nil
	}
	sort.SliceStable(texts, func(i, j int) bool {
		if math.Abs(texts[i].Y-texts[j].Y) > baselineTol {
			return texts[i].Y > texts[j].Y // PDF Y grows upward
		}
		return texts[i].X < texts[j].X
	})

	var lines []*line
	var cur *line
	var lastEnd float64
	sizeVotes := map[float64]int{}

	flushSize := func() {
		if cur == nil {
			return
		}
		best, bestN := 0.0, -1
		for sz, n := range sizeVotes {
			if n > bestN || (n == bestN && sz > best) {
				best, bestN = sz, n
			}
		}
		cur.size = best
		sizeVotes = map[float64]int{}
	}

	for _, t := range texts {
		size := t.FontSize
		if size <= 0 {
			size = 10
		}
		if cur == nil || math.Abs(t.Y-cur.y) > baselineTol {
			flushSize()
			cur = &line{y: t.Y, font: t.Font}
			cur.cells = append(cur.cells, &cell{x: t.X})
			lines = append(lines, cur)
			lastEnd = t.X
		}
		c := cur.cells[len(cur.cells)-1]
		gap := t.X - lastEnd
		switch {
		case gap > size*2.0:
			c = &cell{x: t.X}
			cur.cells = append(cur.cells, c)
		case gap > size*0.2 && c.text.Len() > 0:
			c.text.WriteByte(' ')
		}
		c.text.WriteString(t.S)
		lastEnd = t.X + t.W
		sizeVotes[math.Round(size*2)/2] += len(t.S)
	}
	flushSize()

	// Convert baselines to top-down positions so Y ascends in reading order.
	maxY := lines[0].y
	for _, ln := range lines {
		if ln.y > maxY {
			maxY = ln.y
		}
	}
	for _, ln := range lines {
		ln.topY = maxY - ln.y
	}
	return lines
}

// detectTables finds stretches of consecutive lines that share a multi-column
// shape and emits them as grids. This is a positional heuristic, not a full
// table model: ruled and borderless tables with aligned columns both match.
func detectTables(page int, lines []*line) []TableGrid {
	var grids []TableGrid
	var rows [][]string
	cols := 0

	flush := func() {
		if len(rows) >= 2 {
			grids = append(grids, TableGrid{Page: page, Rows: rows})
		}
		rows = nil
		cols = 0
	}

	for _, ln := range lines {
		if len(ln.cells) < 2 {
			flush()
			continue
		}
		if cols != 0 && len(ln.cells) != cols {
			flush()
		}
		cols = len(ln.cells)
		row := make([]string, 0, cols)
		for _, c := range ln.cells {
			row = append(row, strings.TrimSpace(c.text.String()))
		}
		rows = append(rows, row)
	}
	flush()
	return grids
}

func isBoldFont(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "bold") || strings.Contains(f, "black") || strings.Contains(f, "heavy")
}

func isItalicFont(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "italic") || strings.Contains(f, "oblique")
}
