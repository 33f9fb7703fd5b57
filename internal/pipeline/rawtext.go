package pipeline

import (
	"strings"

	"github.com/Satya7781/pdfintel/internal/docmodel"
	"github.com/Satya7781/pdfintel/internal/reader"
)

// AggregatePages concatenates run text per page, independent of heading
// inference. Every page index 1..pageCount is present exactly once, even when
// no runs exist on that page. Runs must be in reading order.
func AggregatePages(runs []reader.TextRun, pageCount int) []docmodel.PageText {
	if pageCount < 0 {
		pageCount = 0
	}
	builders := make([]strings.Builder, pageCount)
	for _, r := range runs {
		if r.Page < 1 || r.Page > pageCount {
			continue
		}
		b := &builders[r.Page-1]
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.TrimSpace(r.Text))
	}

	pages := make([]docmodel.PageText, pageCount)
	for i := range pages {
		pages[i] = docmodel.PageText{Page: i + 1, Text: builders[i].String()}
	}
	return pages
}
