package pipeline

import (
	"testing"

	"github.com/Satya7781/pdfintel/internal/reader"
)

func TestAggregatePages_EveryPagePresent(t *testing.T) {
	runs := []reader.TextRun{
		{Text: "first line", Page: 1},
		{Text: "second line", Page: 1},
		{Text: "third page text", Page: 3},
	}

	pages := AggregatePages(runs, 4)

	if len(pages) != 4 {
		t.Fatalf("expected 4 pages, got %d", len(pages))
	}
	for i, pt := range pages {
		if pt.Page != i+1 {
			t.Errorf("expected page %d at index %d, got %d", i+1, i, pt.Page)
		}
	}
	if pages[0].Text != "first line\nsecond line" {
		t.Errorf("unexpected page 1 text: %q", pages[0].Text)
	}
	if pages[1].Text != "" {
		t.Errorf("expected empty page 2, got %q", pages[1].Text)
	}
	if pages[2].Text != "third page text" {
		t.Errorf("unexpected page 3 text: %q", pages[2].Text)
	}
	if pages[3].Text != "" {
		t.Errorf("expected empty page 4, got %q", pages[3].Text)
	}
}

func TestAggregatePages_OutOfRangeRunsDropped(t *testing.T) {
	runs := []reader.TextRun{
		{Text: "kept", Page: 1},
		{Text: "page zero", Page: 0},
		{Text: "beyond", Page: 5},
	}

	pages := AggregatePages(runs, 2)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Text != "kept" {
		t.Errorf("unexpected page 1 text: %q", pages[0].Text)
	}
}

func TestAggregatePages_ZeroPages(t *testing.T) {
	if pages := AggregatePages(nil, 0); len(pages) != 0 {
		t.Errorf("expected no pages, got %d", len(pages))
	}
	if pages := AggregatePages(nil, -1); len(pages) != 0 {
		t.Errorf("expected no pages for negative count, got %d", len(pages))
	}
}

func TestAggregatePages_TrimsRunWhitespace(t *testing.T) {
	runs := []reader.TextRun{
		{Text: "  padded  ", Page: 1},
		{Text: "next", Page: 1},
	}
	pages := AggregatePages(runs, 1)
	if pages[0].Text != "padded\nnext" {
		t.Errorf("expected trimmed text, got %q", pages[0].Text)
	}
}
