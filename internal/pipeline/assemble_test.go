package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Satya7781/pdfintel/internal/docmodel"
	"github.com/Satya7781/pdfintel/internal/outline"
	"github.com/Satya7781/pdfintel/internal/reader"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(src *reader.Source, openErr error, ocr Recognizer) *Pipeline {
	p := New(ocr, testLogger(), outline.DefaultOptions())
	p.open = func(path string) (*reader.Source, error) {
		if openErr != nil {
			return nil, openErr
		}
		return src, nil
	}
	return p
}

type fakeOCR struct {
	pages map[int]string
	err   error
	calls [][]int
}

func (f *fakeOCR) Recognize(_ context.Context, _ string, pages []int) (map[int]string, error) {
	f.calls = append(f.calls, pages)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

func flatSource() *reader.Source {
	return &reader.Source{
		PageCount: 2,
		Runs: []reader.TextRun{
			{Text: "uniform paragraph one", Size: 11, Page: 1, Y: 700},
			{Text: "uniform paragraph two", Size: 11, Page: 1, Y: 650},
			{Text: "uniform paragraph three", Size: 11, Page: 2, Y: 700},
		},
	}
}

func TestProcess_SentinelTitleForFlatDocument(t *testing.T) {
	p := newTestPipeline(flatSource(), nil, nil)

	doc, err := p.Process(context.Background(), "flat.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != docmodel.UntitledDocument {
		t.Errorf("expected sentinel title %q, got %q", docmodel.UntitledDocument, doc.Title)
	}
	if doc.Outline == nil {
		t.Error("expected non-nil outline slice")
	}
	if len(doc.Outline) != 0 {
		t.Errorf("expected empty outline, got %+v", doc.Outline)
	}
	if len(doc.RawText) != 2 {
		t.Fatalf("expected 2 pages of raw text, got %d", len(doc.RawText))
	}
}

func TestProcess_UnreadableSourcePropagates(t *testing.T) {
	openErr := fmt.Errorf("open broken.pdf: %w", reader.ErrUnreadable)
	p := newTestPipeline(nil, openErr, nil)

	_, err := p.Process(context.Background(), "broken.pdf")
	if !errors.Is(err, reader.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
}

func TestProcess_NoExtractableText(t *testing.T) {
	src := &reader.Source{PageCount: 3}
	p := newTestPipeline(src, nil, nil)

	_, err := p.Process(context.Background(), "scan.pdf")
	if !errors.Is(err, ErrNoExtractableText) {
		t.Fatalf("expected ErrNoExtractableText, got %v", err)
	}
}

func TestProcess_OCRBackfillsOnlyEmptyPages(t *testing.T) {
	src := &reader.Source{
		PageCount: 3,
		Runs: []reader.TextRun{
			{Text: "extracted text on page one", Size: 11, Page: 1, Y: 700},
			{Text: "another extracted paragraph", Size: 11, Page: 1, Y: 650},
		},
	}
	// The service answers for a page that already has text; the pipeline must
	// not let OCR output overwrite it.
	ocr := &fakeOCR{pages: map[int]string{
		1: "ocr noise",
		2: "recognized page two",
	}}
	p := newTestPipeline(src, nil, ocr)

	doc, err := p.Process(context.Background(), "mixed.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ocr.calls) != 1 {
		t.Fatalf("expected 1 ocr call, got %d", len(ocr.calls))
	}
	if got := ocr.calls[0]; len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("expected ocr request for pages [2 3], got %v", got)
	}
	if doc.RawText[0].Text != "extracted text on page one\nanother extracted paragraph" {
		t.Errorf("page 1 text was overwritten: %q", doc.RawText[0].Text)
	}
	if doc.RawText[1].Text != "recognized page two" {
		t.Errorf("expected ocr text on page 2, got %q", doc.RawText[1].Text)
	}
	if doc.RawText[2].Text != "" {
		t.Errorf("expected page 3 to stay empty, got %q", doc.RawText[2].Text)
	}
}

func TestProcess_OCRFailureDegrades(t *testing.T) {
	src := &reader.Source{
		PageCount: 2,
		Runs: []reader.TextRun{
			{Text: "page one has text", Size: 11, Page: 1, Y: 700},
		},
	}
	p := newTestPipeline(src, nil, &fakeOCR{err: errors.New("service down")})

	doc, err := p.Process(context.Background(), "partial.pdf")
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if doc.RawText[1].Text != "" {
		t.Errorf("expected page 2 empty after ocr failure, got %q", doc.RawText[1].Text)
	}
}

func TestProcess_OCRRescuesFullyEmptyDocument(t *testing.T) {
	src := &reader.Source{PageCount: 1}
	p := newTestPipeline(src, nil, &fakeOCR{pages: map[int]string{1: "scanned content"}})

	doc, err := p.Process(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("expected ocr to rescue the document, got %v", err)
	}
	if doc.RawText[0].Text != "scanned content" {
		t.Errorf("expected ocr text, got %q", doc.RawText[0].Text)
	}
}

func TestProcess_TablesCarriedThrough(t *testing.T) {
	src := flatSource()
	src.Tables = []reader.TableGrid{
		{Page: 2, Rows: [][]string{{"h1", "h2"}, {"a", "b"}}},
	}
	p := newTestPipeline(src, nil, nil)

	doc, err := p.Process(context.Background(), "tables.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(doc.Tables))
	}
	if doc.Tables[0].Page != 2 || doc.Tables[0].Data[1][1] != "b" {
		t.Errorf("unexpected table content: %+v", doc.Tables[0])
	}
}

func TestProcess_ContextCanceled(t *testing.T) {
	p := newTestPipeline(flatSource(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, "any.pdf")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
