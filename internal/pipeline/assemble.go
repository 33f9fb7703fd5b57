// Package pipeline assembles the heterogeneous extraction results — outline,
// raw page text, tables, OCR backfill — into one consistent Document. It is
// the single entry point consumers use for per-document processing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Satya7781/pdfintel/internal/docmodel"
	"github.com/Satya7781/pdfintel/internal/outline"
	"github.com/Satya7781/pdfintel/internal/reader"
)

// ErrNoExtractableText marks a document with zero extractable text on every
// page, after OCR had its chance. It is fatal for that document: the primary
// signal of malformed or unsupported input.
var ErrNoExtractableText = errors.New("no extractable text")

// Recognizer is the external OCR capability consumed by the fallback policy.
type Recognizer interface {
	Recognize(ctx context.Context, path string, pages []int) (map[int]string, error)
}

// Pipeline processes one document at a time. Safe for concurrent use: it
// holds no per-document state.
type Pipeline struct {
	ocr  Recognizer // nil when OCR is disabled
	log  *slog.Logger
	opts outline.Options

	open func(path string) (*reader.Source, error)
}

func New(ocr Recognizer, log *slog.Logger, opts outline.Options) *Pipeline {
	return &Pipeline{
		ocr:  ocr,
		log:  log,
		opts: opts,
		open: reader.Open,
	}
}

// Process runs the full pipeline for one file and returns the assembled
// Document. Table or outline trouble degrades to empty results; an unreadable
// file or a fully text-less document is an error.
func (p *Pipeline) Process(ctx context.Context, path string) (*docmodel.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := p.open(path)
	if err != nil {
		return nil, err
	}
	log := p.log.With("document", filepath.Base(path))

	res := outline.Infer(src.Runs, p.opts)
	title := res.Title
	if title == "" {
		title = docmodel.UntitledDocument
	}
	if len(res.Outline) == 0 {
		log.Info("no outline detected, proceeding with flat document")
	}

	raw := AggregatePages(src.Runs, src.PageCount)
	raw = p.applyOCR(ctx, path, raw, log)

	if emptyCount(raw) == len(raw) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNoExtractableText)
	}

	doc := &docmodel.Document{
		Title:   title,
		Outline: res.Outline,
		RawText: raw,
		Tables:  make([]docmodel.Table, 0, len(src.Tables)),
	}
	if doc.Outline == nil {
		doc.Outline = []docmodel.Heading{}
	}
	for _, t := range src.Tables {
		doc.Tables = append(doc.Tables, docmodel.Table{Page: t.Page, Data: t.Rows})
	}

	log.Info("document assembled",
		"pages", len(doc.RawText),
		"headings", len(doc.Outline),
		"tables", len(doc.Tables),
	)
	return doc, nil
}

// applyOCR backfills pages whose extracted text is empty. OCR being disabled,
// unreachable, or partial never fails the pipeline; pages left empty are a
// logged outcome.
func (p *Pipeline) applyOCR(ctx context.Context, path string, raw []docmodel.PageText, log *slog.Logger) []docmodel.PageText {
	var missing []int
	for _, pt := range raw {
		if strings.TrimSpace(pt.Text) == "" {
			missing = append(missing, pt.Page)
		}
	}
	if len(missing) == 0 {
		return raw
	}
	if p.ocr == nil {
		log.Info("ocr disabled, pages remain empty", "pages", missing)
		return raw
	}

	recognized, err := p.ocr.Recognize(ctx, path, missing)
	if err != nil {
		log.Warn("ocr failed, proceeding without it", "pages", missing, "error", err)
		return raw
	}
	filled := 0
	for i := range raw {
		// Never overwrite text another extractor produced.
		if strings.TrimSpace(raw[i].Text) != "" {
			continue
		}
		if text, ok := recognized[raw[i].Page]; ok && strings.TrimSpace(text) != "" {
			raw[i].Text = text
			filled++
		}
	}
	log.Info("ocr backfill complete", "requested", len(missing), "filled", filled)
	return raw
}

func emptyCount(raw []docmodel.PageText) int {
	n := 0
	for _, pt := range raw {
		if strings.TrimSpace(pt.Text) == "" {
			n++
		}
	}
	return n
}
