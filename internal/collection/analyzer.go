// Package collection drives the persona-driven analysis across a set of
// documents sharing one persona/task query, producing a cross-document
// importance ranking with subsection-level analysis.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Satya7781/pdfintel/internal/docmodel"
	"github.com/Satya7781/pdfintel/internal/embed"
	"github.com/Satya7781/pdfintel/internal/pipeline"
	"github.com/Satya7781/pdfintel/internal/rank"
	"github.com/Satya7781/pdfintel/internal/reader"
)

// DocumentProcessor assembles a single document; satisfied by
// pipeline.Pipeline.
type DocumentProcessor interface {
	Process(ctx context.Context, path string) (*docmodel.Document, error)
}

// Options tune a collection run.
type Options struct {
	Workers        int           // per-document worker pool size
	TopKPerDoc     int           // sections kept per document before the global merge
	MaxSubsections int           // subsection_analysis entries, taken from the top of the global ranking
	DocTimeout     time.Duration // budget for one document, extraction and embedding included
}

func DefaultOptions() Options {
	return Options{
		Workers:        runtime.NumCPU(),
		TopKPerDoc:     5,
		MaxSubsections: 5,
		DocTimeout:     2 * time.Minute,
	}
}

// Analyzer runs collections. Stateless across runs; safe for concurrent use.
type Analyzer struct {
	proc     DocumentProcessor
	embedder embed.Embedder
	refiner  Refiner
	log      *slog.Logger
	opts     Options
}

func NewAnalyzer(proc DocumentProcessor, embedder embed.Embedder, refiner Refiner, log *slog.Logger, opts Options) *Analyzer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.TopKPerDoc <= 0 {
		opts.TopKPerDoc = 5
	}
	if opts.MaxSubsections <= 0 {
		opts.MaxSubsections = 5
	}
	if opts.DocTimeout <= 0 {
		opts.DocTimeout = 2 * time.Minute
	}
	if refiner == nil {
		refiner = &ExcerptRefiner{}
	}
	return &Analyzer{proc: proc, embedder: embedder, refiner: refiner, log: log, opts: opts}
}

type docResult struct {
	name   string
	doc    *docmodel.Document
	ranked []docmodel.RankedSection
	err    error
}

// Analyze processes every path against one shared persona/task query and
// merges the per-document rankings into a collection report. A document that
// fails to assemble is excluded and logged; the run itself only fails on
// cancellation.
func (a *Analyzer) Analyze(ctx context.Context, paths []string, persona, task string) (*docmodel.CollectionReport, error) {
	report := &docmodel.CollectionReport{
		Metadata: docmodel.ReportMetadata{
			Persona:           persona,
			Task:              task,
			InputDocuments:    baseNames(paths),
			ExcludedDocuments: []docmodel.ExcludedDocument{},
			ProcessedAt:       time.Now().UTC().Format(time.RFC3339),
		},
		ExtractedSections:  []docmodel.ExtractedSection{},
		SubsectionAnalysis: []docmodel.SubsectionAnalysis{},
	}

	// One query vector for the whole collection. If embedding is down the
	// documents are still assembled and excluded-document accounting still
	// happens; only the ranking is dropped.
	query, qerr := a.embedder.Embed(ctx, persona+" "+task)
	if qerr != nil {
		a.log.Warn("query embedding failed, ranking disabled", "error", qerr)
	}

	results := make([]docResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			dctx, cancel := context.WithTimeout(gctx, a.opts.DocTimeout)
			defer cancel()

			name := filepath.Base(path)
			doc, err := a.proc.Process(dctx, path)
			if err != nil {
				results[i] = docResult{name: name, err: err}
				return nil
			}
			r := docResult{name: name, doc: doc}
			if qerr == nil && len(doc.Outline) > 0 {
				ranked, err := rank.Rank(dctx, a.embedder, docmodel.SectionsFromOutline(doc.Outline), query, a.opts.TopKPerDoc)
				if err != nil {
					a.log.Warn("ranking failed, document kept without scores", "document", name, "error", err)
				} else {
					r.ranked = ranked
				}
			}
			results[i] = r
			return nil
		})
	}
	// Workers report failures through results, not errors; Wait only
	// observes context cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type entry struct {
		res *docResult
		rs  docmodel.RankedSection
	}
	var merged []entry
	for i := range results {
		r := &results[i]
		if r.err != nil {
			a.log.Warn("document excluded from collection", "document", r.name, "reason", exclusionReason(r.err))
			report.Metadata.ExcludedDocuments = append(report.Metadata.ExcludedDocuments, docmodel.ExcludedDocument{
				Document: r.name,
				Reason:   exclusionReason(r.err),
			})
			continue
		}
		for _, rs := range r.ranked {
			merged = append(merged, entry{res: r, rs: rs})
		}
	}

	// Global re-sort across documents. Stable, so ties keep document order
	// then original section order; ranks are dense 1..N by construction.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].rs.Score > merged[j].rs.Score
	})
	for i, m := range merged {
		report.ExtractedSections = append(report.ExtractedSections, docmodel.ExtractedSection{
			Document:       m.res.name,
			SectionTitle:   m.rs.Section.Text,
			ImportanceRank: i + 1,
			Page:           m.rs.Section.Page,
		})
	}

	limit := a.opts.MaxSubsections
	if limit > len(merged) {
		limit = len(merged)
	}
	for _, m := range merged[:limit] {
		report.SubsectionAnalysis = append(report.SubsectionAnalysis, docmodel.SubsectionAnalysis{
			Document:    m.res.name,
			RefinedText: a.refiner.Refine(ctx, m.res.doc, m.rs.Section, persona, task),
			Page:        m.rs.Section.Page,
		})
	}

	a.log.Info("collection analyzed",
		"documents", len(paths),
		"excluded", len(report.Metadata.ExcludedDocuments),
		"ranked_sections", len(report.ExtractedSections),
	)
	return report, nil
}

func baseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}

func exclusionReason(err error) string {
	switch {
	case errors.Is(err, reader.ErrUnreadable):
		return "unreadable document"
	case errors.Is(err, pipeline.ErrNoExtractableText):
		return "no extractable text"
	case errors.Is(err, context.DeadlineExceeded):
		return "processing timed out"
	default:
		return fmt.Sprintf("processing failed: %v", err)
	}
}
