// Package outline infers a document title and heading outline from styled
// text runs, using font-size statistics rather than any format-specific
// markup.
package outline

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Satya7781/pdfintel/internal/docmodel"
	"github.com/Satya7781/pdfintel/internal/reader"
)

// Options are the heading-detection heuristics. They are deliberately
// tunable: the right thresholds vary across document corpora.
type Options struct {
	SizeRatio     float64 // a run this many times larger than body text is a heading
	MaxLevels     int     // cap on distinct heading levels
	MergeYTol     float64 // max vertical distance for merging fragments of one line
	MaxHeadingLen int     // headings longer than this many runes are body text
}

// DefaultOptions returns the defaults validated against mixed report-style
// PDFs.
func DefaultOptions() Options {
	return Options{
		SizeRatio:     1.15,
		MaxLevels:     4,
		MergeYTol:     2.5,
		MaxHeadingLen: 200,
	}
}

// Result is the outcome of outline inference. Title is "" when no title is
// inferable; the assembler substitutes the sentinel.
type Result struct {
	Title   string
	Outline []docmodel.Heading
}

// Infer classifies runs into body text and headings and derives a title.
// A document with no usable font variation yields an empty outline and no
// title; that is a valid result, not an error.
func Infer(runs []reader.TextRun, opts Options) Result {
	opts = opts.sanitized()

	merged := mergeFragments(runs, opts.MergeYTol)
	if len(merged) == 0 {
		return Result{}
	}

	// Frequency histogram of rounded font sizes; the dominant size is body
	// text. Weight by text length so a page number in tiny print does not
	// outvote paragraphs.
	hist := map[float64]int{}
	for _, r := range merged {
		hist[roundSize(r.Size)] += utf8.RuneCountInString(r.Text)
	}
	if len(hist) < 2 {
		return Result{}
	}
	bodySize := dominantSize(hist)

	candidates := classify(merged, bodySize, opts)

	// Slide-deck guard: if the candidates together outweigh the body bucket,
	// the "headings" are really the bulk of the document. Promote the heaviest
	// candidate size to body and reclassify.
	if totalWeight(candidates) > hist[bodySize] {
		big, _ := largestBucket(candidates)
		bodySize = big
		candidates = classify(merged, bodySize, opts)
	}

	title, candidates := extractTitle(merged, candidates, opts)

	levels := levelBySize(candidates, opts.MaxLevels)
	outline := make([]docmodel.Heading, 0, len(candidates))
	for _, c := range candidates {
		outline = append(outline, docmodel.Heading{
			Text:  c.Text,
			Level: levels[roundSize(c.Size)],
			Page:  c.Page,
		})
	}
	return Result{Title: title, Outline: outline}
}

func (o Options) sanitized() Options {
	if o.SizeRatio <= 1 {
		o.SizeRatio = 1.15
	}
	if o.MaxLevels <= 0 {
		o.MaxLevels = 4
	}
	if o.MergeYTol <= 0 {
		o.MergeYTol = 2.5
	}
	if o.MaxHeadingLen <= 0 {
		o.MaxHeadingLen = 200
	}
	return o
}

func roundSize(s float64) float64 {
	return math.Round(s*2) / 2
}

// mergeFragments joins runs that are sub-fragments of one visual line: same
// page, same font signature, adjacent vertical position. Runs must already be
// in reading order.
func mergeFragments(runs []reader.TextRun, yTol float64) []reader.TextRun {
	var out []reader.TextRun
	for _, r := range runs {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		if len(out) > 0 {
			prev := &out[len(out)-1]
			if prev.Page == r.Page &&
				roundSize(prev.Size) == roundSize(r.Size) &&
				prev.Bold == r.Bold &&
				math.Abs(prev.Y-r.Y) <= yTol {
				prev.Text += " " + strings.TrimSpace(r.Text)
				continue
			}
		}
		r.Text = strings.TrimSpace(r.Text)
		out = append(out, r)
	}
	return out
}

func dominantSize(hist map[float64]int) float64 {
	best, bestWeight := 0.0, -1
	for size, weight := range hist {
		if weight > bestWeight || (weight == bestWeight && size < best) {
			best, bestWeight = size, weight
		}
	}
	return best
}

// classify selects heading candidates: noticeably larger than body text, or
// bold at body size or above.
func classify(merged []reader.TextRun, bodySize float64, opts Options) []reader.TextRun {
	var out []reader.TextRun
	for _, r := range merged {
		size := roundSize(r.Size)
		if size < bodySize*opts.SizeRatio && !(r.Bold && size >= bodySize) {
			continue
		}
		if size == bodySize && !r.Bold {
			continue
		}
		if utf8.RuneCountInString(r.Text) > opts.MaxHeadingLen {
			continue
		}
		out = append(out, r)
	}
	return out
}

func totalWeight(candidates []reader.TextRun) int {
	total := 0
	for _, c := range candidates {
		total += utf8.RuneCountInString(c.Text)
	}
	return total
}

func largestBucket(candidates []reader.TextRun) (float64, int) {
	buckets := map[float64]int{}
	for _, c := range candidates {
		buckets[roundSize(c.Size)] += utf8.RuneCountInString(c.Text)
	}
	best, bestWeight := 0.0, 0
	for size, weight := range buckets {
		if weight > bestWeight {
			best, bestWeight = size, weight
		}
	}
	return best, bestWeight
}

// extractTitle applies the isolation test: the title is the single run at the
// document's largest font size, provided that size occurs exactly once in the
// whole document and on the first page. A size that recurs elsewhere is a
// heading style, not a title style.
func extractTitle(merged, candidates []reader.TextRun, opts Options) (string, []reader.TextRun) {
	maxSize := 0.0
	for _, r := range merged {
		if s := roundSize(r.Size); s > maxSize {
			maxSize = s
		}
	}
	var hits []reader.TextRun
	for _, r := range merged {
		if roundSize(r.Size) == maxSize {
			hits = append(hits, r)
		}
	}
	if len(hits) != 1 || hits[0].Page != 1 {
		return "", candidates
	}
	title := hits[0]
	if utf8.RuneCountInString(title.Text) > opts.MaxHeadingLen {
		return "", candidates
	}

	remaining := candidates[:0:0]
	for _, c := range candidates {
		if c.Page == title.Page && c.Y == title.Y && c.Text == title.Text {
			continue
		}
		remaining = append(remaining, c)
	}
	return title.Text, remaining
}

// levelBySize assigns H1..Hn to distinct candidate sizes, largest first.
// Sizes past MaxLevels clamp to the deepest level so the same font style maps
// to the same level everywhere in the document.
func levelBySize(candidates []reader.TextRun, maxLevels int) map[float64]docmodel.HeadingLevel {
	seen := map[float64]bool{}
	var sizes []float64
	for _, c := range candidates {
		s := roundSize(c.Size)
		if !seen[s] {
			seen[s] = true
			sizes = append(sizes, s)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))

	levels := make(map[float64]docmodel.HeadingLevel, len(sizes))
	for i, s := range sizes {
		level := i + 1
		if level > maxLevels {
			level = maxLevels
		}
		levels[s] = docmodel.HeadingLevel(level)
	}
	return levels
}
