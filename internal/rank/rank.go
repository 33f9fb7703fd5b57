// Package rank scores candidate sections against a query vector by cosine
// similarity. Ranking is a pure computation: no persistence, no mutation of
// inputs.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Satya7781/pdfintel/internal/docmodel"
	"github.com/Satya7781/pdfintel/internal/embed"
)

// Rank embeds each section's text, scores it against query, and returns the
// top k by descending similarity. Ties keep original input order (stable
// sort). topK <= 0 or an empty section list yields an empty result, not an
// error.
func Rank(ctx context.Context, e embed.Embedder, sections []docmodel.Section, query []float32, topK int) ([]docmodel.RankedSection, error) {
	if topK <= 0 || len(sections) == 0 {
		return nil, nil
	}

	scored := make([]docmodel.RankedSection, 0, len(sections))
	for _, s := range sections {
		vec, err := e.Embed(ctx, s.Text)
		if err != nil {
			return nil, fmt.Errorf("embed section %q: %w", s.Text, err)
		}
		scored = append(scored, docmodel.RankedSection{
			Section: s,
			Score:   Cosine(query, vec),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

// Cosine returns the cosine similarity of two vectors. Mismatched lengths or
// a zero-norm vector score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
