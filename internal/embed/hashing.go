package embed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingEmbedder is a deterministic, fully offline embedder: word unigrams
// and bigrams are feature-hashed into a fixed-dimension vector, which is then
// L2-normalized. It needs no model files or network, which makes it the
// default provider and the workhorse for tests. Quality is far below a real
// embedding model; the interface contract is identical.
type HashingEmbedder struct {
	dim int
}

const DefaultHashingDim = 256

func NewHashing(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = DefaultHashingDim
	}
	return &HashingEmbedder{dim: dim}
}

func (h *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := Zero(h.dim)
	if strings.TrimSpace(text) == "" {
		return vec, nil
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		// Non-empty input must embed to a non-degenerate vector even when
		// it is all punctuation.
		tokens = []string{text}
	}
	for i, tok := range tokens {
		h.add(vec, tok, 1.0)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	normalize(vec)
	return vec, nil
}

func (h *HashingEmbedder) Dim() int { return h.dim }

func (h *HashingEmbedder) Close() error { return nil }

func (h *HashingEmbedder) add(vec []float32, token string, weight float32) {
	hash := fnv.New64a()
	hash.Write([]byte(token))
	sum := hash.Sum64()
	idx := int(sum % uint64(h.dim))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
