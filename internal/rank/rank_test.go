package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/Satya7781/pdfintel/internal/docmodel"
)

// stubEmbedder returns canned vectors keyed by text.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 0}, nil
}

func (s *stubEmbedder) Dim() int     { return 3 }
func (s *stubEmbedder) Close() error { return nil }

func sections(titles ...string) []docmodel.Section {
	out := make([]docmodel.Section, 0, len(titles))
	for i, title := range titles {
		out = append(out, docmodel.Section{Text: title, Page: i + 1})
	}
	return out
}

func TestRank_OrdersByDescendingSimilarity(t *testing.T) {
	e := &stubEmbedder{vectors: map[string][]float32{
		"Beaches":    {1, 0, 0},
		"Nightlife":  {0.7, 0.7, 0},
		"Compliance": {0, 1, 0},
	}}
	query := []float32{1, 0, 0}

	ranked, err := Rank(context.Background(), e, sections("Compliance", "Beaches", "Nightlife"), query, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}
	wantOrder := []string{"Beaches", "Nightlife", "Compliance"}
	for i, rs := range ranked {
		if rs.Section.Text != wantOrder[i] {
			t.Errorf("position %d: expected %q, got %q", i, wantOrder[i], rs.Section.Text)
		}
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %f > %f", i, ranked[i].Score, ranked[i-1].Score)
		}
	}
}

func TestRank_TruncatesToTopK(t *testing.T) {
	e := &stubEmbedder{vectors: map[string][]float32{}}
	ranked, err := Rank(context.Background(), e, sections("a", "b", "c", "d", "e"), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 2 {
		t.Errorf("expected 2 results, got %d", len(ranked))
	}
}

func TestRank_KLargerThanInput(t *testing.T) {
	e := &stubEmbedder{vectors: map[string][]float32{}}
	ranked, err := Rank(context.Background(), e, sections("a", "b"), []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 2 {
		t.Errorf("expected all 2 results, got %d", len(ranked))
	}
}

func TestRank_EmptyCases(t *testing.T) {
	e := &stubEmbedder{}
	if ranked, err := Rank(context.Background(), e, nil, []float32{1}, 5); err != nil || ranked != nil {
		t.Errorf("expected nil,nil for empty sections, got %v,%v", ranked, err)
	}
	if ranked, err := Rank(context.Background(), e, sections("a"), []float32{1}, 0); err != nil || ranked != nil {
		t.Errorf("expected nil,nil for topK 0, got %v,%v", ranked, err)
	}
	if ranked, err := Rank(context.Background(), e, sections("a"), []float32{1}, -3); err != nil || ranked != nil {
		t.Errorf("expected nil,nil for negative topK, got %v,%v", ranked, err)
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	e := &stubEmbedder{vectors: map[string][]float32{
		"first":  {1, 0, 0},
		"second": {1, 0, 0},
	}}
	ranked, err := Rank(context.Background(), e, sections("first", "second"), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranked[0].Section.Text != "first" || ranked[1].Section.Text != "second" {
		t.Errorf("expected stable order for ties, got %q then %q",
			ranked[0].Section.Text, ranked[1].Section.Text)
	}
}

func TestRank_RerankIsIdempotent(t *testing.T) {
	e := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {0, 1, 0},
		"c": {0.5, 0.5, 0},
	}}
	query := []float32{1, 0, 0}

	first, err := Rank(context.Background(), e, sections("a", "b", "c"), query, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again := make([]docmodel.Section, 0, len(first))
	for _, rs := range first {
		again = append(again, rs.Section)
	}
	second, err := Rank(context.Background(), e, again, query, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i].Section.Text != second[i].Section.Text {
			t.Errorf("position %d changed on re-rank: %q vs %q",
				i, first[i].Section.Text, second[i].Section.Text)
		}
	}
}

func TestRank_EmbedErrorPropagates(t *testing.T) {
	wantErr := errors.New("provider down")
	e := &stubEmbedder{err: wantErr}
	_, err := Rank(context.Background(), e, sections("a"), []float32{1}, 1)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"mismatched lengths", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"both empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Cosine(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosine_ScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}
	got := Cosine(a, b)
	if diff := got - 1; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected cosine 1 for scaled vector, got %f", got)
	}
}
