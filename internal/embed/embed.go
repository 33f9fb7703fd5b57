// Package embed maps text to fixed-dimension vectors behind a
// provider-agnostic interface. A process holds exactly one Embedder; vectors
// from different embedding configurations must never be mixed.
package embed

import (
	"context"
	"errors"
)

// ErrUnavailable marks an embedding backend failure. It is fatal to ranking
// only: documents can still be assembled and returned without scores.
var ErrUnavailable = errors.New("embedding unavailable")

// Embedder maps text to a vector of dimension Dim. Implementations must be
// deterministic for identical input, return a non-degenerate vector for any
// non-empty input, and return the zero vector for empty input. Safe for
// concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dim() int
	Close() error
}

// Zero returns the defined empty-input sentinel: the zero vector.
func Zero(dim int) []float32 {
	return make([]float32, dim)
}
