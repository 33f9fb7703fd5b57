package embed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEmbedder calls the Gemini embedding API. The genai client is acquired
// once per process and shared read-only across concurrent ranking calls.
type GeminiEmbedder struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	dim    int
	stats  *Stats
}

// NewGemini creates a Gemini-backed embedder. dim is the dimensionality the
// chosen model produces (768 for text-embedding-004); it is recorded so
// callers can size buffers and the zero sentinel without a network call.
func NewGemini(ctx context.Context, apiKey, modelName string, dim int, stats *Stats) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiEmbedder{
		client: client,
		model:  client.EmbeddingModel(modelName),
		dim:    dim,
		stats:  stats,
	}, nil
}

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return Zero(g.dim), nil
	}

	var resp *genai.EmbedContentResponse
	var err error
	start := time.Now()
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err = g.model.EmbedContent(ctx, genai.Text(text))
		if err == nil || !retryable(err) {
			break
		}
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		}
	}
	if g.stats != nil {
		g.stats.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", ErrUnavailable)
	}
	return resp.Embedding.Values, nil
}

func (g *GeminiEmbedder) Dim() int { return g.dim }

func (g *GeminiEmbedder) Close() error {
	return g.client.Close()
}
