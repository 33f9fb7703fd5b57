package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Satya7781/pdfintel/internal/docmodel"
)

// GeminiRefiner rewrites the local excerpt into persona-focused refined text
// with a generative model. Any model failure falls back to the excerpt, so
// refinement never blocks a report.
type GeminiRefiner struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	fallback ExcerptRefiner
	log      *slog.Logger
}

func NewGeminiRefiner(ctx context.Context, apiKey, modelName string, log *slog.Logger) (*GeminiRefiner, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	return &GeminiRefiner{client: client, model: model, log: log}, nil
}

func (g *GeminiRefiner) Refine(ctx context.Context, doc *docmodel.Document, section docmodel.Section, persona, task string) string {
	excerpt := g.fallback.Refine(ctx, doc, section, persona, task)

	prompt := fmt.Sprintf(`You are assisting a %s whose task is: %s.

Rewrite the following document excerpt as a concise summary focused on what
matters for that task. Keep concrete facts, drop boilerplate. Reply with the
summary only.

Section: %s

Excerpt:
%s`, persona, task, section.Text, excerpt)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.log.Warn("refinement model failed, using excerpt", "section", section.Text, "error", err)
		return excerpt
	}
	refined := responseText(resp)
	if refined == "" {
		return excerpt
	}
	return refined
}

func (g *GeminiRefiner) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
