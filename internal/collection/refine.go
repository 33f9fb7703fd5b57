package collection

import (
	"context"
	"strings"
	"unicode"

	"github.com/Satya7781/pdfintel/internal/docmodel"
)

// Refiner produces the refined_text for one ranked section. The persona and
// task travel with the call so one Refiner serves concurrent analyses.
type Refiner interface {
	Refine(ctx context.Context, doc *docmodel.Document, section docmodel.Section, persona, task string) string
}

// excerptLimit is a soft cap: the excerpt runs to the sentence boundary that
// first crosses it, so refined text never ends mid-sentence.
const excerptLimit = 500

// ExcerptRefiner builds refined text locally from the section's page text,
// starting at the heading when it can be located. Deterministic and offline;
// also the fallback when an LLM refiner is unavailable.
type ExcerptRefiner struct{}

func (ExcerptRefiner) Refine(_ context.Context, doc *docmodel.Document, section docmodel.Section, _, _ string) string {
	text := doc.PageString(section.Page)
	if strings.TrimSpace(text) == "" {
		return section.Text
	}

	// Start the excerpt where the heading appears so the refined text covers
	// the section body, not whatever opened the page.
	if idx := strings.Index(text, section.Text); idx >= 0 {
		text = text[idx:]
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return section.Text
	}

	var b strings.Builder
	for _, s := range sentences {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		if b.Len() >= excerptLimit {
			break
		}
	}
	return b.String()
}

// splitSentences cuts text at terminal punctuation followed by whitespace.
// Newlines inside a sentence collapse to spaces.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		// Consume trailing closers like quotes or parens.
		j := i + 1
		for j < len(runes) && (runes[j] == '"' || runes[j] == '\'' || runes[j] == ')' || runes[j] == ']') {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start:j])); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
