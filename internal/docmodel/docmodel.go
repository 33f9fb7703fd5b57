// Package docmodel defines the typed document and report structures shared by
// every stage of the pipeline. The JSON tags are the wire contract exposed by
// the HTTP layer and must not drift.
package docmodel

import (
	"fmt"
	"strconv"
	"strings"
)

// UntitledDocument is the title used when no title can be inferred.
const UntitledDocument = "Untitled Document"

// HeadingLevel is a 1-based outline depth, serialized as "H1", "H2", ...
type HeadingLevel int

func (l HeadingLevel) String() string {
	return fmt.Sprintf("H%d", int(l))
}

func (l HeadingLevel) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(l.String())), nil
}

func (l *HeadingLevel) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		// Accept a bare integer for tolerance with older payloads.
		n, convErr := strconv.Atoi(string(data))
		if convErr != nil {
			return fmt.Errorf("invalid heading level %s", data)
		}
		*l = HeadingLevel(n)
		return nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(s), "H"))
	if err != nil {
		return fmt.Errorf("invalid heading level %q", s)
	}
	*l = HeadingLevel(n)
	return nil
}

// Heading is one detected outline entry.
type Heading struct {
	Text  string       `json:"text"`
	Level HeadingLevel `json:"level"`
	Page  int          `json:"page"`
}

// PageText is the full extracted text of one page. Text may be empty.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Table is a page-anchored grid of cell strings.
type Table struct {
	Page int        `json:"page"`
	Data [][]string `json:"data"`
}

// Document is the assembled, immutable representation of one source file.
// RawText always has exactly one entry per page, in page order.
type Document struct {
	Title   string     `json:"title"`
	Outline []Heading  `json:"outline"`
	RawText []PageText `json:"raw_text"`
	Tables  []Table    `json:"tables"`
}

// PageCount returns the number of pages in the source document.
func (d *Document) PageCount() int {
	return len(d.RawText)
}

// PageString returns the raw text of a 1-based page, or "" if out of range.
func (d *Document) PageString(page int) string {
	if page < 1 || page > len(d.RawText) {
		return ""
	}
	return d.RawText[page-1].Text
}

// Section is the unit the ranker scores: a lightweight projection of a Heading.
type Section struct {
	Text  string       `json:"text"`
	Page  int          `json:"page"`
	Level HeadingLevel `json:"level"`
}

// SectionsFromOutline projects an outline into ranker input, preserving order.
func SectionsFromOutline(outline []Heading) []Section {
	sections := make([]Section, 0, len(outline))
	for _, h := range outline {
		sections = append(sections, Section{Text: h.Text, Page: h.Page, Level: h.Level})
	}
	return sections
}

// RankedSection is a scored section, ordered descending by score.
type RankedSection struct {
	Section Section `json:"section"`
	Score   float64 `json:"score"`
}

// ExtractedSection is one row of the cross-document importance ranking.
// ImportanceRank is dense (1..N) across the whole collection.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	Page           int    `json:"page_number"`
}

// SubsectionAnalysis carries the refined text for one top-ranked section.
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	Page        int    `json:"page_number"`
}

// ExcludedDocument records a document dropped from a collection run.
type ExcludedDocument struct {
	Document string `json:"document"`
	Reason   string `json:"reason"`
}

// ReportMetadata describes the inputs of a collection run.
type ReportMetadata struct {
	Persona           string             `json:"persona"`
	Task              string             `json:"job_to_be_done"`
	InputDocuments    []string           `json:"input_documents"`
	ExcludedDocuments []ExcludedDocument `json:"excluded_documents"`
	ProcessedAt       string             `json:"processed_at"`
}

// CollectionReport is the output of one collection run.
type CollectionReport struct {
	Metadata           ReportMetadata       `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}
