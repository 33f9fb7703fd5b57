// Package reader turns source files into a uniform stream of text runs with
// font metadata, plus any table grids found along the way. It is the boundary
// to the external extraction capabilities: nothing above it touches file
// formats.
package reader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnreadable marks a source file that cannot be opened or decoded at all
// (corrupt, encrypted, truncated). It is fatal for that document.
var ErrUnreadable = errors.New("unreadable document")

// TextRun is one visual line of text with its font metadata.
type TextRun struct {
	Text   string
	Size   float64 // font size in points; synthesized for non-PDF sources
	Bold   bool
	Italic bool
	Page   int     // 1-based
	Y      float64 // vertical position, increasing downward the page
}

// TableGrid is a page-anchored grid of cell strings, in source order.
type TableGrid struct {
	Page int
	Rows [][]string
}

// Source is everything extracted from one file. Runs are in reading order:
// page ascending, then Y ascending.
type Source struct {
	PageCount int
	Runs      []TextRun
	Tables    []TableGrid
}

// Reader extracts a Source from a file on disk.
type Reader interface {
	Read(path string) (*Source, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
}

// ForFile returns the appropriate reader for a filename.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFReader{}, nil
	case ".docx":
		return &DOCXReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Open dispatches on the file extension and reads the source.
func Open(path string) (*Source, error) {
	r, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	return r.Read(path)
}

// Synthetic font sizes for sources without real font metrics. Heading levels
// map onto a descending size ladder so the outline engine treats every source
// uniformly.
const (
	synthBodySize  = 11.0
	synthTitleSize = 26.0

	// Vertical gap between consecutive synthetic runs, comfortably beyond the
	// line-merge tolerance so separate blocks never merge.
	synthLineSpacing = 10.0
)

func synthHeadingSize(level int) float64 {
	if level < 1 {
		return synthBodySize
	}
	if level > 6 {
		level = 6
	}
	return 24.0 - 2.0*float64(level)
}
