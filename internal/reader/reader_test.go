package reader

import (
	"testing"
)

func TestForFile_Dispatch(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "*reader.PDFReader"},
		{"REPORT.PDF", "*reader.PDFReader"},
		{"notes.docx", "*reader.DOCXReader"},
		{"page.html", "*reader.HTMLReader"},
		{"page.htm", "*reader.HTMLReader"},
		{"readme.md", "*reader.MarkdownReader"},
		{"readme.markdown", "*reader.MarkdownReader"},
	}
	for _, tt := range tests {
		r, err := ForFile(tt.filename)
		if err != nil {
			t.Errorf("ForFile(%q): unexpected error: %v", tt.filename, err)
			continue
		}
		var got string
		switch r.(type) {
		case *PDFReader:
			got = "*reader.PDFReader"
		case *DOCXReader:
			got = "*reader.DOCXReader"
		case *HTMLReader:
			got = "*reader.HTMLReader"
		case *MarkdownReader:
			got = "*reader.MarkdownReader"
		}
		if got != tt.want {
			t.Errorf("ForFile(%q) = %s, want %s", tt.filename, got, tt.want)
		}
	}
}

func TestForFile_Unsupported(t *testing.T) {
	for _, name := range []string{"image.png", "archive.zip", "noextension"} {
		if _, err := ForFile(name); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	supported := []string{"a.pdf", "b.DOCX", "c.html", "d.htm", "e.md", "f.markdown"}
	for _, name := range supported {
		if !IsSupportedExtension(name) {
			t.Errorf("expected %q supported", name)
		}
	}
	unsupported := []string{"a.txt", "b.png", "c"}
	for _, name := range unsupported {
		if IsSupportedExtension(name) {
			t.Errorf("expected %q unsupported", name)
		}
	}
}
