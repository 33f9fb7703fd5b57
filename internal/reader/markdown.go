package reader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownReader handles Markdown files using goldmark. ATX heading levels
// map onto the synthetic font size ladder; all content is page 1.
type MarkdownReader struct{}

func (p *MarkdownReader) Read(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open markdown: %v", ErrUnreadable, err)
	}
	defer f.Close()
	return parseMarkdown(f)
}

func parseMarkdown(r io.Reader) (*Source, error) {
	srcBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(srcBytes))

	src := &Source{PageCount: 1}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		var run TextRun
		switch node := n.(type) {
		case *ast.Heading:
			run = TextRun{
				Text: string(node.Text(srcBytes)),
				Size: synthHeadingSize(node.Level),
				Bold: true,
			}
		default:
			run = TextRun{
				Text: mdBlockText(n, srcBytes),
				Size: synthBodySize,
			}
		}
		run.Text = strings.TrimSpace(run.Text)
		if run.Text == "" {
			continue
		}
		run.Page = 1
		run.Y = float64(len(src.Runs)) * synthLineSpacing
		src.Runs = append(src.Runs, run)
	}
	return src, nil
}

// mdBlockText gets the text content of a goldmark block node.
func mdBlockText(n ast.Node, src []byte) string {
	var buf strings.Builder
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	if buf.Len() == 0 {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			} else {
				buf.WriteString(mdBlockText(c, src))
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
