package reader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// HTMLReader handles HTML files. Headings h1..h6 become styled runs, block
// text becomes body runs, and <table> elements become grids. Everything is
// page 1.
type HTMLReader struct{}

func (p *HTMLReader) Read(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open html: %v", ErrUnreadable, err)
	}
	defer f.Close()
	return parseHTML(f)
}

func parseHTML(r io.Reader) (*Source, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrUnreadable, err)
	}

	src := &Source{PageCount: 1}
	addRun := func(text string, size float64, bold bool) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		src.Runs = append(src.Runs, TextRun{
			Text: text,
			Size: size,
			Bold: bold,
			Page: 1,
			Y:    float64(len(src.Runs)) * synthLineSpacing,
		})
	}

	// A document <title> is the strongest title signal HTML has; surface it
	// as a single isolated run at the largest size so title inference picks
	// it up without a special case downstream.
	if title := htmlFindTitle(doc); title != "" {
		addRun(title, synthTitleSize, true)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := htmlHeadingLevel(n.Data); level > 0 {
				addRun(htmlTextContent(n), synthHeadingSize(level), true)
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "title":
				return
			case "table":
				if grid := htmlTableGrid(n); len(grid) > 0 {
					src.Tables = append(src.Tables, TableGrid{Page: 1, Rows: grid})
				}
				return
			case "p", "li", "blockquote", "pre":
				addRun(htmlTextContent(n), synthBodySize, false)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if body := htmlFindBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return src, nil
}

func htmlHeadingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func htmlTableGrid(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, htmlTextContent(c))
				}
			}
			if len(row) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func htmlTextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func htmlFindTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return htmlTextContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := htmlFindTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func htmlFindBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := htmlFindBody(c); b != nil {
			return b
		}
	}
	return nil
}
