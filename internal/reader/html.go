package reader

import (
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLFormat implements Format for HTML and XHTML files. Headings start new
// parts.
type HTMLFormat struct{}

func init() {
	Register(&HTMLFormat{})
}

func (f *HTMLFormat) Name() string         { return "HTML" }
func (f *HTMLFormat) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }

func (f *HTMLFormat) Open(filename string) (Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Book{}, err
	}
	defer file.Close()

	title, parts, err := parseHTML(file, true)
	if err != nil {
		return Book{}, err
	}
	return Book{Title: title, Parts: parts}, nil
}

var skipElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Head:     true,
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Aside: true, atom.Header: true, atom.Footer: true, atom.Nav: true,
	atom.Main: true, atom.Blockquote: true, atom.Pre: true, atom.Ul: true,
	atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Figure: true, atom.Figcaption: true, atom.Hr: true, atom.Body: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 0, atom.H2: 1, atom.H3: 2, atom.H4: 3, atom.H5: 4, atom.H6: 5,
}

// partBuilder accumulates paragraphs into parts.
type partBuilder struct {
	parts  []Part
	title  string
	level  int
	paras  []string
	inline strings.Builder
}

func (b *partBuilder) flushInline() {
	if p := strings.Join(strings.Fields(b.inline.String()), " "); p != "" {
		b.paras = append(b.paras, p)
	}
	b.inline.Reset()
}

func (b *partBuilder) flushPart() {
	b.flushInline()
	if b.title != "" || len(b.paras) > 0 {
		b.parts = append(b.parts, Part{
			Title: b.title,
			Level: b.level,
			Text:  strings.Join(b.paras, "\n\n"),
		})
	}
	b.title, b.level, b.paras = "", 0, nil
}

func (b *partBuilder) startPart(title string, level int) {
	b.flushPart()
	b.title, b.level = title, level
}

// parseHTML extracts the document title and the body text. With
// splitHeadings each heading starts a new part; otherwise the whole body is
// one untitled part.
func parseHTML(r io.Reader, splitHeadings bool) (string, []Part, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", nil, err
	}

	var b partBuilder
	title := ""

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.inline.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.DataAtom == atom.Title && title == "" {
				title = nodeText(n)
				return
			}
			if n.DataAtom == atom.Head {
				// Only the title is wanted from the head.
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.DataAtom == atom.Title && title == "" {
						title = nodeText(c)
					}
				}
				return
			}
			if skipElements[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Br {
				b.inline.WriteByte(' ')
				return
			}
			if level, ok := headingLevels[n.DataAtom]; ok {
				heading := nodeText(n)
				if splitHeadings && heading != "" {
					b.startPart(heading, level)
				} else {
					b.flushInline()
				}
				b.inline.WriteString(heading)
				b.flushInline()
				return
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			b.flushInline()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.flushInline()
		}
	}
	walk(doc)
	b.flushPart()

	return title, b.parts, nil
}

// nodeText returns the whitespace-normalized text under n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		if n.Type == html.ElementNode && skipElements[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
