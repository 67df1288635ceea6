package reader

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// MarkdownFormat implements Format for Markdown files. Headings start new
// parts and markup is dropped.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Open(filename string) (Book, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Book{}, err
	}
	return parseMarkdown(data), nil
}

var markdown = goldmark.New()

func parseMarkdown(src []byte) Book {
	root := markdown.Parser().Parse(gmtext.NewReader(src))

	var b partBuilder
	var title string

	var block func(n ast.Node)
	block = func(n ast.Node) {
		switch n := n.(type) {
		case *ast.Heading:
			heading := inlineText(n, src)
			if heading == "" {
				return
			}
			if title == "" && n.Level == 1 {
				title = heading
			}
			b.startPart(heading, n.Level-1)
			b.paras = append(b.paras, heading)
		case *ast.Paragraph, *ast.TextBlock:
			if p := inlineText(n, src); p != "" {
				b.paras = append(b.paras, p)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if p := linesText(n, src); p != "" {
				b.paras = append(b.paras, p)
			}
		case *ast.HTMLBlock, *ast.ThematicBreak:
		default:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				block(c)
			}
		}
	}
	block(root)
	b.flushPart()

	return Book{Title: title, Parts: b.parts}
}

// inlineText collects the text of n's inline children on one line.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			sb.Write(n.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(n.Value)
		case *ast.AutoLink:
			sb.Write(n.Label(src))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

func linesText(n ast.Node, src []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := range lines.Len() {
		line := lines.At(i)
		sb.Write(line.Value(src))
		sb.WriteByte(' ')
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
