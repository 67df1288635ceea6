package reader

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// EPUBFormat implements Format for EPUB files. Each spine document becomes a
// part titled from the NCX table of contents.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

func (f *EPUBFormat) Open(filename string) (Book, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return Book{}, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return Book{}, fmt.Errorf("no rootfiles found in epub")
	}
	rootfile := rc.Rootfiles[0]

	toc := readNCX(rootfile)
	book := Book{Title: toc.title}

	for i, ref := range rootfile.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		_, parts, err := parseHTML(r, false)
		r.Close()
		if err != nil {
			continue
		}

		var paras []string
		for _, p := range parts {
			if p.Text != "" {
				paras = append(paras, p.Text)
			}
		}
		if len(paras) == 0 {
			continue
		}

		part := Part{
			Title: fmt.Sprintf("Section %d", i+1),
			Text:  strings.Join(paras, "\n\n"),
		}
		if entry, ok := toc.lookup(ref.Item.HREF); ok {
			part.Title, part.Level = entry.title, entry.level
		}
		book.Parts = append(book.Parts, part)
	}

	return book, nil
}

func readAll(r io.ReadCloser) ([]byte, error) {
	defer r.Close()
	return io.ReadAll(r)
}

func hrefKeys(href string) []string {
	base, _, _ := strings.Cut(href, "#")
	return []string{href, base, path.Base(base)}
}
