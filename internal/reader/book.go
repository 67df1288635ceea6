// Package reader turns input files into readable text and a table of
// contents that addresses the same word sequence the playback engine reads.
package reader

import (
	"strings"

	"github.com/metcalfc/skim/internal/text"
)

const previewWords = 10

// Part is a titled run of text, such as a chapter or a section under a
// heading. Paragraphs in Text are separated by blank lines.
type Part struct {
	Title string
	Level int
	Text  string
}

// TOCEntry represents a single entry in a table of contents
type TOCEntry struct {
	Title     string
	Preview   string
	WordIndex int
	Level     int
}

// Book is an opened input.
type Book struct {
	Title string
	Parts []Part
}

// FromText wraps plain text in a Book with a single untitled part.
func FromText(s string) Book {
	return Book{Parts: []Part{{Text: s}}}
}

// Text joins the parts into the text handed to the engine.
func (b Book) Text() string {
	texts := make([]string, 0, len(b.Parts))
	for _, p := range b.Parts {
		if strings.TrimSpace(p.Text) != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}

// TOC lists the titled parts with the global index of their first word.
// Parts are segmented the same way the engine segments Text, so the indices
// can be passed straight to JumpTo.
func (b Book) TOC() []TOCEntry {
	var entries []TOCEntry
	words := 0
	for _, p := range b.Parts {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		doc := text.Process(p.Text)
		if p.Title != "" && doc.TotalWords > 0 {
			entries = append(entries, TOCEntry{
				Title:     p.Title,
				Preview:   preview(text.Flatten(doc)),
				WordIndex: words,
				Level:     p.Level,
			})
		}
		words += doc.TotalWords
	}
	return entries
}

// Section returns the title of the TOC entry containing wordIndex.
func Section(toc []TOCEntry, wordIndex int) string {
	title := ""
	for _, e := range toc {
		if e.WordIndex > wordIndex {
			break
		}
		title = e.Title
	}
	return title
}

func preview(words []text.FlatWord) string {
	n := min(len(words), previewWords)
	out := make([]string, n)
	for i := range n {
		out[i] = words[i].Text
	}
	s := strings.Join(out, " ")
	if len(words) > previewWords {
		s += "..."
	}
	return s
}
