package reader

import (
	"testing"

	"github.com/metcalfc/skim/internal/text"
)

func TestBookTOCMatchesEngineIndices(t *testing.T) {
	book := Book{Parts: []Part{
		{Text: "An untitled opening. It has two sentences."},
		{Title: "One", Text: "One\n\nFirst   part &amp; more."},
		{Title: "Empty", Text: "   "},
		{Title: "Two", Level: 1, Text: "Two\n\n<b>Second</b> part."},
	}}

	toc := book.TOC()
	if len(toc) != 2 {
		t.Fatalf("TOC = %+v, want 2 entries", toc)
	}

	words := text.Flatten(text.Process(book.Text()))
	for _, e := range toc {
		if e.WordIndex >= len(words) {
			t.Fatalf("%s: index %d out of range", e.Title, e.WordIndex)
		}
		if got := words[e.WordIndex].Text; got != e.Title {
			t.Errorf("%s: word at %d = %q", e.Title, e.WordIndex, got)
		}
	}
	if toc[1].Level != 1 {
		t.Errorf("Level = %d, want 1", toc[1].Level)
	}
	if toc[0].Preview != "One First part & more." {
		t.Errorf("Preview = %q", toc[0].Preview)
	}
}

func TestBookText(t *testing.T) {
	book := Book{Parts: []Part{{Text: "a"}, {Text: ""}, {Text: "b"}}}
	if got := book.Text(); got != "a\n\nb" {
		t.Errorf("Text() = %q", got)
	}
	if got := FromText("plain").Text(); got != "plain" {
		t.Errorf("FromText().Text() = %q", got)
	}
}

func TestPreviewTruncates(t *testing.T) {
	doc := text.Process("one two three four five six seven eight nine ten eleven")
	if got, want := preview(text.Flatten(doc)), "one two three four five six seven eight nine ten..."; got != want {
		t.Errorf("preview = %q, want %q", got, want)
	}
}

func TestSection(t *testing.T) {
	toc := []TOCEntry{{Title: "A", WordIndex: 5}, {Title: "B", WordIndex: 10}}
	tests := []struct {
		index int
		want  string
	}{
		{0, ""},
		{5, "A"},
		{9, "A"},
		{10, "B"},
		{99, "B"},
	}
	for _, tt := range tests {
		if got := Section(toc, tt.index); got != tt.want {
			t.Errorf("Section(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
