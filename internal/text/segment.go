// Package text turns raw pasted text into an indexed document of paragraphs,
// sentences and words, and linearizes it into the flat word sequence that
// playback addresses.
package text

import (
	"regexp"
	"strings"
)

// PausePunctuation lists the marks that make a word linger on screen.
const PausePunctuation = ".,;:?!—"

var (
	paragraphBreakRegex = regexp.MustCompile(`\n{2,}`)
	// A run of terminal punctuation followed by whitespace or the end of the
	// text closes a sentence.
	sentenceEndRegex = regexp.MustCompile(`[.!?]+(?:[\s\p{Zs}]+|$)`)
)

// Word is a single whitespace-delimited token.
type Word struct {
	Text                string
	HasPausePunctuation bool
	// Index is the position of the word within its sentence.
	Index int
}

// Sentence is a run of words closed by terminal punctuation. Index is unique
// and increasing across the whole document.
type Sentence struct {
	Index int
	Text  string
	Words []Word
}

// Paragraph is a block of text separated from its neighbours by a blank line.
type Paragraph struct {
	Index     int
	Text      string
	Sentences []Sentence
}

// WordCount returns the number of words in the paragraph.
func (p Paragraph) WordCount() int {
	n := 0
	for _, s := range p.Sentences {
		n += len(s.Words)
	}
	return n
}

// Document is the segmented form of a text.
type Document struct {
	Paragraphs      []Paragraph
	TotalWords      int
	TotalSentences  int
	TotalParagraphs int
}

// Empty reports whether the document has nothing to read.
func (d *Document) Empty() bool {
	return d == nil || d.TotalWords == 0
}

// ParseParagraphs splits cleaned text on blank lines. Empty blocks are dropped
// and the rest are numbered from zero. Sentence indices restart in every
// paragraph; Process renumbers them document-wide.
func ParseParagraphs(cleaned string) []Paragraph {
	if cleaned == "" {
		return nil
	}

	var paragraphs []Paragraph
	for _, block := range paragraphBreakRegex.Split(cleaned, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		paragraphs = append(paragraphs, Paragraph{
			Index:     len(paragraphs),
			Text:      block,
			Sentences: ParseSentences(block),
		})
	}
	return paragraphs
}

// ParseSentences splits a paragraph at runs of . ! or ? that are followed by
// whitespace or the end of the text. Text with no sentence ending is one
// sentence. Indices are assigned from zero within the call.
func ParseSentences(paragraph string) []Sentence {
	var sentences []Sentence
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		sentences = append(sentences, Sentence{
			Index: len(sentences),
			Text:  s,
			Words: ParseWords(s),
		})
	}

	pos := 0
	for _, m := range sentenceEndRegex.FindAllStringIndex(paragraph, -1) {
		add(paragraph[pos:m[1]])
		pos = m[1]
	}
	if pos < len(paragraph) {
		add(paragraph[pos:])
	}
	return sentences
}

// ParseWords splits a sentence on whitespace.
func ParseWords(sentence string) []Word {
	tokens := strings.Fields(sentence)
	if len(tokens) == 0 {
		return nil
	}
	words := make([]Word, len(tokens))
	for i, tok := range tokens {
		words[i] = Word{
			Text:                tok,
			HasPausePunctuation: HasPausePunctuation(tok),
			Index:               i,
		}
	}
	return words
}

// HasPausePunctuation reports whether the token carries any pause mark.
func HasPausePunctuation(token string) bool {
	return strings.ContainsAny(token, PausePunctuation)
}

// Process cleans raw text and segments it. Empty input yields an empty
// document, which callers must refuse to play.
func Process(raw string) Document {
	paragraphs := ParseParagraphs(CleanText(raw))

	var doc Document
	for p := range paragraphs {
		sentences := paragraphs[p].Sentences
		for s := range sentences {
			sentences[s].Index = doc.TotalSentences
			doc.TotalSentences++
			doc.TotalWords += len(sentences[s].Words)
		}
	}
	doc.Paragraphs = paragraphs
	doc.TotalParagraphs = len(paragraphs)
	return doc
}
