package text

// FlatWord is a word in reading order, carrying enough context to render the
// surrounding sentence and paragraph without walking the document tree.
type FlatWord struct {
	Text                string
	HasPausePunctuation bool
	GlobalIndex         int
	SentenceIndex       int
	ParagraphIndex      int
	SentenceText        string
	ParagraphText       string
}

// Flatten lists every word of the document in reading order. The result has
// exactly doc.TotalWords entries and entry i has GlobalIndex i.
func Flatten(doc Document) []FlatWord {
	words := make([]FlatWord, 0, doc.TotalWords)
	for _, p := range doc.Paragraphs {
		for _, s := range p.Sentences {
			for _, w := range s.Words {
				words = append(words, FlatWord{
					Text:                w.Text,
					HasPausePunctuation: w.HasPausePunctuation,
					GlobalIndex:         len(words),
					SentenceIndex:       s.Index,
					ParagraphIndex:      p.Index,
					SentenceText:        s.Text,
					ParagraphText:       p.Text,
				})
			}
		}
	}
	return words
}

// FindParagraphByWordIndex returns the paragraph holding the word at
// globalIndex. Indices below zero resolve to the first paragraph and indices
// past the end to the last one. It reports false only for a document without
// paragraphs.
func FindParagraphByWordIndex(doc Document, globalIndex int) (Paragraph, bool) {
	if len(doc.Paragraphs) == 0 {
		return Paragraph{}, false
	}
	seen := 0
	for _, p := range doc.Paragraphs {
		seen += p.WordCount()
		if globalIndex < seen {
			return p, true
		}
	}
	return doc.Paragraphs[len(doc.Paragraphs)-1], true
}

// FindSentenceByWordIndex returns the sentence holding the word at
// globalIndex, clamping out-of-range indices the same way as
// FindParagraphByWordIndex.
func FindSentenceByWordIndex(doc Document, globalIndex int) (Sentence, bool) {
	seen, ok := 0, false
	for _, p := range doc.Paragraphs {
		for _, s := range p.Sentences {
			seen += len(s.Words)
			if globalIndex < seen {
				return s, true
			}
			ok = true
		}
	}
	if !ok {
		return Sentence{}, false
	}
	last := doc.Paragraphs[len(doc.Paragraphs)-1].Sentences
	return last[len(last)-1], true
}
