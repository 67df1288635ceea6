package reader

import "unicode/utf8"

// GetORPPosition returns the Optimal Recognition Point index for a word.
// This is the character (rune) position where the eye should focus for fastest recognition.
func GetORPPosition(word string) int {
	length := utf8.RuneCountInString(word)
	if length <= 1 {
		return 0
	} else if length <= 5 {
		return 1
	}
	return length / 3
}

// SplitORP splits word around its recognition point.
func SplitORP(word string) (before, pivot, after string) {
	runes := []rune(word)
	if len(runes) == 0 {
		return "", "", ""
	}
	i := GetORPPosition(word)
	return string(runes[:i]), string(runes[i]), string(runes[i+1:])
}
