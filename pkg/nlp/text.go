package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ContainsTerm reports whether term occurs in text as a whole word.
// Both arguments are expected to be normalized with NormalizeText.
// Пример: "go" найдётся в "go, python", но не в "google";
// "c++" найдётся в "c++ developer", но "c" в нём не найдётся.
// Типографские знаки (’, •, —) считаются границей слова.
func ContainsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	from := 0
	for {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		if !continuesBefore(text[:start]) && !continuesAfter(text[end:]) {
			return true
		}
		from = start + 1
	}
}

func continuesBefore(prefix string) bool {
	if prefix == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(prefix)
	return isTermRune(r)
}

func continuesAfter(suffix string) bool {
	if suffix == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(suffix)
	return isTermRune(r)
}

// isTermRune reports whether r can continue a skill token. "." is excluded so
// a term at the end of a sentence still matches.
func isTermRune(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r):
		return true
	case r == '+', r == '#', r == '_':
		return true
	}
	return false
}
