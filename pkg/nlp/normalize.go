package nlp

import (
	"regexp"
	"strings"
)

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// NormalizeText приводит текст к виду для поиска терминов:
// - нижний регистр
// - схлопывает пробельные символы в один пробел
// Символы вроде "+", "#" и "." сохраняются, иначе "c++" и "c#" неотличимы от "c".
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Words lowercases s and splits it on anything that is not a letter or digit.
func Words(s string) []string {
	s = reNonWord.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Fields(s)
}
