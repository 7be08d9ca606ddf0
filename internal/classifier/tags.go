package classifier

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxTags      = 10
	minTagLength = 3
)

var (
	tagSplitter = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]+`)
	stopWords   = map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true, "in": true,
		"on": true, "at": true, "to": true, "for": true, "of": true, "with": true, "by": true,
	}
)

// ExtractTags returns up to ten keywords from the given texts, in order of
// first appearance. Stop words, short words and numbers are dropped.
func ExtractTags(texts ...string) []string {
	tags := make([]string, 0, maxTags)
	seen := make(map[string]bool)
	for _, text := range texts {
		for _, word := range tagSplitter.Split(strings.ToLower(text), -1) {
			if len([]rune(word)) < minTagLength || stopWords[word] || seen[word] || isNumber(word) {
				continue
			}
			seen[word] = true
			tags = append(tags, word)
			if len(tags) == maxTags {
				return tags
			}
		}
	}
	return tags
}

func isNumber(word string) bool {
	return strings.IndexFunc(word, func(r rune) bool { return !unicode.IsDigit(r) }) == -1
}

// Language codes reported by DetectLanguage.
const (
	LanguageHindi   = "hi"
	LanguageEnglish = "en"
	LanguageUnknown = "unknown"
)

// DetectLanguage returns "hi" when text contains Devanagari, "en" when it
// contains Latin letters, otherwise "unknown".
func DetectLanguage(text string) string {
	latin := false
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return LanguageHindi
		}
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			latin = true
		}
	}
	if latin {
		return LanguageEnglish
	}
	return LanguageUnknown
}
