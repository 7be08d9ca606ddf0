// Package normalizer rewrites colloquial and transliterated complaint
// vocabulary into canonical English tokens.
package normalizer

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Entry maps one source token onto its canonical form.
type Entry struct {
	Source    string
	Canonical string
}

type rule struct {
	source    string
	canonical string
}

// Normalizer applies a transliteration table. It is safe for concurrent use.
type Normalizer struct {
	rules []rule
}

// New prepares table. Longer sources are applied first; equal lengths keep
// table order. Entries with an empty source are ignored.
func New(table []Entry) *Normalizer {
	rules := make([]rule, 0, len(table))
	for _, e := range table {
		source := fold(e.Source)
		if strings.TrimSpace(source) == "" {
			continue
		}
		rules = append(rules, rule{source: source, canonical: fold(e.Canonical)})
	}
	slices.SortStableFunc(rules, func(a, b rule) int {
		return len(b.source) - len(a.source)
	})
	return &Normalizer{rules: rules}
}

// Normalize folds compatibility forms (NFKC), lower-cases, then replaces
// every whole-word source token with its canonical token. Letters, marks,
// digits and underscores in any script are word characters. Unknown tokens
// are kept as-is and the output is a fixed point of Normalize.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	out := fold(text)
	for _, r := range n.rules {
		out = replaceWord(out, r.source, r.canonical)
	}
	return norm.NFKC.String(out)
}

// fold is NFKC, lower-case, NFKC: lower-casing can leave text that
// composes differently.
func fold(s string) string {
	return norm.NFKC.String(strings.ToLower(norm.NFKC.String(s)))
}

// replaceWord replaces every occurrence of source in s that is not glued
// to a word character on either side.
func replaceWord(s, source, canonical string) string {
	if !strings.Contains(s, source) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	pos := 0
	for pos < len(s) {
		idx := strings.Index(s[pos:], source)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(source)
		if isWordBoundary(s, start, end) {
			b.WriteString(s[pos:start])
			b.WriteString(canonical)
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		b.WriteString(s[pos : start+size])
		pos = start + size
	}
	b.WriteString(s[pos:])
	return b.String()
}

func isWordBoundary(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r)
}

var defaultNormalizer = New(DefaultTable())

// Normalize runs text through the built-in transliteration table.
func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}
