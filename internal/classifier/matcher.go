package classifier

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// phraseMatcher finds whole-word phrase occurrences in one pass. Text and
// phrases are reduced to single-space separated tokens and padded with a
// space on each side, so a hit always starts and ends on a token boundary.
type phraseMatcher struct {
	matcher *ahocorasick.Matcher
	phrases []string
}

func newPhraseMatcher(phrases []string) *phraseMatcher {
	padded := make([]string, 0, len(phrases))
	kept := make([]string, 0, len(phrases))
	seen := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		tokens := tokenize(p)
		if tokens == "" || seen[tokens] {
			continue
		}
		seen[tokens] = true
		kept = append(kept, tokens)
		padded = append(padded, " "+tokens+" ")
	}

	m := &phraseMatcher{phrases: kept}
	if len(padded) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(padded)
	}
	return m
}

// match returns the distinct phrases present in text, in dictionary order.
func (m *phraseMatcher) match(text string) []string {
	if m.matcher == nil {
		return nil
	}
	tokens := tokenize(text)
	if tokens == "" {
		return nil
	}

	hits := m.matcher.MatchThreadSafe([]byte(" " + tokens + " "))
	if len(hits) == 0 {
		return nil
	}

	found := make([]bool, len(m.phrases))
	for _, idx := range hits {
		if idx < len(found) {
			found[idx] = true
		}
	}
	out := make([]string, 0, len(hits))
	for i, ok := range found {
		if ok {
			out = append(out, m.phrases[i])
		}
	}
	return out
}

// tokenize lower-cases text and joins its letter/digit runs with single
// spaces. Everything else, punctuation included, separates tokens.
func tokenize(text string) string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
	return strings.Join(fields, " ")
}

// substringMatcher reports plain substring containment of any keyword.
type substringMatcher struct {
	matcher *ahocorasick.Matcher
}

func newSubstringMatcher(keywords []string) *substringMatcher {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return &substringMatcher{}
	}
	return &substringMatcher{matcher: ahocorasick.NewStringMatcher(cleaned)}
}

func (m *substringMatcher) containsAny(text string) bool {
	if m.matcher == nil || text == "" {
		return false
	}
	return len(m.matcher.MatchThreadSafe([]byte(strings.ToLower(text)))) > 0
}
