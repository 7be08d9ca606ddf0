// Package classifier implements the rule-based civic complaint pipeline:
// keyword-scored problem identification, priority determination and the
// department, category code and title lookups.
package classifier

import (
	"strings"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/domain"
)

// CategoryScore is the number of distinct triggers a category matched.
type CategoryScore struct {
	Category domain.ProblemCategory
	Score    int
	Matched  []string
}

// Classifier scores complaints against a keyword catalog. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	catalog      []CatalogEntry
	triggers     *phraseMatcher
	triggerOwner map[string][]int // tokenized trigger -> catalog indexes
	urgency      *substringMatcher
}

// New builds a Classifier from catalog and urgency keywords.
func New(catalog []CatalogEntry, urgencyKeywords []string) *Classifier {
	owner := make(map[string][]int)
	all := make([]string, 0)
	for i, entry := range catalog {
		seen := make(map[string]bool, len(entry.Triggers))
		for _, trigger := range entry.Triggers {
			key := tokenize(trigger)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			owner[key] = append(owner[key], i)
			all = append(all, key)
		}
	}

	return &Classifier{
		catalog:      catalog,
		triggers:     newPhraseMatcher(all),
		triggerOwner: owner,
		urgency:      newSubstringMatcher(urgencyKeywords),
	}
}

var defaultClassifier = New(DefaultCatalog(), DefaultUrgencyKeywords())

// Default returns the classifier built from the built-in catalog.
func Default() *Classifier {
	return defaultClassifier
}

// Scores returns one score per catalog entry, in catalog order.
func (c *Classifier) Scores(caption, text string) []CategoryScore {
	scores := make([]CategoryScore, len(c.catalog))
	for i, entry := range c.catalog {
		scores[i].Category = entry.Category
	}

	for _, phrase := range c.triggers.match(combine(caption, text)) {
		for _, idx := range c.triggerOwner[phrase] {
			scores[idx].Score++
			scores[idx].Matched = append(scores[idx].Matched, phrase)
		}
	}
	return scores
}

// IdentifyProblem returns the category with the most distinct trigger
// matches. Ties go to the entry declared first; no match yields Other.
func (c *Classifier) IdentifyProblem(caption, text string) domain.ProblemCategory {
	best := domain.Other
	bestScore := 0
	for _, s := range c.Scores(caption, text) {
		if s.Score > bestScore {
			best = s.Category
			bestScore = s.Score
		}
	}
	return best
}

// DeterminePriority returns HIGH when the combined text contains an urgency
// keyword, otherwise the category's tier.
func (c *Classifier) DeterminePriority(category domain.ProblemCategory, caption, text string) domain.Priority {
	if c.urgency.containsAny(combine(caption, text)) {
		return domain.PriorityHigh
	}

	switch category {
	case domain.WaterLeakage, domain.StreetlightElectrical, domain.TrafficSignal:
		return domain.PriorityHigh
	case domain.PotholeRoadDamage, domain.Drainage:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// IdentifyProblem classifies with the built-in catalog.
func IdentifyProblem(caption, text string) domain.ProblemCategory {
	return defaultClassifier.IdentifyProblem(caption, text)
}

// DeterminePriority applies the built-in urgency keywords and tiers.
func DeterminePriority(category domain.ProblemCategory, caption, text string) domain.Priority {
	return defaultClassifier.DeterminePriority(category, caption, text)
}

func combine(caption, text string) string {
	return strings.ToLower(caption) + " " + strings.ToLower(text)
}
