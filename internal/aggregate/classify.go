package aggregate

import (
	"strings"

	"github.com/kijinews/kiji/internal/models"
)

// DefaultCategory is assigned when no keyword rule matches.
const DefaultCategory = "general"

// categoryRules is an ordered keyword table; the first matching rule
// wins. Matching is case-insensitive against title, summary, source name,
// and URL combined. This is a best-effort heuristic, not a guarantee.
var categoryRules = []struct {
	name     string
	keywords []string
}{
	{"scandal", []string{"scandal", "fraud", "bribery", "arrested", "arrest", "lawsuit", "indicted", "corruption", "affair"}},
	{"politics", []string{"politic", "election", "parliament", "minister", "senate", "congress", "government", "diplomat", "policy"}},
	{"economy", []string{"economy", "economic", "market", "stocks", "inflation", "interest rate", "bank", "yen", "earnings"}},
	{"sports", []string{"sport", "match", "tournament", "league", "olympic", "champion", "baseball", "soccer", "race"}},
	{"entertainment", []string{"entertainment", "celebrity", "movie", "film", "music", "idol", "drama", "anime", "actor"}},
	{"tech", []string{"tech", " ai ", "software", "smartphone", "startup", "app ", "robot", "chip"}},
}

// Classify assigns a coarse category to a post. A category supplied by
// the source registry always wins; otherwise the keyword rules apply in
// order, falling back to DefaultCategory.
func Classify(p models.Post) string {
	if p.Category != "" {
		return p.Category
	}

	haystack := strings.ToLower(strings.Join([]string{p.Title, p.Summary, p.SourceName, p.URL}, " "))
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.name
			}
		}
	}
	return DefaultCategory
}
