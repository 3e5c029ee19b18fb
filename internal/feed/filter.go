package feed

import (
	"strings"

	"github.com/mentionwatch/dashboard/internal/models"
)

// Filter returns the mentions matching the criteria, in their original order.
// The result is never nil so an empty match renders as an empty table.
func Filter(mentions []models.Mention, criteria models.Criteria) []models.Mention {
	filtered := make([]models.Mention, 0, len(mentions))
	term := strings.ToLower(criteria.SearchTerm)

	for _, mention := range mentions {
		if matchesSearch(mention, term) && matchesSentiment(mention, criteria.SentimentFilter) {
			filtered = append(filtered, mention)
		}
	}

	return filtered
}

// Matches reports whether a single mention passes the criteria
func Matches(mention models.Mention, criteria models.Criteria) bool {
	return matchesSearch(mention, strings.ToLower(criteria.SearchTerm)) &&
		matchesSentiment(mention, criteria.SentimentFilter)
}

// term must already be lower-cased
func matchesSearch(mention models.Mention, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(mention.Content), term) ||
		strings.Contains(strings.ToLower(mention.Author), term)
}

func matchesSentiment(mention models.Mention, filter models.SentimentFilter) bool {
	// An unset filter behaves like "all".
	if filter == "" || filter == models.FilterAll {
		return true
	}
	return string(mention.Sentiment) == string(filter)
}

// ParseSentimentFilter converts user input into a filter value.
// Empty input yields "all"; anything unknown is rejected.
func ParseSentimentFilter(value string) (models.SentimentFilter, bool) {
	if value == "" {
		return models.FilterAll, true
	}
	filter := models.SentimentFilter(strings.ToLower(strings.TrimSpace(value)))
	if !filter.Valid() {
		return models.FilterAll, false
	}
	return filter, true
}
