package feed

import (
	"testing"

	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(mentions []models.Mention) []string {
	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		out = append(out, m.ID)
	}
	return out
}

func TestFilter_DefaultCriteriaReturnsEverything(t *testing.T) {
	mentions := SampleMentions()

	result := Filter(mentions, models.DefaultCriteria())

	assert.Equal(t, mentions, result)
}

func TestFilter_SampleScenarios(t *testing.T) {
	tests := []struct {
		name     string
		criteria models.Criteria
		expected []string
	}{
		{
			name:     "Negative only",
			criteria: models.Criteria{SentimentFilter: models.FilterNegative},
			expected: []string{"2"},
		},
		{
			name:     "Positive keeps original order",
			criteria: models.Criteria{SentimentFilter: models.FilterPositive},
			expected: []string{"1", "4"},
		},
		{
			name:     "Neutral",
			criteria: models.Criteria{SentimentFilter: models.FilterNeutral},
			expected: []string{"3", "5"},
		},
		{
			name:     "Search in content",
			criteria: models.Criteria{SearchTerm: "поддерживаю", SentimentFilter: models.FilterAll},
			expected: []string{"1"},
		},
		{
			name:     "Search in author is case-insensitive",
			criteria: models.Criteria{SearchTerm: "ИВАН", SentimentFilter: models.FilterAll},
			expected: []string{"1"},
		},
		{
			name:     "Search and sentiment combine",
			criteria: models.Criteria{SearchTerm: "а", SentimentFilter: models.FilterNeutral},
			expected: []string{"3", "5"},
		},
		{
			name:     "Search matching nothing under sentiment",
			criteria: models.Criteria{SearchTerm: "поддерживаю", SentimentFilter: models.FilterNegative},
			expected: []string{},
		},
		{
			name:     "No match",
			criteria: models.Criteria{SearchTerm: "xyz123", SentimentFilter: models.FilterAll},
			expected: []string{},
		},
		{
			name:     "Unset filter behaves like all",
			criteria: models.Criteria{SearchTerm: "работа"},
			expected: []string{"4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Filter(SampleMentions(), tt.criteria)
			require.NotNil(t, result)
			assert.Equal(t, tt.expected, ids(result))
		})
	}
}

func TestFilter_NegativeYieldsMariaPetrova(t *testing.T) {
	result := Filter(SampleMentions(), models.Criteria{SentimentFilter: models.FilterNegative})

	require.Len(t, result, 1)
	assert.Equal(t, "Мария Петрова", result[0].Author)
}

func TestFilter_ResultIsOrderedSubsequence(t *testing.T) {
	mentions := SampleMentions()
	terms := []string{"", "а", "о", "ПОДДЕРЖИВАЮ", "петрова", ".", "!", "xyz123"}

	for _, term := range terms {
		for _, filter := range models.SentimentFilters {
			result := Filter(mentions, models.Criteria{SearchTerm: term, SentimentFilter: filter})

			pos := 0
			for _, got := range result {
				for pos < len(mentions) && mentions[pos].ID != got.ID {
					pos++
				}
				require.Less(t, pos, len(mentions), "term %q filter %q produced an out-of-order or foreign record", term, filter)
				assert.Equal(t, mentions[pos], got)
				assert.True(t, Matches(got, models.Criteria{SearchTerm: term, SentimentFilter: filter}))
				pos++
			}
		}
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	result := Filter(nil, models.Criteria{SearchTerm: "anything", SentimentFilter: models.FilterPositive})

	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	mentions := SampleMentions()
	before := SampleMentions()

	_ = Filter(mentions, models.Criteria{SearchTerm: "а", SentimentFilter: models.FilterPositive})

	assert.Equal(t, before, mentions)
}

func TestParseSentimentFilter(t *testing.T) {
	tests := []struct {
		input    string
		expected models.SentimentFilter
		ok       bool
	}{
		{"", models.FilterAll, true},
		{"all", models.FilterAll, true},
		{"positive", models.FilterPositive, true},
		{"Negative", models.FilterNegative, true},
		{" neutral ", models.FilterNeutral, true},
		{"angry", models.FilterAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			filter, ok := ParseSentimentFilter(tt.input)
			assert.Equal(t, tt.expected, filter)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
