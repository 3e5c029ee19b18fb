package monitoring

import (
	"strings"

	"github.com/mentionwatch/dashboard/internal/models"
)

// Word stems, matched as substrings of the lower-cased text.
var (
	positiveStems = []string{
		"поддерж", "хорош", "отличн", "молодц", "спасибо", "благодар", "правильн",
		"успех", "успешн", "прекрасн", "замечательн", "продолжайте",
		"good", "great", "support", "thanks", "excellent",
	}
	negativeStems = []string{
		"не соглас", "плох", "позор", "ужасн", "провал", "возмущ",
		"обман", "разочаров", "безобраз", "стыд", "враньё", "вранье",
		"bad", "terrible", "shame", "disagree",
	}
)

// classifySentiment is a keyword classifier for records arriving without a sentiment
func classifySentiment(content string) models.Sentiment {
	content = strings.ToLower(content)

	positiveCount := 0
	negativeCount := 0

	// A negated positive ("не поддерживаю") counts against the mention.
	for _, stem := range positiveStems {
		negated := "не " + stem
		if strings.Contains(content, negated) {
			negativeCount++
			content = strings.ReplaceAll(content, negated, " ")
		}
	}

	for _, stem := range positiveStems {
		if strings.Contains(content, stem) {
			positiveCount++
		}
	}

	for _, stem := range negativeStems {
		if strings.Contains(content, stem) {
			negativeCount++
		}
	}

	if positiveCount > negativeCount {
		return models.SentimentPositive
	} else if negativeCount > positiveCount {
		return models.SentimentNegative
	}

	return models.SentimentNeutral
}
