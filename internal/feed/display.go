package feed

import "github.com/mentionwatch/dashboard/internal/models"

// Color tokens used by the dashboard badges and bars
const (
	ColorGreen = "green"
	ColorRed   = "red"
	ColorGray  = "gray"
)

// SentimentColor maps a sentiment to its color token
func SentimentColor(sentiment models.Sentiment) string {
	switch sentiment {
	case models.SentimentPositive:
		return ColorGreen
	case models.SentimentNegative:
		return ColorRed
	default:
		return ColorGray
	}
}

// SentimentLabel maps a sentiment to the label shown in the mention table
func SentimentLabel(sentiment models.Sentiment) string {
	switch sentiment {
	case models.SentimentPositive:
		return "Позитивная"
	case models.SentimentNegative:
		return "Негативная"
	default:
		return "Нейтральная"
	}
}

// FilterLabel maps a filter value to its dropdown label
func FilterLabel(filter models.SentimentFilter) string {
	switch filter {
	case models.FilterPositive:
		return "Позитивные"
	case models.FilterNegative:
		return "Негативные"
	case models.FilterNeutral:
		return "Нейтральные"
	default:
		return "Все"
	}
}
