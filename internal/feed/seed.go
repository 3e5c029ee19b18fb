package feed

import "github.com/mentionwatch/dashboard/internal/models"

// SampleMentions returns the built-in demo feed. Each call returns a fresh
// copy so callers cannot alter the seed.
func SampleMentions() []models.Mention {
	return []models.Mention{
		{
			ID:         "1",
			Platform:   "VK",
			Author:     "Иван Соколов",
			Content:    "Поддерживаю инициативу партии! Важно отстаивать интересы трудящихся.",
			Sentiment:  models.SentimentPositive,
			Engagement: 1243,
			Timestamp:  "2025-11-12 14:32",
			Views:      12450,
		},
		{
			ID:         "2",
			Platform:   "VK",
			Author:     "Мария Петрова",
			Content:    "Не согласна с некоторыми решениями, нужен более взвешенный подход.",
			Sentiment:  models.SentimentNegative,
			Engagement: 567,
			Timestamp:  "2025-11-12 13:15",
			Views:      8920,
		},
		{
			ID:         "3",
			Platform:   "VK",
			Author:     "Александр К.",
			Content:    "Интересная позиция по социальным вопросам.",
			Sentiment:  models.SentimentNeutral,
			Engagement: 234,
			Timestamp:  "2025-11-12 12:08",
			Views:      5670,
		},
		{
			ID:         "4",
			Platform:   "VK",
			Author:     "Сергей Михайлов",
			Content:    "Хорошая работа с избирателями! Продолжайте в том же духе.",
			Sentiment:  models.SentimentPositive,
			Engagement: 892,
			Timestamp:  "2025-11-12 11:45",
			Views:      15230,
		},
		{
			ID:         "5",
			Platform:   "VK",
			Author:     "Анна Васильева",
			Content:    "Посмотрим, что будет дальше.",
			Sentiment:  models.SentimentNeutral,
			Engagement: 445,
			Timestamp:  "2025-11-12 10:22",
			Views:      7890,
		},
	}
}
