package stats

import (
	"math"
	"time"

	"github.com/mentionwatch/dashboard/internal/models"
)

var weekdayLabels = [7]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// DerivedProvider computes the summary from the mention feed itself
type DerivedProvider struct {
	now func() time.Time
}

// Ensure DerivedProvider implements Provider
var _ Provider = (*DerivedProvider)(nil)

// NewDerivedProvider creates a provider that aggregates the current feed
func NewDerivedProvider() *DerivedProvider {
	return &DerivedProvider{now: time.Now}
}

func (p *DerivedProvider) Name() string {
	return "derived"
}

// Summary aggregates the whole feed for the rates and average engagement.
// The weekday chart counts only mentions published in the seven days up to now.
func (p *DerivedProvider) Summary(mentions []models.Mention) models.Summary {
	summary := models.Summary{
		TotalMentions:  len(mentions),
		WeeklyActivity: make([]models.DayActivity, len(weekdayLabels)),
	}
	for i, label := range weekdayLabels {
		summary.WeeklyActivity[i].Day = label
	}

	if len(mentions) == 0 {
		return summary
	}

	now := p.now()
	counts := make(map[models.Sentiment]int)
	engagement := 0
	for _, mention := range mentions {
		counts[mention.Sentiment]++
		engagement += mention.Engagement

		// Seed records carry no publication time and are left out of the chart.
		if !mention.PublishedAt.IsZero() && inLastWeek(now, mention.PublishedAt) {
			idx := (int(mention.PublishedAt.Weekday()) + 6) % 7
			summary.WeeklyActivity[idx].Posts++
		}
	}

	total := float64(len(mentions))
	summary.PositiveRate = percent(counts[models.SentimentPositive], total)
	summary.NegativeRate = percent(counts[models.SentimentNegative], total)
	summary.NeutralRate = percent(counts[models.SentimentNeutral], total)
	summary.AvgEngagement = int(math.Floor(float64(engagement)/total + 0.5))

	maxPosts := 0
	for _, day := range summary.WeeklyActivity {
		if day.Posts > maxPosts {
			maxPosts = day.Posts
		}
	}
	for i := range summary.WeeklyActivity {
		summary.WeeklyActivity[i].MaxPosts = maxPosts
	}

	summary.WeeklyGrowth = p.weeklyGrowth(mentions)
	return summary
}

// weeklyGrowth compares the last seven days with the seven days before
func (p *DerivedProvider) weeklyGrowth(mentions []models.Mention) float64 {
	now := p.now()
	week := 7 * 24 * time.Hour

	current, previous := 0, 0
	for _, mention := range mentions {
		if mention.PublishedAt.IsZero() {
			continue
		}
		age := now.Sub(mention.PublishedAt)
		switch {
		case age < 0:
		case age < week:
			current++
		case age < 2*week:
			previous++
		}
	}

	if previous == 0 {
		return 0
	}
	growth := float64(current-previous) / float64(previous) * 100
	return math.Round(growth*10) / 10
}

func inLastWeek(now, published time.Time) bool {
	age := now.Sub(published)
	return age >= 0 && age < 7*24*time.Hour
}

func percent(count int, total float64) int {
	return int(math.Floor(float64(count)/total*100 + 0.5))
}
