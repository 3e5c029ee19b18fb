package stats

import (
	"math"

	"github.com/mentionwatch/dashboard/internal/models"
)

// Provider supplies the aggregate statistics shown on the dashboard
type Provider interface {
	Name() string
	Summary(mentions []models.Mention) models.Summary
}

// StaticProvider returns fixed summary figures independent of the feed
type StaticProvider struct {
	summary models.Summary
}

// Ensure StaticProvider implements Provider
var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider with the default dashboard figures
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{summary: DefaultSummary()}
}

// DefaultSummary returns the figures the dashboard shows when no analytics
// backend supplies its own.
func DefaultSummary() models.Summary {
	return models.Summary{
		TotalMentions: 12847,
		WeeklyGrowth:  12.5,
		PositiveRate:  62,
		NegativeRate:  18,
		NeutralRate:   20,
		AvgEngagement: 4238,
		WeeklyActivity: []models.DayActivity{
			{Day: "Пн", Posts: 45, MaxPosts: 78},
			{Day: "Вт", Posts: 52, MaxPosts: 78},
			{Day: "Ср", Posts: 78, MaxPosts: 78},
			{Day: "Чт", Posts: 63, MaxPosts: 78},
			{Day: "Пт", Posts: 71, MaxPosts: 78},
			{Day: "Сб", Posts: 38, MaxPosts: 78},
			{Day: "Вс", Posts: 29, MaxPosts: 78},
		},
	}
}

func (p *StaticProvider) Name() string {
	return "static"
}

func (p *StaticProvider) Summary(_ []models.Mention) models.Summary {
	summary := p.summary
	summary.WeeklyActivity = append([]models.DayActivity(nil), p.summary.WeeklyActivity...)
	return summary
}

// CountForRate converts a percentage of total into an absolute count,
// rounding halves up.
func CountForRate(total, rate int) int {
	return int(math.Floor(float64(total)*float64(rate)/100 + 0.5))
}

// BarWidth returns the bar length of a weekly activity entry in percent
func BarWidth(day models.DayActivity) float64 {
	if day.MaxPosts <= 0 {
		return 0
	}
	return float64(day.Posts) / float64(day.MaxPosts) * 100
}
