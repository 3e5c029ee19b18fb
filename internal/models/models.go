package models

import "time"

// Sentiment is the tone classification of a mention
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Sentiments lists every valid sentiment
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// Valid reports whether s belongs to the closed sentiment set
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// SentimentFilter selects mentions by sentiment; "all" disables the filter
type SentimentFilter string

const (
	FilterAll      SentimentFilter = "all"
	FilterPositive SentimentFilter = "positive"
	FilterNegative SentimentFilter = "negative"
	FilterNeutral  SentimentFilter = "neutral"
)

// SentimentFilters lists filter values in the order the dashboard offers them
var SentimentFilters = []SentimentFilter{FilterAll, FilterPositive, FilterNeutral, FilterNegative}

// Valid reports whether f is a known filter value
func (f SentimentFilter) Valid() bool {
	switch f {
	case FilterAll, FilterPositive, FilterNegative, FilterNeutral:
		return true
	}
	return false
}

// Mention represents a single social-media post referencing the monitored account
type Mention struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	Sentiment  Sentiment `json:"sentiment"`
	Engagement int       `json:"engagement"`
	Timestamp  string    `json:"timestamp"` // "2006-01-02 15:04", display only
	Views      int       `json:"views"`
	URL        string    `json:"url,omitempty"`

	// PublishedAt is set by live sources; seed data leaves it zero.
	PublishedAt time.Time `json:"published_at"`
}

// Criteria holds the transient filter state of one dashboard view
type Criteria struct {
	SearchTerm      string          `json:"search_term"`
	SentimentFilter SentimentFilter `json:"sentiment_filter"`
}

// DefaultCriteria returns the criteria a fresh session starts with
func DefaultCriteria() Criteria {
	return Criteria{SearchTerm: "", SentimentFilter: FilterAll}
}

// DayActivity is one bar of the weekly activity chart
type DayActivity struct {
	Day      string `json:"day"`
	Posts    int    `json:"posts"`
	MaxPosts int    `json:"max_posts"`
}

// Summary holds the aggregate statistics shown above the mention table
type Summary struct {
	TotalMentions  int           `json:"total_mentions"`
	WeeklyGrowth   float64       `json:"weekly_growth"` // percent
	PositiveRate   int           `json:"positive_rate"`
	NegativeRate   int           `json:"negative_rate"`
	NeutralRate    int           `json:"neutral_rate"`
	AvgEngagement  int           `json:"avg_engagement"`
	WeeklyActivity []DayActivity `json:"weekly_activity"`
}

// Report represents a periodic digest of the mention feed
type Report struct {
	GeneratedAt   time.Time              `json:"generated_at"`
	Period        string                 `json:"period"` // "daily" or "weekly"
	TotalMentions int                    `json:"total_mentions"`
	Mentions      []Mention              `json:"mentions"`
	Summary       map[string]interface{} `json:"summary"`
}

// Alert represents an urgent notification
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "critical", "urgent", "info"
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Mention   *Mention  `json:"mention,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
