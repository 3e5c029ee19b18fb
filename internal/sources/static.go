package sources

import (
	"context"
	"time"

	"github.com/mentionwatch/dashboard/internal/feed"
	"github.com/mentionwatch/dashboard/internal/models"
)

// StaticSource serves the built-in sample mentions
type StaticSource struct {
	enabled bool
}

// NewStaticSource creates the seed source
func NewStaticSource(enabled bool) *StaticSource {
	return &StaticSource{enabled: enabled}
}

func (s *StaticSource) GetName() string {
	return "seed"
}

func (s *StaticSource) IsEnabled() bool {
	return s.enabled
}

// FetchMentions ignores keywords and window: seed records have no publication time.
func (s *StaticSource) FetchMentions(_ context.Context, _ []string, _ time.Duration) ([]models.Mention, error) {
	return feed.SampleMentions(), nil
}
