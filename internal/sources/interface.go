package sources

import (
	"context"
	"time"

	"github.com/mentionwatch/dashboard/internal/models"
)

// Source interface defines the contract for all mention feeds
type Source interface {
	GetName() string
	FetchMentions(ctx context.Context, keywords []string, since time.Duration) ([]models.Mention, error)
	IsEnabled() bool
}
