package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/mentionwatch/dashboard/internal/storage"
	"github.com/sirupsen/logrus"
)

// SnapshotPrefix is the name prefix of stored feed snapshots
const SnapshotPrefix = "mentions-"

// SnapshotSource loads the most recent stored feed snapshot
type SnapshotSource struct {
	storage storage.StorageInterface
	enabled bool
	now     func() time.Time
}

// NewSnapshotSource creates a source backed by snapshot storage
func NewSnapshotSource(store storage.StorageInterface, enabled bool) *SnapshotSource {
	return &SnapshotSource{storage: store, enabled: enabled, now: time.Now}
}

func (s *SnapshotSource) GetName() string {
	return "snapshot"
}

func (s *SnapshotSource) IsEnabled() bool {
	return s.enabled && s.storage != nil
}

// FetchMentions returns the records of the latest snapshot published within
// the window. Records without a publication time are always returned; a
// non-positive window disables the cutoff.
func (s *SnapshotSource) FetchMentions(ctx context.Context, _ []string, since time.Duration) ([]models.Mention, error) {
	names, err := s.storage.List(SnapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(names) == 0 {
		logrus.Info("No stored snapshot found")
		return nil, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Snapshot names embed a sortable timestamp.
	latest := names[len(names)-1]
	data, err := s.storage.Retrieve(latest)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve snapshot %s: %w", latest, err)
	}

	mentions, skipped, err := DecodeMentions(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", latest, err)
	}
	if skipped > 0 {
		logrus.Warnf("Skipped %d malformed records in snapshot %s", skipped, latest)
	}

	if since > 0 {
		var expired int
		mentions, expired = withinWindow(mentions, s.now().Add(-since))
		if expired > 0 {
			logrus.Debugf("Dropped %d snapshot mentions older than %v", expired, since)
		}
	}

	logrus.Infof("Loaded %d mentions from snapshot %s", len(mentions), latest)
	return mentions, nil
}

func withinWindow(mentions []models.Mention, cutoff time.Time) ([]models.Mention, int) {
	kept := mentions[:0]
	for _, mention := range mentions {
		if !mention.PublishedAt.IsZero() && mention.PublishedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, mention)
	}
	return kept, len(mentions) - len(kept)
}

// DecodeMentions parses a JSON array of mentions record by record. Records
// that fail to decode are skipped and counted; only a broken array is an error.
func DecodeMentions(data []byte) ([]models.Mention, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}

	mentions := make([]models.Mention, 0, len(raw))
	skipped := 0
	for _, record := range raw {
		var mention models.Mention
		if err := json.Unmarshal(record, &mention); err != nil {
			logrus.Debugf("Skipping malformed mention record: %v", err)
			skipped++
			continue
		}
		mentions = append(mentions, mention)
	}

	return mentions, skipped, nil
}
