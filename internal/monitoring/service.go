package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/mentionwatch/dashboard/internal/feed"
	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/mentionwatch/dashboard/internal/notifications"
	"github.com/mentionwatch/dashboard/internal/sources"
	"github.com/mentionwatch/dashboard/internal/stats"
	"github.com/mentionwatch/dashboard/internal/storage"
	"github.com/sirupsen/logrus"
)

// ErrRefreshInProgress is returned when a refresh is requested while another one runs
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Service owns the mention feed: it refreshes it from the sources, serves
// filtered views of it and reports on it.
type Service struct {
	config              *config.Config
	storage             storage.StorageInterface
	notificationService notifications.NotificationInterface
	sources             []sources.Source
	stats               stats.Provider
	now                 func() time.Time

	mentions []models.Mention
	metrics  *Metrics
	mu       sync.RWMutex

	refreshMu sync.Mutex
}

// Metrics holds monitoring metrics
type Metrics struct {
	TotalMentions       int            `json:"total_mentions"`
	LastRefresh         time.Time      `json:"last_refresh"`
	LastRefreshDuration string         `json:"last_refresh_duration"`
	RefreshCount        int            `json:"refresh_count"`
	SourceMetrics       map[string]int `json:"source_metrics"`
	SentimentBreakdown  map[string]int `json:"sentiment_breakdown"`
	SkippedRecords      int            `json:"skipped_records"`
	DuplicateRecords    int            `json:"duplicate_records"`
	ErrorCount          int            `json:"error_count"`
	AlertsSent          int            `json:"alerts_sent"`
	StatsSource         string         `json:"stats_source"`
}

// NewService creates a new monitoring service. storage may be nil, in which
// case snapshots are not persisted.
func NewService(cfg *config.Config, store storage.StorageInterface, notificationService notifications.NotificationInterface) *Service {
	service := &Service{
		config:              cfg,
		storage:             store,
		notificationService: notificationService,
		now:                 time.Now,
		mentions:            []models.Mention{},
		metrics: &Metrics{
			SourceMetrics:      make(map[string]int),
			SentimentBreakdown: make(map[string]int),
		},
	}

	if cfg.StatsMode == "derived" {
		service.stats = stats.NewDerivedProvider()
	} else {
		service.stats = stats.NewStaticProvider()
	}
	service.metrics.StatsSource = service.stats.Name()

	service.initializeSources()

	return service
}

func (s *Service) initializeSources() {
	// The snapshot goes last so records fetched live win over stored copies.
	s.sources = []sources.Source{
		sources.NewStaticSource(s.config.SeedMentions),
		sources.NewVKSource(s.config.VKAccessToken, s.config.VKAPIVersion, s.config.VKRateLimit, s.config.Location),
		sources.NewSnapshotSource(s.storage, s.config.LoadSnapshot),
	}
}

// Sources returns the configured sources
func (s *Service) Sources() []sources.Source {
	return s.sources
}

// searchWindow mirrors the digest period so a digest covers what was fetched
func (s *Service) searchWindow() time.Duration {
	if s.config.ReportSchedule == "daily" {
		return 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

type sourceResult struct {
	name     string
	mentions []models.Mention
	err      error
}

// Refresh pulls mentions from every enabled source and publishes them as the
// new feed snapshot. If every enabled source fails the previous snapshot is kept.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.refreshMu.TryLock() {
		return ErrRefreshInProgress
	}
	defer s.refreshMu.Unlock()

	start := s.now()
	window := s.searchWindow()
	logrus.Infof("Starting feed refresh (window: %v)", window)

	var enabled []sources.Source
	for _, source := range s.sources {
		if source.IsEnabled() {
			enabled = append(enabled, source)
		} else {
			logrus.Debugf("Source %s is disabled", source.GetName())
		}
	}

	// Results are indexed by source so the feed keeps source order.
	results := make([]sourceResult, len(enabled))
	var wg sync.WaitGroup
	for i, source := range enabled {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()

			mentions, err := src.FetchMentions(ctx, s.config.Keywords, window)
			results[i] = sourceResult{name: src.GetName(), mentions: mentions, err: err}
		}(i, source)
	}
	wg.Wait()

	var collected []models.Mention
	sourceCounts := make(map[string]int)
	errorCount := 0
	for _, result := range results {
		if result.err != nil {
			logrus.Errorf("Error fetching from %s: %v", result.name, result.err)
			errorCount++
			continue
		}
		logrus.Infof("Found %d mentions from %s", len(result.mentions), result.name)
		sourceCounts[result.name] += len(result.mentions)
		collected = append(collected, result.mentions...)
	}

	if len(enabled) > 0 && errorCount == len(enabled) {
		s.recordFailure(errorCount)
		return fmt.Errorf("all %d sources failed, keeping previous feed", errorCount)
	}

	mentions, skipped, duplicates := normalizeMentions(collected)
	if skipped > 0 {
		logrus.Warnf("Skipped %d malformed mentions", skipped)
	}
	if duplicates > 0 {
		logrus.Debugf("Merged %d mentions reported by more than one source", duplicates)
	}

	previous := s.publish(mentions)

	if err := s.storeSnapshot(mentions); err != nil {
		logrus.Errorf("Failed to store feed snapshot: %v", err)
		errorCount++
	} else {
		s.pruneSnapshots()
	}

	alerts := 0
	if previous != nil {
		alerts = s.raiseAlerts(newMentions(previous, mentions))
	}

	s.updateMetrics(mentions, refreshOutcome{
		sourceCounts: sourceCounts,
		duration:     s.now().Sub(start),
		skipped:      skipped,
		duplicates:   duplicates,
		errors:       errorCount,
		alerts:       alerts,
	})
	logrus.Infof("Feed refresh completed in %v with %d mentions", s.now().Sub(start), len(mentions))
	return nil
}

// publish swaps in a new snapshot and returns the one it replaced, or nil on
// the first refresh.
func (s *Service) publish(mentions []models.Mention) []models.Mention {
	s.mu.Lock()
	defer s.mu.Unlock()

	var previous []models.Mention
	if s.metrics.RefreshCount > 0 {
		previous = s.mentions
	}
	s.mentions = mentions
	return previous
}

// normalizeMentions drops records that violate the mention invariants and
// classifies records that arrive without a sentiment. A repeated id keeps
// its first record; repeats are counted apart from malformed records.
func normalizeMentions(mentions []models.Mention) (valid []models.Mention, skipped, duplicates int) {
	valid = make([]models.Mention, 0, len(mentions))
	seen := make(map[string]bool, len(mentions))

	for _, mention := range mentions {
		mention.ID = strings.TrimSpace(mention.ID)

		switch {
		case mention.ID == "":
			logrus.Debug("Skipping mention without id")
		case seen[mention.ID]:
			duplicates++
			continue
		case strings.TrimSpace(mention.Content) == "":
			logrus.Debugf("Skipping mention %s without content", mention.ID)
		case mention.Engagement < 0 || mention.Views < 0:
			logrus.Debugf("Skipping mention %s with negative counters", mention.ID)
		case mention.Sentiment != "" && !mention.Sentiment.Valid():
			logrus.Debugf("Skipping mention %s with unknown sentiment %q", mention.ID, mention.Sentiment)
		default:
			if mention.Sentiment == "" {
				mention.Sentiment = classifySentiment(mention.Content)
			}
			seen[mention.ID] = true
			valid = append(valid, mention)
			continue
		}
		skipped++
	}

	return valid, skipped, duplicates
}

func newMentions(previous, current []models.Mention) []models.Mention {
	known := make(map[string]bool, len(previous))
	for _, mention := range previous {
		known[mention.ID] = true
	}

	var fresh []models.Mention
	for _, mention := range current {
		if !known[mention.ID] {
			fresh = append(fresh, mention)
		}
	}
	return fresh
}

// raiseAlerts notifies about new negative mentions with high engagement
func (s *Service) raiseAlerts(mentions []models.Mention) int {
	if s.notificationService == nil {
		return 0
	}

	sent := 0
	for i := range mentions {
		mention := mentions[i]
		if mention.Sentiment != models.SentimentNegative || mention.Engagement < s.config.AlertEngagementThreshold {
			continue
		}

		alert := &models.Alert{
			ID:        fmt.Sprintf("alert_%s", mention.ID),
			Type:      "urgent",
			Title:     "Негативное упоминание с высоким охватом",
			Message:   fmt.Sprintf("%s: охват %d, просмотры %d", mention.Author, mention.Engagement, mention.Views),
			Mention:   &mention,
			CreatedAt: s.now(),
		}

		if err := s.notificationService.SendAlert(alert); err != nil {
			logrus.Errorf("Failed to send alert for mention %s: %v", mention.ID, err)
			continue
		}
		sent++
	}
	return sent
}

func (s *Service) storeSnapshot(mentions []models.Mention) error {
	if s.storage == nil || len(mentions) == 0 {
		return nil
	}

	data, err := json.Marshal(mentions)
	if err != nil {
		return fmt.Errorf("failed to marshal mentions: %w", err)
	}

	filename := fmt.Sprintf("%s%s.json", sources.SnapshotPrefix, s.now().UTC().Format("2006-01-02-15-04-05"))
	return s.storage.Store(filename, data)
}

// pruneSnapshots deletes the oldest snapshots beyond the retention limit
func (s *Service) pruneSnapshots() {
	if s.storage == nil || s.config.SnapshotRetention <= 0 {
		return
	}

	names, err := s.storage.List(sources.SnapshotPrefix)
	if err != nil {
		logrus.Errorf("Failed to list feed snapshots: %v", err)
		return
	}
	if len(names) <= s.config.SnapshotRetention {
		return
	}

	sort.Strings(names)
	expired := names[:len(names)-s.config.SnapshotRetention]
	for _, name := range expired {
		if err := s.storage.Delete(name); err != nil {
			logrus.Errorf("Failed to delete snapshot %s: %v", name, err)
		}
	}
	logrus.Infof("Pruned %d feed snapshots, keeping %d", len(expired), s.config.SnapshotRetention)
}

func (s *Service) recordFailure(errorCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ErrorCount = errorCount
	s.metrics.LastRefresh = s.now()
}

type refreshOutcome struct {
	sourceCounts map[string]int
	duration     time.Duration
	skipped      int
	duplicates   int
	errors       int
	alerts       int
}

func (s *Service) updateMetrics(mentions []models.Mention, outcome refreshOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalMentions = len(mentions)
	s.metrics.LastRefresh = s.now()
	s.metrics.LastRefreshDuration = outcome.duration.String()
	s.metrics.RefreshCount++
	s.metrics.SkippedRecords = outcome.skipped
	s.metrics.DuplicateRecords = outcome.duplicates
	s.metrics.ErrorCount = outcome.errors
	s.metrics.AlertsSent += outcome.alerts
	s.metrics.SourceMetrics = outcome.sourceCounts

	s.metrics.SentimentBreakdown = make(map[string]int)
	for _, mention := range mentions {
		s.metrics.SentimentBreakdown[string(mention.Sentiment)]++
	}
}

// Mentions returns a copy of the current feed snapshot
func (s *Service) Mentions() []models.Mention {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Mention(nil), s.mentions...)
}

// Query returns the current feed filtered by the criteria
func (s *Service) Query(criteria models.Criteria) []models.Mention {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return feed.Filter(s.mentions, criteria)
}

// Summary returns the aggregate statistics for the dashboard
func (s *Service) Summary() models.Summary {
	return s.stats.Summary(s.Mentions())
}

// FeedSize returns the number of mentions in the current snapshot
func (s *Service) FeedSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.mentions)
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}

// SendDigest builds a report of the current feed and sends it
func (s *Service) SendDigest() error {
	if !s.config.NotificationsEnabled() {
		logrus.Info("No notification channel configured, skipping digest")
		return nil
	}

	report := s.GenerateReport(s.Mentions())
	if err := s.notificationService.SendReport(report); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	return nil
}

// GenerateReport summarises the given mentions into a digest report
func (s *Service) GenerateReport(mentions []models.Mention) *models.Report {
	report := &models.Report{
		GeneratedAt:   s.now(),
		Period:        s.config.ReportSchedule,
		TotalMentions: len(mentions),
		Mentions:      mentions,
		Summary:       make(map[string]interface{}),
	}

	sentimentCount := make(map[string]int)
	platformCount := make(map[string]int)
	engagement := 0
	for _, mention := range mentions {
		sentimentCount[string(mention.Sentiment)]++
		platformCount[mention.Platform]++
		engagement += mention.Engagement
	}

	report.Summary["sentiment"] = sentimentCount
	report.Summary["platforms"] = platformCount
	report.Summary["total_engagement"] = engagement
	report.Summary["top_authors"] = getTopAuthors(mentions, 5)

	return report
}

// getTopAuthors returns up to limit authors ordered by mention count, then name
func getTopAuthors(mentions []models.Mention, limit int) []string {
	counts := make(map[string]int)
	for _, mention := range mentions {
		counts[mention.Author]++
	}

	authors := make([]string, 0, len(counts))
	for author := range counts {
		authors = append(authors, author)
	}
	sort.Slice(authors, func(i, j int) bool {
		if counts[authors[i]] != counts[authors[j]] {
			return counts[authors[i]] > counts[authors[j]]
		}
		return authors[i] < authors[j]
	})

	if len(authors) > limit {
		authors = authors[:limit]
	}

	top := make([]string, 0, len(authors))
	for _, author := range authors {
		top = append(top, fmt.Sprintf("%s (%d)", author, counts[author]))
	}
	return top
}
