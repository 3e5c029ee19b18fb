package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/mentionwatch/dashboard/internal/feed"
	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/mentionwatch/dashboard/internal/monitoring"
	"github.com/mentionwatch/dashboard/internal/stats"
	"github.com/sirupsen/logrus"
)

type filterOption struct {
	Value    models.SentimentFilter
	Label    string
	Selected bool
}

type sentimentBar struct {
	Sentiment models.Sentiment
	Label     string
	Rate      int
	Count     int
	Style     template.CSS
}

type activityBar struct {
	Day   string
	Posts int
	Style template.CSS
}

type dashboardPage struct {
	Title        string
	ProfileURL   string
	ProfileLabel string
	Criteria     models.Criteria
	Options      []filterOption
	Summary      models.Summary
	Sentiments   []sentimentBar
	Activity     []activityBar
	Mentions     []models.Mention
}

// criteriaFromRequest reads q and sentiment; ok is false for an unknown sentiment
func criteriaFromRequest(r *http.Request) (models.Criteria, bool) {
	query := r.URL.Query()
	filter, ok := feed.ParseSentimentFilter(query.Get("sentiment"))
	return models.Criteria{
		SearchTerm:      query.Get("q"),
		SentimentFilter: filter,
	}, ok
}

func (s *Server) buildPage(criteria models.Criteria) dashboardPage {
	summary := s.feed.Summary()

	page := dashboardPage{
		Title:        s.config.DashboardTitle,
		ProfileURL:   s.config.ProfileURL,
		ProfileLabel: profileLabel(s.config.ProfileURL),
		Criteria:     criteria,
		Summary:      summary,
		Mentions:     s.feed.Query(criteria),
	}

	for _, filter := range models.SentimentFilters {
		page.Options = append(page.Options, filterOption{
			Value:    filter,
			Label:    feed.FilterLabel(filter),
			Selected: filter == criteria.SentimentFilter,
		})
	}

	rates := map[models.Sentiment]int{
		models.SentimentPositive: summary.PositiveRate,
		models.SentimentNeutral:  summary.NeutralRate,
		models.SentimentNegative: summary.NegativeRate,
	}
	for _, sentiment := range []models.Sentiment{models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative} {
		page.Sentiments = append(page.Sentiments, sentimentBar{
			Sentiment: sentiment,
			Label:     feed.FilterLabel(models.SentimentFilter(sentiment)),
			Rate:      rates[sentiment],
			Count:     stats.CountForRate(summary.TotalMentions, rates[sentiment]),
			Style:     template.CSS(fmt.Sprintf("width: %d%%", rates[sentiment])),
		})
	}

	for _, day := range summary.WeeklyActivity {
		page.Activity = append(page.Activity, activityBar{
			Day:   day.Day,
			Posts: day.Posts,
			Style: template.CSS(fmt.Sprintf("width: %.2f%%", stats.BarWidth(day))),
		})
	}

	return page
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// An unknown sentiment on the page shows everything.
	criteria, _ := criteriaFromRequest(r)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", s.buildPage(criteria)); err != nil {
		logrus.WithField("request_id", RequestID(r.Context())).Errorf("Failed to render dashboard: %v", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleMentions(w http.ResponseWriter, r *http.Request) {
	criteria, ok := criteriaFromRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sentiment filter %q", r.URL.Query().Get("sentiment")))
		return
	}

	mentions := s.feed.Query(criteria)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"criteria": criteria,
		"count":    len(mentions),
		"mentions": mentions,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary := s.feed.Summary()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"sentiment_counts": map[string]int{
			string(models.SentimentPositive): stats.CountForRate(summary.TotalMentions, summary.PositiveRate),
			string(models.SentimentNegative): stats.CountForRate(summary.TotalMentions, summary.NegativeRate),
			string(models.SentimentNeutral):  stats.CountForRate(summary.TotalMentions, summary.NeutralRate),
		},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := RequestID(r.Context())

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
		defer cancel()

		err := s.feed.Refresh(ctx)
		switch {
		case errors.Is(err, monitoring.ErrRefreshInProgress):
			logrus.WithField("request_id", requestID).Info("Manual refresh skipped, another refresh is running")
		case err != nil:
			logrus.WithField("request_id", requestID).Errorf("Manual refresh failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Refresh triggered successfully"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, "export is not implemented")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"mentions":  s.feed.FeedSize(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.feed.GetMetrics()))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
