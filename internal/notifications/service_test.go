package notifications

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/mentionwatch/dashboard/internal/feed"
	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.Report {
	mentions := feed.SampleMentions()
	return &models.Report{
		GeneratedAt:   time.Date(2025, 11, 17, 9, 0, 0, 0, time.UTC),
		Period:        "weekly",
		TotalMentions: len(mentions),
		Mentions:      mentions,
		Summary: map[string]interface{}{
			"sentiment":   map[string]int{"positive": 2, "negative": 1, "neutral": 2},
			"top_authors": []string{"Анна Васильева (1)", "Иван Соколов (1)"},
		},
	}
}

func TestSendReport_PostsToTeams(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})

	require.NoError(t, service.SendReport(sampleReport()))

	assert.Equal(t, "MessageCard", received.Type)
	assert.Equal(t, "Упоминания: еженедельный отчёт", received.Title)
	require.Len(t, received.Sections, 2)
	assert.Contains(t, received.Sections[0].Facts, TeamsFact{Name: "Негативные", Value: "1"})
	assert.Contains(t, received.Sections[1].ActivityText, "Мария Петрова")
}

func TestSendReport_TeamsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	service := NewService(&config.Config{TeamsWebhookURL: server.URL})

	err := service.SendReport(sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teams")
}

func TestSendReport_NoChannels(t *testing.T) {
	service := NewService(&config.Config{})
	assert.NoError(t, service.SendReport(sampleReport()))
}

func TestSendAlert(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer server.Close()

	mention := feed.SampleMentions()[1]
	alert := &models.Alert{
		ID:      "alert_2",
		Type:    "urgent",
		Title:   "Негативное упоминание с высоким охватом",
		Message: "test",
		Mention: &mention,
	}

	require.NoError(t, NewService(&config.Config{TeamsWebhookURL: server.URL}).SendAlert(alert))
	assert.Equal(t, alert.Title, received.Title)
	require.Len(t, received.Sections, 1)
	assert.Equal(t, "Мария Петрова", received.Sections[0].ActivityTitle)

	assert.NoError(t, NewService(&config.Config{}).SendAlert(alert))
}

func TestBuildEmailBodies(t *testing.T) {
	report := sampleReport()

	html, err := buildEmailHTML(report)
	require.NoError(t, err)
	assert.Contains(t, html, "Иван Соколов")
	assert.Contains(t, html, "Негативная")
	assert.Contains(t, html, "17.11.2025 09:00")

	text := buildEmailText(report)
	assert.Contains(t, text, "Всего упоминаний: 5")
	assert.Contains(t, text, "Позитивные: 2")
	assert.Contains(t, text, "Активные авторы: Анна Васильева (1), Иван Соколов (1)")
	assert.Contains(t, text, "2. Мария Петрова (Негативная)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Привет", truncate("Привет", 10))
	assert.Equal(t, "При...", truncate("Привет", 3))
}
