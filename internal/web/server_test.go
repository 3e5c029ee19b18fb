package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/mentionwatch/dashboard/internal/feed"
	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/mentionwatch/dashboard/internal/monitoring"
	"github.com/mentionwatch/dashboard/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	mentions  []models.Mention
	refreshed chan struct{}
}

func (f *fakeFeed) Query(criteria models.Criteria) []models.Mention {
	return feed.Filter(f.mentions, criteria)
}

func (f *fakeFeed) Summary() models.Summary {
	return stats.DefaultSummary()
}

func (f *fakeFeed) FeedSize() int {
	return len(f.mentions)
}

func (f *fakeFeed) GetMetrics() string {
	return `{"refresh_count": 1}`
}

func (f *fakeFeed) Refresh(ctx context.Context) error {
	f.refreshed <- struct{}{}
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeFeed) {
	t.Helper()

	fake := &fakeFeed{mentions: feed.SampleMentions(), refreshed: make(chan struct{}, 1)}
	cfg := &config.Config{
		Port:           "0",
		DashboardTitle: "Мониторинг упоминаний",
		ProfileURL:     "https://vk.com/kprfkomi",
	}

	server, err := NewServer(cfg, fake)
	require.NoError(t, err)
	return server, fake
}

func get(t *testing.T, server *Server, path string, params url.Values) *httptest.ResponseRecorder {
	t.Helper()

	target := path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDashboard_DefaultView(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Equal(t, 5, strings.Count(body, `class="mention-row"`))
	for _, mention := range feed.SampleMentions() {
		assert.Contains(t, body, mention.Author)
	}

	assert.Contains(t, body, "Мониторинг упоминаний")
	assert.Contains(t, body, "vk.com/kprfkomi</a>")
	assert.Contains(t, body, "Активный источник")
	assert.Contains(t, body, "Экспорт")
	assert.Contains(t, body, "↑ 12.5%")
	assert.Contains(t, body, formatNumber(12847))
	assert.Contains(t, body, formatNumber(4238))
	assert.Contains(t, body, "Позитивные (62%)")
	assert.Contains(t, body, "Нейтральные (20%)")
	assert.Contains(t, body, "Негативные (18%)")
	assert.Contains(t, body, formatNumber(7965))
	assert.Contains(t, body, "width: 100.00%")
	assert.Contains(t, body, "78 публикаций")
	assert.Contains(t, body, `<option value="all" selected>Все</option>`)
}

func TestDashboard_Filtering(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name    string
		params  url.Values
		rows    int
		present []string
		absent  []string
	}{
		{
			name:   "no matches",
			params: url.Values{"q": {"xyz123"}},
			rows:   0,
			absent: []string{"Иван Соколов", "Мария Петрова"},
		},
		{
			name:    "negative only",
			params:  url.Values{"sentiment": {"negative"}},
			rows:    1,
			present: []string{"Мария Петрова", `<option value="negative" selected>Негативные</option>`},
			absent:  []string{"Иван Соколов"},
		},
		{
			name:    "case-insensitive author search",
			params:  url.Values{"q": {"ИВАН"}},
			rows:    1,
			present: []string{"Иван Соколов"},
		},
		{
			name:   "search and sentiment combined",
			params: url.Values{"q": {"Иван"}, "sentiment": {"negative"}},
			rows:   0,
		},
		{
			name:    "unknown sentiment shows everything",
			params:  url.Values{"sentiment": {"angry"}},
			rows:    5,
			present: []string{`<option value="all" selected>Все</option>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, server, "/", tt.params)
			require.Equal(t, http.StatusOK, rec.Code)

			body := rec.Body.String()
			assert.Equal(t, tt.rows, strings.Count(body, `class="mention-row"`))
			for _, s := range tt.present {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestAPIMentions(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server, "/api/mentions", url.Values{"sentiment": {"negative"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Count    int              `json:"count"`
		Mentions []models.Mention `json:"mentions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Mentions, 1)
	assert.Equal(t, "Мария Петрова", response.Mentions[0].Author)

	rec = get(t, server, "/api/mentions", url.Values{"q": {"xyz123"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 0, response.Count)
	assert.NotNil(t, response.Mentions)

	rec = get(t, server, "/api/mentions", url.Values{"sentiment": {"angry"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "angry")
}

func TestAPISummary(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Summary         models.Summary `json:"summary"`
		SentimentCounts map[string]int `json:"sentiment_counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 12847, response.Summary.TotalMentions)
	assert.Len(t, response.Summary.WeeklyActivity, 7)
	assert.Equal(t, 7965, response.SentimentCounts["positive"])
	assert.Equal(t, 2312, response.SentimentCounts["negative"])
	assert.Equal(t, 2569, response.SentimentCounts["neutral"])
}

func TestRefreshTriggersBackgroundRefresh(t *testing.T) {
	server, fake := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case <-fake.refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh was not triggered")
	}
}

func TestExportNotImplemented(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"mentions":5`)

	rec = get(t, server, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"refresh_count": 1}`, rec.Body.String())

	rec = get(t, server, "/prometheus", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "dashboard_feed_mentions 5")
	assert.Contains(t, body, `dashboard_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestRequestID(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(t, server, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}

func TestServerWithMonitoringService(t *testing.T) {
	cfg := &config.Config{SeedMentions: true, StatsMode: "static", ReportSchedule: "weekly"}
	service := monitoring.NewService(cfg, nil, nil)
	require.NoError(t, service.Refresh(context.Background()))

	server, err := NewServer(cfg, service)
	require.NoError(t, err)

	rec := get(t, server, "/", url.Values{"sentiment": {"negative"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `class="mention-row"`))
	assert.Contains(t, rec.Body.String(), "Мария Петрова")
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.NotEqual(t, "12847", formatNumber(12847))
	assert.True(t, strings.HasPrefix(formatNumber(12847), "12"))
	assert.True(t, strings.HasSuffix(formatNumber(12847), "847"))

	assert.Equal(t, "↑ 12.5%", formatGrowth(12.5))
	assert.Equal(t, "↑ 0.0%", formatGrowth(0))
	assert.Equal(t, "↓ 3.4%", formatGrowth(-3.4))

	assert.Equal(t, "vk.com/kprfkomi", profileLabel("https://vk.com/kprfkomi"))
	assert.Equal(t, "example.org/page", profileLabel("http://example.org/page/"))
}
