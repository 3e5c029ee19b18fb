package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/mentionwatch/dashboard/internal/feed"
	"github.com/mentionwatch/dashboard/internal/models"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

// FeedService is what the HTTP layer needs from the monitoring service
type FeedService interface {
	Query(criteria models.Criteria) []models.Mention
	Summary() models.Summary
	FeedSize() int
	GetMetrics() string
	Refresh(ctx context.Context) error
}

// Server serves the dashboard page and its JSON API
type Server struct {
	config     *config.Config
	feed       FeedService
	router     *mux.Router
	metrics    *Metrics
	templates  *template.Template
	httpServer *http.Server

	// refreshTimeout bounds background refreshes started over HTTP
	refreshTimeout time.Duration
}

// NewServer wires routes, middleware and templates
func NewServer(cfg *config.Config, feedService FeedService) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"number": formatNumber,
		"growth": formatGrowth,
		"label":  feed.SentimentLabel,
		"color":  feed.SentimentColor,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		config:         cfg,
		feed:           feedService,
		router:         mux.NewRouter(),
		metrics:        NewMetrics(feedService.FeedSize),
		templates:      tmpl,
		refreshTimeout: 5 * time.Minute,
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() {
	s.router.Use(s.requestIDMiddleware, s.observeMiddleware)

	s.router.HandleFunc("/", s.handleDashboard).Methods("GET")
	s.router.HandleFunc("/api/mentions", s.handleMentions).Methods("GET")
	s.router.HandleFunc("/api/summary", s.handleSummary).Methods("GET")
	s.router.HandleFunc("/refresh", s.handleRefresh).Methods("POST")
	s.router.HandleFunc("/export", s.handleExport).Methods("POST")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	s.router.Handle("/prometheus", s.metrics.Handler()).Methods("GET")
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops; http.ErrServerClosed is not an error
func (s *Server) ListenAndServe() error {
	logrus.Infof("HTTP server starting on port %s", s.config.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
