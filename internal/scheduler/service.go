package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/mentionwatch/dashboard/internal/config"
	"github.com/mentionwatch/dashboard/internal/monitoring"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const refreshTimeout = 5 * time.Minute

// Service schedules feed refreshes and digests
type Service struct {
	config            *config.Config
	monitoringService *monitoring.Service
	cron              *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, monitoringService *monitoring.Service) *Service {
	return &Service{
		config:            cfg,
		monitoringService: monitoringService,
		cron:              cron.New(cron.WithSeconds(), cron.WithLocation(location(cfg))),
	}
}

func location(cfg *config.Config) *time.Location {
	if cfg.Location != nil {
		return cfg.Location
	}
	return time.UTC
}

// digestExpression returns the cron spec for the configured digest period
func digestExpression(schedule string) string {
	switch schedule {
	case "daily":
		// Every day at 9 AM
		return "0 0 9 * * *"
	default:
		// Monday at 9 AM
		return "0 0 9 * * MON"
	}
}

// Start registers the jobs and starts the cron runner
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(s.config.RefreshSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		logrus.Info("Starting scheduled feed refresh")
		if err := s.monitoringService.Refresh(ctx); err != nil {
			if errors.Is(err, monitoring.ErrRefreshInProgress) {
				logrus.Info("Skipping scheduled refresh, another one is running")
				return
			}
			logrus.Errorf("Scheduled feed refresh failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	if s.config.NotificationsEnabled() {
		_, err = s.cron.AddFunc(digestExpression(s.config.ReportSchedule), func() {
			logrus.Info("Sending scheduled digest")
			if err := s.monitoringService.SendDigest(); err != nil {
				logrus.Errorf("Scheduled digest failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	logrus.Infof("Scheduler started (refresh %q, %s digest)", s.config.RefreshSchedule, s.config.ReportSchedule)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}

// Entries returns the number of registered jobs
func (s *Service) Entries() int {
	return len(s.cron.Entries())
}
