package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/regula/internal/common"
	"github.com/ternarybob/regula/internal/services/collections"
)

// Service refreshes the collections snapshot on a cron schedule so gate
// refusals and planner inputs track store changes without a list call on
// every request.
type Service struct {
	logger      arbor.ILogger
	cron        *cron.Cron
	collections *collections.Service
	schedule    string

	mu      sync.Mutex
	running bool
}

// NewService creates the snapshot refresh scheduler
func NewService(cfg *common.Config, collectionsService *collections.Service, logger arbor.ILogger) *Service {
	return &Service{
		logger:      logger,
		cron:        cron.New(),
		collections: collectionsService,
		schedule:    cfg.Scheduler.Schedule,
	}
}

// Start registers the refresh job and begins the cron loop
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	schedule := s.schedule
	if schedule == "" {
		schedule = "*/5 * * * *"
	}

	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return fmt.Errorf("failed to register snapshot refresh job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().Str("schedule", schedule).Msg("Snapshot refresh scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running refresh to finish
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info().Msg("Snapshot refresh scheduler stopped")
}

func (s *Service) refresh() {
	if _, err := s.collections.RefreshSnapshot(context.Background()); err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled snapshot refresh failed")
	}
}
