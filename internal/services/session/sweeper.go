package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = 30 * time.Second

// Sweeper periodically deletes expired sessions on a cron schedule
type Sweeper struct {
	cron    *cron.Cron
	manager *Manager
	logger  *slog.Logger
}

// NewSweeper schedules Manager.Sweep using a standard cron spec or descriptor
// such as "@every 10m"
func NewSweeper(manager *Manager, spec string, logger *slog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(),
		manager: manager,
		logger:  logger,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running the schedule in the background
func (s *Sweeper) Start() {
	s.logger.Info("session sweeper started")
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("session sweeper stopped")
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	removed, err := s.manager.Sweep(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", slog.String("error", err.Error()))
		return
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", slog.Int("count", removed))
	}
}
