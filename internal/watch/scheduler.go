package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docd/internal/logfields"
)

// scheduler wraps a gocron scheduler requesting periodic full rebuilds.
type scheduler struct {
	s gocron.Scheduler
}

func newScheduler(every time.Duration, request func()) (*scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			slog.Debug("Scheduled rebuild requested")
			request()
		}),
		gocron.WithName("periodic-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic rebuild job: %w", err)
	}
	return &scheduler{s: s}, nil
}

func (s *scheduler) Start() {
	slog.Info("Starting scheduler")
	s.s.Start()
}

func (s *scheduler) Stop() {
	if err := s.s.Shutdown(); err != nil {
		slog.Warn("Scheduler shutdown failed", logfields.Error(err))
	}
}
