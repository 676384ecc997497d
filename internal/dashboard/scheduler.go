package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler refreshes a view on a fixed interval.
type Scheduler struct {
	cron   *cron.Cron
	view   *View
	logger zerolog.Logger
	// timeout bounds each refresh.
	timeout time.Duration

	// OnRefresh runs after every applied scheduled refresh.
	OnRefresh func()
}

func NewScheduler(view *View, interval time.Duration, logger zerolog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		interval = RefreshInterval
	}
	s := &Scheduler{cron: cron.New(), view: view, logger: logger, timeout: time.Minute}
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.run)
	if err != nil {
		return nil, fmt.Errorf("schedule dashboard refresh: %w", err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.logger.Debug().Msg("scheduled dashboard refresh")
	err := s.view.Refresh(ctx)
	if errors.Is(err, ErrStale) {
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled refresh failed")
		return
	}
	if s.OnRefresh != nil {
		s.OnRefresh()
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
