package app

import (
	"context"
	"errors"

	"github.com/go-co-op/gocron/v2"

	"github.com/passbet/arena/internal/domain/model"
	"github.com/passbet/arena/pkg/logger"
)

// startSweeper schedules the deadline sweep: open challenges past their
// deadline move into assessing, and challenges stuck mid-assessment (for
// example after a restart) get a fresh settlement run queued.
func (s *Service) startSweeper(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.sweepInterval),
		gocron.NewTask(func() {
			s.sweepDeadlines(ctx)
		}),
	)
	if err != nil {
		return err
	}

	sched.Start()
	s.stopSweeper = func() {
		_ = sched.Shutdown()
	}
	return nil
}

// sweepDeadlines queues assessment for every challenge that needs it.
func (s *Service) sweepDeadlines(ctx context.Context) {
	challenges, err := s.store.ListChallenges(ctx)
	if err != nil {
		s.logger.Error(ctx, "deadline sweep failed", logger.Error(err))
		return
	}

	now := s.now()
	for _, c := range challenges {
		switch {
		case c.Status == model.StatusOpen && c.PastDeadline(now),
			c.Status == model.StatusAssessing,
			c.Status == model.StatusClosed:
			if err := s.BeginAssessment(ctx, c.ID); err != nil && !errors.Is(err, ErrBackpressure) {
				s.logger.Warn(ctx, "failed to queue assessment",
					logger.String("challengeID", c.ID),
					logger.Error(err),
				)
			}
		}
	}
}
