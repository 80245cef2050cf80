package reservation

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically finalizes accepted reservations whose service
// window has elapsed. It shares the transition executor with human
// actors, so a concurrent cancel simply wins the compare-and-swap and
// the sweeper moves on.
type Sweeper struct {
	service      Service
	repo         Repository
	interval     time.Duration
	storeTimeout time.Duration
	log          *zap.Logger
	now          func() time.Time
}

func NewSweeper(service Service, repo Repository, interval, storeTimeout time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		service:      service,
		repo:         repo,
		interval:     interval,
		storeTimeout: storeTimeout,
		log:          log,
		now:          time.Now,
	}
}

// Run ticks until ctx is cancelled. Each tick is independent; a failed
// one is retried on the next schedule rather than crashing the loop.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("auto-finalization sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("auto-finalization sweeper stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one synchronous sweep pass. Exported so tests can drive
// the sweeper without waiting on the wall clock.
func (s *Sweeper) Tick(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	candidates, err := s.repo.ListAccepted(scanCtx)
	cancel()
	if err != nil {
		s.log.Error("sweep scan failed, retrying next tick", zap.Error(err))
		return
	}

	now := s.now()
	for _, c := range candidates {
		if c.Duration == nil {
			s.log.Warn("reservation references a missing offering, skipped",
				zap.String("reservation_id", c.ID))
			continue
		}

		end := c.StartTime.Add(time.Duration(*c.Duration) * time.Minute)
		if end.After(now) {
			continue
		}

		opCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		_, err := s.service.ApplyTransition(opCtx, c.ID, Actor{Role: RoleSystem}, ActionAutoFinalize, nil)
		cancel()
		if err != nil {
			// Usually a lost race against a concurrent cancel; the next
			// candidate is unaffected either way.
			s.log.Warn("auto-finalize failed",
				zap.String("reservation_id", c.ID),
				zap.Error(err))
			continue
		}

		s.log.Info("reservation auto-finalized",
			zap.String("reservation_id", c.ID),
			zap.Time("ended_at", end))
	}
}
