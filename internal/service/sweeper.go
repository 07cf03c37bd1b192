package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vocabduel/internal/engine"
	"vocabduel/internal/models"
)

// SweepResult counts what one sweep changed
type SweepResult struct {
	ExpiredChallenges int
	DroppedHints      int
	Refreshed         int
	Failed            int
}

// Sweeper applies time-driven changes nobody is around to trigger: abandoned challenges,
// unanswered hint requests and due phase transitions.
type Sweeper struct {
	duels        *DuelService
	challengeTTL time.Duration
	hintTTL      time.Duration
	logger       *slog.Logger
}

// NewSweeper creates a sweeper that writes through duels
func NewSweeper(duels *DuelService, challengeTTL, hintTTL time.Duration) *Sweeper {
	if challengeTTL <= 0 {
		challengeTTL = engine.DefaultChallengeTTL
	}
	if hintTTL <= 0 {
		hintTTL = engine.DefaultHintRequestTTL
	}
	return &Sweeper{
		duels:        duels,
		challengeTTL: challengeTTL,
		hintTTL:      hintTTL,
		logger:       duels.logger,
	}
}

// Run sweeps every interval until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	s.logger.Info("Sweeper started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return nil
		case <-ticker.C:
			res, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Error("Sweep failed", "error", err)
				continue
			}
			if res != (SweepResult{}) {
				s.logger.Info("Sweep completed",
					"expired_challenges", res.ExpiredChallenges,
					"dropped_hints", res.DroppedHints,
					"refreshed", res.Refreshed,
					"failed", res.Failed)
			}
		}
	}
}

// SweepOnce runs a single pass. Errors on individual duels are logged and counted;
// only a failure to list candidates is returned.
func (s *Sweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.duels.now()

	pending, err := s.duels.duels.ListIDsByStatus(ctx, now.Add(-s.challengeTTL), models.StatusPending)
	if err != nil {
		return res, fmt.Errorf("failed to list pending duels: %w", err)
	}
	for _, id := range pending {
		_, changed, err := s.duels.mutate(ctx, id, func(d *models.Duel, _ *models.Theme, now time.Time) (*models.Duel, error) {
			next, _ := engine.ExpireChallenge(d, s.challengeTTL, now)
			return next, nil
		})
		if s.record(&res, id, "expire challenge", err) && changed {
			res.ExpiredChallenges++
		}
	}

	active, err := s.duels.duels.ListIDsByStatus(ctx, now, models.StatusAccepted, models.StatusChallenging)
	if err != nil {
		return res, fmt.Errorf("failed to list active duels: %w", err)
	}
	for _, id := range active {
		var dropped bool
		_, changed, err := s.duels.mutate(ctx, id, func(d *models.Duel, _ *models.Theme, now time.Time) (*models.Duel, error) {
			next, _ := engine.Resolve(d, now)
			next, dropped = engine.ExpireStaleHints(next, s.hintTTL, now)
			return next, nil
		})
		if !s.record(&res, id, "refresh duel", err) || !changed {
			continue
		}
		if dropped {
			res.DroppedHints++
		} else {
			res.Refreshed++
		}
	}

	return res, nil
}

func (s *Sweeper) record(res *SweepResult, duelID, action string, err error) bool {
	if err == nil {
		return true
	}
	res.Failed++
	s.logger.Warn("Sweep skipped duel", "duel_id", duelID, "action", action, "error", err)
	return false
}
