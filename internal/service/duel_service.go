package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"vocabduel/internal/engine"
	"vocabduel/internal/models"
	"vocabduel/internal/repository"
)

// DefaultWriteRetries bounds the read-apply-write loop when writers collide
const DefaultWriteRetries = 5

// DuelStore persists duel documents with optimistic versioning
type DuelStore interface {
	Create(ctx context.Context, d *models.Duel) error
	GetByID(ctx context.Context, id string) (*models.Duel, error)
	Update(ctx context.Context, d *models.Duel) error
	ListIDsByStatus(ctx context.Context, cutoff time.Time, statuses ...models.Status) ([]string, error)
	ListForPlayer(ctx context.Context, playerID string) ([]*models.Duel, error)
}

// ThemeStore loads the word lists duels are played over
type ThemeStore interface {
	Create(ctx context.Context, theme *models.Theme) error
	GetByID(ctx context.Context, id string) (*models.Theme, error)
	List(ctx context.Context) ([]models.ThemeSummary, error)
}

// Publisher receives a snapshot after every committed change
type Publisher interface {
	Publish(view models.DuelView)
}

// DuelOptions tunes a DuelService. Zero values fall back to defaults.
type DuelOptions struct {
	Rules   models.Rules
	Retries int
	Now     func() time.Time
	Seed    func() uint32
	Logger  *slog.Logger
}

// DuelService runs engine commands against stored duels
type DuelService struct {
	duels     DuelStore
	themes    ThemeStore
	publisher Publisher
	rules     models.Rules
	retries   int
	now       func() time.Time
	seed      func() uint32
	logger    *slog.Logger
}

// NewDuelService creates a new duel service
func NewDuelService(duels DuelStore, themes ThemeStore, publisher Publisher, opts DuelOptions) *DuelService {
	s := &DuelService{
		duels:     duels,
		themes:    themes,
		publisher: publisher,
		rules:     opts.Rules,
		retries:   opts.Retries,
		now:       opts.Now,
		seed:      opts.Seed,
		logger:    opts.Logger,
	}
	if s.retries <= 0 {
		s.retries = DefaultWriteRetries
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.seed == nil {
		s.seed = rand.Uint32
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// CreateChallenge stores a pending duel from challengerID to opponentID
func (s *DuelService) CreateChallenge(ctx context.Context, challengerID, opponentID, themeID string, mode models.Mode, preset string) (models.DuelView, error) {
	theme, err := s.themes.GetByID(ctx, themeID)
	if err != nil {
		return models.DuelView{}, fmt.Errorf("failed to load theme: %w", err)
	}

	rules := s.rules
	if preset != "" {
		rules.Preset = preset
	}
	now := s.now()
	d, err := engine.NewChallenge(engine.Challenge{
		ID:           uuid.NewString(),
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		Theme:        theme,
		Mode:         mode,
		Rules:        rules,
	}, now)
	if err != nil {
		return models.DuelView{}, err
	}

	if err := s.duels.Create(ctx, d); err != nil {
		return models.DuelView{}, fmt.Errorf("failed to create duel: %w", err)
	}
	s.logger.Info("Challenge created", "duel_id", d.ID, "challenger", challengerID, "opponent", opponentID, "mode", d.Mode)

	view := engine.BuildView(d, theme, now)
	s.publish(view)
	return view, nil
}

// Execute applies cmd to the duel and commits the result. Concurrent writers are
// resolved by re-reading and re-applying until the write wins or retries run out.
// Subscribers get the full snapshot; the returned view is the caller's.
func (s *DuelService) Execute(ctx context.Context, duelID string, cmd engine.Command) (models.DuelView, error) {
	if cmd.Type == engine.CmdAccept && cmd.Seed == 0 {
		cmd.Seed = s.seed()
	}
	view, _, err := s.mutate(ctx, duelID, func(d *models.Duel, theme *models.Theme, now time.Time) (*models.Duel, error) {
		return engine.Apply(d, theme, cmd, now)
	})
	if err != nil {
		s.logger.Debug("Command rejected", "duel_id", duelID, "command", cmd.Type, "player_id", cmd.PlayerID, "error", err)
	}
	return view.For(cmd.PlayerID), err
}

// Refresh persists any transition that has come due without a player acting
func (s *DuelService) Refresh(ctx context.Context, duelID string) (bool, error) {
	_, changed, err := s.mutate(ctx, duelID, func(d *models.Duel, _ *models.Theme, now time.Time) (*models.Duel, error) {
		next, _ := engine.Resolve(d, now)
		return next, nil
	})
	return changed, err
}

type mutation func(d *models.Duel, theme *models.Theme, now time.Time) (*models.Duel, error)

func (s *DuelService) mutate(ctx context.Context, duelID string, fn mutation) (models.DuelView, bool, error) {
	for attempt := 1; attempt <= s.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.DuelView{}, false, err
		}

		d, err := s.duels.GetByID(ctx, duelID)
		if err != nil {
			return models.DuelView{}, false, fmt.Errorf("failed to load duel: %w", err)
		}
		if d == nil {
			return models.DuelView{}, false, fmt.Errorf("%w: duel %s", engine.ErrNotFound, duelID)
		}
		theme, err := s.themes.GetByID(ctx, d.ThemeID)
		if err != nil {
			return models.DuelView{}, false, fmt.Errorf("failed to load theme: %w", err)
		}

		now := s.now()
		next, err := fn(d, theme, now)
		if err != nil {
			return models.DuelView{}, false, err
		}

		changed, err := documentChanged(d, next)
		if err != nil {
			return models.DuelView{}, false, err
		}
		if !changed {
			return engine.BuildView(d, theme, now), false, nil
		}

		next.Version = d.Version
		if err := s.duels.Update(ctx, next); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				s.logger.Debug("Write conflict, retrying", "duel_id", duelID, "attempt", attempt)
				continue
			}
			return models.DuelView{}, false, fmt.Errorf("failed to save duel: %w", err)
		}

		view := engine.BuildView(next, theme, now)
		s.publish(view)
		return view, true, nil
	}
	return models.DuelView{}, false, fmt.Errorf("duel %s: %w after %d attempts", duelID, repository.ErrVersionConflict, s.retries)
}

func documentChanged(before, after *models.Duel) (bool, error) {
	a, err := json.Marshal(before)
	if err != nil {
		return false, fmt.Errorf("failed to encode duel: %w", err)
	}
	b, err := json.Marshal(after)
	if err != nil {
		return false, fmt.Errorf("failed to encode duel: %w", err)
	}
	return !bytes.Equal(a, b), nil
}

func (s *DuelService) publish(view models.DuelView) {
	if s.publisher != nil {
		s.publisher.Publish(view)
	}
}

// Get returns the read model for a participant
func (s *DuelService) Get(ctx context.Context, duelID, playerID string) (models.DuelView, error) {
	d, theme, err := s.load(ctx, duelID, playerID)
	if err != nil {
		return models.DuelView{}, err
	}
	return engine.BuildView(d, theme, s.now()).For(playerID), nil
}

// ListForPlayer returns every duel playerID takes part in, newest first
func (s *DuelService) ListForPlayer(ctx context.Context, playerID string) ([]models.DuelView, error) {
	duels, err := s.duels.ListForPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list duels: %w", err)
	}

	themes := make(map[string]*models.Theme)
	now := s.now()
	views := make([]models.DuelView, 0, len(duels))
	for _, d := range duels {
		theme, ok := themes[d.ThemeID]
		if !ok {
			theme, err = s.themes.GetByID(ctx, d.ThemeID)
			if err != nil {
				return nil, fmt.Errorf("failed to load theme: %w", err)
			}
			themes[d.ThemeID] = theme
		}
		views = append(views, engine.BuildView(d, theme, now).For(playerID))
	}
	return views, nil
}

// HintAudioText returns the word a tts hint should speak to playerID
func (s *DuelService) HintAudioText(ctx context.Context, duelID, playerID string) (string, error) {
	d, theme, err := s.load(ctx, duelID, playerID)
	if err != nil {
		return "", err
	}
	role, _ := d.RoleOf(playerID)
	d, _ = engine.Resolve(d, s.now())
	return engine.SpokenAnswer(d, theme, role)
}

func (s *DuelService) load(ctx context.Context, duelID, playerID string) (*models.Duel, *models.Theme, error) {
	d, err := s.duels.GetByID(ctx, duelID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load duel: %w", err)
	}
	if d == nil {
		return nil, nil, fmt.Errorf("%w: duel %s", engine.ErrNotFound, duelID)
	}
	if _, ok := d.RoleOf(playerID); !ok {
		return nil, nil, fmt.Errorf("%w: not a participant of duel %s", engine.ErrUnauthorized, duelID)
	}
	theme, err := s.themes.GetByID(ctx, d.ThemeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load theme: %w", err)
	}
	if theme == nil {
		return nil, nil, fmt.Errorf("%w: theme %s", engine.ErrNotFound, d.ThemeID)
	}
	return d, theme, nil
}
