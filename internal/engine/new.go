package engine

import (
	"time"

	"vocabduel/internal/models"
)

// Default timing for a duel question
const (
	DefaultQuestionSeconds   = 20
	DefaultTransitionSeconds = 5
)

// DefaultRules returns the rules used when a challenge does not override them
func DefaultRules() models.Rules {
	return models.Rules{
		Preset:            DefaultPreset,
		QuestionSeconds:   DefaultQuestionSeconds,
		TransitionSeconds: DefaultTransitionSeconds,
		MaxSabotages:      MaxSabotagesPerDuel,
	}
}

// Challenge describes a new duel
type Challenge struct {
	ID           string
	ChallengerID string
	OpponentID   string
	Theme        *models.Theme
	Mode         models.Mode
	Rules        models.Rules
}

// NewChallenge builds a pending duel. Nothing random is drawn until it is accepted.
func NewChallenge(c Challenge, now time.Time) (*models.Duel, error) {
	if c.Theme == nil {
		return nil, notFound("theme")
	}
	if c.ChallengerID == "" || c.OpponentID == "" {
		return nil, preconditionFailed("a duel needs two players")
	}
	if c.ChallengerID == c.OpponentID {
		return nil, preconditionFailed("a player cannot challenge themselves")
	}
	if len(c.Theme.Words) == 0 {
		return nil, preconditionFailed("theme %s has no words", c.Theme.ID)
	}

	mode := c.Mode
	if mode == "" {
		mode = models.ModeClassic
	}
	if mode != models.ModeClassic && mode != models.ModeSoloStyle {
		return nil, preconditionFailed("unknown mode %q", c.Mode)
	}

	rules := c.Rules
	defaults := DefaultRules()
	if rules.Preset == "" {
		rules.Preset = defaults.Preset
	}
	if _, ok := PresetByName(rules.Preset); !ok {
		return nil, preconditionFailed("unknown difficulty preset %q", rules.Preset)
	}
	if rules.QuestionSeconds <= 0 {
		rules.QuestionSeconds = defaults.QuestionSeconds
	}
	if rules.TransitionSeconds <= 0 {
		rules.TransitionSeconds = defaults.TransitionSeconds
	}
	if rules.MaxSabotages <= 0 {
		rules.MaxSabotages = defaults.MaxSabotages
	}

	return &models.Duel{
		ID:           c.ID,
		ChallengerID: c.ChallengerID,
		OpponentID:   c.OpponentID,
		ThemeID:      c.Theme.ID,
		Mode:         mode,
		Status:       models.StatusPending,
		Phase:        models.PhaseIdle,
		Rules:        rules,
		Players: map[models.Role]*models.PlayerState{
			models.RoleChallenger: {PlayerID: c.ChallengerID, TimedOutIndex: -1},
			models.RoleOpponent:   {PlayerID: c.OpponentID, TimedOutIndex: -1},
		},
		CreatedAt: now.UTC(),
	}, nil
}
