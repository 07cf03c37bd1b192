package engine

import (
	"slices"
	"time"
	"unicode/utf8"

	"vocabduel/internal/models"
)

// BuildView renders the read model both players receive. Pending effects that are due
// at now are reflected without being persisted.
func BuildView(d *models.Duel, theme *models.Theme, now time.Time) models.DuelView {
	ts := now.UnixMilli()
	d, _ = Resolve(d, now)

	v := models.DuelView{
		ID:               d.ID,
		ThemeID:          d.ThemeID,
		Mode:             d.Mode,
		Status:           d.Status,
		Phase:            d.Phase,
		CurrentWordIndex: d.CurrentWordIndex,
		Players:          make(map[models.Role]models.PlayerView, len(models.Roles)),
		HintLetters:      d.HintLetters,
		HintOptions:      d.HintOptions,
		ServerTime:       ts,
		Version:          d.Version,
	}
	if theme != nil {
		v.TotalWords = len(theme.Words)
	}

	for _, role := range models.Roles {
		p := d.Player(role)
		if p == nil {
			continue
		}
		pv := models.PlayerView{
			PlayerID:      p.PlayerID,
			Score:         p.Score,
			Answered:      p.Answered,
			Stats:         p.Stats,
			SabotagesUsed: p.SabotagesUsed,
			SabotagesLeft: max(0, maxSabotages(d)-p.SabotagesUsed),
			Finished:      p.Finished,
		}
		if IsSabotageActive(p.IncomingSabotage, questionStartFor(d, role), ts) {
			s := *p.IncomingSabotage
			pv.ActiveSabotage = &s
		}
		if d.Mode == models.ModeSoloStyle {
			pv.MasteredCount = p.MasteredCount()
			pv.ActivePoolSize = len(p.ActivePool)
		}
		if d.Status.IsActive() && theme != nil {
			pv.Question = questionView(d, theme, role)
		}
		v.Players[role] = pv
	}

	if d.Mode == models.ModeClassic && d.Status.IsActive() {
		v.Timer = models.TimerView{
			QuestionStartTime:     d.QuestionStartTime,
			AnswerOpensAt:         answerOpensAt(d),
			AnswerDeadline:        answerDeadline(d),
			RemainingMs:           remainingAnswerMs(d, ts),
			TransitionRemainingMs: transitionRemainingMs(d, ts),
			PausedAt:              d.QuestionTimerPausedAt,
			PausedBy:              d.PausedBy,
			UnpauseRequestedBy:    d.UnpauseRequestedBy,
		}
		if d.QuestionTimerPausedAt != nil {
			// the answer window moves out by however long the pause has lasted
			shift := ts - *d.QuestionTimerPausedAt
			v.Timer.AnswerOpensAt += shift
			v.Timer.AnswerDeadline += shift
		}
	}
	return v
}

func questionView(d *models.Duel, theme *models.Theme, role models.Role) *models.QuestionView {
	entry, presentation, options, ok := currentQuestion(d, theme, role)
	if !ok {
		return nil
	}
	q := &models.QuestionView{
		Prompt:       entry.Prompt,
		Options:      slices.Clone(options),
		AnswerLength: utf8.RuneCountInString(entry.CorrectAnswer),
		Presentation: presentation,
	}
	if d.Mode == models.ModeClassic {
		diff := DifficultyForIndex(d.CurrentWordIndex, d.Distribution)
		q.Index = d.CurrentWordIndex
		q.Difficulty = diff.Level
		q.Points = diff.Points
		return q
	}
	p := d.Player(role)
	q.Index = p.CurrentWordIndex
	q.Level = p.CurrentLevel
	q.Points = pointsForLevel(p.CurrentLevel)
	return q
}
