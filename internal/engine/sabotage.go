package engine

import (
	"time"

	"vocabduel/internal/models"
)

// Sabotage limits
const (
	MaxSabotagesPerDuel      = 3
	StickyDuration           = 6 * time.Second
	SabotageFallbackDuration = 10 * time.Second
)

// IsValidSabotageEffect reports whether effect is one of the known effects
func IsValidSabotageEffect(effect models.SabotageEffect) bool {
	switch effect {
	case models.SabotageSticky, models.SabotageBounce, models.SabotageTrampoline, models.SabotageReverse:
		return true
	}
	return false
}

// IsSabotageActive reports whether s still affects its target at now (unix ms).
// Sticky lasts a fixed wall-clock duration; the other effects last for the question they were
// sent during, so one sent just before a new question starts does not carry into it.
func IsSabotageActive(s *models.Sabotage, questionStart int64, now int64) bool {
	if s == nil {
		return false
	}
	if s.Effect == models.SabotageSticky {
		return now-s.Timestamp < StickyDuration.Milliseconds()
	}
	if questionStart > 0 {
		return s.Timestamp >= questionStart
	}
	return now-s.Timestamp < SabotageFallbackDuration.Milliseconds()
}

// questionStartFor returns when role's current question started
func questionStartFor(d *models.Duel, role models.Role) int64 {
	if d.Mode == models.ModeSoloStyle {
		if p := d.Player(role); p != nil {
			return p.QuestionStartTime
		}
		return 0
	}
	return d.QuestionStartTime
}

func maxSabotages(d *models.Duel) int {
	if d.Rules.MaxSabotages > 0 {
		return d.Rules.MaxSabotages
	}
	return MaxSabotagesPerDuel
}

// sendSabotage applies effect to the sender's opponent
func sendSabotage(d *models.Duel, sender models.Role, effect models.SabotageEffect, now int64) error {
	if !IsValidSabotageEffect(effect) {
		return preconditionFailed("unknown sabotage effect %q", effect)
	}
	if !d.Status.IsActive() {
		return invalidState("duel is %s", d.Status)
	}
	if d.Mode == models.ModeClassic && d.Phase != models.PhaseAnswering {
		return invalidState("sabotage can only be sent while a question is being answered")
	}

	from := d.Player(sender)
	target := d.Player(sender.Other())
	if from.SabotagesUsed >= maxSabotages(d) {
		return preconditionFailed("all %d sabotages have been used", maxSabotages(d))
	}
	if target.Answered || target.Finished {
		return preconditionFailed("opponent has already answered")
	}
	if IsSabotageActive(target.IncomingSabotage, questionStartFor(d, sender.Other()), now) {
		return preconditionFailed("opponent is already sabotaged")
	}

	from.SabotagesUsed++
	target.IncomingSabotage = &models.Sabotage{Effect: effect, Timestamp: now}
	target.Stats.SabotagesReceived++
	return nil
}
