package engine

import (
	"vocabduel/internal/models"
)

// answerOpensAt is when the answering window of the current classic question starts (unix ms).
// Every question after the first begins with the transition countdown.
func answerOpensAt(d *models.Duel) int64 {
	if d.CurrentWordIndex == 0 {
		return d.QuestionStartTime
	}
	return d.QuestionStartTime + d.Rules.TransitionDuration().Milliseconds()
}

// answerDeadline is when the current classic question times out (unix ms)
func answerDeadline(d *models.Duel) int64 {
	return answerOpensAt(d) + d.Rules.QuestionDuration().Milliseconds()
}

// remainingAnswerMs is the server-authoritative time left to answer
func remainingAnswerMs(d *models.Duel, now int64) int64 {
	questionMs := d.Rules.QuestionDuration().Milliseconds()
	opens := answerOpensAt(d)
	if now < opens {
		return questionMs
	}
	return max(0, opens+questionMs-now)
}

// transitionRemainingMs is the countdown left before the next question; it freezes while paused
func transitionRemainingMs(d *models.Duel, now int64) int64 {
	if d.Phase != models.PhaseTransition {
		return 0
	}
	ref := now
	if d.QuestionTimerPausedAt != nil {
		ref = *d.QuestionTimerPausedAt
	}
	return max(0, d.QuestionStartTime+d.Rules.TransitionDuration().Milliseconds()-ref)
}

// resolve applies every time-driven change that is due at now. It is idempotent.
func resolve(d *models.Duel, now int64) bool {
	changed := false
	if d.Status.IsActive() && d.Mode == models.ModeClassic && d.Phase == models.PhaseTransition &&
		d.PausedBy == "" && transitionRemainingMs(d, now) == 0 {
		d.Phase = models.PhaseAnswering
		changed = true
	}
	for _, role := range models.Roles {
		p := d.Player(role)
		if p == nil || p.IncomingSabotage == nil {
			continue
		}
		if !IsSabotageActive(p.IncomingSabotage, questionStartFor(d, role), now) {
			p.IncomingSabotage = nil
			changed = true
		}
	}
	return changed
}

// startClassic draws the word order and serves the first question
func startClassic(d *models.Duel, theme *models.Theme, now int64) error {
	preset, ok := PresetByName(d.Rules.Preset)
	if !ok {
		return preconditionFailed("unknown difficulty preset %q", d.Rules.Preset)
	}
	d.Distribution = CalculateDistribution(len(theme.Words), preset)
	d.WordOrder, d.Seed = Shuffle(d.Seed, len(theme.Words))
	d.CurrentWordIndex = 0
	d.Status = models.StatusAccepted
	d.Phase = models.PhaseAnswering
	d.QuestionStartTime = now
	serveClassicQuestion(d, theme)
	return nil
}

// serveClassicQuestion builds the shared option set for the current index
func serveClassicQuestion(d *models.Duel, theme *models.Theme) {
	entry, ok := classicEntry(d, theme)
	if !ok {
		d.CurrentOptions = nil
		return
	}
	diff := DifficultyForIndex(d.CurrentWordIndex, d.Distribution)
	d.CurrentOptions, d.Seed = BuildOptions(entry, diff.WrongAnswerCount, d.Seed)
}

// lockInClassic records role's answer for the current classic question
func lockInClassic(d *models.Duel, theme *models.Theme, role models.Role, answer string, timedOut bool) {
	p := d.Player(role)
	p.Answered = true
	p.LastAnswer = answer

	entry, _ := classicEntry(d, theme)
	switch {
	case timedOut:
		p.TimedOutIndex = d.CurrentWordIndex
		p.Stats.Timeouts++
		p.Stats.Incorrect++
	case CheckAnswer(entry, answer):
		diff := DifficultyForIndex(d.CurrentWordIndex, d.Distribution)
		p.Score += applyHintCost(diff.Points, p.HintReceived)
		p.Stats.Correct++
	default:
		p.Stats.Incorrect++
	}
}

// advanceClassicIfLocked moves to the next question once both players are locked in.
// The shared index is what moves both clients into the transition phase together.
func advanceClassicIfLocked(d *models.Duel, theme *models.Theme, now int64) {
	for _, role := range models.Roles {
		if !d.Player(role).Answered {
			return
		}
	}

	d.CurrentWordIndex++
	d.HintLetters = nil
	d.HintOptions = nil
	d.PausedBy = ""
	d.UnpauseRequestedBy = ""
	d.QuestionTimerPausedAt = nil
	for _, role := range models.Roles {
		p := d.Player(role)
		p.Answered = false
		p.HintReceived = false
	}

	d.Phase = models.PhaseTransition
	d.QuestionStartTime = now
	if d.CurrentWordIndex >= len(d.WordOrder) {
		d.CurrentOptions = nil
		complete(d, now)
		return
	}
	serveClassicQuestion(d, theme)
}

// pauseCountdown freezes the transition countdown
func pauseCountdown(d *models.Duel, role models.Role, now int64) error {
	if d.Mode != models.ModeClassic {
		return invalidState("countdown pause is only available in classic duels")
	}
	if d.Phase != models.PhaseTransition {
		return invalidState("countdown can only be paused during the transition")
	}
	if d.PausedBy != "" {
		return preconditionFailed("countdown already paused by %s", d.PausedBy)
	}
	d.PausedBy = role
	d.UnpauseRequestedBy = ""
	pausedAt := now
	d.QuestionTimerPausedAt = &pausedAt
	return nil
}

// requestUnpause asks the pausing player to resume
func requestUnpause(d *models.Duel, role models.Role) error {
	if d.PausedBy == "" {
		return invalidState("countdown is not paused")
	}
	if d.PausedBy == role {
		return preconditionFailed("the pausing player confirms the unpause instead of requesting it")
	}
	d.UnpauseRequestedBy = role
	return nil
}

// confirmUnpause resumes the countdown where it stopped
func confirmUnpause(d *models.Duel, role models.Role, now int64) error {
	if d.PausedBy == "" {
		return invalidState("countdown is not paused")
	}
	if d.PausedBy != role {
		return preconditionFailed("only %s can resume the countdown", d.PausedBy)
	}
	if d.QuestionTimerPausedAt != nil {
		d.QuestionStartTime += now - *d.QuestionTimerPausedAt
	}
	d.QuestionTimerPausedAt = nil
	d.PausedBy = ""
	d.UnpauseRequestedBy = ""
	return nil
}

// timeoutClassic auto-submits an empty answer for everyone still thinking once time is up.
// A second call for the same question finds nobody left to lock in and changes nothing.
func timeoutClassic(d *models.Duel, theme *models.Theme, questionIndex int, now int64) error {
	if questionIndex != d.CurrentWordIndex {
		if questionIndex < d.CurrentWordIndex {
			return nil
		}
		return preconditionFailed("question %d has not started", questionIndex)
	}
	if d.Phase != models.PhaseAnswering {
		return invalidState("question %d is not being answered", questionIndex)
	}
	if remainingAnswerMs(d, now) > 0 {
		return preconditionFailed("question %d has %dms left", questionIndex, remainingAnswerMs(d, now))
	}

	for _, role := range models.Roles {
		p := d.Player(role)
		if p.Answered {
			continue
		}
		lockInClassic(d, theme, role, "", true)
	}
	advanceClassicIfLocked(d, theme, now)
	return nil
}
