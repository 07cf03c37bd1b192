package engine

import (
	"github.com/samber/lo"

	"vocabduel/internal/models"
)

// startSolo initializes both players' pools and serves each a first word
func startSolo(d *models.Duel, theme *models.Theme, now int64) {
	d.Status = models.StatusChallenging
	d.Phase = models.PhaseAnswering
	d.QuestionStartTime = now
	for _, role := range models.Roles {
		p := d.Player(role)
		p.ActivePool, p.RemainingPool, d.Seed = InitializePools(len(theme.Words), d.Seed)
		p.WordStates = map[int]*models.WordState{}
		selectNextSoloWord(d, theme, role, -1, now)
	}
}

// unmastered returns the active words role still has to learn
func unmastered(p *models.PlayerState) []int {
	return lo.Filter(p.ActivePool, func(idx int, _ int) bool {
		ws, ok := p.WordStates[idx]
		return !ok || !ws.CompletedLevel3
	})
}

// selectNextSoloWord serves role's next word, expanding the pool when enough is mastered.
// A player with nothing left to learn is marked finished.
func selectNextSoloWord(d *models.Duel, theme *models.Theme, role models.Role, exclude int, now int64) {
	p := d.Player(role)
	if ShouldExpand(p.ActivePool, p.MasteredCount()) && len(p.RemainingPool) > 0 {
		p.ActivePool, p.RemainingPool, d.Seed = ExpandPool(p.ActivePool, p.RemainingPool, d.Seed)
	}
	eligible := unmastered(p)
	for len(eligible) == 0 && len(p.RemainingPool) > 0 {
		p.ActivePool, p.RemainingPool, d.Seed = ExpandPool(p.ActivePool, p.RemainingPool, d.Seed)
		eligible = unmastered(p)
	}

	p.Answered = false
	p.HintReceived = false
	if len(eligible) == 0 {
		p.Finished = true
		p.CurrentOptions = nil
		p.CurrentLevel = 0
		p.CurrentLevel2Mode = ""
		return
	}

	var idx int
	idx, d.Seed = PickNext(eligible, exclude, d.Seed)
	ws, ok := p.WordStates[idx]
	if !ok {
		ws = &models.WordState{}
		ws.Level, d.Seed = DetermineInitialLevel(d.Seed)
		if ws.Level == 2 {
			ws.Level2Mode, d.Seed = DetermineLevel2Mode(d.Seed)
		}
		p.WordStates[idx] = ws
	}

	p.CurrentWordIndex = idx
	p.CurrentLevel = ws.Level
	p.CurrentLevel2Mode = ws.Level2Mode
	p.QuestionStartTime = now
	p.CurrentOptions = nil
	if PresentationFor(ws.Level, ws.Level2Mode) == models.PresentationMultipleChoice {
		entry, _ := theme.Word(idx)
		p.CurrentOptions, d.Seed = BuildOptions(entry, wrongCountForLevel(ws.Level), d.Seed)
	}
}

// answerSolo grades role's answer, moves the word between levels and serves the next one
func answerSolo(d *models.Duel, theme *models.Theme, role models.Role, answer string, now int64) {
	p := d.Player(role)
	idx := p.CurrentWordIndex
	entry, _ := theme.Word(idx)
	ws := p.WordStates[idx]
	correct := CheckAnswer(entry, answer)

	oldLevel := ws.Level
	var mastered bool
	ws.Attempts++
	ws.Level, mastered, d.Seed = UpdateWordStateAfterAnswer(oldLevel, correct, d.Seed)
	if ws.Level == 2 && oldLevel != 2 {
		ws.Level2Mode, d.Seed = DetermineLevel2Mode(d.Seed)
	}
	ws.CompletedLevel3 = ws.CompletedLevel3 || mastered

	p.LastAnswer = answer
	if correct {
		ws.CorrectCount++
		p.Score += applyHintCost(pointsForLevel(oldLevel), p.HintReceived)
		p.Stats.Correct++
	} else {
		p.Stats.Incorrect++
	}

	clearHintsFor(d, role)
	p.IncomingSabotage = nil
	selectNextSoloWord(d, theme, role, idx, now)

	if lo.EveryBy(models.Roles, func(r models.Role) bool { return d.Player(r).Finished }) {
		complete(d, now)
	}
}
