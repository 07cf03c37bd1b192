package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabduel/internal/models"
)

func TestSoloStart(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeSoloStyle, 42)

	assert.Equal(t, models.StatusChallenging, d.Status)
	assert.Equal(t, models.PhaseAnswering, d.Phase)
	for _, role := range models.Roles {
		p := d.Player(role)
		assert.Len(t, p.ActivePool, 4)
		assert.Len(t, p.RemainingPool, 6)
		assert.Contains(t, p.ActivePool, p.CurrentWordIndex)
		ws := p.WordStates[p.CurrentWordIndex]
		require.NotNil(t, ws)
		assert.Contains(t, []int{1, 2}, ws.Level)
		if PresentationFor(ws.Level, ws.Level2Mode) == models.PresentationMultipleChoice {
			assert.Contains(t, p.CurrentOptions, theme.Words[p.CurrentWordIndex].CorrectAnswer)
		} else {
			assert.Empty(t, p.CurrentOptions)
		}
	}
}

type soloStep struct {
	word  int
	level int
}

// playSolo answers every question correctly for both players until the duel completes
func playSolo(t *testing.T, theme *models.Theme, seed uint32) (*models.Duel, map[models.Role][]soloStep) {
	t.Helper()
	d := newStarted(t, theme, models.ModeSoloStyle, seed)
	steps := map[models.Role][]soloStep{}
	now := at(time.Second)

	for i := 0; i < 2000 && d.Status == models.StatusChallenging; i++ {
		role := models.Roles[i%2]
		p := d.Player(role)
		if p.Finished {
			continue
		}
		prev := p.CurrentWordIndex
		steps[role] = append(steps[role], soloStep{word: prev, level: p.CurrentLevel})

		answer := theme.Words[prev].CorrectAnswer
		d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: p.PlayerID, Answer: answer, QuestionIndex: prev}, now)
		now = now.Add(time.Second)

		p = d.Player(role)
		if !p.Finished && p.CurrentWordIndex == prev {
			require.Len(t, unmastered(p), 1, "word %d repeated while others were available", prev)
		}
	}
	return d, steps
}

func TestSoloPlaysToMastery(t *testing.T) {
	theme := testTheme()
	d, steps := playSolo(t, theme, 42)

	require.Equal(t, models.StatusCompleted, d.Status)
	for _, role := range models.Roles {
		p := d.Player(role)
		assert.True(t, p.Finished)
		assert.Empty(t, p.RemainingPool)
		assert.Len(t, p.ActivePool, len(theme.Words))
		assert.Equal(t, len(theme.Words), p.MasteredCount())
		assert.Equal(t, len(steps[role]), p.Stats.Correct)
		assert.Positive(t, p.Score)
	}
}

func TestSoloDeterminism(t *testing.T) {
	theme := testTheme()
	d1, steps1 := playSolo(t, theme, 2718)
	d2, steps2 := playSolo(t, theme, 2718)

	assert.Equal(t, steps1, steps2)
	assert.Equal(t, d1, d2)
}

func TestSoloWrongAnswerDropsLevel(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeSoloStyle, 42)
	p := d.Player(models.RoleChallenger)
	word := p.CurrentWordIndex
	p.WordStates[word].Level = 2
	p.CurrentLevel = 2

	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: "nonsense", QuestionIndex: word}, at(time.Second))
	p = d.Player(models.RoleChallenger)
	assert.Equal(t, 1, p.WordStates[word].Level)
	assert.Equal(t, 1, p.WordStates[word].Attempts)
	assert.Equal(t, 0, p.Score)
	assert.Equal(t, 1, p.Stats.Incorrect)
	assert.NotEqual(t, word, p.CurrentWordIndex)
}

func TestSoloReenteringLevel2DrawsAMode(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeSoloStyle, 42)
	forceTyping(d, models.RoleChallenger)
	word := d.Player(models.RoleChallenger).CurrentWordIndex

	want, _ := DetermineLevel2Mode(d.Seed)
	stale := models.PresentationTyping
	if want == models.PresentationTyping {
		stale = models.PresentationMultipleChoice
	}
	d.Player(models.RoleChallenger).WordStates[word].Level2Mode = stale

	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: "nonsense", QuestionIndex: word}, at(time.Second))
	ws := d.Player(models.RoleChallenger).WordStates[word]
	assert.Equal(t, 2, ws.Level)
	assert.Equal(t, want, ws.Level2Mode, "dropping back to level 2 draws a fresh mode")
}

func TestSoloRejections(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeSoloStyle, 42)
	word := d.Player(models.RoleChallenger).CurrentWordIndex

	_, err := Apply(d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: "dog", QuestionIndex: word + 1}, at(time.Second))
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	_, err = Apply(d, theme, Command{Type: CmdTimeout, PlayerID: challengerID, QuestionIndex: word}, at(time.Minute))
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = Apply(d, theme, Command{Type: CmdPauseCountdown, PlayerID: challengerID}, at(time.Second))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSoloHintCost(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeSoloStyle, 42)
	forceTyping(d, models.RoleChallenger)
	word := d.Player(models.RoleChallenger).CurrentWordIndex
	now := at(time.Second)

	d = mustApply(t, d, theme, Command{Type: CmdRequestHintA, PlayerID: challengerID}, now)
	d = mustApply(t, d, theme, Command{Type: CmdAcceptHintA, PlayerID: opponentID, HintType: models.HintTTS}, now)
	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: theme.Words[word].CorrectAnswer, QuestionIndex: word}, now)

	p := d.Player(models.RoleChallenger)
	assert.Equal(t, MaxLevel-1, p.Score)
	assert.True(t, p.WordStates[word].CompletedLevel3)
	assert.Nil(t, d.HintLetters, "the requester's hint closes with the question")
	assert.False(t, p.HintReceived)
}
