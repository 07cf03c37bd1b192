package engine

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"vocabduel/internal/models"
)

const (
	challengerID = "player-alice"
	opponentID   = "player-bob"
)

var t0 = time.UnixMilli(1_700_000_000_000).UTC()

func at(d time.Duration) time.Time {
	return t0.Add(d)
}

// testTheme builds a ten word theme where every entry has five distinct distractors
func testTheme() *models.Theme {
	pairs := [][2]string{
		{"der Hund", "dog"}, {"die Katze", "cat"}, {"das Pferd", "horse"}, {"die Kuh", "cow"},
		{"der Vogel", "bird"}, {"der Fisch", "fish"}, {"die Maus", "mouse"}, {"das Schaf", "sheep"},
		{"die Ziege", "goat"}, {"der Fuchs", "fox"},
	}
	answers := lo.Map(pairs, func(p [2]string, _ int) string { return p[1] })

	theme := &models.Theme{ID: "theme-animals", Name: "Animals"}
	for i, p := range pairs {
		wrong := lo.Without(answers, p[1])
		theme.Words = append(theme.Words, models.WordEntry{
			Prompt:        p[0],
			CorrectAnswer: p[1],
			WrongAnswers:  wrong[i%5 : i%5+5],
		})
	}
	return theme
}

func newPending(t *testing.T, theme *models.Theme, mode models.Mode) *models.Duel {
	t.Helper()
	d, err := NewChallenge(Challenge{
		ID:           "duel-1",
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		Theme:        theme,
		Mode:         mode,
	}, t0)
	require.NoError(t, err)
	return d
}

func newStarted(t *testing.T, theme *models.Theme, mode models.Mode, seed uint32) *models.Duel {
	t.Helper()
	d, err := Apply(newPending(t, theme, mode), theme, Command{Type: CmdAccept, PlayerID: opponentID, Seed: seed}, t0)
	require.NoError(t, err)
	return d
}

func mustApply(t *testing.T, d *models.Duel, theme *models.Theme, cmd Command, now time.Time) *models.Duel {
	t.Helper()
	next, err := Apply(d, theme, cmd, now)
	require.NoError(t, err, "command %s", cmd.Type)
	return next
}

// classicAnswer is the correct answer to the current shared question
func classicAnswer(d *models.Duel, theme *models.Theme) string {
	return theme.Words[d.WordOrder[d.CurrentWordIndex]].CorrectAnswer
}

func wrongOption(t *testing.T, options []string, correct string, skip ...string) string {
	t.Helper()
	for _, o := range options {
		if o != correct && !lo.Contains(skip, o) {
			return o
		}
	}
	t.Fatalf("no wrong option left in %v", options)
	return ""
}
