package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabduel/internal/models"
)

func TestIsSabotageActive(t *testing.T) {
	tests := []struct {
		name          string
		sabotage      *models.Sabotage
		questionStart int64
		now           int64
		want          bool
	}{
		{"none", nil, 0, 0, false},
		{"sticky fresh", &models.Sabotage{Effect: models.SabotageSticky, Timestamp: 1000}, 0, 6999, true},
		{"sticky expired", &models.Sabotage{Effect: models.SabotageSticky, Timestamp: 1000}, 0, 7000, false},
		{"sticky ignores question start", &models.Sabotage{Effect: models.SabotageSticky, Timestamp: 1000}, 5000, 2000, true},
		{"bounce this question", &models.Sabotage{Effect: models.SabotageBounce, Timestamp: 5000}, 5000, 60000, true},
		{"bounce from the last question", &models.Sabotage{Effect: models.SabotageBounce, Timestamp: 4999}, 5000, 5001, false},
		{"reverse fallback fresh", &models.Sabotage{Effect: models.SabotageReverse, Timestamp: 1000}, 0, 10999, true},
		{"reverse fallback expired", &models.Sabotage{Effect: models.SabotageReverse, Timestamp: 1000}, 0, 11000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSabotageActive(tt.sabotage, tt.questionStart, tt.now))
		})
	}
}

func TestSabotageCap(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 42)

	for _, sec := range []int{1, 8, 15} {
		d = mustApply(t, d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageSticky}, at(time.Duration(sec)*time.Second))
	}
	assert.Equal(t, MaxSabotagesPerDuel, d.Player(models.RoleChallenger).SabotagesUsed)
	assert.Equal(t, 3, d.Player(models.RoleOpponent).Stats.SabotagesReceived)

	_, err := Apply(d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageSticky}, at(19*time.Second))
	require.ErrorIs(t, err, ErrPreconditionFailed)

	view := BuildView(d, theme, at(16*time.Second))
	assert.Equal(t, 0, view.Players[models.RoleChallenger].SabotagesLeft)
	assert.NotNil(t, view.Players[models.RoleOpponent].ActiveSabotage)
}

func TestSabotageOnePerTarget(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 42)

	d = mustApply(t, d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageBounce}, at(time.Second))
	_, err := Apply(d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageSticky}, at(2*time.Second))
	require.ErrorIs(t, err, ErrPreconditionFailed)

	// the opponent can still hit back
	d = mustApply(t, d, theme, Command{Type: CmdSendSabotage, PlayerID: opponentID, Effect: models.SabotageTrampoline}, at(2*time.Second))

	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: opponentID, Answer: "x", QuestionIndex: 0}, at(3*time.Second))
	_, err = Apply(d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageReverse}, at(3*time.Second))
	require.ErrorIs(t, err, ErrPreconditionFailed, "target already answered")

	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: "x", QuestionIndex: 0}, at(4*time.Second))
	_, err = Apply(d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageReverse}, at(5*time.Second))
	require.ErrorIs(t, err, ErrInvalidState, "no sabotage during the transition")

	// the bounce sent during question 0 does not carry into question 1
	d = mustApply(t, d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageReverse}, at(10*time.Second))
	opp := d.Player(models.RoleOpponent)
	require.NotNil(t, opp.IncomingSabotage)
	assert.Equal(t, models.SabotageReverse, opp.IncomingSabotage.Effect)
	assert.Equal(t, 2, d.Player(models.RoleChallenger).SabotagesUsed)
}

func TestExpiredSabotageClearedLazily(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 42)
	d = mustApply(t, d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageSticky}, at(time.Second))

	_, changed := Resolve(d, at(6*time.Second))
	assert.False(t, changed)

	d, changed = Resolve(d, at(7*time.Second))
	require.True(t, changed)
	assert.Nil(t, d.Player(models.RoleOpponent).IncomingSabotage)
	assert.Equal(t, 1, d.Player(models.RoleOpponent).Stats.SabotagesReceived)
}
