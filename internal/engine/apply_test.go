package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabduel/internal/models"
)

func TestClassicHappyPath(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 42)

	require.Equal(t, models.StatusAccepted, d.Status)
	require.Equal(t, models.PhaseAnswering, d.Phase)
	assert.Equal(t, models.Distribution{Easy: 5, Medium: 3, Hard: 2}, d.Distribution)
	assert.Equal(t, 0, d.CurrentWordIndex)
	assert.Len(t, d.CurrentOptions, 4)

	view := BuildView(d, theme, at(time.Second))
	q := view.Players[models.RoleChallenger].Question
	require.NotNil(t, q)
	assert.Equal(t, models.DifficultyEasy, q.Difficulty)
	assert.Equal(t, 1, q.Points)
	assert.Equal(t, int64(19_000), view.Timer.RemainingMs)

	answer := classicAnswer(d, theme)
	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: answer, QuestionIndex: 0}, at(2*time.Second))
	assert.Equal(t, 0, d.CurrentWordIndex, "one lock-in does not advance the question")
	assert.True(t, d.Player(models.RoleChallenger).Answered)

	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: opponentID, Answer: "  " + answer + " ", QuestionIndex: 0}, at(3*time.Second))
	assert.Equal(t, 1, d.CurrentWordIndex)
	assert.Equal(t, models.PhaseTransition, d.Phase)
	assert.Equal(t, at(3*time.Second).UnixMilli(), d.QuestionStartTime)
	assert.Equal(t, 1, d.Player(models.RoleChallenger).Score)
	assert.Equal(t, 1, d.Player(models.RoleOpponent).Score)
	assert.False(t, d.Player(models.RoleChallenger).Answered)

	view = BuildView(d, theme, at(4*time.Second))
	assert.Equal(t, int64(4_000), view.Timer.TransitionRemainingMs)

	_, changed := Resolve(d, at(7*time.Second))
	assert.False(t, changed, "countdown still running")

	d, changed = Resolve(d, at(8*time.Second))
	require.True(t, changed)
	assert.Equal(t, models.PhaseAnswering, d.Phase)
	assert.Equal(t, at(28*time.Second).UnixMilli(), answerDeadline(d))
}

func TestClassicPlaysToCompletion(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 9)

	now := at(time.Second)
	for i := 0; i < len(theme.Words); i++ {
		answer := classicAnswer(d, theme)
		d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: answer, QuestionIndex: i}, now)
		d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: opponentID, Answer: "wrong", QuestionIndex: i}, now)
		now = now.Add(6 * time.Second)
	}

	assert.Equal(t, models.StatusCompleted, d.Status)
	require.NotNil(t, d.CompletedAt)
	// 5 easy, 3 medium, 2 hard
	assert.Equal(t, 5*1+3*2+2*3, d.Player(models.RoleChallenger).Score)
	assert.Equal(t, 0, d.Player(models.RoleOpponent).Score)
	assert.Equal(t, 10, d.Player(models.RoleOpponent).Stats.Incorrect)

	_, err := Apply(d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageBounce}, now)
	assert.ErrorIs(t, err, ErrInvalidState, "completed duels accept no mutation")
}

func TestApplyRejections(t *testing.T) {
	theme := testTheme()
	pending := newPending(t, theme, models.ModeClassic)
	started := newStarted(t, theme, models.ModeClassic, 1)

	tests := []struct {
		name string
		duel *models.Duel
		cmd  Command
		want error
	}{
		{"stranger", started, Command{Type: CmdStop, PlayerID: "player-eve"}, ErrUnauthorized},
		{"challenger accepts own challenge", pending, Command{Type: CmdAccept, PlayerID: challengerID}, ErrPreconditionFailed},
		{"accept twice", started, Command{Type: CmdAccept, PlayerID: opponentID}, ErrInvalidState},
		{"answer before accept", pending, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: "dog"}, ErrInvalidState},
		{"answer for another question", started, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: "dog", QuestionIndex: 3}, ErrPreconditionFailed},
		{"early timeout", started, Command{Type: CmdTimeout, PlayerID: challengerID}, ErrPreconditionFailed},
		{"pause while answering", started, Command{Type: CmdPauseCountdown, PlayerID: challengerID}, ErrInvalidState},
		{"unknown sabotage", started, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: "confetti"}, ErrPreconditionFailed},
		{"opponent cancels challenge", pending, Command{Type: CmdCancelChallenge, PlayerID: opponentID}, ErrPreconditionFailed},
		{"stop pending challenge", pending, Command{Type: CmdStop, PlayerID: challengerID}, ErrInvalidState},
		{"unknown command", started, Command{Type: "dance", PlayerID: challengerID}, ErrPreconditionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.duel.Clone()
			_, err := Apply(tt.duel, theme, tt.cmd, at(time.Second))
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, tt.duel, "a rejected command leaves the document alone")
		})
	}

	_, err := Apply(nil, theme, Command{Type: CmdStop, PlayerID: challengerID}, t0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDoubleSubmitRejected(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 5)
	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: "nope", QuestionIndex: 0}, at(time.Second))

	_, err := Apply(d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: classicAnswer(d, theme), QuestionIndex: 0}, at(2*time.Second))
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestChallengeLifecycle(t *testing.T) {
	theme := testTheme()

	rejected := mustApply(t, newPending(t, theme, models.ModeClassic), theme, Command{Type: CmdReject, PlayerID: opponentID}, t0)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	cancelled := mustApply(t, newPending(t, theme, models.ModeClassic), theme, Command{Type: CmdCancelChallenge, PlayerID: challengerID}, t0)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	stopped := mustApply(t, newStarted(t, theme, models.ModeClassic, 3), theme, Command{Type: CmdStop, PlayerID: challengerID}, at(time.Second))
	assert.Equal(t, models.StatusStopped, stopped.Status)

	_, err := Apply(stopped, theme, Command{Type: CmdStop, PlayerID: opponentID}, at(2*time.Second))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestNewChallengeValidation(t *testing.T) {
	theme := testTheme()
	tests := []struct {
		name string
		c    Challenge
		want error
	}{
		{"self challenge", Challenge{ChallengerID: "a", OpponentID: "a", Theme: theme}, ErrPreconditionFailed},
		{"missing opponent", Challenge{ChallengerID: "a", Theme: theme}, ErrPreconditionFailed},
		{"missing theme", Challenge{ChallengerID: "a", OpponentID: "b"}, ErrNotFound},
		{"empty theme", Challenge{ChallengerID: "a", OpponentID: "b", Theme: &models.Theme{ID: "x"}}, ErrPreconditionFailed},
		{"bad mode", Challenge{ChallengerID: "a", OpponentID: "b", Theme: theme, Mode: "relay"}, ErrPreconditionFailed},
		{"bad preset", Challenge{ChallengerID: "a", OpponentID: "b", Theme: theme, Rules: models.Rules{Preset: "brutal"}}, ErrPreconditionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChallenge(tt.c, t0)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	d, err := NewChallenge(Challenge{ChallengerID: "a", OpponentID: "b", Theme: theme}, t0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), d.Rules)
	assert.Equal(t, models.ModeClassic, d.Mode)
	assert.Equal(t, models.StatusPending, d.Status)
}

func TestTimeoutIdempotent(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 77)
	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: classicAnswer(d, theme), QuestionIndex: 0}, at(time.Second))

	_, err := Apply(d, theme, Command{Type: CmdTimeout, PlayerID: challengerID, QuestionIndex: 0}, at(10*time.Second))
	require.ErrorIs(t, err, ErrPreconditionFailed)

	once := mustApply(t, d, theme, Command{Type: CmdTimeout, PlayerID: challengerID, QuestionIndex: 0}, at(21*time.Second))
	opp := once.Player(models.RoleOpponent)
	assert.Equal(t, 1, opp.Stats.Timeouts)
	assert.Equal(t, 1, opp.Stats.Incorrect)
	assert.Equal(t, 0, opp.TimedOutIndex)
	assert.Equal(t, 1, once.Player(models.RoleChallenger).Score)
	assert.Equal(t, 1, once.CurrentWordIndex)

	twice := mustApply(t, once, theme, Command{Type: CmdTimeout, PlayerID: opponentID, QuestionIndex: 0}, at(21*time.Second))
	assert.Equal(t, once, twice)
}

func TestLateAnswerCountsAsTimeout(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 8)
	d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: classicAnswer(d, theme), QuestionIndex: 0}, at(25*time.Second))

	p := d.Player(models.RoleChallenger)
	assert.Equal(t, 0, p.Score)
	assert.Equal(t, 1, p.Stats.Timeouts)
}

func TestPauseCountdown(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 11)
	for _, id := range []string{challengerID, opponentID} {
		d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: id, Answer: "x", QuestionIndex: 0}, at(time.Second))
	}
	require.Equal(t, models.PhaseTransition, d.Phase)
	// transition started at 1s and runs until 6s

	d = mustApply(t, d, theme, Command{Type: CmdPauseCountdown, PlayerID: opponentID}, at(3*time.Second))
	_, err := Apply(d, theme, Command{Type: CmdPauseCountdown, PlayerID: challengerID}, at(4*time.Second))
	require.ErrorIs(t, err, ErrPreconditionFailed)

	_, changed := Resolve(d, at(30*time.Second))
	assert.False(t, changed, "a paused countdown never expires")
	assert.Equal(t, int64(3_000), BuildView(d, theme, at(30*time.Second)).Timer.TransitionRemainingMs)

	_, err = Apply(d, theme, Command{Type: CmdRequestUnpause, PlayerID: opponentID}, at(10*time.Second))
	require.ErrorIs(t, err, ErrPreconditionFailed)
	d = mustApply(t, d, theme, Command{Type: CmdRequestUnpause, PlayerID: challengerID}, at(10*time.Second))
	assert.Equal(t, models.RoleChallenger, d.UnpauseRequestedBy)

	_, err = Apply(d, theme, Command{Type: CmdConfirmUnpause, PlayerID: challengerID}, at(10*time.Second))
	require.ErrorIs(t, err, ErrPreconditionFailed)
	d = mustApply(t, d, theme, Command{Type: CmdConfirmUnpause, PlayerID: opponentID}, at(10*time.Second))
	assert.Empty(t, d.PausedBy)
	assert.Nil(t, d.QuestionTimerPausedAt)

	_, changed = Resolve(d, at(12*time.Second))
	assert.False(t, changed)
	d, changed = Resolve(d, at(13*time.Second))
	assert.True(t, changed)
	assert.Equal(t, models.PhaseAnswering, d.Phase)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	theme := testTheme()
	d := newStarted(t, theme, models.ModeClassic, 21)
	before := d.Clone()

	_ = mustApply(t, d, theme, Command{Type: CmdSendSabotage, PlayerID: challengerID, Effect: models.SabotageReverse}, at(time.Second))
	_ = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: challengerID, Answer: "x", QuestionIndex: 0}, at(time.Second))
	assert.Equal(t, before, d)
}

func TestClassicDeterminism(t *testing.T) {
	theme := testTheme()
	play := func() ([]int, []string) {
		d := newStarted(t, theme, models.ModeClassic, 1234)
		var order []int
		var options []string
		now := at(time.Second)
		for i := 0; i < len(theme.Words); i++ {
			order = append(order, d.WordOrder[d.CurrentWordIndex])
			options = append(options, d.CurrentOptions...)
			for _, id := range []string{challengerID, opponentID} {
				d = mustApply(t, d, theme, Command{Type: CmdSubmitAnswer, PlayerID: id, Answer: "x", QuestionIndex: i}, now)
			}
			now = now.Add(10 * time.Second)
		}
		return order, options
	}

	order1, options1 := play()
	order2, options2 := play()
	assert.Equal(t, order1, order2)
	assert.Equal(t, options1, options2)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order1)
}
