package engine

import (
	"time"

	"vocabduel/internal/models"
)

// CommandType names a player action against a duel
type CommandType string

const (
	CmdAccept          CommandType = "accept"
	CmdReject          CommandType = "reject"
	CmdCancelChallenge CommandType = "cancel_challenge"
	CmdStop            CommandType = "stop"

	CmdSubmitAnswer CommandType = "submit_answer"
	CmdTimeout      CommandType = "timeout"

	CmdRequestHintA     CommandType = "request_hint_a"
	CmdAcceptHintA      CommandType = "accept_hint_a"
	CmdProvideHintA     CommandType = "provide_hint_a"
	CmdUpdateHintStateA CommandType = "update_hint_state_a"
	CmdCancelHintA      CommandType = "cancel_hint_a"

	CmdRequestHintB     CommandType = "request_hint_b"
	CmdAcceptHintB      CommandType = "accept_hint_b"
	CmdEliminateOptionB CommandType = "eliminate_option_b"
	CmdCancelHintB      CommandType = "cancel_hint_b"

	CmdSendSabotage CommandType = "send_sabotage"

	CmdPauseCountdown CommandType = "pause_countdown"
	CmdRequestUnpause CommandType = "request_unpause"
	CmdConfirmUnpause CommandType = "confirm_unpause"
)

// Command is one player action. Only the fields its type needs are read.
type Command struct {
	Type     CommandType
	PlayerID string

	// Seed starts the duel's generator on accept; the caller draws it
	Seed uint32

	Answer        string
	QuestionIndex int

	HintType          models.HintType
	Position          int
	Option            string
	Options           []string
	TypedLetters      []string
	RevealedPositions []int

	Effect models.SabotageEffect
}

// Apply validates cmd against d and returns the next document. d is never modified;
// on error the caller keeps the previous document.
func Apply(d *models.Duel, theme *models.Theme, cmd Command, now time.Time) (*models.Duel, error) {
	if d == nil {
		return nil, notFound("duel")
	}
	role, ok := d.RoleOf(cmd.PlayerID)
	if !ok {
		return nil, unauthorized("player %q is not part of duel %s", cmd.PlayerID, d.ID)
	}
	if d.Status.IsTerminal() {
		// a late timer fire for the final question is not an error
		if cmd.Type == CmdTimeout && d.Status == models.StatusCompleted {
			return d.Clone(), nil
		}
		return nil, invalidState("duel is %s", d.Status)
	}
	if theme == nil {
		return nil, notFound("theme %s", d.ThemeID)
	}

	next := d.Clone()
	ts := now.UnixMilli()
	resolve(next, ts)

	var err error
	switch cmd.Type {
	case CmdAccept:
		err = acceptDuel(next, theme, role, cmd.Seed, now)
	case CmdReject:
		err = closeChallenge(next, role, models.RoleOpponent, models.StatusRejected, now)
	case CmdCancelChallenge:
		err = closeChallenge(next, role, models.RoleChallenger, models.StatusCancelled, now)
	case CmdStop:
		err = stopDuel(next, now)
	case CmdSubmitAnswer:
		err = submitAnswer(next, theme, role, cmd.Answer, cmd.QuestionIndex, ts)
	case CmdTimeout:
		err = timeoutAnswer(next, theme, cmd.QuestionIndex, ts)
	case CmdRequestHintA:
		err = requestLetterHint(next, theme, role, cmd.TypedLetters, cmd.RevealedPositions, ts)
	case CmdAcceptHintA:
		err = acceptLetterHint(next, theme, role, cmd.HintType)
	case CmdProvideHintA:
		err = provideLetter(next, theme, role, cmd.Position)
	case CmdUpdateHintStateA:
		err = updateLetterHintState(next, theme, role, cmd.TypedLetters, cmd.RevealedPositions)
	case CmdCancelHintA:
		err = cancelLetterHint(next)
	case CmdRequestHintB:
		err = requestOptionHint(next, theme, role, cmd.Options, ts)
	case CmdAcceptHintB:
		err = acceptOptionHint(next, theme, role, cmd.HintType)
	case CmdEliminateOptionB:
		err = eliminateOption(next, theme, role, cmd.Option)
	case CmdCancelHintB:
		err = cancelOptionHint(next, role)
	case CmdSendSabotage:
		err = sendSabotage(next, role, cmd.Effect, ts)
	case CmdPauseCountdown:
		err = pauseCountdown(next, role, ts)
	case CmdRequestUnpause:
		err = requestUnpause(next, role)
	case CmdConfirmUnpause:
		err = confirmUnpause(next, role, ts)
	default:
		err = preconditionFailed("unknown command %q", cmd.Type)
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Resolve applies the time-driven changes due at now (transition countdown expiry,
// sabotage expiry) and reports whether anything changed. d is never modified.
func Resolve(d *models.Duel, now time.Time) (*models.Duel, bool) {
	if d == nil || d.Status.IsTerminal() {
		return d, false
	}
	next := d.Clone()
	if !resolve(next, now.UnixMilli()) {
		return d, false
	}
	return next, true
}

func acceptDuel(d *models.Duel, theme *models.Theme, role models.Role, seed uint32, now time.Time) error {
	if d.Status != models.StatusPending {
		return invalidState("duel is already %s", d.Status)
	}
	if role != models.RoleOpponent {
		return preconditionFailed("only the challenged player can accept")
	}
	if len(theme.Words) == 0 {
		return preconditionFailed("theme %s has no words", theme.ID)
	}

	d.Seed = NormalizeSeed(seed)
	accepted := now
	d.AcceptedAt = &accepted
	if d.Mode == models.ModeSoloStyle {
		startSolo(d, theme, now.UnixMilli())
		return nil
	}
	return startClassic(d, theme, now.UnixMilli())
}

// closeChallenge ends a pending challenge on behalf of the role allowed to do so
func closeChallenge(d *models.Duel, role, allowed models.Role, status models.Status, now time.Time) error {
	if d.Status != models.StatusPending {
		return invalidState("duel is already %s", d.Status)
	}
	if role != allowed {
		return preconditionFailed("only the %s can mark the challenge %s", allowed, status)
	}
	d.Status = status
	d.Phase = models.PhaseIdle
	completed := now
	d.CompletedAt = &completed
	return nil
}

func stopDuel(d *models.Duel, now time.Time) error {
	if !d.Status.IsActive() {
		return invalidState("only a running duel can be stopped, this one is %s", d.Status)
	}
	d.Status = models.StatusStopped
	finish(d, now.UnixMilli())
	return nil
}

func submitAnswer(d *models.Duel, theme *models.Theme, role models.Role, answer string, questionIndex int, now int64) error {
	if !d.Status.IsActive() {
		return invalidState("duel is %s", d.Status)
	}
	if d.Phase != models.PhaseAnswering {
		return invalidState("answers are not accepted during %s", d.Phase)
	}
	p := d.Player(role)

	if d.Mode == models.ModeSoloStyle {
		if p.Finished {
			return invalidState("%s has finished every word", role)
		}
		if questionIndex != p.CurrentWordIndex {
			return preconditionFailed("word %d is not the current word", questionIndex)
		}
		answerSolo(d, theme, role, answer, now)
		return nil
	}

	if questionIndex != d.CurrentWordIndex {
		return preconditionFailed("question %d is not the current question", questionIndex)
	}
	if p.Answered {
		return preconditionFailed("%s has already answered question %d", role, questionIndex)
	}
	if now < answerOpensAt(d) {
		return invalidState("question %d has not opened yet", questionIndex)
	}
	// past the deadline the answer counts as a timeout
	lockInClassic(d, theme, role, answer, remainingAnswerMs(d, now) == 0)
	advanceClassicIfLocked(d, theme, now)
	return nil
}

func timeoutAnswer(d *models.Duel, theme *models.Theme, questionIndex int, now int64) error {
	if d.Mode != models.ModeClassic {
		return invalidState("solo-style duels have no question timer")
	}
	if !d.Status.IsActive() {
		return invalidState("duel is %s", d.Status)
	}
	return timeoutClassic(d, theme, questionIndex, now)
}

// complete marks the duel finished normally
func complete(d *models.Duel, now int64) {
	d.Status = models.StatusCompleted
	finish(d, now)
}

func finish(d *models.Duel, now int64) {
	completed := time.UnixMilli(now).UTC()
	d.CompletedAt = &completed
	d.HintLetters = nil
	d.HintOptions = nil
	d.PausedBy = ""
	d.UnpauseRequestedBy = ""
	d.QuestionTimerPausedAt = nil
	for _, role := range models.Roles {
		d.Player(role).IncomingSabotage = nil
	}
}
