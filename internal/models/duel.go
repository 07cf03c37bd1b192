package models

import (
	"maps"
	"slices"
	"time"
)

// Role tags a participant within a duel
type Role string

const (
	RoleChallenger Role = "challenger"
	RoleOpponent   Role = "opponent"
)

// Roles lists both roles in a fixed order
var Roles = []Role{RoleChallenger, RoleOpponent}

// Other returns the opposing role
func (r Role) Other() Role {
	if r == RoleChallenger {
		return RoleOpponent
	}
	return RoleChallenger
}

// Mode selects how questions are served
type Mode string

const (
	// ModeClassic shares one question index, one timer and one difficulty curve
	ModeClassic Mode = "classic"
	// ModeSoloStyle lets each player advance through their own pool and mastery levels
	ModeSoloStyle Mode = "solo-style"
)

// Status is the lifecycle state of a duel
type Status string

const (
	StatusPending     Status = "pending"
	StatusAccepted    Status = "accepted"
	StatusChallenging Status = "challenging"
	StatusCompleted   Status = "completed"
	StatusStopped     Status = "stopped"
	StatusCancelled   Status = "cancelled"
	StatusRejected    Status = "rejected"
)

// IsTerminal reports whether the status accepts no further mutation
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusStopped, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// IsActive reports whether questions are being played
func (s Status) IsActive() bool {
	return s == StatusAccepted || s == StatusChallenging
}

// Phase is the lifecycle of the current question
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseAnswering  Phase = "answering"
	PhaseTransition Phase = "transition"
)

// Presentation is how a question is shown to a player
type Presentation string

const (
	PresentationMultipleChoice Presentation = "multiple_choice"
	PresentationTyping         Presentation = "typing"
)

// Difficulty is a band of the classic difficulty curve
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Distribution is how many questions fall in each difficulty band
type Distribution struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Total returns the number of questions covered by the distribution
func (d Distribution) Total() int {
	return d.Easy + d.Medium + d.Hard
}

// Rules are frozen into the duel when it is created so timing is reproducible
type Rules struct {
	Preset            string `json:"preset"`
	QuestionSeconds   int    `json:"question_seconds"`
	TransitionSeconds int    `json:"transition_seconds"`
	MaxSabotages      int    `json:"max_sabotages"`
}

// QuestionDuration returns the answering window
func (r Rules) QuestionDuration() time.Duration {
	return time.Duration(r.QuestionSeconds) * time.Second
}

// TransitionDuration returns the countdown between questions
func (r Rules) TransitionDuration() time.Duration {
	return time.Duration(r.TransitionSeconds) * time.Second
}

// SabotageEffect is the adverse effect applied to the opponent's question
type SabotageEffect string

const (
	SabotageSticky     SabotageEffect = "sticky"
	SabotageBounce     SabotageEffect = "bounce"
	SabotageTrampoline SabotageEffect = "trampoline"
	SabotageReverse    SabotageEffect = "reverse"
)

// Sabotage is an incoming effect and when it was sent (unix ms)
type Sabotage struct {
	Effect    SabotageEffect `json:"effect"`
	Timestamp int64          `json:"timestamp"`
}

// Stats are running counters per player
type Stats struct {
	Correct           int `json:"correct"`
	Incorrect         int `json:"incorrect"`
	Timeouts          int `json:"timeouts"`
	HintsUsed         int `json:"hints_used"`
	HintsGiven        int `json:"hints_given"`
	SabotagesReceived int `json:"sabotages_received"`
}

// WordState tracks one player's progress on one word
type WordState struct {
	Level           int          `json:"level"`
	Level2Mode      Presentation `json:"level2_mode,omitempty"`
	CompletedLevel3 bool         `json:"completed_level3"`
	Attempts        int          `json:"attempts"`
	CorrectCount    int          `json:"correct_count"`
}

// PlayerState is the per-role running state of a duel
type PlayerState struct {
	PlayerID         string    `json:"player_id"`
	Score            int       `json:"score"`
	Answered         bool      `json:"answered"`
	LastAnswer       string    `json:"last_answer"`
	TimedOutIndex    int       `json:"timed_out_index"`
	HintReceived     bool      `json:"hint_received"`
	SabotagesUsed    int       `json:"sabotages_used"`
	IncomingSabotage *Sabotage `json:"incoming_sabotage,omitempty"`
	Stats            Stats     `json:"stats"`

	// solo-style only
	ActivePool        []int              `json:"active_pool,omitempty"`
	RemainingPool     []int              `json:"remaining_pool,omitempty"`
	WordStates        map[int]*WordState `json:"word_states,omitempty"`
	CurrentWordIndex  int                `json:"current_word_index"`
	CurrentLevel      int                `json:"current_level,omitempty"`
	CurrentLevel2Mode Presentation       `json:"current_level2_mode,omitempty"`
	CurrentOptions    []string           `json:"current_options,omitempty"`
	QuestionStartTime int64              `json:"question_start_time,omitempty"`
	Finished          bool               `json:"finished"`
}

// MasteredCount returns how many words in the active pool are mastered
func (p *PlayerState) MasteredCount() int {
	n := 0
	for _, idx := range p.ActivePool {
		if ws, ok := p.WordStates[idx]; ok && ws.CompletedLevel3 {
			n++
		}
	}
	return n
}

// HintStatus is the state of an open hint request
type HintStatus string

const (
	HintPending  HintStatus = "pending"
	HintAccepted HintStatus = "accepted"
)

// HintType is what the opponent agreed to give
type HintType string

const (
	HintLetters   HintType = "letters"
	HintFlash     HintType = "flash"
	HintTTS       HintType = "tts"
	HintAnagram   HintType = "anagram"
	HintEliminate HintType = "eliminate"
)

// LetterHint is the open-ended (typing) hint channel. RevealedLetters and Flash carry
// what the helper gave away and are only shown to the requester.
type LetterHint struct {
	RequestedBy       Role             `json:"requested_by"`
	Status            HintStatus       `json:"status"`
	HintType          HintType         `json:"hint_type,omitempty"`
	TypedLetters      []string         `json:"typed_letters"`
	RevealedPositions []int            `json:"revealed_positions"`
	ProvidedPositions []int            `json:"provided_positions"`
	RevealedLetters   []RevealedLetter `json:"revealed_letters,omitempty"`
	Anagram           string           `json:"anagram,omitempty"`
	Flash             string           `json:"flash,omitempty"`
	RequestedAt       int64            `json:"requested_at"`
}

// RevealedLetter is one letter of the answer and where it goes
type RevealedLetter struct {
	Position int    `json:"position"`
	Letter   string `json:"letter"`
}

// OptionHint is the multiple-choice hint channel. Flash is the correct option once a
// flash hint is accepted and is only shown to the requester.
type OptionHint struct {
	RequestedBy       Role       `json:"requested_by"`
	Status            HintStatus `json:"status"`
	HintType          HintType   `json:"hint_type,omitempty"`
	Options           []string   `json:"options"`
	EliminatedOptions []string   `json:"eliminated_options"`
	Flash             string     `json:"flash,omitempty"`
	RequestedAt       int64      `json:"requested_at"`
}

// Duel is the single shared document both players write to
type Duel struct {
	ID           string `json:"id"`
	ChallengerID string `json:"challenger_id"`
	OpponentID   string `json:"opponent_id"`
	ThemeID      string `json:"theme_id"`
	Mode         Mode   `json:"mode"`
	Status       Status `json:"status"`
	Phase        Phase  `json:"phase"`

	Seed         uint32       `json:"seed"`
	Rules        Rules        `json:"rules"`
	Distribution Distribution `json:"distribution"`

	// classic only
	WordOrder        []int    `json:"word_order,omitempty"`
	CurrentWordIndex int      `json:"current_word_index"`
	CurrentOptions   []string `json:"current_options,omitempty"`

	QuestionStartTime     int64  `json:"question_start_time"`
	QuestionTimerPausedAt *int64 `json:"question_timer_paused_at,omitempty"`
	PausedBy              Role   `json:"paused_by,omitempty"`
	UnpauseRequestedBy    Role   `json:"unpause_requested_by,omitempty"`

	Players     map[Role]*PlayerState `json:"players"`
	HintLetters *LetterHint           `json:"hint_letters,omitempty"`
	HintOptions *OptionHint           `json:"hint_options,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Version is the optimistic concurrency token, kept out of the document body
	Version int64 `json:"-"`
}

// RoleOf returns the role a player holds in the duel
func (d *Duel) RoleOf(playerID string) (Role, bool) {
	switch {
	case playerID == "":
		return "", false
	case playerID == d.ChallengerID:
		return RoleChallenger, true
	case playerID == d.OpponentID:
		return RoleOpponent, true
	}
	return "", false
}

// Player returns the state for a role
func (d *Duel) Player(role Role) *PlayerState {
	return d.Players[role]
}

// Clone returns a deep copy so a failed mutation never leaks into the stored document
func (d *Duel) Clone() *Duel {
	c := *d
	c.WordOrder = slices.Clone(d.WordOrder)
	c.CurrentOptions = slices.Clone(d.CurrentOptions)
	if d.QuestionTimerPausedAt != nil {
		v := *d.QuestionTimerPausedAt
		c.QuestionTimerPausedAt = &v
	}
	if d.AcceptedAt != nil {
		v := *d.AcceptedAt
		c.AcceptedAt = &v
	}
	if d.CompletedAt != nil {
		v := *d.CompletedAt
		c.CompletedAt = &v
	}
	if d.HintLetters != nil {
		h := *d.HintLetters
		h.TypedLetters = slices.Clone(d.HintLetters.TypedLetters)
		h.RevealedPositions = slices.Clone(d.HintLetters.RevealedPositions)
		h.ProvidedPositions = slices.Clone(d.HintLetters.ProvidedPositions)
		h.RevealedLetters = slices.Clone(d.HintLetters.RevealedLetters)
		c.HintLetters = &h
	}
	if d.HintOptions != nil {
		h := *d.HintOptions
		h.Options = slices.Clone(d.HintOptions.Options)
		h.EliminatedOptions = slices.Clone(d.HintOptions.EliminatedOptions)
		c.HintOptions = &h
	}
	c.Players = make(map[Role]*PlayerState, len(d.Players))
	for role, p := range d.Players {
		c.Players[role] = p.clone()
	}
	return &c
}

func (p *PlayerState) clone() *PlayerState {
	if p == nil {
		return nil
	}
	c := *p
	if p.IncomingSabotage != nil {
		s := *p.IncomingSabotage
		c.IncomingSabotage = &s
	}
	c.ActivePool = slices.Clone(p.ActivePool)
	c.RemainingPool = slices.Clone(p.RemainingPool)
	c.CurrentOptions = slices.Clone(p.CurrentOptions)
	if p.WordStates != nil {
		c.WordStates = maps.Clone(p.WordStates)
		for idx, ws := range c.WordStates {
			w := *ws
			c.WordStates[idx] = &w
		}
	}
	return &c
}
