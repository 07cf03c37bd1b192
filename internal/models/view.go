package models

// DuelView is the read model sent to both clients after every mutation and on subscription.
// It never contains correct answers beyond what an accepted hint gives away; use For before
// handing it to a player.
type DuelView struct {
	ID               string              `json:"id"`
	ThemeID          string              `json:"theme_id"`
	Mode             Mode                `json:"mode"`
	Status           Status              `json:"status"`
	Phase            Phase               `json:"phase"`
	CurrentWordIndex int                 `json:"current_word_index"`
	TotalWords       int                 `json:"total_words"`
	Players          map[Role]PlayerView `json:"players"`
	HintLetters      *LetterHint         `json:"hint_letters,omitempty"`
	HintOptions      *OptionHint         `json:"hint_options,omitempty"`
	Timer            TimerView           `json:"timer"`
	ServerTime       int64               `json:"server_time"`
	Version          int64               `json:"version"`
}

// For returns the view as playerID may see it. What a hint gives away is kept from
// everyone but the player who asked for it.
func (v DuelView) For(playerID string) DuelView {
	if h := v.HintLetters; h != nil && v.Players[h.RequestedBy].PlayerID != playerID {
		c := *h
		c.RevealedLetters = nil
		c.Anagram = ""
		c.Flash = ""
		v.HintLetters = &c
	}
	if h := v.HintOptions; h != nil && v.Players[h.RequestedBy].PlayerID != playerID {
		c := *h
		c.Flash = ""
		v.HintOptions = &c
	}
	return v
}

// PlayerView is the public state of one participant
type PlayerView struct {
	PlayerID       string        `json:"player_id"`
	Score          int           `json:"score"`
	Answered       bool          `json:"answered"`
	Stats          Stats         `json:"stats"`
	SabotagesUsed  int           `json:"sabotages_used"`
	SabotagesLeft  int           `json:"sabotages_left"`
	ActiveSabotage *Sabotage     `json:"active_sabotage,omitempty"`
	Question       *QuestionView `json:"question,omitempty"`
	MasteredCount  int           `json:"mastered_count,omitempty"`
	ActivePoolSize int           `json:"active_pool_size,omitempty"`
	Finished       bool          `json:"finished"`
}

// QuestionView is what a player is currently being asked
type QuestionView struct {
	Index        int          `json:"index"`
	Prompt       string       `json:"prompt"`
	Options      []string     `json:"options,omitempty"`
	AnswerLength int          `json:"answer_length"`
	Difficulty   Difficulty   `json:"difficulty,omitempty"`
	Level        int          `json:"level,omitempty"`
	Points       int          `json:"points"`
	Presentation Presentation `json:"presentation"`
}

// TimerView carries the server-side timing facts; client countdowns are derived from it
type TimerView struct {
	QuestionStartTime     int64  `json:"question_start_time"`
	AnswerOpensAt         int64  `json:"answer_opens_at"`
	AnswerDeadline        int64  `json:"answer_deadline"`
	RemainingMs           int64  `json:"remaining_ms"`
	TransitionRemainingMs int64  `json:"transition_remaining_ms"`
	PausedAt              *int64 `json:"paused_at,omitempty"`
	PausedBy              Role   `json:"paused_by,omitempty"`
	UnpauseRequestedBy    Role   `json:"unpause_requested_by,omitempty"`
}
