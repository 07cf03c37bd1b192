package models

import "time"

// Theme is the word list a duel is played over. It is never mutated while a duel runs.
type Theme struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Words     []WordEntry `json:"words"`
	CreatedAt time.Time   `json:"created_at"`
}

// WordEntry is a single question: the prompt, its translation and the distractors
type WordEntry struct {
	Prompt        string   `json:"prompt"`
	CorrectAnswer string   `json:"correct_answer"`
	WrongAnswers  []string `json:"wrong_answers"`
}

// ThemeSummary is a theme without its words
type ThemeSummary struct {
	ID        string
	Name      string
	WordCount int
	CreatedAt time.Time
}

// Word returns the entry at index, or false when the index is out of range
func (t *Theme) Word(index int) (WordEntry, bool) {
	if index < 0 || index >= len(t.Words) {
		return WordEntry{}, false
	}
	return t.Words[index], true
}
