package handlers

import "vocabduel/internal/models"

type noBody struct{}

type createChallengeRequest struct {
	OpponentID string `json:"opponent_id" validate:"required,max=128"`
	ThemeID    string `json:"theme_id" validate:"required,max=128"`
	Mode       string `json:"mode" validate:"omitempty,mode"`
	Preset     string `json:"preset" validate:"omitempty,preset"`
}

type answerRequest struct {
	Answer        string `json:"answer" validate:"max=200"`
	QuestionIndex *int   `json:"question_index" validate:"required,gte=0"`
}

type timeoutRequest struct {
	QuestionIndex *int `json:"question_index" validate:"required,gte=0"`
}

type letterStateRequest struct {
	TypedLetters      []string `json:"typed_letters" validate:"max=200"`
	RevealedPositions []int    `json:"revealed_positions" validate:"max=200,dive,gte=0"`
}

type hintTypeRequest struct {
	HintType string `json:"hint_type" validate:"required,hinttype"`
}

type provideLetterRequest struct {
	Position *int `json:"position" validate:"required,gte=0"`
}

type optionsRequest struct {
	Options []string `json:"options" validate:"required,min=1,max=10"`
}

type eliminateRequest struct {
	Option string `json:"option" validate:"required"`
}

type sabotageRequest struct {
	Effect string `json:"effect" validate:"required,sabotage"`
}

type createThemeRequest struct {
	Name  string         `json:"name" validate:"required,max=100"`
	Words []themeWordDTO `json:"words" validate:"required,min=1,max=500,dive"`
}

type themeWordDTO struct {
	Prompt        string   `json:"prompt" validate:"required,max=200"`
	CorrectAnswer string   `json:"correct_answer" validate:"required,max=200"`
	WrongAnswers  []string `json:"wrong_answers" validate:"max=20,dive,required"`
}

func (r createThemeRequest) entries() []models.WordEntry {
	words := make([]models.WordEntry, len(r.Words))
	for i, w := range r.Words {
		words[i] = models.WordEntry{Prompt: w.Prompt, CorrectAnswer: w.CorrectAnswer, WrongAnswers: w.WrongAnswers}
	}
	return words
}
