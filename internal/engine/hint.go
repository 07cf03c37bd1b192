package engine

import (
	"slices"
	"unicode/utf8"

	"github.com/samber/lo"

	"vocabduel/internal/models"
)

// Per-request caps on what the helper may reveal
const (
	MaxLetterHints  = 3
	MaxEliminations = 2
)

// letterHintTypes returns the types the helper may grant on the letters channel
func letterHintTypes(presentation models.Presentation) []models.HintType {
	if presentation == models.PresentationTyping {
		return []models.HintType{models.HintLetters, models.HintFlash, models.HintTTS, models.HintAnagram}
	}
	return []models.HintType{models.HintFlash, models.HintTTS, models.HintAnagram}
}

var optionHintTypes = []models.HintType{models.HintEliminate, models.HintFlash, models.HintTTS}

// hintableQuestion checks that role is in the middle of a question it can be helped with
func hintableQuestion(d *models.Duel, theme *models.Theme, role models.Role) (models.WordEntry, models.Presentation, []string, error) {
	if !d.Status.IsActive() {
		return models.WordEntry{}, "", nil, invalidState("duel is %s", d.Status)
	}
	if d.Phase != models.PhaseAnswering {
		return models.WordEntry{}, "", nil, invalidState("hints are only available while answering")
	}
	entry, presentation, options, ok := currentQuestion(d, theme, role)
	if !ok {
		return models.WordEntry{}, "", nil, invalidState("%s has no current question", role)
	}
	if d.Player(role).Answered {
		return models.WordEntry{}, "", nil, preconditionFailed("%s has already answered", role)
	}
	return entry, presentation, options, nil
}

func grantHint(d *models.Duel, requester models.Role) {
	d.Player(requester).HintReceived = true
	d.Player(requester).Stats.HintsUsed++
	d.Player(requester.Other()).Stats.HintsGiven++
}

// requestLetterHint opens the letters channel
func requestLetterHint(d *models.Duel, theme *models.Theme, role models.Role, typed []string, revealed []int, now int64) error {
	if d.HintLetters != nil {
		return preconditionFailed("a letter hint request is already %s", d.HintLetters.Status)
	}
	entry, _, _, err := hintableQuestion(d, theme, role)
	if err != nil {
		return err
	}
	if err := checkPositions(revealed, entry.CorrectAnswer); err != nil {
		return err
	}
	d.HintLetters = &models.LetterHint{
		RequestedBy:       role,
		Status:            models.HintPending,
		TypedLetters:      slices.Clone(typed),
		RevealedPositions: slices.Clone(revealed),
		ProvidedPositions: []int{},
		RequestedAt:       now,
	}
	return nil
}

// acceptLetterHint lets the helper pick the kind of hint
func acceptLetterHint(d *models.Duel, theme *models.Theme, role models.Role, hintType models.HintType) error {
	h := d.HintLetters
	if h == nil {
		return preconditionFailed("no letter hint request is open")
	}
	if h.Status != models.HintPending {
		return preconditionFailed("letter hint request is already %s", h.Status)
	}
	if role == h.RequestedBy {
		return preconditionFailed("only the opponent can accept a hint request")
	}
	entry, presentation, _, err := hintableQuestion(d, theme, h.RequestedBy)
	if err != nil {
		return err
	}
	if !slices.Contains(letterHintTypes(presentation), hintType) {
		return preconditionFailed("hint type %q is not available for a %s question", hintType, presentation)
	}

	h.Status = models.HintAccepted
	h.HintType = hintType
	switch hintType {
	case models.HintAnagram:
		h.Anagram, d.Seed = scrambleAnswer(entry.CorrectAnswer, d.Seed)
	case models.HintFlash:
		h.Flash = entry.CorrectAnswer
	}
	grantHint(d, h.RequestedBy)
	return nil
}

// provideLetter reveals one more position of the requester's answer
func provideLetter(d *models.Duel, theme *models.Theme, role models.Role, position int) error {
	h := d.HintLetters
	if h == nil || h.Status != models.HintAccepted || h.HintType != models.HintLetters {
		return preconditionFailed("no accepted letters hint is open")
	}
	if role == h.RequestedBy {
		return preconditionFailed("only the opponent can provide letters")
	}
	if len(h.ProvidedPositions) >= MaxLetterHints {
		return preconditionFailed("all %d letters have been provided", MaxLetterHints)
	}
	entry, _, _, err := hintableQuestion(d, theme, h.RequestedBy)
	if err != nil {
		return err
	}
	if err := checkPositions([]int{position}, entry.CorrectAnswer); err != nil {
		return err
	}
	if slices.Contains(h.RevealedPositions, position) || slices.Contains(h.ProvidedPositions, position) {
		return preconditionFailed("position %d is already revealed", position)
	}
	h.ProvidedPositions = append(h.ProvidedPositions, position)
	h.RevealedPositions = append(h.RevealedPositions, position)
	h.RevealedLetters = append(h.RevealedLetters, models.RevealedLetter{
		Position: position,
		Letter:   string([]rune(entry.CorrectAnswer)[position]),
	})
	return nil
}

// updateLetterHintState mirrors the requester's typing to the helper.
// Positions and letters the helper provided stay revealed whatever the requester reports.
func updateLetterHintState(d *models.Duel, theme *models.Theme, role models.Role, typed []string, revealed []int) error {
	h := d.HintLetters
	if h == nil {
		return preconditionFailed("no letter hint request is open")
	}
	if role != h.RequestedBy {
		return preconditionFailed("only the requester can update the hint state")
	}
	entry, _, _, err := hintableQuestion(d, theme, role)
	if err != nil {
		return err
	}
	if err := checkPositions(revealed, entry.CorrectAnswer); err != nil {
		return err
	}
	h.TypedLetters = slices.Clone(typed)
	h.RevealedPositions = lo.Union(revealed, h.ProvidedPositions)
	return nil
}

// cancelLetterHint closes the letters channel; either side may do so
func cancelLetterHint(d *models.Duel) error {
	if d.HintLetters == nil {
		return preconditionFailed("no letter hint request is open")
	}
	d.HintLetters = nil
	return nil
}

// requestOptionHint opens the multiple-choice channel
func requestOptionHint(d *models.Duel, theme *models.Theme, role models.Role, options []string, now int64) error {
	if d.HintOptions != nil {
		return preconditionFailed("an option hint request is already %s", d.HintOptions.Status)
	}
	_, presentation, current, err := hintableQuestion(d, theme, role)
	if err != nil {
		return err
	}
	if presentation != models.PresentationMultipleChoice {
		return preconditionFailed("option hints need a multiple choice question")
	}
	if len(options) != len(current) || len(lo.Intersect(options, current)) != len(current) {
		return preconditionFailed("options do not match the current question")
	}
	d.HintOptions = &models.OptionHint{
		RequestedBy:       role,
		Status:            models.HintPending,
		Options:           slices.Clone(options),
		EliminatedOptions: []string{},
		RequestedAt:       now,
	}
	return nil
}

// acceptOptionHint lets the helper pick the kind of hint
func acceptOptionHint(d *models.Duel, theme *models.Theme, role models.Role, hintType models.HintType) error {
	h := d.HintOptions
	if h == nil {
		return preconditionFailed("no option hint request is open")
	}
	if h.Status != models.HintPending {
		return preconditionFailed("option hint request is already %s", h.Status)
	}
	if role == h.RequestedBy {
		return preconditionFailed("only the opponent can accept a hint request")
	}
	entry, _, _, err := hintableQuestion(d, theme, h.RequestedBy)
	if err != nil {
		return err
	}
	if !slices.Contains(optionHintTypes, hintType) {
		return preconditionFailed("hint type %q is not available for option hints", hintType)
	}
	h.Status = models.HintAccepted
	h.HintType = hintType
	if hintType == models.HintFlash {
		h.Flash = correctOption(h.Options, entry)
	}
	grantHint(d, h.RequestedBy)
	return nil
}

// eliminateOption strikes one wrong option for the requester
func eliminateOption(d *models.Duel, theme *models.Theme, role models.Role, option string) error {
	h := d.HintOptions
	if h == nil || h.Status != models.HintAccepted || h.HintType != models.HintEliminate {
		return preconditionFailed("no accepted eliminate hint is open")
	}
	if role == h.RequestedBy {
		return preconditionFailed("only the opponent can eliminate options")
	}
	if len(h.EliminatedOptions) >= MaxEliminations {
		return preconditionFailed("all %d eliminations have been used", MaxEliminations)
	}
	entry, _, _, err := hintableQuestion(d, theme, h.RequestedBy)
	if err != nil {
		return err
	}
	if !slices.Contains(h.Options, option) {
		return preconditionFailed("%q is not one of the options", option)
	}
	if normalizeAnswer(option) == normalizeAnswer(entry.CorrectAnswer) {
		return preconditionFailed("the correct option cannot be eliminated")
	}
	if slices.Contains(h.EliminatedOptions, option) {
		return preconditionFailed("%q is already eliminated", option)
	}
	h.EliminatedOptions = append(h.EliminatedOptions, option)
	return nil
}

// correctOption returns the option as it is displayed that matches the answer
func correctOption(options []string, entry models.WordEntry) string {
	option, ok := lo.Find(options, func(o string) bool {
		return normalizeAnswer(o) == normalizeAnswer(entry.CorrectAnswer)
	})
	if !ok {
		return entry.CorrectAnswer
	}
	return option
}

// cancelOptionHint closes the multiple-choice channel; only the requester may do so
func cancelOptionHint(d *models.Duel, role models.Role) error {
	if d.HintOptions == nil {
		return preconditionFailed("no option hint request is open")
	}
	if d.HintOptions.RequestedBy != role {
		return preconditionFailed("only the requester can cancel an option hint")
	}
	d.HintOptions = nil
	return nil
}

// clearHintsFor drops any request opened by role, used when role's question changes
func clearHintsFor(d *models.Duel, role models.Role) {
	if d.HintLetters != nil && d.HintLetters.RequestedBy == role {
		d.HintLetters = nil
	}
	if d.HintOptions != nil && d.HintOptions.RequestedBy == role {
		d.HintOptions = nil
	}
}

func checkPositions(positions []int, answer string) error {
	n := utf8.RuneCountInString(answer)
	for _, p := range positions {
		if p < 0 || p >= n {
			return preconditionFailed("position %d is outside the answer", p)
		}
	}
	return nil
}

// SpokenAnswer returns the text to read aloud for role's accepted tts hint
func SpokenAnswer(d *models.Duel, theme *models.Theme, role models.Role) (string, error) {
	accepted := (d.HintLetters != nil && d.HintLetters.RequestedBy == role &&
		d.HintLetters.Status == models.HintAccepted && d.HintLetters.HintType == models.HintTTS) ||
		(d.HintOptions != nil && d.HintOptions.RequestedBy == role &&
			d.HintOptions.Status == models.HintAccepted && d.HintOptions.HintType == models.HintTTS)
	if !accepted {
		return "", preconditionFailed("%s has no accepted audio hint", role)
	}
	entry, _, _, ok := currentQuestion(d, theme, role)
	if !ok {
		return "", invalidState("%s has no current question", role)
	}
	return entry.CorrectAnswer, nil
}
