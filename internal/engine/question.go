package engine

import (
	"strings"

	"github.com/samber/lo"

	"vocabduel/internal/models"
)

// normalizeAnswer compares answers case-insensitively with surrounding whitespace ignored
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckAnswer reports whether answer matches the entry's translation. Empty answers never match.
func CheckAnswer(entry models.WordEntry, answer string) bool {
	got := normalizeAnswer(answer)
	return got != "" && got == normalizeAnswer(entry.CorrectAnswer)
}

// BuildOptions draws wrongCount distractors and shuffles them together with the correct answer.
// Distractors that duplicate each other or the correct answer are dropped first.
func BuildOptions(entry models.WordEntry, wrongCount int, seed uint32) ([]string, uint32) {
	correct := normalizeAnswer(entry.CorrectAnswer)
	distractors := lo.UniqBy(lo.Filter(entry.WrongAnswers, func(w string, _ int) bool {
		n := normalizeAnswer(w)
		return n != "" && n != correct
	}), normalizeAnswer)

	distractors, seed = ShuffleStrings(seed, distractors)
	if wrongCount < len(distractors) {
		distractors = distractors[:wrongCount]
	}

	options := append([]string{entry.CorrectAnswer}, distractors...)
	return ShuffleStrings(seed, options)
}

// scrambleAnswer builds the anagram hint. A scramble that happens to equal the answer is rotated by one.
func scrambleAnswer(answer string, seed uint32) (string, uint32) {
	letters := strings.Split(answer, "")
	shuffled, seed := ShuffleStrings(seed, letters)
	out := strings.Join(shuffled, "")
	if out == answer && len(letters) > 1 {
		out = strings.Join(append(letters[1:], letters[0]), "")
	}
	return out, seed
}

// applyHintCost discounts a correct answer that was helped by an accepted hint
func applyHintCost(points int, hinted bool) int {
	if !hinted {
		return points
	}
	return max(1, points-1)
}

// classicEntry returns the theme entry behind the current classic question
func classicEntry(d *models.Duel, theme *models.Theme) (models.WordEntry, bool) {
	if d.CurrentWordIndex < 0 || d.CurrentWordIndex >= len(d.WordOrder) {
		return models.WordEntry{}, false
	}
	return theme.Word(d.WordOrder[d.CurrentWordIndex])
}

// currentQuestion resolves what role is being asked right now and how it is presented
func currentQuestion(d *models.Duel, theme *models.Theme, role models.Role) (models.WordEntry, models.Presentation, []string, bool) {
	if d.Mode == models.ModeClassic {
		entry, ok := classicEntry(d, theme)
		return entry, models.PresentationMultipleChoice, d.CurrentOptions, ok
	}
	p := d.Player(role)
	if p == nil || p.Finished {
		return models.WordEntry{}, "", nil, false
	}
	entry, ok := theme.Word(p.CurrentWordIndex)
	return entry, PresentationFor(p.CurrentLevel, p.CurrentLevel2Mode), p.CurrentOptions, ok
}
