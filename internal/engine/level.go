package engine

import "vocabduel/internal/models"

// Level transition probabilities for solo-style words
const (
	Level1StartProbability  = 0.6
	Level2TypingProbability = 0.5
	L1ToL2Probability       = 0.7
	L2StayProbability       = 0.3

	MaxLevel = 3
)

// DetermineInitialLevel decides whether a freshly introduced word starts at level 1 or 2
func DetermineInitialLevel(seed uint32) (int, uint32) {
	low, seed := Chance(seed, Level1StartProbability)
	if low {
		return 1, seed
	}
	return 2, seed
}

// DetermineLevel2Mode picks how a level 2 word is presented
func DetermineLevel2Mode(seed uint32) (models.Presentation, uint32) {
	typing, seed := Chance(seed, Level2TypingProbability)
	if typing {
		return models.PresentationTyping, seed
	}
	return models.PresentationMultipleChoice, seed
}

// UpdateWordStateAfterAnswer returns the word's next level and whether it is now mastered.
// Only correct answers at levels 1 and 2 consume randomness.
func UpdateWordStateAfterAnswer(level int, correct bool, seed uint32) (int, bool, uint32) {
	if !correct {
		if level > 1 {
			level--
		}
		return level, false, seed
	}

	switch level {
	case 1:
		promote, seed := Chance(seed, L1ToL2Probability)
		if promote {
			return 2, false, seed
		}
		return 1, false, seed
	case 2:
		stay, seed := Chance(seed, L2StayProbability)
		if stay {
			return 2, false, seed
		}
		return 3, false, seed
	default:
		return MaxLevel, true, seed
	}
}

// PresentationFor returns how a word at level with the given level-2 mode is shown
func PresentationFor(level int, level2Mode models.Presentation) models.Presentation {
	switch level {
	case 1:
		return models.PresentationMultipleChoice
	case 2:
		if level2Mode == models.PresentationTyping {
			return models.PresentationTyping
		}
		return models.PresentationMultipleChoice
	default:
		return models.PresentationTyping
	}
}

// pointsForLevel is the solo-style reward for a correct answer
func pointsForLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// wrongCountForLevel mirrors the classic bands: level 1 shows easy-sized option sets
func wrongCountForLevel(level int) int {
	if level <= 1 {
		return difficultyBands[models.DifficultyEasy].WrongAnswerCount
	}
	return difficultyBands[models.DifficultyMedium].WrongAnswerCount
}
