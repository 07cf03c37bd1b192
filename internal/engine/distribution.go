package engine

import (
	"sort"

	"vocabduel/internal/models"
)

// Preset is a named difficulty curve given as whole percentages summing to 100
type Preset struct {
	Name   string
	Easy   int
	Medium int
	Hard   int
}

var presets = map[string]Preset{
	"easy":   {Name: "easy", Easy: 50, Medium: 30, Hard: 20},
	"medium": {Name: "medium", Easy: 30, Medium: 40, Hard: 30},
	"hard":   {Name: "hard", Easy: 20, Medium: 30, Hard: 50},
}

// DefaultPreset is used when a challenge names none
const DefaultPreset = "easy"

// PresetByName looks up a difficulty preset
func PresetByName(name string) (Preset, bool) {
	if name == "" {
		name = DefaultPreset
	}
	p, ok := presets[name]
	return p, ok
}

// QuestionDifficulty is what a classic question at a given position is worth
type QuestionDifficulty struct {
	Level            models.Difficulty
	Points           int
	WrongAnswerCount int
}

var difficultyBands = map[models.Difficulty]QuestionDifficulty{
	models.DifficultyEasy:   {Level: models.DifficultyEasy, Points: 1, WrongAnswerCount: 3},
	models.DifficultyMedium: {Level: models.DifficultyMedium, Points: 2, WrongAnswerCount: 4},
	models.DifficultyHard:   {Level: models.DifficultyHard, Points: 3, WrongAnswerCount: 5},
}

// CalculateDistribution splits wordCount into easy/medium/hard bands.
// Each band gets the floor of its share; leftover words go one at a time to the bands with the
// largest fractional remainder, ties going to the larger ratio and then to the easier band.
func CalculateDistribution(wordCount int, preset Preset) models.Distribution {
	if wordCount <= 0 {
		return models.Distribution{}
	}

	ratios := []int{preset.Easy, preset.Medium, preset.Hard}
	counts := make([]int, 3)
	remainders := make([]int, 3)
	assigned := 0
	for i, ratio := range ratios {
		raw := wordCount * ratio
		counts[i] = raw / 100
		remainders[i] = raw % 100
		assigned += counts[i]
	}

	order := []int{0, 1, 2}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if remainders[ia] != remainders[ib] {
			return remainders[ia] > remainders[ib]
		}
		return ratios[ia] > ratios[ib]
	})
	for i := 0; assigned < wordCount; i++ {
		counts[order[i%3]]++
		assigned++
	}

	return models.Distribution{Easy: counts[0], Medium: counts[1], Hard: counts[2]}
}

// DifficultyForIndex maps a position in the shuffled word order to its band.
// Bands are contiguous: every easy position comes first, then medium, then hard.
func DifficultyForIndex(index int, dist models.Distribution) QuestionDifficulty {
	switch {
	case index < dist.Easy:
		return difficultyBands[models.DifficultyEasy]
	case index < dist.Easy+dist.Medium:
		return difficultyBands[models.DifficultyMedium]
	default:
		return difficultyBands[models.DifficultyHard]
	}
}
