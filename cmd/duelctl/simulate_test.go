package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabduel/internal/models"
)

func simTheme() *models.Theme {
	theme := &models.Theme{ID: "sim-theme", Name: "Numbers"}
	for i := 0; i < 8; i++ {
		entry := models.WordEntry{Prompt: fmt.Sprintf("prompt-%d", i), CorrectAnswer: fmt.Sprintf("answer%d", i)}
		for j := 1; j <= 5; j++ {
			entry.WrongAnswers = append(entry.WrongAnswers, fmt.Sprintf("answer%d", (i+j)%8))
		}
		theme.Words = append(theme.Words, entry)
	}
	return theme
}

func TestSimulate(t *testing.T) {
	tests := []struct {
		name       string
		sim        simulation
		wantStatus models.Status
		check      func(t *testing.T, res simulationResult)
	}{
		{
			name:       "classic perfect play",
			sim:        simulation{Mode: models.ModeClassic, Seed: 7, Accuracy: 1},
			wantStatus: models.StatusCompleted,
			check: func(t *testing.T, res simulationResult) {
				assert.Equal(t, 16, res.Answers)
				for _, role := range models.Roles {
					p := res.Duel.Player(role)
					assert.Equal(t, 8, p.Stats.Correct)
					assert.Positive(t, p.Score)
				}
				assert.Equal(t, res.Duel.Player(models.RoleChallenger).Score, res.Duel.Player(models.RoleOpponent).Score)
			},
		},
		{
			name:       "classic always wrong",
			sim:        simulation{Mode: models.ModeClassic, Seed: 7, Accuracy: 0},
			wantStatus: models.StatusCompleted,
			check: func(t *testing.T, res simulationResult) {
				for _, role := range models.Roles {
					assert.Zero(t, res.Duel.Player(role).Score)
					assert.Equal(t, 8, res.Duel.Player(role).Stats.Incorrect)
				}
			},
		},
		{
			name:       "solo-style perfect play",
			sim:        simulation{Mode: models.ModeSoloStyle, Seed: 7, Accuracy: 1},
			wantStatus: models.StatusCompleted,
			check: func(t *testing.T, res simulationResult) {
				for _, role := range models.Roles {
					assert.Equal(t, 8, res.Duel.Player(role).MasteredCount())
				}
			},
		},
		{
			name:       "solo-style never finishes",
			sim:        simulation{Mode: models.ModeSoloStyle, Seed: 7, Accuracy: 0},
			wantStatus: models.StatusStopped,
			check: func(t *testing.T, res simulationResult) {
				assert.GreaterOrEqual(t, res.Answers, maxSimulatedAnswers)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := simulate(simTheme(), tt.sim)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Duel.Status)
			tt.check(t, res)
		})
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	sim := simulation{Mode: models.ModeSoloStyle, Seed: 99, Accuracy: 0.7}
	first, err := simulate(simTheme(), sim)
	require.NoError(t, err)
	second, err := simulate(simTheme(), sim)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSimulateRejectsBadInput(t *testing.T) {
	_, err := simulate(simTheme(), simulation{Mode: "tag-team", Seed: 1, Accuracy: 1})
	assert.Error(t, err)

	_, err = simulate(simTheme(), simulation{Mode: models.ModeClassic, Preset: "impossible", Seed: 1, Accuracy: 1})
	assert.Error(t, err)
}

func TestPrintSimulation(t *testing.T) {
	res, err := simulate(simTheme(), simulation{Mode: models.ModeClassic, Seed: 3, Accuracy: 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	printSimulation(&buf, simTheme(), res)
	out := buf.String()
	assert.Contains(t, out, `theme "Numbers", classic duel`)
	assert.Contains(t, out, "completed after 16 answers")
	assert.Contains(t, out, "challenger")
	assert.Contains(t, out, "opponent")
}
