package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"vocabduel/internal/engine"
	"vocabduel/internal/models"
)

// maxSimulatedAnswers bounds a solo-style run where the bots keep missing
const maxSimulatedAnswers = 5000

var (
	simChallenger = "bot-challenger"
	simOpponent   = "bot-opponent"
	simStart      = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
)

type simulation struct {
	Mode     models.Mode
	Preset   string
	Seed     uint32
	Accuracy float64
}

type simulationResult struct {
	Duel    *models.Duel
	Seed    uint32
	Answers int
	Elapsed time.Duration
}

// simulate plays a whole duel between two bots through the engine. Bots answer
// correctly with probability Accuracy, drawn from a generator seeded off Seed, so
// the same inputs always replay the same duel.
func simulate(theme *models.Theme, sim simulation) (simulationResult, error) {
	now := simStart
	d, err := engine.NewChallenge(engine.Challenge{
		ID:           fmt.Sprintf("sim-%d", sim.Seed),
		ChallengerID: simChallenger,
		OpponentID:   simOpponent,
		Theme:        theme,
		Mode:         sim.Mode,
		Rules:        models.Rules{Preset: sim.Preset},
	}, now)
	if err != nil {
		return simulationResult{}, err
	}
	d, err = engine.Apply(d, theme, engine.Command{Type: engine.CmdAccept, PlayerID: simOpponent, Seed: sim.Seed}, now)
	if err != nil {
		return simulationResult{}, err
	}

	botSeed := engine.NormalizeSeed(^sim.Seed)
	answers := 0
	for d.Status.IsActive() && answers < maxSimulatedAnswers {
		if d.Mode == models.ModeClassic && d.Phase == models.PhaseTransition {
			now = now.Add(d.Rules.TransitionDuration())
			d, _ = engine.Resolve(d, now)
			continue
		}
		now = now.Add(time.Second)

		progressed := false
		for _, role := range models.Roles {
			p := d.Player(role)
			if p.Answered || p.Finished || d.Phase != models.PhaseAnswering {
				continue
			}
			index, word := d.CurrentWordIndex, -1
			if d.Mode == models.ModeSoloStyle {
				index, word = p.CurrentWordIndex, p.CurrentWordIndex
			} else if index < len(d.WordOrder) {
				word = d.WordOrder[index]
			}
			entry, ok := theme.Word(word)
			if !ok {
				continue
			}

			var correct bool
			correct, botSeed = engine.Chance(botSeed, sim.Accuracy)
			answer := entry.CorrectAnswer
			if !correct {
				answer = "?"
			}
			d, err = engine.Apply(d, theme, engine.Command{
				Type:          engine.CmdSubmitAnswer,
				PlayerID:      p.PlayerID,
				Answer:        answer,
				QuestionIndex: index,
			}, now)
			if err != nil {
				return simulationResult{}, fmt.Errorf("answer %d by %s: %w", answers, role, err)
			}
			answers++
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if d.Status.IsActive() {
		d, err = engine.Apply(d, theme, engine.Command{Type: engine.CmdStop, PlayerID: simChallenger}, now)
		if err != nil {
			return simulationResult{}, err
		}
	}
	return simulationResult{Duel: d, Seed: sim.Seed, Answers: answers, Elapsed: now.Sub(simStart)}, nil
}

func printSimulation(w io.Writer, theme *models.Theme, res simulationResult) {
	d := res.Duel
	fmt.Fprintf(w, "theme %q, %s duel, seed %d: %s after %d answers (%s of play)\n",
		theme.Name, d.Mode, res.Seed, d.Status, res.Answers, res.Elapsed)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tSCORE\tCORRECT\tINCORRECT\tMASTERED")
	for _, role := range models.Roles {
		p := d.Player(role)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", role, p.Score, p.Stats.Correct, p.Stats.Incorrect, p.MasteredCount())
	}
	tw.Flush()
}
