package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"vocabduel/internal/engine"
	"vocabduel/internal/models"
)

// ThemeService loads and serves the word lists duels are played over
type ThemeService struct {
	themes ThemeStore
	now    func() time.Time
}

// NewThemeService creates a new theme service
func NewThemeService(themes ThemeStore) *ThemeService {
	return &ThemeService{themes: themes, now: time.Now}
}

// Create stores a theme under a fresh id
func (s *ThemeService) Create(ctx context.Context, name string, words []models.WordEntry) (*models.Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: theme name is required", engine.ErrPreconditionFailed)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: theme %q has no words", engine.ErrPreconditionFailed, name)
	}

	theme := &models.Theme{
		ID:        uuid.NewString(),
		Name:      name,
		Words:     words,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.themes.Create(ctx, theme); err != nil {
		return nil, fmt.Errorf("failed to create theme: %w", err)
	}
	return theme, nil
}

// Get returns a theme with its words
func (s *ThemeService) Get(ctx context.Context, id string) (*models.Theme, error) {
	theme, err := s.themes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	if theme == nil {
		return nil, fmt.Errorf("%w: theme %s", engine.ErrNotFound, id)
	}
	return theme, nil
}

// List returns every theme without its words
func (s *ThemeService) List(ctx context.Context) ([]models.ThemeSummary, error) {
	return s.themes.List(ctx)
}

// SeedDefaultThemes creates the built-in themes if no theme with the same name exists
func (s *ThemeService) SeedDefaultThemes(ctx context.Context) error {
	existing, err := s.themes.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, t := range existing {
		names[t.Name] = true
	}

	for _, seed := range defaultThemes {
		if names[seed.name] {
			slog.Info("Default theme already exists, skipping seed", "theme", seed.name)
			continue
		}
		theme, err := s.Create(ctx, seed.name, withDistractors(seed.pairs))
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", seed.name, err)
		}
		slog.Info("Seeded default theme", "theme", theme.Name, "words", len(theme.Words))
	}
	return nil
}

// seedDistractors covers the widest option set any difficulty asks for
const seedDistractors = 5

type themeSeed struct {
	name  string
	pairs [][2]string
}

var defaultThemes = []themeSeed{
	{
		name: "German: Animals",
		pairs: [][2]string{
			{"der Hund", "dog"}, {"die Katze", "cat"}, {"das Pferd", "horse"}, {"die Kuh", "cow"},
			{"der Vogel", "bird"}, {"der Fisch", "fish"}, {"die Maus", "mouse"}, {"das Schaf", "sheep"},
			{"das Schwein", "pig"}, {"die Ente", "duck"}, {"der Bär", "bear"}, {"der Fuchs", "fox"},
		},
	},
	{
		name: "Spanish: Food",
		pairs: [][2]string{
			{"el pan", "bread"}, {"la leche", "milk"}, {"el queso", "cheese"}, {"la manzana", "apple"},
			{"el huevo", "egg"}, {"el arroz", "rice"}, {"la sopa", "soup"}, {"el pollo", "chicken"},
			{"la naranja", "orange"}, {"el agua", "water"},
		},
	},
	{
		name: "French: Colours",
		pairs: [][2]string{
			{"rouge", "red"}, {"bleu", "blue"}, {"vert", "green"}, {"jaune", "yellow"},
			{"noir", "black"}, {"blanc", "white"}, {"gris", "grey"}, {"rose", "pink"},
			{"violet", "purple"}, {"marron", "brown"},
		},
	},
}

// withDistractors uses the other answers of a seed list as wrong options
func withDistractors(pairs [][2]string) []models.WordEntry {
	words := make([]models.WordEntry, len(pairs))
	for i, p := range pairs {
		wrong := make([]string, 0, seedDistractors)
		for j := 1; len(wrong) < seedDistractors && j < len(pairs); j++ {
			wrong = append(wrong, pairs[(i+j)%len(pairs)][1])
		}
		words[i] = models.WordEntry{Prompt: p[0], CorrectAnswer: p[1], WrongAnswers: wrong}
	}
	return words
}
