package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"vocabduel/internal/database"
	"vocabduel/internal/models"
)

// ThemeRepository handles database operations for themes and their words
type ThemeRepository struct {
	db *database.DB
}

// NewThemeRepository creates a new theme repository
func NewThemeRepository(db *database.DB) *ThemeRepository {
	return &ThemeRepository{db: db}
}

// Create stores a theme and its words in one transaction
func (r *ThemeRepository) Create(ctx context.Context, theme *models.Theme) error {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO themes (id, name, created_at) VALUES (?, ?, ?)",
			theme.ID, theme.Name, theme.CreatedAt.UnixMilli())
		if err != nil {
			return err
		}
		return insertWords(ctx, tx, theme.ID, theme.Words)
	})
	if err != nil {
		return fmt.Errorf("failed to create theme: %w", err)
	}
	return nil
}

func insertWords(ctx context.Context, db database.DBTX, themeID string, words []models.WordEntry) error {
	query := `
		INSERT INTO theme_words (theme_id, position, prompt, correct_answer, wrong_answers)
		VALUES (?, ?, ?, ?, ?)
	`
	for i, w := range words {
		wrong, err := json.Marshal(w.WrongAnswers)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, query, themeID, i, w.Prompt, w.CorrectAnswer, string(wrong)); err != nil {
			return fmt.Errorf("word %d: %w", i, err)
		}
	}
	return nil
}

// GetByID retrieves a theme with its words in order. It returns nil when the theme does not exist.
func (r *ThemeRepository) GetByID(ctx context.Context, id string) (*models.Theme, error) {
	theme := &models.Theme{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx, "SELECT id, name, created_at FROM themes WHERE id = ?", id).
		Scan(&theme.ID, &theme.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	theme.CreatedAt = time.UnixMilli(createdAt).UTC()

	rows, err := r.db.QueryContext(ctx, `
		SELECT prompt, correct_answer, wrong_answers
		FROM theme_words
		WHERE theme_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get theme words: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w models.WordEntry
		var wrong string
		if err := rows.Scan(&w.Prompt, &w.CorrectAnswer, &wrong); err != nil {
			return nil, fmt.Errorf("failed to scan theme word: %w", err)
		}
		if err := json.Unmarshal([]byte(wrong), &w.WrongAnswers); err != nil {
			return nil, fmt.Errorf("failed to decode wrong answers: %w", err)
		}
		theme.Words = append(theme.Words, w)
	}
	return theme, rows.Err()
}

// List returns every theme without its words, newest first
func (r *ThemeRepository) List(ctx context.Context) ([]models.ThemeSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at, COUNT(w.position)
		FROM themes t
		LEFT JOIN theme_words w ON w.theme_id = t.id
		GROUP BY t.id, t.name, t.created_at
		ORDER BY t.created_at DESC, t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	defer rows.Close()

	var themes []models.ThemeSummary
	for rows.Next() {
		var s models.ThemeSummary
		var createdAt int64
		if err := rows.Scan(&s.ID, &s.Name, &createdAt, &s.WordCount); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		s.CreatedAt = time.UnixMilli(createdAt).UTC()
		themes = append(themes, s)
	}
	return themes, rows.Err()
}
