package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"vocabduel/internal/database"
	"vocabduel/internal/models"
)

// ErrVersionConflict means another writer committed between our read and our write
var ErrVersionConflict = errors.New("duel was modified concurrently")

// DuelRepository stores each duel as one JSON document guarded by a version number
type DuelRepository struct {
	db *database.DB
}

// NewDuelRepository creates a new duel repository
func NewDuelRepository(db *database.DB) *DuelRepository {
	return &DuelRepository{db: db}
}

// Create inserts a new duel at version 1
func (r *DuelRepository) Create(ctx context.Context, d *models.Duel) error {
	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode duel: %w", err)
	}

	now := time.Now().UnixMilli()
	query := `
		INSERT INTO duels (id, challenger_id, opponent_id, theme_id, status, document, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		d.ID, d.ChallengerID, d.OpponentID, d.ThemeID, string(d.Status), string(doc), d.CreatedAt.UnixMilli(), now)
	if err != nil {
		return fmt.Errorf("failed to create duel: %w", err)
	}
	d.Version = 1
	return nil
}

// GetByID loads a duel. It returns nil when the duel does not exist.
func (r *DuelRepository) GetByID(ctx context.Context, id string) (*models.Duel, error) {
	var doc string
	var version int64
	err := r.db.QueryRowContext(ctx, "SELECT document, version FROM duels WHERE id = ?", id).Scan(&doc, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}

	d := &models.Duel{}
	if err := json.Unmarshal([]byte(doc), d); err != nil {
		return nil, fmt.Errorf("failed to decode duel %s: %w", id, err)
	}
	d.Version = version
	return d, nil
}

// Update replaces the document only if nobody else has written since d.Version was read.
// On success d.Version is advanced.
func (r *DuelRepository) Update(ctx context.Context, d *models.Duel) error {
	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode duel: %w", err)
	}

	query := `
		UPDATE duels
		SET document = ?, status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query, string(doc), string(d.Status), time.Now().UnixMilli(), d.ID, d.Version)
	if err != nil {
		return fmt.Errorf("failed to update duel: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if rows == 0 {
		return ErrVersionConflict
	}
	d.Version++
	return nil
}

// ListIDsByStatus returns the ids of duels in any of the given statuses created before cutoff, oldest first
func (r *DuelRepository) ListIDsByStatus(ctx context.Context, cutoff time.Time, statuses ...models.Status) ([]string, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	filter, filterArgs := r.db.Dialect.InClause("status", lo.Map(statuses, func(s models.Status, _ int) string { return string(s) }))
	query := "SELECT id FROM duels WHERE created_at < ? AND " + filter + " ORDER BY created_at"
	args := append([]any{cutoff.UnixMilli()}, filterArgs...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list duels: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan duel id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListForPlayer returns every duel a player takes part in, newest first
func (r *DuelRepository) ListForPlayer(ctx context.Context, playerID string) ([]*models.Duel, error) {
	return r.list(ctx, `
		SELECT document, version FROM duels
		WHERE challenger_id = ? OR opponent_id = ?
		ORDER BY created_at DESC
	`, playerID, playerID)
}

// ListAll returns every duel, oldest first
func (r *DuelRepository) ListAll(ctx context.Context) ([]*models.Duel, error) {
	return r.list(ctx, "SELECT document, version FROM duels ORDER BY created_at")
}

func (r *DuelRepository) list(ctx context.Context, query string, args ...any) ([]*models.Duel, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list duels: %w", err)
	}
	defer rows.Close()

	var duels []*models.Duel
	for rows.Next() {
		var doc string
		var version int64
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, fmt.Errorf("failed to scan duel: %w", err)
		}
		d := &models.Duel{}
		if err := json.Unmarshal([]byte(doc), d); err != nil {
			return nil, fmt.Errorf("failed to decode duel: %w", err)
		}
		d.Version = version
		duels = append(duels, d)
	}
	return duels, rows.Err()
}
