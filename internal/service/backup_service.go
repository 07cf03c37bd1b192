package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-json"

	"vocabduel/internal/database"
	"vocabduel/internal/models"
	"vocabduel/internal/repository"
)

// BackupFormatVersion is written into every export
const BackupFormatVersion = "1.0"

// BackupData is the complete export of themes and duels
type BackupData struct {
	Version      string          `json:"version"`
	ExportedAt   time.Time       `json:"exported_at"`
	DatabaseType string          `json:"database_type"`
	Themes       []*models.Theme `json:"themes"`
	Duels        []DuelBackup    `json:"duels"`
}

// DuelBackup is one stored duel. Version is informational, imported duels restart at version 1.
type DuelBackup struct {
	Version  int64        `json:"version"`
	Document *models.Duel `json:"document"`
}

// ImportResult counts what an import wrote and skipped
type ImportResult struct {
	Themes        int
	Duels         int
	SkippedThemes int
	SkippedDuels  int
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db     *database.DB
	themes *repository.ThemeRepository
	duels  *repository.DuelRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{
		db:     db,
		themes: repository.NewThemeRepository(db),
		duels:  repository.NewDuelRepository(db),
	}
}

// Export writes a complete backup to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) (*BackupData, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportTo(ctx, file)
	if err != nil {
		return nil, err
	}
	slog.Info("Database exported", "path", outputPath, "themes", len(backup.Themes), "duels", len(backup.Duels))
	return backup, nil
}

// ExportTo writes a complete backup as indented JSON to w
func (s *BackupService) ExportTo(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupFormatVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: "universal",
	}

	summaries, err := s.themes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export themes: %w", err)
	}
	for _, summary := range summaries {
		theme, err := s.themes.GetByID(ctx, summary.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export theme %s: %w", summary.ID, err)
		}
		if theme != nil {
			backup.Themes = append(backup.Themes, theme)
		}
	}

	duels, err := s.duels.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export duels: %w", err)
	}
	for _, d := range duels {
		backup.Duels = append(backup.Duels, DuelBackup{Version: d.Version, Document: d})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Import restores a backup file. Records whose id already exists are left untouched.
func (s *BackupService) Import(ctx context.Context, inputPath string) (ImportResult, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFrom(ctx, file)
}

// ImportFrom restores a backup read from r
func (s *BackupService) ImportFrom(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return res, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupFormatVersion {
		return res, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	for _, theme := range backup.Themes {
		existing, err := s.themes.GetByID(ctx, theme.ID)
		if err != nil {
			return res, fmt.Errorf("failed to check theme %s: %w", theme.ID, err)
		}
		if existing != nil {
			res.SkippedThemes++
			continue
		}
		if err := s.themes.Create(ctx, theme); err != nil {
			return res, fmt.Errorf("failed to import theme %s: %w", theme.ID, err)
		}
		res.Themes++
	}

	for _, entry := range backup.Duels {
		d := entry.Document
		if d == nil {
			continue
		}
		existing, err := s.duels.GetByID(ctx, d.ID)
		if err != nil {
			return res, fmt.Errorf("failed to check duel %s: %w", d.ID, err)
		}
		if existing != nil {
			res.SkippedDuels++
			continue
		}
		if err := s.duels.Create(ctx, d); err != nil {
			return res, fmt.Errorf("failed to import duel %s: %w", d.ID, err)
		}
		res.Duels++
	}

	slog.Info("Database imported",
		"themes", res.Themes, "duels", res.Duels,
		"skipped_themes", res.SkippedThemes, "skipped_duels", res.SkippedDuels)
	return res, nil
}

// Clear deletes every theme and duel
func (s *BackupService) Clear(ctx context.Context) error {
	// Delete in reverse order of dependencies
	tables := []string{"duels", "theme_words", "themes"}
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			slog.Info("Cleared table", "table", table)
		}
		return nil
	})
}
