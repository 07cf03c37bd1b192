package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/lmittmann/tint"

	"vocabduel/internal/config"
	"vocabduel/internal/database"
	"vocabduel/internal/models"
	"vocabduel/internal/repository"
	"vocabduel/internal/security"
	"vocabduel/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	themeCmd := flag.NewFlagSet("theme", flag.ExitOnError)
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	simulateCmd := flag.NewFlagSet("simulate", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	// Theme flags
	themeInput := themeCmd.String("input", "", "Theme JSON file (required)")

	// Token flags
	tokenPlayer := tokenCmd.String("player", "", "Player id to put in the token subject (required)")
	tokenTTL := tokenCmd.Duration("ttl", 24*time.Hour, "Token lifetime")

	// Simulate flags
	simTheme := simulateCmd.String("theme", "", "Theme id (default: first theme)")
	simMode := simulateCmd.String("mode", string(models.ModeClassic), "classic or solo-style")
	simPreset := simulateCmd.String("preset", "", "Difficulty preset for classic duels")
	simSeed := simulateCmd.Uint("seed", 1, "Duel seed")
	simAccuracy := simulateCmd.Float64("accuracy", 0.8, "Chance each bot answers correctly")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: cfg.LogLevel, TimeFormat: time.Kitchen})))

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		err = withDB(ctx, cfg, func(db *database.DB) error {
			return handleExport(ctx, service.NewBackupService(db), *exportOutput)
		})

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		err = withDB(ctx, cfg, func(db *database.DB) error {
			return handleImport(ctx, service.NewBackupService(db), *importInput, *importClear)
		})

	case "seed":
		seedCmd.Parse(os.Args[2:])
		err = withDB(ctx, cfg, func(db *database.DB) error {
			return service.NewThemeService(repository.NewThemeRepository(db)).SeedDefaultThemes(ctx)
		})

	case "theme":
		themeCmd.Parse(os.Args[2:])
		if *themeInput == "" {
			fmt.Println("Error: -input flag is required")
			themeCmd.PrintDefaults()
			os.Exit(1)
		}
		err = withDB(ctx, cfg, func(db *database.DB) error {
			return handleThemeImport(ctx, service.NewThemeService(repository.NewThemeRepository(db)), *themeInput)
		})

	case "token":
		tokenCmd.Parse(os.Args[2:])
		if *tokenPlayer == "" {
			fmt.Println("Error: -player flag is required")
			tokenCmd.PrintDefaults()
			os.Exit(1)
		}
		var token string
		token, err = security.NewTokenVerifier(cfg.JWTSecret).Sign(*tokenPlayer, *tokenTTL)
		if err == nil {
			fmt.Println(token)
		}

	case "simulate":
		simulateCmd.Parse(os.Args[2:])
		err = withDB(ctx, cfg, func(db *database.DB) error {
			themes := service.NewThemeService(repository.NewThemeRepository(db))
			theme, err := pickTheme(ctx, themes, *simTheme)
			if err != nil {
				return err
			}
			res, err := simulate(theme, simulation{
				Mode:     models.Mode(*simMode),
				Preset:   *simPreset,
				Seed:     uint32(*simSeed),
				Accuracy: *simAccuracy,
			})
			if err != nil {
				return err
			}
			printSimulation(os.Stdout, theme, res)
			return nil
		})

	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		slog.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// withDB opens the configured database, brings the schema up to date and runs fn
func withDB(ctx context.Context, cfg *config.Config, fn func(*database.DB) error) error {
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return fn(db)
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) error {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	slog.Info("Exporting database", "path", outputPath)
	data, err := backupService.Export(ctx, outputPath)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fileInfo, err := os.Stat(outputPath)
	if err != nil {
		return err
	}
	slog.Info("Export complete",
		"themes", len(data.Themes),
		"duels", len(data.Duels),
		"size_mb", fmt.Sprintf("%.2f", float64(fileInfo.Size())/1024/1024))
	return nil
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string, clearData bool) error {
	// Check if file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputPath)
	}

	if clearData {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		confirmation, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(confirmation) != "yes" {
			slog.Info("Import cancelled")
			return nil
		}

		slog.Info("Clearing existing data...")
		if err := backupService.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear database: %w", err)
		}
	}

	slog.Info("Importing database", "path", inputPath)
	res, err := backupService.Import(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	slog.Info("Import complete",
		"themes", res.Themes,
		"duels", res.Duels,
		"skipped_themes", res.SkippedThemes,
		"skipped_duels", res.SkippedDuels)
	return nil
}

// themeFile is the on-disk format accepted by the theme subcommand
type themeFile struct {
	Name  string             `json:"name"`
	Words []models.WordEntry `json:"words"`
}

func handleThemeImport(ctx context.Context, themes *service.ThemeService, inputPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var tf themeFile
	if err := json.NewDecoder(f).Decode(&tf); err != nil {
		return fmt.Errorf("failed to parse %s: %w", inputPath, err)
	}

	theme, err := themes.Create(ctx, tf.Name, tf.Words)
	if err != nil {
		return err
	}
	slog.Info("Theme created", "id", theme.ID, "name", theme.Name, "words", len(theme.Words))
	return nil
}

func pickTheme(ctx context.Context, themes *service.ThemeService, id string) (*models.Theme, error) {
	if id != "" {
		return themes.Get(ctx, id)
	}
	summaries, err := themes.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("no themes found, run the seed command first")
	}
	return themes.Get(ctx, summaries[0].ID)
}

func printUsage() {
	fmt.Println("Vocab Duel Admin Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  duelctl export [-output <file>]")
	fmt.Println("  duelctl import -input <file> [-clear]")
	fmt.Println("  duelctl seed")
	fmt.Println("  duelctl theme -input <file>")
	fmt.Println("  duelctl token -player <id> [-ttl 24h]")
	fmt.Println("  duelctl simulate [-theme <id>] [-mode classic|solo-style] [-seed N] [-accuracy 0.8]")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  duelctl export -output backups/backup.json")
	fmt.Println("  duelctl import -input backups/backup.json -clear")
	fmt.Println("  duelctl theme -input themes/italian_verbs.json")
	fmt.Println("  duelctl simulate -mode solo-style -seed 42")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE          Database type (sqlite, postgres, mysql)")
	fmt.Println("  DATABASE_URL     Database connection string")
	fmt.Println("  DB_PATH          SQLite database path (default: ./vocabduel.db)")
	fmt.Println("  MIGRATIONS_PATH  Migrations directory (default: ./migrations)")
	fmt.Println("  JWT_SECRET       Secret used to sign tokens")
}
