package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"vocabduel/internal/audio"
	"vocabduel/internal/config"
	"vocabduel/internal/database"
	"vocabduel/internal/engine"
	"vocabduel/internal/handlers"
	"vocabduel/internal/hub"
	"vocabduel/internal/models"
	"vocabduel/internal/repository"
	"vocabduel/internal/security"
	"vocabduel/internal/service"
	"vocabduel/internal/validation"
)

func main() {
	// Load configuration
	cfg := config.Load()

	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.LogLevel,
			TimeFormat: time.Kitchen,
		}),
	))

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set, every API request will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("Database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		return err
	}
	slog.Info("Migrations completed successfully")

	// Initialize repositories
	themeRepo := repository.NewThemeRepository(db)
	duelRepo := repository.NewDuelRepository(db)

	// Initialize services
	h := hub.New(ctx, slog.Default())
	defer h.Shutdown()

	themeService := service.NewThemeService(themeRepo)
	duelService := service.NewDuelService(duelRepo, themeRepo, h, service.DuelOptions{
		Rules: models.Rules{
			Preset:            engine.DefaultPreset,
			QuestionSeconds:   cfg.QuestionSeconds,
			TransitionSeconds: cfg.TransitionSeconds,
			MaxSabotages:      cfg.MaxSabotages,
		},
		Retries: cfg.WriteRetries,
	})
	sweeper := service.NewSweeper(duelService, cfg.ChallengeTTL, cfg.HintRequestTTL)
	tts := audio.NewTTSService(cfg.AudioCachePath, cfg.AudioLanguage)

	// Seed default themes
	if err := themeService.SeedDefaultThemes(ctx); err != nil {
		slog.Warn("Failed to seed default themes", "error", err)
	}

	// Initialize handlers
	validate := validation.New()
	limiter := security.NewRateLimiter(ctx, cfg.RateLimit, cfg.RateWindow)
	router := handlers.SetupRoutes(handlers.RouterDeps{
		Middleware: handlers.NewMiddleware(security.NewTokenVerifier(cfg.JWTSecret)),
		Duels:      handlers.NewDuelHandler(duelService, h, tts, validate, cfg.WSOrigins),
		Themes:     handlers.NewThemeHandler(themeService, validate),
		RateLimit:  limiter.Middleware(handlers.PlayerKey),
	})

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx, cfg.SweepInterval)
	})
	g.Go(func() error {
		return purgeAudio(gctx, tts, cfg.AudioMaxAge)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// purgeAudio drops cached hint audio older than maxAge once an hour
func purgeAudio(ctx context.Context, tts *audio.TTSService, maxAge time.Duration) error {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := tts.Purge(maxAge)
			if err != nil {
				slog.Warn("Failed to purge audio cache", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("Purged audio cache", "removed", removed)
			}
		}
	}
}
