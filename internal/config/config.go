package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string
	AudioCachePath string
	AudioLanguage  string
	AudioMaxAge    time.Duration

	// JWTSecret verifies the bearer tokens minted by the account service
	JWTSecret string
	LogLevel  slog.Level

	QuestionSeconds   int
	TransitionSeconds int
	MaxSabotages      int

	ChallengeTTL   time.Duration
	HintRequestTTL time.Duration
	SweepInterval  time.Duration
	WriteRetries   int

	// RateLimit is each player's burst of commands, refilled evenly over RateWindow
	RateLimit  int
	RateWindow time.Duration

	// WSOrigins lists host patterns allowed to open duel websockets; empty means same-origin only
	WSOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./vocabduel.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		AudioCachePath: getEnv("AUDIO_CACHE_PATH", "./static/audio"),
		AudioLanguage:  getEnv("AUDIO_LANGUAGE", "en"),
		AudioMaxAge:    getEnvDuration("AUDIO_MAX_AGE", 7*24*time.Hour),

		JWTSecret: getEnv("JWT_SECRET", ""),
		LogLevel:  getLogLevel("LOG_LEVEL", slog.LevelInfo),

		QuestionSeconds:   getEnvInt("QUESTION_SECONDS", 20),
		TransitionSeconds: getEnvInt("TRANSITION_SECONDS", 5),
		MaxSabotages:      getEnvInt("MAX_SABOTAGES", 3),

		ChallengeTTL:   getEnvDuration("CHALLENGE_TTL", 24*time.Hour),
		HintRequestTTL: getEnvDuration("HINT_REQUEST_TTL", 60*time.Second),
		SweepInterval:  getEnvDuration("SWEEP_INTERVAL", 30*time.Second),
		WriteRetries:   getEnvInt("WRITE_RETRIES", 5),

		RateLimit:  getEnvInt("RATE_LIMIT", 20),
		RateWindow: getEnvDuration("RATE_WINDOW", time.Second),

		WSOrigins: getEnvList("WS_ORIGINS"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getLogLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(getEnv(key, "")))); err != nil {
		return defaultValue
	}
	return level
}
