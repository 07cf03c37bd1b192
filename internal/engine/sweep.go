package engine

import (
	"time"

	"vocabduel/internal/models"
)

// Background expiry defaults
const (
	DefaultChallengeTTL   = 24 * time.Hour
	DefaultHintRequestTTL = 60 * time.Second
)

// ExpireChallenge cancels a challenge left pending for longer than ttl.
// It returns the input unchanged and false for anything else.
func ExpireChallenge(d *models.Duel, ttl time.Duration, now time.Time) (*models.Duel, bool) {
	if d == nil || d.Status != models.StatusPending || now.Sub(d.CreatedAt) < ttl {
		return d, false
	}
	next := d.Clone()
	next.Status = models.StatusCancelled
	completed := now.UTC()
	next.CompletedAt = &completed
	return next, true
}

// ExpireStaleHints drops hint requests nobody answered within ttl.
// Accepted requests stay until the question changes.
func ExpireStaleHints(d *models.Duel, ttl time.Duration, now time.Time) (*models.Duel, bool) {
	if d == nil || !d.Status.IsActive() {
		return d, false
	}
	cutoff := now.Add(-ttl).UnixMilli()
	staleLetters := d.HintLetters != nil && d.HintLetters.Status == models.HintPending && d.HintLetters.RequestedAt <= cutoff
	staleOptions := d.HintOptions != nil && d.HintOptions.Status == models.HintPending && d.HintOptions.RequestedAt <= cutoff
	if !staleLetters && !staleOptions {
		return d, false
	}

	next := d.Clone()
	if staleLetters {
		next.HintLetters = nil
	}
	if staleOptions {
		next.HintOptions = nil
	}
	return next, true
}
