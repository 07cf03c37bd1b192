// Package audio produces the spoken word for the "tts" hint.
package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	ttsRequestTimeout = 10 * time.Second
	// DefaultTTSURL is Google Translate's text-to-speech endpoint (free, no API key needed)
	DefaultTTSURL = "https://translate.google.com/translate_tts"
)

// TTSService fetches spoken audio and caches it as MP3 files
type TTSService struct {
	audioDir string
	baseURL  string
	language string
	client   *http.Client
	group    singleflight.Group
}

// NewTTSService creates a new TTS service caching into audioDir
func NewTTSService(audioDir, language string) *TTSService {
	if language == "" {
		language = "en"
	}
	return &TTSService{
		audioDir: audioDir,
		baseURL:  DefaultTTSURL,
		language: language,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// WithBaseURL points the service at another endpoint
func (s *TTSService) WithBaseURL(baseURL string) *TTSService {
	s.baseURL = baseURL
	return s
}

// AudioFile returns the path of an MP3 speaking text, fetching it on first use.
// Concurrent requests for the same text share one fetch.
func (s *TTSService) AudioFile(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text to speak")
	}
	path := filepath.Join(s.audioDir, cacheName(s.language, text))

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	// The shared fetch outlives any single caller; each caller only stops waiting.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(path, func() (interface{}, error) {
		if _, err := os.Stat(path); err == nil {
			return nil, nil
		}
		return nil, s.generate(fetchCtx, text, path)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", fmt.Errorf("failed to generate audio: %w", res.Err)
		}
		return path, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// cacheName hashes the text so arbitrary words in any script make safe file names
func cacheName(language, text string) string {
	sum := sha256.Sum256([]byte(language + "\x00" + strings.ToLower(text)))
	return "word_" + hex.EncodeToString(sum[:12]) + ".mp3"
}

func (s *TTSService) generate(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", s.language)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len([]rune(text))))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Set user agent (required by Google)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	// the cache only ever holds complete downloads
	tmp, err := os.CreateTemp(s.audioDir, "tts-*.part")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return fmt.Errorf("failed to store audio file: %w", err)
	}

	slog.Debug("Generated audio", "path", outputPath)
	return nil
}

// Purge removes cached files older than maxAge and returns how many were deleted
func (s *TTSService) Purge(maxAge time.Duration) (int, error) {
	files, err := os.ReadDir(s.audioDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read audio directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".mp3" {
			continue
		}
		info, err := file.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.audioDir, file.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
