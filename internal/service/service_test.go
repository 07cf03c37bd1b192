package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"vocabduel/internal/models"
	"vocabduel/internal/repository"
)

const (
	alice = "player-alice"
	bob   = "player-bob"
)

var t0 = time.UnixMilli(1_700_000_000_000).UTC()

type storedDuel struct {
	doc     []byte
	version int64
	created time.Time
}

// memDuels is a DuelStore with the same versioning rules as the SQL repository
type memDuels struct {
	mu        sync.Mutex
	rows      map[string]storedDuel
	conflicts int
	updates   int
}

func newMemDuels() *memDuels {
	return &memDuels{rows: make(map[string]storedDuel)}
}

func (m *memDuels) Create(_ context.Context, d *models.Duel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, err := json.Marshal(d)
	if err != nil {
		return err
	}
	d.Version = 1
	m.rows[d.ID] = storedDuel{doc: doc, version: 1, created: d.CreatedAt}
	return nil
}

func (m *memDuels) GetByID(_ context.Context, id string) (*models.Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return decodeRow(row)
}

func decodeRow(row storedDuel) (*models.Duel, error) {
	d := &models.Duel{}
	if err := json.Unmarshal(row.doc, d); err != nil {
		return nil, err
	}
	d.Version = row.version
	return d, nil
}

func (m *memDuels) Update(_ context.Context, d *models.Duel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	row, ok := m.rows[d.ID]
	if m.conflicts > 0 {
		m.conflicts--
		// another writer got there first
		row.version++
		m.rows[d.ID] = row
		return repository.ErrVersionConflict
	}
	if !ok || row.version != d.Version {
		return repository.ErrVersionConflict
	}
	doc, err := json.Marshal(d)
	if err != nil {
		return err
	}
	d.Version++
	m.rows[d.ID] = storedDuel{doc: doc, version: d.Version, created: row.created}
	return nil
}

func (m *memDuels) ListIDsByStatus(_ context.Context, cutoff time.Time, statuses ...models.Status) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, row := range m.rows {
		d, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		if !row.created.Before(cutoff) {
			continue
		}
		for _, s := range statuses {
			if d.Status == s {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memDuels) ListForPlayer(_ context.Context, playerID string) ([]*models.Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var duels []*models.Duel
	for _, row := range m.rows {
		d, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		if d.ChallengerID == playerID || d.OpponentID == playerID {
			duels = append(duels, d)
		}
	}
	return duels, nil
}

func (m *memDuels) stored(t *testing.T, id string) *models.Duel {
	t.Helper()
	d, err := m.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, d)
	return d
}

type memThemes struct {
	mu     sync.Mutex
	themes map[string]*models.Theme
}

func newMemThemes(themes ...*models.Theme) *memThemes {
	m := &memThemes{themes: make(map[string]*models.Theme)}
	for _, th := range themes {
		m.themes[th.ID] = th
	}
	return m
}

func (m *memThemes) Create(_ context.Context, theme *models.Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[theme.ID] = theme
	return nil
}

func (m *memThemes) GetByID(_ context.Context, id string) (*models.Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.themes[id], nil
}

func (m *memThemes) List(_ context.Context) ([]models.ThemeSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ThemeSummary
	for _, th := range m.themes {
		out = append(out, models.ThemeSummary{ID: th.ID, Name: th.Name, WordCount: len(th.Words), CreatedAt: th.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type recorder struct {
	mu    sync.Mutex
	views []models.DuelView
}

func (r *recorder) Publish(view models.DuelView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}

func (r *recorder) latest() models.DuelView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[len(r.views)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t0.Add(d)
}

func testTheme() *models.Theme {
	return &models.Theme{
		ID:        "theme-animals",
		Name:      "Animals",
		CreatedAt: t0,
		Words:     withDistractors(defaultThemes[0].pairs[:10]),
	}
}

type fixture struct {
	svc    *DuelService
	duels  *memDuels
	themes *memThemes
	pub    *recorder
	clock  *clock
	theme  *models.Theme
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		duels: newMemDuels(),
		theme: testTheme(),
		pub:   &recorder{},
		clock: &clock{now: t0},
	}
	f.themes = newMemThemes(f.theme)
	f.svc = NewDuelService(f.duels, f.themes, f.pub, DuelOptions{
		Now:    f.clock.Now,
		Seed:   func() uint32 { return 42 },
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return f
}
