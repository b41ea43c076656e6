// Package repository persists the food log as whole-collection JSON snapshots.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mamadbah2/platelog/internal/domain/models"
)

// ErrNotFound indicates no value has been written under the key yet.
var ErrNotFound = errors.New("key not found")

// Collection keys.
const (
	KeyEntries    = "food_entries"
	KeyAdvice     = "daily_advice"
	KeySettings   = "settings"
	KeyOnboarding = "onboarding_completed"
)

// Store is a key-value backend holding one JSON blob per key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Collections reads and writes the typed food-log collections on top of a Store.
// Missing keys read as their zero/default value.
type Collections struct {
	store Store
}

// NewCollections wraps a Store.
func NewCollections(store Store) *Collections {
	return &Collections{store: store}
}

// Entries loads the full entry collection.
func (c *Collections) Entries(ctx context.Context) ([]models.FoodEntry, error) {
	entries := []models.FoodEntry{}
	if err := c.load(ctx, KeyEntries, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveEntries replaces the entry collection.
func (c *Collections) SaveEntries(ctx context.Context, entries []models.FoodEntry) error {
	if entries == nil {
		entries = []models.FoodEntry{}
	}
	return c.save(ctx, KeyEntries, entries)
}

// Advice loads the day-label to advice map.
func (c *Collections) Advice(ctx context.Context) (map[string]models.DailyAdvice, error) {
	advice := map[string]models.DailyAdvice{}
	if err := c.load(ctx, KeyAdvice, &advice); err != nil {
		return nil, err
	}
	if advice == nil {
		advice = map[string]models.DailyAdvice{}
	}
	return advice, nil
}

// SaveAdvice replaces the advice map.
func (c *Collections) SaveAdvice(ctx context.Context, advice map[string]models.DailyAdvice) error {
	if advice == nil {
		advice = map[string]models.DailyAdvice{}
	}
	return c.save(ctx, KeyAdvice, advice)
}

// Settings loads the settings record.
func (c *Collections) Settings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	if err := c.load(ctx, KeySettings, &settings); err != nil {
		return models.Settings{}, err
	}
	if settings.DailyCalorieGoal <= 0 {
		settings.DailyCalorieGoal = models.DefaultCalorieGoal
	}
	return settings, nil
}

// SaveSettings replaces the settings record.
func (c *Collections) SaveSettings(ctx context.Context, settings models.Settings) error {
	return c.save(ctx, KeySettings, settings)
}

// OnboardingCompleted loads the onboarding flag.
func (c *Collections) OnboardingCompleted(ctx context.Context) (bool, error) {
	var done bool
	if err := c.load(ctx, KeyOnboarding, &done); err != nil {
		return false, err
	}
	return done, nil
}

// SaveOnboardingCompleted stores the onboarding flag.
func (c *Collections) SaveOnboardingCompleted(ctx context.Context, done bool) error {
	return c.save(ctx, KeyOnboarding, done)
}

func (c *Collections) load(ctx context.Context, key string, dst any) error {
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (c *Collections) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// MemoryStore keeps blobs in process memory. Used for tests and STORAGE_DRIVER=memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

// Put stores a copy of value under key.
func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}
