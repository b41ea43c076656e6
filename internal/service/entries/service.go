// Package entries owns the persisted food log.
package entries

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/domain/models"
	"github.com/mamadbah2/platelog/internal/repository"
	"github.com/mamadbah2/platelog/internal/service/daylog"
)

const maxIDAttempts = 5

// Repository is the persistence surface the store needs.
type Repository interface {
	Entries(ctx context.Context) ([]models.FoodEntry, error)
	SaveEntries(ctx context.Context, entries []models.FoodEntry) error
	Advice(ctx context.Context) (map[string]models.DailyAdvice, error)
	SaveAdvice(ctx context.Context, advice map[string]models.DailyAdvice) error
	Settings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
	OnboardingCompleted(ctx context.Context) (bool, error)
	SaveOnboardingCompleted(ctx context.Context, done bool) error
}

var _ Repository = (*repository.Collections)(nil)

// Advisor produces daily advice. Implementations never fail; they fall back to canned text.
type Advisor interface {
	DailyAdvice(ctx context.Context, dayLabel string, entries []models.FoodEntry, goal int) models.DailyAdvice
}

// Trigger schedules a fire-and-forget re-analysis of a day.
type Trigger interface {
	Enqueue(dayLabel string)
}

// Service is the food log store.
type Service struct {
	repo    Repository
	advisor Advisor
	trigger Trigger
	logger  *zap.Logger
	loc     *time.Location
	now     func() time.Time
	newID   func() string

	mu sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the entry id source.
func WithIDGenerator(next func() string) Option {
	return func(s *Service) { s.newID = next }
}

// WithTrigger sets the re-analysis trigger.
func WithTrigger(trigger Trigger) Option {
	return func(s *Service) { s.trigger = trigger }
}

// NewService constructs the store.
func NewService(repo Repository, advisor Advisor, loc *time.Location, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		repo:    repo,
		advisor: advisor,
		logger:  logger,
		loc:     loc,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the timezone days are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// TodayLabel returns the label of the current day.
func (s *Service) TodayLabel() string {
	return daylog.Label(s.now(), s.loc)
}

// Add validates and persists a new entry, then schedules re-analysis of today.
func (s *Service) Add(ctx context.Context, in models.NewEntry) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", fmt.Errorf("%w: name must not be empty", models.ErrValidation)
	}
	if in.Calories <= 0 {
		return "", fmt.Errorf("%w: calories must be positive", models.ErrValidation)
	}
	if in.Nutrition != nil && (in.Nutrition.Protein < 0 || in.Nutrition.Fat < 0 || in.Nutrition.Carbs < 0) {
		return "", fmt.Errorf("%w: nutrition percentages must not be negative", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Entries(ctx)
	if err != nil {
		return "", s.storageError("load entries", err)
	}

	id, err := s.uniqueID(current)
	if err != nil {
		return "", err
	}

	entry := models.FoodEntry{
		ID:        id,
		Name:      name,
		Calories:  in.Calories,
		Timestamp: s.now().UnixMilli(),
		ImageURI:  strings.TrimSpace(in.ImageURI),
	}
	if in.Nutrition != nil {
		n := *in.Nutrition
		entry.Nutrition = &n
	}

	next := make([]models.FoodEntry, 0, len(current)+1)
	next = append(next, current...)
	next = append(next, entry)

	if err := s.repo.SaveEntries(ctx, next); err != nil {
		return "", s.storageError("save entries", err)
	}

	s.logger.Info("entry added", zap.String("id", entry.ID), zap.Int("calories", entry.Calories))
	s.enqueue(daylog.EntryLabel(entry, s.loc))
	return entry.ID, nil
}

// Delete removes an entry. Unknown ids are a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.Entries(ctx)
	if err != nil {
		return s.storageError("load entries", err)
	}

	var removed *models.FoodEntry
	remaining := make([]models.FoodEntry, 0, len(current))
	for i := range current {
		if current[i].ID == id {
			if removed == nil {
				removed = &current[i]
			}
			continue
		}
		remaining = append(remaining, current[i])
	}
	if removed == nil {
		return nil
	}

	if err := s.repo.SaveEntries(ctx, remaining); err != nil {
		return s.storageError("save entries", err)
	}
	s.logger.Info("entry deleted", zap.String("id", id))

	label := daylog.EntryLabel(*removed, s.loc)
	if len(daylog.EntriesForDay(remaining, label, s.loc)) > 0 {
		s.enqueue(label)
		return nil
	}

	// The entry is already gone; stale advice is not worth failing the delete.
	if err := s.dropAdvice(ctx, label); err != nil {
		s.logger.Warn("advice of emptied day not removed", zap.String("day", label), zap.Error(err))
	}
	return nil
}

// List returns all entries, newest first.
func (s *Service) List(ctx context.Context) ([]models.FoodEntry, error) {
	current, err := s.repo.Entries(ctx)
	if err != nil {
		return nil, s.storageError("load entries", err)
	}
	sortNewestFirst(current)
	return current, nil
}

// TodaysTotal sums calories logged since local midnight.
func (s *Service) TodaysTotal(ctx context.Context) (int, error) {
	current, err := s.repo.Entries(ctx)
	if err != nil {
		return 0, s.storageError("load entries", err)
	}
	return daylog.TodaysCalories(current, s.now(), s.loc), nil
}

// Days returns the last week of entries grouped by day, with advice attached.
func (s *Service) Days(ctx context.Context) ([]models.DayGroup, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	advice, err := s.repo.Advice(ctx)
	if err != nil {
		return nil, s.storageError("load advice", err)
	}
	return daylog.GroupByDay(list, advice, s.now(), s.loc), nil
}

// Stats compares today's total with the calorie goal.
func (s *Service) Stats(ctx context.Context) (models.TodayStats, error) {
	total, err := s.TodaysTotal(ctx)
	if err != nil {
		return models.TodayStats{}, err
	}
	settings, err := s.repo.Settings(ctx)
	if err != nil {
		return models.TodayStats{}, s.storageError("load settings", err)
	}

	stats := models.TodayStats{
		DayLabel: s.TodayLabel(),
		Calories: total,
		Goal:     settings.DailyCalorieGoal,
	}
	stats.Remaining = stats.Goal - total
	if stats.Remaining < 0 {
		stats.Remaining = 0
	}
	if stats.Goal > 0 {
		stats.Percent = total * 100 / stats.Goal
	}
	return stats, nil
}

// DaySummary returns the entries and totals of one day label.
func (s *Service) DaySummary(ctx context.Context, label string) ([]models.FoodEntry, models.MacroTotals, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, models.MacroTotals{}, err
	}
	day := daylog.EntriesForDay(list, label, s.loc)
	return day, daylog.Totals(day), nil
}

// AnalyzeDay asks the advisor about one day and stores the result under its label.
// A day without entries loses its advice and yields ErrNoEntries.
func (s *Service) AnalyzeDay(ctx context.Context, label string) (models.DailyAdvice, error) {
	list, err := s.List(ctx)
	if err != nil {
		return models.DailyAdvice{}, err
	}

	day := daylog.EntriesForDay(list, label, s.loc)
	if len(day) == 0 {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.dropAdvice(ctx, label); err != nil {
			return models.DailyAdvice{}, err
		}
		return models.DailyAdvice{}, fmt.Errorf("%w: %s", models.ErrNoEntries, label)
	}

	settings, err := s.repo.Settings(ctx)
	if err != nil {
		return models.DailyAdvice{}, s.storageError("load settings", err)
	}

	// The advisor call is slow; it runs outside the lock.
	advice := s.advisor.DailyAdvice(ctx, label, day, settings.DailyCalorieGoal)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The day may have been emptied while the advisor was working.
	latest, err := s.repo.Entries(ctx)
	if err != nil {
		return models.DailyAdvice{}, s.storageError("load entries", err)
	}
	if len(daylog.EntriesForDay(latest, label, s.loc)) == 0 {
		return models.DailyAdvice{}, fmt.Errorf("%w: %s", models.ErrNoEntries, label)
	}

	all, err := s.repo.Advice(ctx)
	if err != nil {
		return models.DailyAdvice{}, s.storageError("load advice", err)
	}
	all[label] = advice
	if err := s.repo.SaveAdvice(ctx, all); err != nil {
		return models.DailyAdvice{}, s.storageError("save advice", err)
	}

	s.logger.Info("daily advice stored", zap.String("day", label), zap.Int("entries", len(day)))
	return advice, nil
}

// Advice returns the stored advice for a label, if any.
func (s *Service) Advice(ctx context.Context, label string) (*models.DailyAdvice, error) {
	all, err := s.repo.Advice(ctx)
	if err != nil {
		return nil, s.storageError("load advice", err)
	}
	advice, ok := all[label]
	if !ok {
		return nil, nil
	}
	return &advice, nil
}

// Settings returns the current settings.
func (s *Service) Settings(ctx context.Context) (models.Settings, error) {
	settings, err := s.repo.Settings(ctx)
	if err != nil {
		return models.Settings{}, s.storageError("load settings", err)
	}
	return settings, nil
}

// UpdateSettings validates and stores settings.
func (s *Service) UpdateSettings(ctx context.Context, settings models.Settings) (models.Settings, error) {
	if settings.DailyCalorieGoal <= 0 {
		return models.Settings{}, fmt.Errorf("%w: daily calorie goal must be positive", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return models.Settings{}, s.storageError("save settings", err)
	}
	s.logger.Info("settings updated", zap.Int("goal", settings.DailyCalorieGoal), zap.Bool("notifications", settings.NotificationsEnabled))
	return settings, nil
}

// OnboardingCompleted reports whether onboarding has been finished.
func (s *Service) OnboardingCompleted(ctx context.Context) (bool, error) {
	done, err := s.repo.OnboardingCompleted(ctx)
	if err != nil {
		return false, s.storageError("load onboarding flag", err)
	}
	return done, nil
}

// CompleteOnboarding stores the onboarding flag.
func (s *Service) CompleteOnboarding(ctx context.Context, done bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveOnboardingCompleted(ctx, done); err != nil {
		return s.storageError("save onboarding flag", err)
	}
	return nil
}

// dropAdvice removes the advice of a label. Callers hold s.mu.
func (s *Service) dropAdvice(ctx context.Context, label string) error {
	all, err := s.repo.Advice(ctx)
	if err != nil {
		return s.storageError("load advice", err)
	}
	if _, ok := all[label]; !ok {
		return nil
	}
	delete(all, label)
	if err := s.repo.SaveAdvice(ctx, all); err != nil {
		return s.storageError("save advice", err)
	}
	s.logger.Info("daily advice removed", zap.String("day", label))
	return nil
}

func (s *Service) uniqueID(current []models.FoodEntry) (string, error) {
	taken := make(map[string]struct{}, len(current))
	for _, e := range current {
		taken[e.ID] = struct{}{}
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		if _, dup := taken[id]; !dup && id != "" {
			return id, nil
		}
		s.logger.Warn("entry id collision, regenerating", zap.String("id", id))
	}
	return "", errors.New("could not allocate a unique entry id")
}

func (s *Service) enqueue(label string) {
	if s.trigger == nil {
		return
	}
	s.trigger.Enqueue(label)
}

func (s *Service) storageError(op string, err error) error {
	s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	if errors.Is(err, models.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", models.ErrStorage, op, err)
}

func sortNewestFirst(entries []models.FoodEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
}
