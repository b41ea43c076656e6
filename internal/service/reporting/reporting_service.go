package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/domain/models"
	"github.com/mamadbah2/platelog/internal/service/daylog"
)

const (
	dateLayout  = "2006-01-02"
	exportSheet = "DailyLog"
)

// Exporter writes one keyed row to the export sheet.
type Exporter interface {
	UpsertRow(ctx context.Context, sheet string, values []interface{}) error
}

// DaySource exposes the food log data a report needs.
type DaySource interface {
	DaySummary(ctx context.Context, label string) ([]models.FoodEntry, models.MacroTotals, error)
	Advice(ctx context.Context, label string) (*models.DailyAdvice, error)
	Settings(ctx context.Context) (models.Settings, error)
	Location() *time.Location
}

// Service builds daily summaries and exports them.
type Service struct {
	source   DaySource
	exporter Exporter
	logger   *zap.Logger
}

// NewService wires a new reporting service instance. exporter may be nil.
func NewService(source DaySource, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, exporter: exporter, logger: logger}
}

// Enabled reports whether an export destination is configured.
func (s *Service) Enabled() bool {
	return s.exporter != nil
}

// DayRow builds the export row for the day containing day:
// date, label, calories, goal, entries, protein, fat, carbs, summary, advice.
func (s *Service) DayRow(ctx context.Context, day time.Time) ([]interface{}, error) {
	loc := s.source.Location()
	label := daylog.Label(day, loc)

	_, totals, err := s.source.DaySummary(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("load day %s: %w", label, err)
	}
	settings, err := s.source.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	advice, err := s.source.Advice(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("load advice %s: %w", label, err)
	}

	var summary, tip string
	if advice != nil {
		summary, tip = advice.Summary, advice.Advice
	}

	return []interface{}{
		day.In(loc).Format(dateLayout),
		label,
		totals.Calories,
		settings.DailyCalorieGoal,
		totals.Entries,
		totals.Macros.Protein,
		totals.Macros.Fat,
		totals.Macros.Carbs,
		summary,
		tip,
	}, nil
}

// ExportDay writes the day's row to the export sheet. Days without entries are skipped.
func (s *Service) ExportDay(ctx context.Context, day time.Time) error {
	if s.exporter == nil {
		return nil
	}

	row, err := s.DayRow(ctx, day)
	if err != nil {
		return err
	}
	if entries, _ := row[4].(int); entries == 0 {
		s.logger.Debug("skip export of empty day", zap.Any("day", row[1]))
		return nil
	}

	if err := s.exporter.UpsertRow(ctx, exportSheet, row); err != nil {
		return fmt.Errorf("export day %v: %w", row[0], err)
	}
	s.logger.Info("day exported", zap.Any("date", row[0]), zap.Any("calories", row[2]))
	return nil
}

// FormatDay renders a one-line human summary of a day.
func FormatDay(label string, totals models.MacroTotals, goal int) string {
	if totals.Entries == 0 {
		return fmt.Sprintf("%s: nothing logged.", label)
	}
	return fmt.Sprintf("%s: %d/%d kcal across %d meals (protein %d%%, fat %d%%, carbs %d%%).",
		label, totals.Calories, goal, totals.Entries, totals.Macros.Protein, totals.Macros.Fat, totals.Macros.Carbs)
}
