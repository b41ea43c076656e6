package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/domain/models"
	"github.com/mamadbah2/platelog/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// DayAnalyzer runs the daily advice for a label.
type DayAnalyzer interface {
	TodayLabel() string
	AnalyzeDay(ctx context.Context, label string) (models.DailyAdvice, error)
}

// DayNotifier pushes a day's summary to the user.
type DayNotifier interface {
	NotifyDay(ctx context.Context, day time.Time) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	schedule     string
	analyzer     DayAnalyzer
	reportingSvc *reporting.Service
	notifier     DayNotifier
	now          func() time.Time
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance running in loc.
// reportingSvc and notifier may be nil when not configured.
func NewScheduler(schedule string, loc *time.Location, analyzer DayAnalyzer, reportingSvc *reporting.Service, notifier DayNotifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:         c,
		schedule:     schedule,
		analyzer:     analyzer,
		reportingSvc: reportingSvc,
		notifier:     notifier,
		now:          time.Now,
		logger:       logger,
	}
}

// Start registers the nightly job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runNightly); err != nil {
		s.logger.Error("failed to schedule nightly analysis", zap.Error(err))
		return err
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runNightly() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	s.RunNightly(ctx)
}

// RunNightly analyzes today, then exports and notifies when configured.
func (s *Scheduler) RunNightly(ctx context.Context) {
	label := s.analyzer.TodayLabel()
	s.logger.Info("running nightly analysis", zap.String("day", label))

	if _, err := s.analyzer.AnalyzeDay(ctx, label); err != nil {
		if errors.Is(err, models.ErrNoEntries) {
			s.logger.Info("nothing logged today, skipping", zap.String("day", label))
			return
		}
		s.logger.Error("nightly analysis failed", zap.String("day", label), zap.Error(err))
	}

	now := s.now()
	if s.reportingSvc != nil && s.reportingSvc.Enabled() {
		if err := s.reportingSvc.ExportDay(ctx, now); err != nil {
			s.logger.Error("failed to export day", zap.String("day", label), zap.Error(err))
		} else {
			s.logger.Info("day exported successfully", zap.String("day", label))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyDay(ctx, now); err != nil {
			s.logger.Error("failed to send day summary", zap.String("day", label), zap.Error(err))
		}
	}
}
