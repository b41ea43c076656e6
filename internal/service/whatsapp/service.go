// Package whatsapp sends the nightly day summary to the user's phone.
package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/service/daylog"
	"github.com/mamadbah2/platelog/internal/service/reporting"
	client "github.com/mamadbah2/platelog/pkg/clients/whatsapp"
)

// Notifier delivers a day's summary when the user has notifications enabled.
type Notifier struct {
	client    client.Client
	recipient string
	source    reporting.DaySource
	logger    *zap.Logger
}

// NewNotifier wires a new notifier instance.
func NewNotifier(c client.Client, recipient string, source reporting.DaySource, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{client: c, recipient: recipient, source: source, logger: logger}
}

// NotifyDay sends the summary of the day containing day. It does nothing when
// notifications are disabled in settings or the day has no entries.
func (n *Notifier) NotifyDay(ctx context.Context, day time.Time) error {
	settings, err := n.source.Settings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		n.logger.Debug("notifications disabled, skipping")
		return nil
	}

	label := daylog.Label(day, n.source.Location())
	_, totals, err := n.source.DaySummary(ctx, label)
	if err != nil {
		return fmt.Errorf("load day %s: %w", label, err)
	}
	if totals.Entries == 0 {
		return nil
	}
	advice, err := n.source.Advice(ctx, label)
	if err != nil {
		return fmt.Errorf("load advice %s: %w", label, err)
	}

	var b strings.Builder
	b.WriteString(reporting.FormatDay(label, totals, settings.DailyCalorieGoal))
	if advice != nil {
		b.WriteString("\n\n")
		b.WriteString(advice.Summary)
		if advice.Advice != "" {
			b.WriteString("\n")
			b.WriteString(advice.Advice)
		}
	}

	id, err := n.client.SendText(ctx, n.recipient, b.String())
	if err != nil {
		return fmt.Errorf("notify %s: %w", label, err)
	}
	n.logger.Info("day summary sent", zap.String("day", label), zap.String("message_id", id))
	return nil
}
