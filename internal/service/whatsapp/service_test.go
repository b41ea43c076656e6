package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/platelog/internal/domain/models"
)

type fakeClient struct {
	to, body string
	err      error
}

func (f *fakeClient) SendText(_ context.Context, to, body string) (string, error) {
	f.to, f.body = to, body
	return "wamid.1", f.err
}

type fakeSource struct {
	settings models.Settings
	totals   models.MacroTotals
	advice   *models.DailyAdvice
}

func (f fakeSource) DaySummary(context.Context, string) ([]models.FoodEntry, models.MacroTotals, error) {
	return nil, f.totals, nil
}
func (f fakeSource) Advice(context.Context, string) (*models.DailyAdvice, error) { return f.advice, nil }
func (f fakeSource) Settings(context.Context) (models.Settings, error) { return f.settings, nil }
func (fakeSource) Location() *time.Location { return time.UTC }

var day = time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)

func TestNotifyDay(t *testing.T) {
	c := &fakeClient{}
	src := fakeSource{
		settings: models.DefaultSettings(),
		totals:   models.MacroTotals{Calories: 1500, Entries: 3, Macros: models.Nutrition{Protein: 25, Fat: 30, Carbs: 45}},
		advice:   &models.DailyAdvice{Summary: "Balanced day", Advice: "Add fruit"},
	}

	if err := NewNotifier(c, "224600000000", src, zaptest.NewLogger(t)).NotifyDay(context.Background(), day); err != nil {
		t.Fatalf("NotifyDay() error = %v", err)
	}
	if c.to != "224600000000" {
		t.Errorf("to = %q", c.to)
	}
	for _, want := range []string{"Monday, Jan 1", "1500/2000 kcal", "Balanced day", "Add fruit"} {
		if !strings.Contains(c.body, want) {
			t.Errorf("body %q missing %q", c.body, want)
		}
	}
}

func TestNotifyDaySkips(t *testing.T) {
	cases := map[string]fakeSource{
		"notifications off": {
			settings: models.Settings{DailyCalorieGoal: 2000},
			totals:   models.MacroTotals{Calories: 100, Entries: 1},
		},
		"empty day": {settings: models.DefaultSettings()},
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			c := &fakeClient{}
			if err := NewNotifier(c, "224600000000", src, zaptest.NewLogger(t)).NotifyDay(context.Background(), day); err != nil {
				t.Fatalf("NotifyDay() error = %v", err)
			}
			if c.body != "" {
				t.Fatalf("unexpected message %q", c.body)
			}
		})
	}
}

func TestNotifyDayClientError(t *testing.T) {
	c := &fakeClient{err: errors.New("rate limited")}
	src := fakeSource{settings: models.DefaultSettings(), totals: models.MacroTotals{Calories: 100, Entries: 1}}

	err := NewNotifier(c, "224600000000", src, zaptest.NewLogger(t)).NotifyDay(context.Background(), day)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v", err)
	}
}
