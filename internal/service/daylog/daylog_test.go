package daylog

import (
	"testing"
	"time"

	"github.com/mamadbah2/platelog/internal/domain/models"
)

var utc = time.UTC

func entryAt(id string, cal int, t time.Time) models.FoodEntry {
	return models.FoodEntry{ID: id, Name: id, Calories: cal, Timestamp: t.UnixMilli()}
}

func TestLabel(t *testing.T) {
	ts := time.Date(2024, time.January, 1, 9, 30, 0, 0, utc)
	if got := Label(ts, utc); got != "Monday, Jan 1" {
		t.Fatalf("Label() = %q", got)
	}

	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	late := time.Date(2024, time.January, 1, 23, 30, 0, 0, utc)
	if got := Label(late, paris); got != "Tuesday, Jan 2" {
		t.Fatalf("Label() in Paris = %q", got)
	}
}

func TestTodaysCalories(t *testing.T) {
	now := time.Date(2024, time.March, 5, 20, 0, 0, 0, utc)
	t0 := time.Date(2024, time.March, 5, 8, 0, 0, 0, utc)

	entries := []models.FoodEntry{
		entryAt("a", 200, t0),
		entryAt("b", 300, t0.Add(time.Hour)),
		entryAt("yesterday", 900, t0.Add(-12*time.Hour)),
	}

	if got := TodaysCalories(entries, now, utc); got != 500 {
		t.Fatalf("TodaysCalories() = %d, want 500", got)
	}
	if got := TodaysCalories(nil, now, utc); got != 0 {
		t.Fatalf("TodaysCalories(nil) = %d, want 0", got)
	}
}

func TestGroupByDay(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, utc)

	// time-descending, as the store lists them
	entries := []models.FoodEntry{
		entryAt("today-2", 400, now.Add(-time.Hour)),
		entryAt("today-1", 300, now.Add(-2*time.Hour)),
		entryAt("yesterday", 500, now.Add(-24*time.Hour)),
		entryAt("edge", 100, now.Add(-RecentWindow)),
		entryAt("old", 700, now.Add(-RecentWindow-time.Minute)),
	}
	advice := map[string]models.DailyAdvice{
		"Sunday, Mar 10": {Summary: "ok", Advice: "more fibre"},
	}

	groups := GroupByDay(entries, advice, now, utc)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d: %+v", len(groups), groups)
	}

	if groups[0].DayLabel != "Sunday, Mar 10" {
		t.Fatalf("first group = %q", groups[0].DayLabel)
	}
	if groups[0].Advice == nil || groups[0].Advice.Advice != "more fibre" {
		t.Fatalf("advice not attached: %+v", groups[0].Advice)
	}
	if groups[0].Entries[0].ID != "today-2" || groups[0].Entries[1].ID != "today-1" {
		t.Fatalf("input order not preserved: %+v", groups[0].Entries)
	}
	if groups[1].Advice != nil {
		t.Fatalf("unexpected advice on %q", groups[1].DayLabel)
	}

	seen := map[string]int{}
	for _, g := range groups {
		for _, e := range g.Entries {
			seen[e.ID]++
		}
	}
	for _, id := range []string{"today-2", "today-1", "yesterday", "edge"} {
		if seen[id] != 1 {
			t.Fatalf("entry %s seen %d times", id, seen[id])
		}
	}
	if seen["old"] != 0 {
		t.Fatal("entry older than 7 days was grouped")
	}
}

func TestGroupByDayEmpty(t *testing.T) {
	now := time.Now()
	if groups := GroupByDay(nil, nil, now, utc); len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}

	stale := []models.FoodEntry{entryAt("old", 100, now.Add(-30*24*time.Hour))}
	if groups := GroupByDay(stale, nil, now, utc); len(groups) != 0 {
		t.Fatalf("expected no groups for stale history, got %d", len(groups))
	}
}

func TestEntriesForDayAndTotals(t *testing.T) {
	day := time.Date(2024, time.January, 1, 10, 0, 0, 0, utc)
	entries := []models.FoodEntry{
		entryAt("a", 100, day),
		{ID: "b", Calories: 300, Timestamp: day.Add(2 * time.Hour).UnixMilli(), Nutrition: &models.Nutrition{Protein: 40, Fat: 30, Carbs: 30}},
		entryAt("other", 999, day.Add(48*time.Hour)),
	}

	matched := EntriesForDay(entries, "Monday, Jan 1", utc)
	if len(matched) != 2 {
		t.Fatalf("EntriesForDay() returned %d entries", len(matched))
	}

	totals := Totals(matched)
	if totals.Calories != 400 || totals.Entries != 2 {
		t.Fatalf("Totals() = %+v", totals)
	}
	// (20*100 + 40*300) / 400 = 35
	want := models.Nutrition{Protein: 35, Fat: 30, Carbs: 35}
	if totals.Macros != want {
		t.Fatalf("Totals().Macros = %+v, want %+v", totals.Macros, want)
	}
}
