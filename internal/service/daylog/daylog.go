// Package daylog derives per-day views over the food log.
package daylog

import (
	"math"
	"time"

	"github.com/mamadbah2/platelog/internal/domain/models"
)

const (
	// LabelLayout formats day labels, e.g. "Monday, Jan 2". Go's formatter is
	// locale-independent, so labels are stable map keys. Different years collide.
	LabelLayout = "Monday, Jan 2"

	// RecentWindow bounds the grouped view.
	RecentWindow = 7 * 24 * time.Hour
)

// Label returns the day label for t in loc.
func Label(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format(LabelLayout)
}

// EntryLabel returns the day label an entry is grouped under.
func EntryLabel(e models.FoodEntry, loc *time.Location) string {
	return Label(e.Time(), loc)
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(location(loc))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// GroupByDay buckets entries logged within RecentWindow of now by day label.
// Groups appear in order of first appearance and entries keep their input order.
func GroupByDay(entries []models.FoodEntry, advice map[string]models.DailyAdvice, now time.Time, loc *time.Location) []models.DayGroup {
	cutoff := now.Add(-RecentWindow).UnixMilli()

	groups := make([]models.DayGroup, 0)
	index := make(map[string]int)

	for _, entry := range entries {
		if entry.Timestamp < cutoff {
			continue
		}

		label := EntryLabel(entry, loc)
		i, ok := index[label]
		if !ok {
			group := models.DayGroup{DayLabel: label}
			if a, found := advice[label]; found {
				group.Advice = &a
			}
			groups = append(groups, group)
			i = len(groups) - 1
			index[label] = i
		}
		groups[i].Entries = append(groups[i].Entries, entry)
	}

	return groups
}

// TodaysCalories sums calories logged since local midnight.
func TodaysCalories(entries []models.FoodEntry, now time.Time, loc *time.Location) int {
	start := StartOfDay(now, loc).UnixMilli()

	var total int
	for _, entry := range entries {
		if entry.Timestamp >= start {
			total += entry.Calories
		}
	}
	return total
}

// EntriesForDay returns the entries whose day label equals label.
func EntriesForDay(entries []models.FoodEntry, label string, loc *time.Location) []models.FoodEntry {
	var out []models.FoodEntry
	for _, entry := range entries {
		if EntryLabel(entry, loc) == label {
			out = append(out, entry)
		}
	}
	return out
}

// Totals sums calories and computes calorie-weighted average macros.
// Entries without nutrition contribute the default breakdown.
func Totals(entries []models.FoodEntry) models.MacroTotals {
	totals := models.MacroTotals{Entries: len(entries)}
	if len(entries) == 0 {
		return totals
	}

	var protein, fat, carbs float64
	for _, entry := range entries {
		totals.Calories += entry.Calories
		macros := entry.Macros()
		weight := float64(entry.Calories)
		protein += float64(macros.Protein) * weight
		fat += float64(macros.Fat) * weight
		carbs += float64(macros.Carbs) * weight
	}

	if totals.Calories > 0 {
		cal := float64(totals.Calories)
		totals.Macros = models.Nutrition{
			Protein: int(math.Round(protein / cal)),
			Fat:     int(math.Round(fat / cal)),
			Carbs:   int(math.Round(carbs / cal)),
		}
	}
	return totals
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
