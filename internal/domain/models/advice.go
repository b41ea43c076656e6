package models

// DailyAdvice is the AI-generated summary for one day label.
type DailyAdvice struct {
	Summary string `json:"summary" bson:"summary"`
	Advice  string `json:"advice" bson:"advice"`
}

// DayGroup bundles the entries logged under one day label.
type DayGroup struct {
	DayLabel string       `json:"dayLabel"`
	Entries  []FoodEntry  `json:"entries"`
	Advice   *DailyAdvice `json:"advice"`
}

// MacroTotals aggregates a set of entries.
type MacroTotals struct {
	Calories int       `json:"calories"`
	Entries  int       `json:"entries"`
	Macros   Nutrition `json:"macros"`
}

// TodayStats compares today's intake against the configured goal.
type TodayStats struct {
	DayLabel  string `json:"dayLabel"`
	Calories  int    `json:"calories"`
	Goal      int    `json:"goal"`
	Remaining int    `json:"remaining"`
	Percent   int    `json:"percent"`
}
