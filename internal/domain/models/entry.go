package models

import "time"

// DefaultNutrition is assumed for entries logged without a macro breakdown.
var DefaultNutrition = Nutrition{Protein: 20, Fat: 30, Carbs: 50}

// Nutrition holds macro percentages of calories.
type Nutrition struct {
	Protein int `json:"protein" bson:"protein"`
	Fat     int `json:"fat" bson:"fat"`
	Carbs   int `json:"carbs" bson:"carbs"`
}

// FoodEntry is one logged meal.
type FoodEntry struct {
	ID        string     `json:"id" bson:"id"`
	Name      string     `json:"name" bson:"name"`
	Calories  int        `json:"calories" bson:"calories"`
	Timestamp int64      `json:"timestamp" bson:"timestamp"` // unix millis
	ImageURI  string     `json:"imageUri,omitempty" bson:"image_uri,omitempty"`
	Nutrition *Nutrition `json:"nutrition,omitempty" bson:"nutrition,omitempty"`
}

// Time returns the entry timestamp as a time.Time.
func (e FoodEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Macros returns the entry nutrition, or DefaultNutrition when none was recorded.
func (e FoodEntry) Macros() Nutrition {
	if e.Nutrition == nil {
		return DefaultNutrition
	}
	return *e.Nutrition
}

// NewEntry is the caller-supplied part of a FoodEntry.
type NewEntry struct {
	Name      string     `json:"name"`
	Calories  int        `json:"calories"`
	ImageURI  string     `json:"imageUri,omitempty"`
	Nutrition *Nutrition `json:"nutrition,omitempty"`
}
