package models

// DefaultCalorieGoal applies until the user saves settings.
const DefaultCalorieGoal = 2000

// Settings is the single user preferences record.
type Settings struct {
	DailyCalorieGoal     int  `json:"dailyCalorieGoal" bson:"daily_calorie_goal"`
	NotificationsEnabled bool `json:"notificationsEnabled" bson:"notifications_enabled"`
}

// DefaultSettings returns the settings used before the first save.
func DefaultSettings() Settings {
	return Settings{DailyCalorieGoal: DefaultCalorieGoal, NotificationsEnabled: true}
}
