package models

// FoodAnalysis is the normalized answer of the vision collaborator.
// FoodFound is false for every failure path, so callers render a single "not found" state.
type FoodAnalysis struct {
	FoodFound   bool      `json:"foodFound"`
	Description string    `json:"description"`
	Calories    int       `json:"calories"`
	Nutrition   Nutrition `json:"nutrition"`
}

// FoodNotFound is the terminal outcome for unrecognized or failed analyses.
func FoodNotFound() FoodAnalysis {
	return FoodAnalysis{FoodFound: false}
}
