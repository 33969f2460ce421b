package models

import "time"

// MealRecord is one logged meal supplied by the caller for pattern
// summarization. Read-only input; the service does not persist it.
type MealRecord struct {
	Name         string    `json:"name"`
	Calories     float64   `json:"calories"`
	Protein      float64   `json:"protein"`
	Carbohydrate float64   `json:"carbohydrate"`
	Fat          float64   `json:"fat"`
	LoggedAt     time.Time `json:"loggedAt"`
}

// PatternSummaryRequest is the body of POST /api/pattern-summary.
type PatternSummaryRequest struct {
	MealsToday []MealRecord `json:"mealsToday"`
}

// MacroEstimateRequest is the body of POST /api/estimate-macros.
type MacroEstimateRequest struct {
	FoodName string `json:"foodName"`
}

// SuggestionsRequest is the body of POST /api/nutrition-suggestions.
type SuggestionsRequest struct {
	FoodItems []string `json:"foodItems"`
	UserGoals string   `json:"userGoals,omitempty"`
}

// ImagePayload is the JSON alternative to a multipart upload on
// POST /api/analyze-food. A data-URL prefix is tolerated.
type ImagePayload struct {
	ImageBase64 string `json:"image_base64"`
}
