package models

// AnalysisResponse is the success envelope of POST /api/analyze-food.
type AnalysisResponse struct {
	Success    bool              `json:"success"`
	AnalysisID string            `json:"analysisId"`
	Timestamp  string            `json:"timestamp"`
	Analysis   *EnrichedAnalysis `json:"analysis"`
}

// SummaryResponse is the success envelope of POST /api/pattern-summary.
// The summary text is opaque pass-through from the collaborator.
type SummaryResponse struct {
	Success bool   `json:"success"`
	Summary string `json:"summary"`
}

// MacroEstimateResponse is the success envelope of POST /api/estimate-macros.
type MacroEstimateResponse struct {
	Success  bool     `json:"success"`
	Estimate FoodItem `json:"estimate"`
}

// SuggestionsResponse is the success envelope of POST /api/nutrition-suggestions.
type SuggestionsResponse struct {
	Success     bool     `json:"success"`
	Suggestions []string `json:"suggestions"`
}

// ErrorResponse is the single error envelope shape for every endpoint.
// Code is stable and suitable for programmatic branching; Message is for
// humans and must not be parsed.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
