package models

// AnalysisRequest carries the raw upload for a single analysis invocation.
// It lives only for the lifetime of that request.
type AnalysisRequest struct {
	Data          []byte
	ContentLength int64
	MIMEHint      string
}

// NormalizedImage is the canonical encoded form of an upload: bounded in
// dimension, re-encoded at a fixed quality, with a text-safe transport
// encoding for the recognition collaborator. Immutable once produced.
type NormalizedImage struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
	Base64   string
}

// FoodItem is one detected food with its estimated quantity and macros.
type FoodItem struct {
	Name         string  `json:"name"`
	Quantity     string  `json:"quantity,omitempty"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbohydrate float64 `json:"carbohydrate"`
	Fat          float64 `json:"fat"`
}

// RecognitionResult is the recognition collaborator's output. It is either
// fully populated or the stage reports failure; consumers never mutate it.
type RecognitionResult struct {
	Items      []FoodItem `json:"items"`
	Confidence float64    `json:"confidence"`
}

// EnrichedAnalysis is a RecognitionResult with macros corrected or augmented
// from the nutrition database. When enrichment fails it equals its source
// RecognitionResult verbatim.
type EnrichedAnalysis struct {
	Items      []FoodItem `json:"items"`
	Confidence float64    `json:"confidence"`
}

// EnrichedFromRecognition builds the fallback analysis: an exact copy of the
// recognition result. The items slice is copied so later enrichment attempts
// can never alias the source.
func EnrichedFromRecognition(r *RecognitionResult) *EnrichedAnalysis {
	items := make([]FoodItem, len(r.Items))
	copy(items, r.Items)
	return &EnrichedAnalysis{
		Items:      items,
		Confidence: r.Confidence,
	}
}
