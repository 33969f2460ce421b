package recognition

import (
	"context"

	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

// Client is the recognition-family collaborator: the external vision model
// that turns an encoded food image into a structured macro estimate, and the
// text-only operations that ride on the same upstream.
//
// Implementations are injected through the container; production uses the
// Gemini adapter, tests use deterministic stubs.
type Client interface {
	// AnalyzeImage recognizes the food items in a normalized image.
	// The result is either fully populated or an error is returned.
	AnalyzeImage(ctx context.Context, img *models.NormalizedImage) (*models.RecognitionResult, error)

	// EstimateMacros produces a macro estimate for a food by name alone.
	EstimateMacros(ctx context.Context, foodName string) (*models.FoodItem, error)

	// SuggestImprovements returns nutrition suggestions for a list of foods
	// against the caller's stated goals.
	SuggestImprovements(ctx context.Context, foodItems []string, userGoals string) ([]string, error)
}
