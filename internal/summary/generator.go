package summary

import (
	"context"

	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

// Generator is the pattern-summary collaborator: given the meals a user
// logged today, it produces a free-form narrative of their eating pattern.
// The text is passed through to the client opaquely and never parsed.
type Generator interface {
	Summarize(ctx context.Context, meals []models.MealRecord) (string, error)
}
