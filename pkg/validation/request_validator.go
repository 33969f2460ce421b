package validation

import (
	"strings"

	apperrors "github.com/dsaini64/food-tracker-sub001/internal/errors"
	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

// RequestValidator handles request payload validation logic
type RequestValidator struct {
	maxFoodNameLength int
	maxFoodItems      int
}

// NewRequestValidator creates a validator with default settings
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		maxFoodNameLength: 200,
		maxFoodItems:      50,
	}
}

// ValidateFoodName validates the food name for a macro estimate request
func (v *RequestValidator) ValidateFoodName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return apperrors.NewValidationError(apperrors.CodeInvalidFoodName, "food name cannot be empty", nil)
	}
	if len(trimmed) > v.maxFoodNameLength {
		return apperrors.NewValidationError(apperrors.CodeInvalidFoodName, "food name is too long", nil)
	}
	return nil
}

// ValidateFoodItems validates the food list for a suggestions request
func (v *RequestValidator) ValidateFoodItems(items []string) error {
	if len(items) == 0 {
		return apperrors.NewValidationError(apperrors.CodeInvalidFoodItems, "food items cannot be empty", nil)
	}
	if len(items) > v.maxFoodItems {
		return apperrors.NewValidationError(apperrors.CodeInvalidFoodItems, "too many food items", nil)
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			return apperrors.NewValidationError(apperrors.CodeInvalidFoodItems, "food items cannot contain empty names", nil)
		}
	}
	return nil
}

// ValidateMeals validates meal records for a pattern summary request.
// Emptiness of the whole set is decided downstream; this checks each record.
func (v *RequestValidator) ValidateMeals(meals []models.MealRecord) error {
	for _, meal := range meals {
		if strings.TrimSpace(meal.Name) == "" {
			return apperrors.NewValidationError(apperrors.CodeInvalidMealsData, "meal name cannot be empty", nil)
		}
		if meal.Calories < 0 || meal.Protein < 0 || meal.Carbohydrate < 0 || meal.Fat < 0 {
			return apperrors.NewValidationError(apperrors.CodeInvalidMealsData, "meal macros cannot be negative", nil)
		}
	}
	return nil
}
