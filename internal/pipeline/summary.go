package pipeline

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/dsaini64/food-tracker-sub001/internal/errors"
	"github.com/dsaini64/food-tracker-sub001/internal/observer"
	"github.com/dsaini64/food-tracker-sub001/internal/summary"
	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

// SummaryPipeline orchestrates one eating-pattern summary request.
type SummaryPipeline struct {
	generator summary.Generator
	events    observer.Subject

	generationTimeout time.Duration
}

func NewSummaryPipeline(generator summary.Generator, events observer.Subject, generationTimeout time.Duration) *SummaryPipeline {
	return &SummaryPipeline{
		generator:         generator,
		events:            events,
		generationTimeout: generationTimeout,
	}
}

// Summarize validates the meal set and delegates to the generator under its
// stage timeout. An empty meal set is rejected before any external call.
func (p *SummaryPipeline) Summarize(ctx context.Context, meals []models.MealRecord) (string, error) {
	start := time.Now()

	if len(meals) == 0 {
		return "", apperrors.NewValidationError(apperrors.CodeNoMeals, "no meals provided for summary", nil)
	}

	genCtx, cancel := context.WithTimeout(ctx, p.generationTimeout)
	defer cancel()

	text, err := p.generator.Summarize(genCtx, meals)
	if err != nil {
		appErr := summaryError(err)
		p.notify(ctx, observer.AnalysisEvent{
			EventType:      observer.SummaryFailed,
			Timestamp:      time.Now(),
			ProcessingTime: time.Since(start),
			ErrorMessage:   appErr.Error(),
			Metadata:       map[string]interface{}{"code": string(appErr.Code)},
		})
		return "", appErr
	}

	p.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.SummaryCompleted,
		Timestamp:      time.Now(),
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"meals": len(meals)},
	})
	return text, nil
}

func (p *SummaryPipeline) notify(ctx context.Context, event observer.AnalysisEvent) {
	if p.events != nil {
		p.events.NotifyObservers(ctx, event)
	}
}

func summaryError(err error) *apperrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(apperrors.CodePatternSummaryTimeout, "pattern summary generation timed out", err)
	}
	return apperrors.NewInternalError(apperrors.CodePatternSummaryFailed, err.Error(), err)
}
