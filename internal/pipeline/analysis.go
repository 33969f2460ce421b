package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/dsaini64/food-tracker-sub001/internal/errors"
	"github.com/dsaini64/food-tracker-sub001/internal/imaging"
	"github.com/dsaini64/food-tracker-sub001/internal/nutrition"
	"github.com/dsaini64/food-tracker-sub001/internal/observer"
	"github.com/dsaini64/food-tracker-sub001/internal/recognition"
	"github.com/dsaini64/food-tracker-sub001/internal/storage"
	"github.com/dsaini64/food-tracker-sub001/pkg/models"
)

// AnalysisPipeline orchestrates one food-photo analysis: local normalization,
// recognition against the vision collaborator, best-effort nutrition
// enrichment and asynchronous archiving. Every failure surfaces as an
// AppError with a stable code.
type AnalysisPipeline struct {
	normalizer *imaging.Normalizer
	recognizer recognition.Client
	enhancer   nutrition.Enhancer
	archiver   storage.ImageArchiver
	uploads    *storage.UploadQueue
	events     observer.Subject

	recognitionTimeout time.Duration
	enrichmentTimeout  time.Duration
}

func NewAnalysisPipeline(
	normalizer *imaging.Normalizer,
	recognizer recognition.Client,
	enhancer nutrition.Enhancer,
	archiver storage.ImageArchiver,
	uploads *storage.UploadQueue,
	events observer.Subject,
	recognitionTimeout, enrichmentTimeout time.Duration,
) *AnalysisPipeline {
	return &AnalysisPipeline{
		normalizer:         normalizer,
		recognizer:         recognizer,
		enhancer:           enhancer,
		archiver:           archiver,
		uploads:            uploads,
		events:             events,
		recognitionTimeout: recognitionTimeout,
		enrichmentTimeout:  enrichmentTimeout,
	}
}

// Analyze runs the full pipeline for one uploaded image. Normalization is a
// local fail-fast gate; no external call happens for an undecodable upload.
func (p *AnalysisPipeline) Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	start := time.Now()
	analysisID := uuid.NewString()

	p.notify(ctx, observer.AnalysisEvent{
		EventType:  observer.AnalysisStarted,
		Timestamp:  start,
		AnalysisID: analysisID,
	})

	img, err := p.normalizer.Normalize(req.Data)
	if err != nil {
		appErr := normalizeError(err)
		p.notifyFailure(ctx, analysisID, start, appErr)
		return nil, appErr
	}

	rec, err := p.recognize(ctx, img)
	if err != nil {
		appErr := recognitionError(err)
		p.notifyFailure(ctx, analysisID, start, appErr)
		return nil, appErr
	}

	analysis := p.enrich(ctx, analysisID, rec)

	p.archiveAsync(analysisID, img)

	p.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Timestamp:      time.Now(),
		AnalysisID:     analysisID,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"items": len(analysis.Items)},
	})

	return &models.AnalysisResponse{
		Success:    true,
		AnalysisID: analysisID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Analysis:   analysis,
	}, nil
}

// recognize calls the vision collaborator under its own stage timeout.
func (p *AnalysisPipeline) recognize(ctx context.Context, img *models.NormalizedImage) (*models.RecognitionResult, error) {
	recCtx, cancel := context.WithTimeout(ctx, p.recognitionTimeout)
	defer cancel()

	return p.recognizer.AnalyzeImage(recCtx, img)
}

// enrich attempts nutrition-database correction. On any failure the raw
// recognition result is returned unchanged and the failure is only observed,
// never surfaced to the client.
func (p *AnalysisPipeline) enrich(ctx context.Context, analysisID string, rec *models.RecognitionResult) *models.EnrichedAnalysis {
	if p.enhancer == nil {
		return models.EnrichedFromRecognition(rec)
	}

	enrichCtx, cancel := context.WithTimeout(ctx, p.enrichmentTimeout)
	defer cancel()

	enriched, err := p.enhancer.Enrich(enrichCtx, rec)
	if err != nil {
		p.notify(ctx, observer.AnalysisEvent{
			EventType:    observer.EnrichmentFallback,
			Timestamp:    time.Now(),
			AnalysisID:   analysisID,
			ErrorMessage: err.Error(),
		})
		return models.EnrichedFromRecognition(rec)
	}
	return enriched
}

// archiveAsync submits the normalized image to the upload queue. The request
// path never waits on blob storage.
func (p *AnalysisPipeline) archiveAsync(analysisID string, img *models.NormalizedImage) {
	if p.archiver == nil || p.uploads == nil {
		return
	}

	p.uploads.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := p.archiver.Archive(ctx, analysisID, img); err != nil {
			p.notify(ctx, observer.AnalysisEvent{
				EventType:    observer.ImageArchiveFailed,
				Timestamp:    time.Now(),
				AnalysisID:   analysisID,
				ErrorMessage: err.Error(),
			})
			return
		}
		p.notify(ctx, observer.AnalysisEvent{
			EventType:  observer.ImageArchived,
			Timestamp:  time.Now(),
			AnalysisID: analysisID,
			Success:    true,
		})
	})
}

func (p *AnalysisPipeline) notify(ctx context.Context, event observer.AnalysisEvent) {
	if p.events != nil {
		p.events.NotifyObservers(ctx, event)
	}
}

func (p *AnalysisPipeline) notifyFailure(ctx context.Context, analysisID string, start time.Time, appErr *apperrors.AppError) {
	p.notify(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		Timestamp:      time.Now(),
		AnalysisID:     analysisID,
		ProcessingTime: time.Since(start),
		ErrorMessage:   appErr.Error(),
		Metadata:       map[string]interface{}{"code": string(appErr.Code)},
	})
}

func normalizeError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, imaging.ErrEmptyInput):
		return apperrors.NewValidationError(apperrors.CodeInvalidImage, "image data is empty", err)
	case errors.Is(err, imaging.ErrEncode):
		return apperrors.NewInternalError(apperrors.CodeImageConversionFailed, "failed to convert image", err)
	default:
		return apperrors.NewValidationError(apperrors.CodeInvalidImage, "image could not be decoded", err)
	}
}

func recognitionError(err error) *apperrors.AppError {
	ue := recognition.Classify(err)
	switch ue.Kind {
	case recognition.KindTimeout:
		return apperrors.NewTimeoutError(apperrors.CodeAnalysisTimeout, "food recognition timed out", err)
	case recognition.KindRateLimited:
		return apperrors.NewRateLimitError("recognition service is rate limited", err)
	case recognition.KindAuth:
		return apperrors.NewAuthError("recognition service rejected credentials", err)
	default:
		return apperrors.NewInternalError(apperrors.CodeAnalysisFailed, "food recognition failed", err)
	}
}
