package transport

import (
	"context"
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dsaini64/food-tracker-sub001/internal/config"
	apperrors "github.com/dsaini64/food-tracker-sub001/internal/errors"
	"github.com/dsaini64/food-tracker-sub001/internal/logger"
	"github.com/dsaini64/food-tracker-sub001/internal/pipeline"
	"github.com/dsaini64/food-tracker-sub001/internal/recognition"
	"github.com/dsaini64/food-tracker-sub001/pkg/models"
	"github.com/dsaini64/food-tracker-sub001/pkg/validation"
)

// FoodAnalyzer runs one image analysis end to end.
type FoodAnalyzer interface {
	Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error)
}

// PatternSummarizer runs one eating-pattern summary end to end.
type PatternSummarizer interface {
	Summarize(ctx context.Context, meals []models.MealRecord) (string, error)
}

func NewHandler(analyzer FoodAnalyzer, summarizer PatternSummarizer, rec recognition.Client, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(requestSizeLimiter(cfg.MaxRequestBodySize))

	validator := validation.NewRequestValidator()

	r.GET("/health", healthCheck)
	r.POST("/api/analyze-food", analyzeFood(analyzer, cfg))
	r.POST("/api/pattern-summary", patternSummary(summarizer, validator, cfg))
	r.POST("/api/estimate-macros", estimateMacros(rec, validator, cfg))
	r.POST("/api/nutrition-suggestions", nutritionSuggestions(rec, validator, cfg))

	return r
}

// analyzeFood accepts either a multipart upload (field "image") or a JSON
// body carrying base64 image data. The whole request runs under the analysis
// budget; a budget overrun yields ANALYSIS_TIMEOUT exactly once.
func analyzeFood(a FoodAnalyzer, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Processing food analysis request")

		req, err := extractImage(c)
		if err != nil {
			respondError(c, err)
			return
		}

		timeoutErr := apperrors.NewTimeoutError(apperrors.CodeAnalysisTimeout, "analysis did not complete in time", nil)
		resp, runErr := pipeline.RunWithBudget(c.Request.Context(), cfg.AnalysisBudget, timeoutErr,
			func(ctx context.Context) (*models.AnalysisResponse, error) {
				return a.Analyze(ctx, req)
			})
		if runErr != nil {
			respondError(c, runErr)
			return
		}

		logger.WithFields(logrus.Fields{
			"analysis_id":        resp.AnalysisID,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
			"items":              len(resp.Analysis.Items),
		}).Info("Food analysis completed successfully")

		c.JSON(http.StatusOK, resp)
	}
}

// extractImage pulls the raw image bytes out of either request shape.
func extractImage(c *gin.Context) (*models.AnalysisRequest, *apperrors.AppError) {
	mediaType, _, err := mime.ParseMediaType(c.ContentType())
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidContentType, "unsupported content type", err)
	}

	switch mediaType {
	case "multipart/form-data":
		file, header, err := c.Request.FormFile("image")
		if err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeNoImage, "no image file in request", err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidImage, "failed to read image file", err)
		}
		return &models.AnalysisRequest{
			Data:          data,
			ContentLength: header.Size,
			MIMEHint:      header.Header.Get("Content-Type"),
		}, nil

	case "application/json":
		var payload models.ImagePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeNoImage, "no image data in request", err)
		}
		if payload.ImageBase64 == "" {
			return nil, apperrors.NewValidationError(apperrors.CodeNoImage, "no image data in request", nil)
		}
		data, err := base64.StdEncoding.DecodeString(stripDataURL(payload.ImageBase64))
		if err != nil {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidImage, "image data is not valid base64", err)
		}
		return &models.AnalysisRequest{
			Data:          data,
			ContentLength: int64(len(data)),
		}, nil

	default:
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidContentType, "content type must be multipart/form-data or application/json", nil)
	}
}

// stripDataURL drops a "data:image/...;base64," prefix when a client sends a
// data URL instead of bare base64.
func stripDataURL(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

func patternSummary(s PatternSummarizer, v *validation.RequestValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PatternSummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError(apperrors.CodeInvalidMealsData, "malformed meals payload", err))
			return
		}
		if err := v.ValidateMeals(req.MealsToday); err != nil {
			respondError(c, err)
			return
		}

		timeoutErr := apperrors.NewTimeoutError(apperrors.CodePatternSummaryTimeout, "summary did not complete in time", nil)
		text, err := pipeline.RunWithBudget(c.Request.Context(), cfg.SummaryBudget, timeoutErr,
			func(ctx context.Context) (string, error) {
				return s.Summarize(ctx, req.MealsToday)
			})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SummaryResponse{Success: true, Summary: text})
	}
}

func estimateMacros(rec recognition.Client, v *validation.RequestValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.MacroEstimateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError(apperrors.CodeInvalidFoodName, "malformed estimate payload", err))
			return
		}
		if err := v.ValidateFoodName(req.FoodName); err != nil {
			respondError(c, err)
			return
		}

		// ESTIMATION_FAILED is a 500-class code, so a budget overrun here
		// answers 500 rather than pairing the code with a 504.
		timeoutErr := apperrors.NewInternalError(apperrors.CodeEstimationFailed, "estimate did not complete in time", nil)
		item, err := pipeline.RunWithBudget(c.Request.Context(), cfg.SummaryBudget, timeoutErr,
			func(ctx context.Context) (*models.FoodItem, error) {
				return rec.EstimateMacros(ctx, req.FoodName)
			})
		if err != nil {
			respondError(c, textOperationError(err, apperrors.CodeEstimationFailed))
			return
		}

		c.JSON(http.StatusOK, models.MacroEstimateResponse{Success: true, Estimate: *item})
	}
}

func nutritionSuggestions(rec recognition.Client, v *validation.RequestValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SuggestionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.NewValidationError(apperrors.CodeInvalidFoodItems, "malformed suggestions payload", err))
			return
		}
		if err := v.ValidateFoodItems(req.FoodItems); err != nil {
			respondError(c, err)
			return
		}

		timeoutErr := apperrors.NewInternalError(apperrors.CodeSuggestionsFailed, "suggestions did not complete in time", nil)
		suggestions, err := pipeline.RunWithBudget(c.Request.Context(), cfg.SummaryBudget, timeoutErr,
			func(ctx context.Context) ([]string, error) {
				return rec.SuggestImprovements(ctx, req.FoodItems, req.UserGoals)
			})
		if err != nil {
			respondError(c, textOperationError(err, apperrors.CodeSuggestionsFailed))
			return
		}

		c.JSON(http.StatusOK, models.SuggestionsResponse{Success: true, Suggestions: suggestions})
	}
}

// textOperationError maps collaborator failures on the text-only operations
// to their operation code, preserving rate-limit and credential conditions.
func textOperationError(err error, fallback apperrors.Code) error {
	if _, ok := err.(*apperrors.AppError); ok {
		return err
	}

	ue := recognition.Classify(err)
	switch ue.Kind {
	case recognition.KindRateLimited:
		return apperrors.NewRateLimitError("upstream service is rate limited", err)
	case recognition.KindAuth:
		return apperrors.NewAuthError("upstream service rejected credentials", err)
	case recognition.KindTimeout:
		return apperrors.NewInternalError(fallback, "upstream call timed out", err)
	default:
		return apperrors.NewInternalError(fallback, "upstream call failed", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func respondError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"error_code":  string(apperrors.CodeOf(err)),
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	message := ""
	if appErr, ok := err.(*apperrors.AppError); ok {
		message = appErr.Message
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Success: false,
		Code:    string(apperrors.CodeOf(err)),
		Message: message,
	})
}
