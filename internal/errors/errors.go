package errors

import (
	"fmt"
	"net/http"
)

// Code is the stable machine-readable error code carried in every error
// envelope. Clients branch on Code, never on Message.
type Code string

const (
	CodeInvalidContentType    Code = "INVALID_CONTENT_TYPE"
	CodeNoImage               Code = "NO_IMAGE"
	CodeInvalidImage          Code = "INVALID_IMAGE"
	CodeImageConversionFailed Code = "IMAGE_CONVERSION_FAILED"
	CodeAnalysisTimeout       Code = "ANALYSIS_TIMEOUT"
	CodeAnalysisFailed        Code = "ANALYSIS_FAILED"
	CodeAPIKeyError           Code = "API_KEY_ERROR"
	CodeRateLimited           Code = "RATE_LIMITED"

	CodeInvalidMealsData      Code = "INVALID_MEALS_DATA"
	CodeNoMeals               Code = "NO_MEALS"
	CodePatternSummaryTimeout Code = "PATTERN_SUMMARY_TIMEOUT"
	CodePatternSummaryFailed  Code = "PATTERN_SUMMARY_FAILED"

	CodeInvalidFoodName  Code = "INVALID_FOOD_NAME"
	CodeEstimationFailed Code = "ESTIMATION_FAILED"

	CodeInvalidFoodItems  Code = "INVALID_FOOD_ITEMS"
	CodeSuggestionsFailed Code = "SUGGESTIONS_FAILED"
)

// AppError represents a structured application error
type AppError struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Cause      error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a 400-class input validation error
func NewValidationError(code Code, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewTimeoutError creates a 504 deadline error
func NewTimeoutError(code Code, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// NewRateLimitError creates a 429 upstream rate-limit error
func NewRateLimitError(message string, cause error) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		Cause:      cause,
	}
}

// NewAuthError creates a 500 upstream credential/configuration error
func NewAuthError(message string, cause error) *AppError {
	return &AppError{
		Code:       CodeAPIKeyError,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewInternalError creates a 500 error with the given code
func NewInternalError(code Code, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// CodeOf extracts the stable code from an error, falling back to the
// generic analysis failure for anything untyped.
func CodeOf(err error) Code {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeAnalysisFailed
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsCode checks if the error carries a specific code
func IsCode(err error, code Code) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}
