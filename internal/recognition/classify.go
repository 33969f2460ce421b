package recognition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FailureKind is the structured classification of an upstream failure.
// The classification is stable for a given underlying condition, so tests
// and the transport layer branch on it rather than on error text.
type FailureKind int

const (
	KindUnavailable FailureKind = iota
	KindTimeout
	KindRateLimited
	KindAuth
)

func (k FailureKind) String() string {
	switch k {
	case KindTimeout:
		return "upstream_timeout"
	case KindRateLimited:
		return "upstream_rate_limited"
	case KindAuth:
		return "upstream_auth_error"
	default:
		return "upstream_unavailable"
	}
}

// UpstreamError wraps a collaborator failure with its classification.
type UpstreamError struct {
	Kind  FailureKind
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Classify maps a raw collaborator error to its failure kind. Structured
// error data (context sentinels, HTTP status, gRPC code) is consulted first;
// message matching is kept only as a last-resort adapter for upstreams that
// report conditions as bare text.
func Classify(err error) *UpstreamError {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &UpstreamError{Kind: KindTimeout, Cause: err}
	}
	if k := kindFromHTTP(err); k != nil {
		return &UpstreamError{Kind: *k, Cause: err}
	}
	if k := kindFromGRPC(err); k != nil {
		return &UpstreamError{Kind: *k, Cause: err}
	}
	if k := kindFromText(err); k != nil {
		return &UpstreamError{Kind: *k, Cause: err}
	}
	return &UpstreamError{Kind: KindUnavailable, Cause: err}
}

func kindFromHTTP(err error) *FailureKind {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return nil
	}
	switch {
	case apiErr.Code == 429:
		return kindPtr(KindRateLimited)
	case apiErr.Code == 401 || apiErr.Code == 403:
		return kindPtr(KindAuth)
	case apiErr.Code == 408 || apiErr.Code == 504:
		return kindPtr(KindTimeout)
	case apiErr.Code >= 500:
		return kindPtr(KindUnavailable)
	}
	return nil
}

func kindFromGRPC(err error) *FailureKind {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	switch st.Code() {
	case codes.ResourceExhausted:
		return kindPtr(KindRateLimited)
	case codes.Unauthenticated, codes.PermissionDenied:
		return kindPtr(KindAuth)
	case codes.DeadlineExceeded:
		return kindPtr(KindTimeout)
	case codes.Unavailable, codes.Internal:
		return kindPtr(KindUnavailable)
	}
	return nil
}

func kindFromText(err error) *FailureKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "quota"), strings.Contains(msg, "too many requests"):
		return kindPtr(KindRateLimited)
	case strings.Contains(msg, "api key"), strings.Contains(msg, "unauthorized"), strings.Contains(msg, "unauthenticated"):
		return kindPtr(KindAuth)
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timed out"), strings.Contains(msg, "timeout"):
		return kindPtr(KindTimeout)
	}
	return nil
}

func kindPtr(k FailureKind) *FailureKind {
	return &k
}
