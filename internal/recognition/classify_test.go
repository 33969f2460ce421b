package recognition

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassify_ContextErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"deadline exceeded", context.DeadlineExceeded, KindTimeout},
		{"canceled", context.Canceled, KindTimeout},
		{"wrapped deadline", fmt.Errorf("call failed: %w", context.DeadlineExceeded), KindTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got.Kind != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got.Kind, tt.want)
			}
		})
	}
}

func TestClassify_HTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want FailureKind
	}{
		{429, KindRateLimited},
		{401, KindAuth},
		{403, KindAuth},
		{408, KindTimeout},
		{504, KindTimeout},
		{500, KindUnavailable},
		{503, KindUnavailable},
	}
	for _, tt := range tests {
		err := &googleapi.Error{Code: tt.code, Message: "upstream"}
		if got := Classify(err); got.Kind != tt.want {
			t.Errorf("Classify(HTTP %d) = %s, want %s", tt.code, got.Kind, tt.want)
		}
	}
}

func TestClassify_GRPCStatus(t *testing.T) {
	tests := []struct {
		code codes.Code
		want FailureKind
	}{
		{codes.ResourceExhausted, KindRateLimited},
		{codes.Unauthenticated, KindAuth},
		{codes.PermissionDenied, KindAuth},
		{codes.DeadlineExceeded, KindTimeout},
		{codes.Unavailable, KindUnavailable},
		{codes.Internal, KindUnavailable},
	}
	for _, tt := range tests {
		err := status.Error(tt.code, "upstream")
		if got := Classify(err); got.Kind != tt.want {
			t.Errorf("Classify(gRPC %s) = %s, want %s", tt.code, got.Kind, tt.want)
		}
	}
}

func TestClassify_TextFallback(t *testing.T) {
	tests := []struct {
		msg  string
		want FailureKind
	}{
		{"429: rate limit exceeded for model", KindRateLimited},
		{"quota exhausted", KindRateLimited},
		{"too many requests", KindRateLimited},
		{"API key not valid", KindAuth},
		{"request unauthorized", KindAuth},
		{"rpc unauthenticated", KindAuth},
		{"operation timed out", KindTimeout},
		{"client timeout waiting for response", KindTimeout},
		{"connection reset by peer", KindUnavailable},
		{"something strange happened", KindUnavailable},
	}
	for _, tt := range tests {
		if got := Classify(errors.New(tt.msg)); got.Kind != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.msg, got.Kind, tt.want)
		}
	}
}

func TestClassify_ExistingUpstreamError(t *testing.T) {
	orig := &UpstreamError{Kind: KindRateLimited, Cause: errors.New("slow down")}
	if got := Classify(orig); got != orig {
		t.Error("Expected an already-classified error to pass through unchanged")
	}

	wrapped := fmt.Errorf("stage failed: %w", orig)
	if got := Classify(wrapped); got.Kind != KindRateLimited {
		t.Errorf("Expected wrapped classification preserved, got %s", got.Kind)
	}
}

func TestClassify_PreservesCause(t *testing.T) {
	cause := errors.New("boom")
	got := Classify(cause)
	if !errors.Is(got, cause) {
		t.Error("Expected the classified error to wrap its cause")
	}
}

func TestFailureKind_String(t *testing.T) {
	tests := []struct {
		kind FailureKind
		want string
	}{
		{KindTimeout, "upstream_timeout"},
		{KindRateLimited, "upstream_rate_limited"},
		{KindAuth, "upstream_auth_error"},
		{KindUnavailable, "upstream_unavailable"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("FailureKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
