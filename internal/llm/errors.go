package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// APICallError represents a failed call to the model provider
type APICallError struct {
	Model   string
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm api error (%s): %s: %v", e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm api error (%s): %s", e.Model, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the call ran out of time
func (e *APICallError) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(e.Cause, &apiErr) {
		return apiErr.Code == http.StatusGatewayTimeout || apiErr.Code == http.StatusRequestTimeout
	}
	return e.Cause != nil && strings.Contains(strings.ToLower(e.Cause.Error()), "deadline exceeded")
}

// RateLimited reports whether the provider rejected the call for quota reasons
func (e *APICallError) RateLimited() bool {
	var apiErr *googleapi.Error
	if errors.As(e.Cause, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	if e.Cause == nil {
		return false
	}
	msg := e.Cause.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "ResourceExhausted") || strings.Contains(msg, "429")
}

// Retryable reports whether retrying the call may succeed
func (e *APICallError) Retryable() bool {
	return e.Timeout() || e.RateLimited()
}

// ResponseError represents a response that carried no usable text
type ResponseError struct {
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("llm response error: %s", e.Message)
}

// IsRetryable reports whether err is a transient provider failure
func IsRetryable(err error) bool {
	var apiErr *APICallError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}
