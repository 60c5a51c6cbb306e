// Package server provides the HTTP API of the quote pipeline.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/quote-pipeline/internal/db"
	"github.com/jonathan/quote-pipeline/internal/draft"
	"github.com/jonathan/quote-pipeline/internal/llm"
	"github.com/jonathan/quote-pipeline/internal/pipeline"
)

// ErrQuoteNotFound indicates no stored quote has the id
type ErrQuoteNotFound struct {
	ID string
}

func (e *ErrQuoteNotFound) Error() string {
	return fmt.Sprintf("quote not found: %s", e.ID)
}

// ErrJobNotFound indicates the registry has no such job type
type ErrJobNotFound struct {
	JobType string
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("job type not found: %s", e.JobType)
}

// ErrUnavailable indicates an optional backend is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound    *ErrQuoteNotFound
		jobNotFound *ErrJobNotFound
		unavailable *ErrUnavailable
		invalid     *ErrValidation
		reqErr      *pipeline.RequestError
		parseErr    *draft.ParseError
		apiErr      *llm.APICallError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &jobNotFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &invalid), errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr):
		switch {
		case apiErr.RateLimited():
			return http.StatusTooManyRequests
		case apiErr.Timeout():
			return http.StatusGatewayTimeout
		default:
			return http.StatusBadGateway
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
