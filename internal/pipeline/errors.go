package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/quote-pipeline/internal/types"
)

// RequestError is returned when a quote request fails validation
type RequestError struct {
	Message string
	Fields  []string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid request: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid request: %s", e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// ValidateRequest checks req against its struct tags and returns a *RequestError on failure
func ValidateRequest(req *types.QuoteRequest) error {
	if req == nil {
		return &RequestError{Message: "request is nil"}
	}
	if err := req.Validate(); err != nil {
		return newRequestError(err)
	}
	return nil
}

// newRequestError summarizes validator errors as "field:tag" pairs
func newRequestError(err error) *RequestError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &RequestError{Message: "malformed request", Cause: err}
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s:%s", fe.Namespace(), fe.Tag()))
	}
	return &RequestError{
		Message: strings.Join(fields, ", "),
		Fields:  fields,
		Cause:   err,
	}
}
