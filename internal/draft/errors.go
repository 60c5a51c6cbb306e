package draft

import "fmt"

// ParseError represents a draft that is not JSON at all
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("draft parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("draft parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
