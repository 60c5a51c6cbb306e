package formula

import "fmt"

// SyntaxError is returned by Parse for input outside the formula grammar
type SyntaxError struct {
	Expr    string
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("formula syntax error: %q at %d: %s", e.Expr, e.Pos, e.Message)
}

// EvalError is returned when a parsed formula cannot produce a finite number
type EvalError struct {
	Expr    string
	Message string
	Cause   error
}

func (e *EvalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("formula eval error: %q: %s: %v", e.Expr, e.Message, e.Cause)
	}
	return fmt.Sprintf("formula eval error: %q: %s", e.Expr, e.Message)
}

func (e *EvalError) Unwrap() error {
	return e.Cause
}
