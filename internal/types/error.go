package types

import "fmt"

// CustomError is an error that carries its own HTTP status and error type
// through fiber's error handler. Middleware (the search rate limiter) returns
// it so the global handler can render the standard envelope with the right
// status instead of a blanket 500.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
