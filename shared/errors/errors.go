package errors

import "net/http"

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// NotFound is the 404 variant storage backends return for missing keys.
func NotFound(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

func IsNotFound(err error) bool {
	e, ok := err.(*ErrorWithStatusCode)
	return ok && e.StatusCode == http.StatusNotFound
}
