package sofa

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error with an associated HTTP status code. Validation failures
// carry status 400; server-reported failures are returned as
// *chttp.HTTPError values with the server's status.
type Error struct {
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the embedded HTTP status code.
func (e *Error) StatusCode() int {
	return e.HTTPStatus
}

type statusCoder interface {
	StatusCode() int
}

// HTTPStatus returns the HTTP status code embedded anywhere in err's chain,
// or 500 when no status is embedded. A nil error returns 0.
func HTTPStatus(err error) int {
	if err == nil {
		return 0
	}
	var coder statusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode()
	}
	return http.StatusInternalServerError
}

// NotFound returns true if err is the result of an HTTP 404 response.
func NotFound(err error) bool {
	return HTTPStatus(err) == http.StatusNotFound
}

// Conflict returns true if err is the result of an HTTP 409 response, the
// server's rejection of a write carrying a stale revision.
func Conflict(err error) bool {
	return HTTPStatus(err) == http.StatusConflict
}

func missingArg(arg string) error {
	return &Error{HTTPStatus: http.StatusBadRequest, Err: fmt.Errorf("sofa: %s required", arg)}
}
