package sofa

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sofadb/sofa/chttp"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil",
			err:      nil,
			expected: 0,
		},
		{
			name:     "validation error",
			err:      missingArg("docID"),
			expected: http.StatusBadRequest,
		},
		{
			name:     "server error",
			err:      &chttp.HTTPError{Code: http.StatusConflict},
			expected: http.StatusConflict,
		},
		{
			name:     "wrapped server error",
			err:      fmt.Errorf("fetching doc: %w", &chttp.HTTPError{Code: http.StatusNotFound}),
			expected: http.StatusNotFound,
		},
		{
			name:     "plain error",
			err:      errors.New("network is down"),
			expected: http.StatusInternalServerError,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if status := HTTPStatus(test.err); status != test.expected {
				t.Errorf("Unexpected status: %d", status)
			}
		})
	}
}

func TestNotFoundConflict(t *testing.T) {
	notFound := &chttp.HTTPError{Code: http.StatusNotFound}
	conflict := &chttp.HTTPError{Code: http.StatusConflict}
	if !NotFound(notFound) || NotFound(conflict) {
		t.Error("Unexpected NotFound result")
	}
	if !Conflict(conflict) || Conflict(notFound) {
		t.Error("Unexpected Conflict result")
	}
	if NotFound(nil) || Conflict(nil) {
		t.Error("Expected nil error to match nothing")
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &Error{HTTPStatus: http.StatusBadRequest, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Expected wrapped error to match errors.Is")
	}
	if err.Error() != "inner" {
		t.Errorf("Unexpected message: %s", err)
	}
}
