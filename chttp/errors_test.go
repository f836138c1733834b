package chttp

import (
	"net/http"
	"testing"

	"gitlab.com/flimzy/testy"
)

func TestHTTPErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *HTTPError
		expected string
	}{
		{
			name:     "status only",
			err:      &HTTPError{Code: http.StatusNotFound},
			expected: "Not Found",
		},
		{
			name:     "status and reason",
			err:      &HTTPError{Code: http.StatusNotFound, Reason: "missing"},
			expected: "Not Found: missing",
		},
		{
			name:     "unknown status",
			err:      &HTTPError{Code: 999, Reason: "weird"},
			expected: "weird",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if msg := test.err.Error(); msg != test.expected {
				t.Errorf("Unexpected error message: %s", msg)
			}
		})
	}
}

func TestResponseError(t *testing.T) {
	tests := []struct {
		name     string
		resp     *http.Response
		expected string
		status   int
	}{
		{
			name: "non-error response",
			resp: &http.Response{
				StatusCode: http.StatusOK,
				Body:       Body(""),
			},
		},
		{
			name: "error with JSON body",
			resp: &http.Response{
				StatusCode:    http.StatusBadRequest,
				Header:        http.Header{"Content-Type": {"application/json"}},
				ContentLength: -1,
				Body:          Body(`{"error":"bad_request","reason":"invalid UTF-8 JSON"}`),
				Request:       &http.Request{Method: http.MethodGet},
			},
			expected: "Bad Request: invalid UTF-8 JSON",
			status:   http.StatusBadRequest,
		},
		{
			name: "error with non-JSON body",
			resp: &http.Response{
				StatusCode:    http.StatusBadRequest,
				Header:        http.Header{"Content-Type": {"text/plain"}},
				ContentLength: -1,
				Body:          Body("bad request"),
				Request:       &http.Request{Method: http.MethodGet},
			},
			expected: "Bad Request",
			status:   http.StatusBadRequest,
		},
		{
			name: "HEAD error ignores body",
			resp: &http.Response{
				StatusCode:    http.StatusNotFound,
				Header:        http.Header{"Content-Type": {"application/json"}},
				ContentLength: -1,
				Body:          Body(""),
				Request:       &http.Request{Method: http.MethodHead},
			},
			expected: "Not Found",
			status:   http.StatusNotFound,
		},
		{
			name: "empty body",
			resp: &http.Response{
				StatusCode:    http.StatusInternalServerError,
				ContentLength: 0,
				Body:          Body(""),
				Request:       &http.Request{Method: http.MethodGet},
			},
			expected: "Internal Server Error",
			status:   http.StatusInternalServerError,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ResponseError(test.resp)
			testy.StatusError(t, test.expected, test.status, err)
		})
	}
}
