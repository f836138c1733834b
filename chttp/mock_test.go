package chttp

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
)

// Body turns a string into a response body.
func Body(str string) io.ReadCloser {
	return ioutil.NopCloser(strings.NewReader(str))
}

type dummyTransport struct {
	response *http.Response
	err      error
}

var _ http.RoundTripper = &dummyTransport{}

func (t *dummyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		defer func() { _ = req.Body.Close() }()
		if _, err := ioutil.ReadAll(req.Body); err != nil {
			return nil, err
		}
	}
	if t.err != nil {
		return nil, t.err
	}
	response := t.response
	response.Request = req
	return response, nil
}

type customTransport func(*http.Request) (*http.Response, error)

var _ http.RoundTripper = customTransport(nil)

func (t customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t(req)
}

func newTestClient(response *http.Response, err error) *Client {
	client, _ := New(context.Background(), "http://example.com/")
	client.Transport = &dummyTransport{response: response, err: err}
	return client
}

func newCustomClient(fn func(*http.Request) (*http.Response, error)) *Client {
	client, _ := New(context.Background(), "http://example.com/")
	client.Transport = customTransport(fn)
	return client
}
