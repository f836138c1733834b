// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package chttp provides a minimal HTTP driver backend for communicating with
// CouchDB-compatible servers.
package chttp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const typeJSON = "application/json"

// Client represents a client connection. It embeds an *http.Client.
type Client struct {
	*http.Client

	rawDSN string
	dsn    *url.URL
	auth   Authenticator
	authMU sync.Mutex
}

// New returns a connection to a remote server. If credentials are included in
// the DSN URL, requests are authenticated using CookieAuth. To use a
// different authentication mechanism, omit the credentials and call Auth
// after the client is constructed.
func New(ctx context.Context, dsn string) (*Client, error) {
	return NewWithClient(ctx, &http.Client{}, dsn)
}

// NewWithClient works the same as New, but allows providing a custom
// *http.Client for all server connections.
func NewWithClient(ctx context.Context, httpClient *http.Client, dsn string) (*Client, error) {
	dsnURL, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	user := dsnURL.User
	dsnURL.User = nil
	c := &Client{
		Client: httpClient,
		dsn:    dsnURL,
		rawDSN: dsn,
	}
	if user != nil {
		password, _ := user.Password()
		auth := &CookieAuth{
			Username: user.Username(),
			Password: password,
		}
		if err := c.Auth(ctx, auth); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func parseDSN(dsn string) (*url.URL, error) {
	if dsn == "" {
		return nil, &HTTPError{Code: http.StatusBadRequest, Reason: "no DSN provided"}
	}
	if !strings.HasPrefix(dsn, "http://") && !strings.HasPrefix(dsn, "https://") {
		dsn = "http://" + dsn
	}
	dsnURL, err := url.Parse(dsn)
	if err != nil {
		return nil, &HTTPError{Code: http.StatusBadRequest, Reason: err.Error()}
	}
	if dsnURL.Path == "" {
		dsnURL.Path = "/"
	}
	return dsnURL, nil
}

// DSN returns the unparsed DSN used to connect.
func (c *Client) DSN() string {
	return c.rawDSN
}

// Auth authenticates using the provided Authenticator.
func (c *Client) Auth(ctx context.Context, a Authenticator) error {
	if c.auth != nil {
		return errors.New("chttp: auth already set")
	}
	if err := a.Authenticate(ctx, c); err != nil {
		return err
	}
	c.auth = a
	return nil
}

// DoReq performs the requested HTTP request. Any DSN-configured base path is
// prepended to the request path. Callers are responsible for closing the
// response body, and for interpreting the response status; see also DoError
// and DoJSON.
func (c *Client) DoReq(ctx context.Context, method, path string, opts *Options) (*http.Response, error) {
	if method == "" {
		return nil, errors.New("chttp: method required")
	}
	var body io.Reader
	if opts != nil {
		switch {
		case opts.GetBody != nil:
			b, err := opts.GetBody()
			if err != nil {
				return nil, err
			}
			body = b
		case opts.JSON != nil:
			buf := &bytes.Buffer{}
			if err := json.NewEncoder(buf).Encode(opts.JSON); err != nil {
				return nil, &HTTPError{Code: http.StatusBadRequest, Reason: err.Error()}
			}
			body = buf
		case opts.Body != nil:
			body = opts.Body
		}
	}
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	fixPath(req, path)
	setHeaders(req, opts)
	setQuery(req, opts)
	if opts != nil {
		if opts.GetBody != nil {
			req.GetBody = opts.GetBody
		}
		if opts.ContentLength != 0 {
			req.ContentLength = opts.ContentLength
		}
	}
	trace := ContextClientTrace(ctx)
	if trace != nil {
		trace.httpRequest(req)
	}
	response, err := c.Do(req)
	if trace != nil && response != nil {
		trace.httpResponseBody(response)
		trace.httpResponse(response)
	}
	return response, err
}

// NewRequest returns a new *http.Request to the server's endpoint.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	reqPath, err := url.Parse(path)
	if err != nil {
		return nil, &HTTPError{Code: http.StatusBadRequest, Reason: err.Error()}
	}
	u := *c.dsn // Make a copy
	u.Path = u.Path + strings.TrimPrefix(reqPath.Path, "/")
	u.RawQuery = reqPath.RawQuery
	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, &HTTPError{Code: http.StatusBadRequest, Reason: err.Error()}
	}
	return req.WithContext(ctx), nil
}

// fixPath sets the request's URL.RawPath to work with escaped characters in
// paths.
func fixPath(req *http.Request, path string) {
	// Remove any query parameters
	parts := strings.SplitN(path, "?", 2)
	req.URL.RawPath = "/" + strings.TrimPrefix(parts[0], "/")
}

// setHeaders sets the request headers, defaulting Accept and Content-Type to
// application/json unless overridden.
func setHeaders(req *http.Request, opts *Options) {
	accept := typeJSON
	contentType := typeJSON
	if opts != nil {
		if opts.Accept != "" {
			accept = opts.Accept
		}
		if opts.ContentType != "" {
			contentType = opts.ContentType
		}
		if opts.FullCommit {
			req.Header.Add("X-Couch-Full-Commit", "true")
		}
		if opts.Destination != "" {
			req.Header.Add("Destination", opts.Destination)
		}
		if opts.IfNoneMatch != "" {
			inm := opts.IfNoneMatch
			if !strings.HasPrefix(inm, "\"") {
				inm = "\"" + inm + "\""
			}
			req.Header.Set("If-None-Match", inm)
		}
		for k, v := range opts.Header {
			if _, ok := req.Header[k]; !ok {
				req.Header[k] = v
			}
		}
	}
	req.Header.Add("Accept", accept)
	req.Header.Add("Content-Type", contentType)
}

func setQuery(req *http.Request, opts *Options) {
	if opts == nil || len(opts.Query) == 0 {
		return
	}
	if req.URL.RawQuery == "" {
		req.URL.RawQuery = opts.Query.Encode()
		return
	}
	req.URL.RawQuery = strings.Join([]string{req.URL.RawQuery, opts.Query.Encode()}, "&")
}

// DoError is the same as DoReq, but in addition it checks the response status
// code, and converts any non-success status to an error. The response body is
// consumed as part of the error, and must not be read by the caller.
func (c *Client) DoError(ctx context.Context, method, path string, opts *Options) (*http.Response, error) {
	res, err := c.DoReq(ctx, method, path, opts)
	if err != nil {
		return res, err
	}
	err = ResponseError(res)
	return res, err
}

// DoJSON combines DoReq, ResponseError, and a JSON decode of the response
// body into i.
func (c *Client) DoJSON(ctx context.Context, method, path string, opts *Options, i interface{}) (*http.Response, error) {
	res, err := c.DoReq(ctx, method, path, opts)
	if err != nil {
		return res, err
	}
	if res.Body != nil {
		defer func() { _ = res.Body.Close() }()
	}
	if err = ResponseError(res); err != nil {
		return res, err
	}
	err = json.NewDecoder(res.Body).Decode(i)
	return res, err
}

// EncodeBody JSON encodes i to an io.ReadCloser. If an encoding error occurs,
// it is returned by the returned error function, and cancel is called to
// abort the in-flight request.
func EncodeBody(i interface{}, cancel func()) (io.ReadCloser, func() error) {
	done := make(chan struct{})
	r, w := io.Pipe()
	var err error
	go func() {
		defer close(done)
		err = json.NewEncoder(w).Encode(i)
		if err != nil {
			cancel()
		}
		_ = w.Close()
	}()
	errFunc := func() error {
		<-done
		return err
	}
	return r, errFunc
}

// BodyEncoder returns a function which encodes i to JSON, suitable for use as
// a request's GetBody.
func BodyEncoder(i interface{}) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(i); err != nil {
			return nil, err
		}
		return ioutil.NopCloser(buf), nil
	}
}

// ETag returns the unquoted ETag value, and a bool indicating whether it was
// found.
func ETag(resp *http.Response) (string, bool) {
	etag, ok := resp.Header["Etag"]
	if !ok {
		etag, ok = resp.Header["ETag"]
	}
	if !ok {
		return "", false
	}
	return strings.Trim(etag[0], "\""), ok
}

// GetRev extracts the revision from the response's ETag header.
func GetRev(resp *http.Response) (string, error) {
	if err := ResponseError(resp); err != nil {
		return "", err
	}
	rev, ok := ETag(resp)
	if !ok {
		return "", errors.New("no ETag header found")
	}
	return rev, nil
}
