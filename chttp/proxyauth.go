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

package chttp

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strings"
)

// ProxyAuth provides CouchDB proxy authentication, for servers sitting behind
// an authenticating proxy. Header names may be overridden via the Headers
// map, for servers configured with non-default header names.
type ProxyAuth struct {
	Username string
	Secret   string
	Roles    []string
	Headers  http.Header

	transport http.RoundTripper
}

var _ Authenticator = &ProxyAuth{}

func (a *ProxyAuth) header(header string) string {
	if h := a.Headers.Get(header); h != "" {
		return http.CanonicalHeaderKey(h)
	}
	return header
}

// RoundTrip fulfills the http.RoundTripper interface. It sets the proxy auth
// headers on outbound requests.
func (a *ProxyAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	if a.Secret != "" {
		// https://docs.couchdb.org/en/stable/config/auth.html#couch_httpd_auth/x_auth_token
		h := hmac.New(sha1.New, []byte(a.Secret))
		_, _ = h.Write([]byte(a.Username))
		req.Header.Set(a.header("X-Auth-CouchDB-Token"), hex.EncodeToString(h.Sum(nil)))
	}
	req.Header.Set(a.header("X-Auth-CouchDB-UserName"), a.Username)
	req.Header.Set(a.header("X-Auth-CouchDB-Roles"), strings.Join(a.Roles, ","))
	return a.transport.RoundTrip(req)
}

// Authenticate installs the proxy auth headers on the client's transport.
func (a *ProxyAuth) Authenticate(_ context.Context, c *Client) error {
	a.transport = c.Transport
	if a.transport == nil {
		a.transport = http.DefaultTransport
	}
	c.Transport = a
	return nil
}
