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
	"net/http"

	"github.com/pkg/errors"
)

// SessionCookieName is the name of the CouchDB session cookie.
const SessionCookieName = "AuthSession"

// Authenticator is an interface that provides authentication to a server.
type Authenticator interface {
	Authenticate(ctx context.Context, c *Client) error
}

// ValidateAuth verifies that the requested username is authenticated, with a
// request against the /_session endpoint. Cookies may be filtered by a proxy,
// or a misconfigured client, so this check is sometimes necessary.
func ValidateAuth(ctx context.Context, username string, client *Client) error {
	result := struct {
		Ctx struct {
			Name string `json:"name"`
		} `json:"userCtx"`
	}{}
	if _, err := client.DoJSON(ctx, http.MethodGet, "/_session", nil, &result); err != nil {
		return err
	}
	if result.Ctx.Name != username {
		return errors.Errorf("chttp: auth response for unexpected user %q", result.Ctx.Name)
	}
	return nil
}
