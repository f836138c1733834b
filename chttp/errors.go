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
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
)

// HTTPError is an error that represents an HTTP transport error.
type HTTPError struct {
	Code   int
	Reason string `json:"reason"`
}

func (e *HTTPError) Error() string {
	if e.Reason == "" {
		return http.StatusText(e.Code)
	}
	if statusText := http.StatusText(e.Code); statusText != "" {
		return fmt.Sprintf("%s: %s", statusText, e.Reason)
	}
	return e.Reason
}

// StatusCode returns the embedded status code.
func (e *HTTPError) StatusCode() int {
	return e.Code
}

// ResponseError returns an error from an *http.Response. Error responses with
// a JSON body have the server's reason decoded into the error.
func ResponseError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	if resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	httpErr := &HTTPError{}
	if resp.Request == nil || resp.Request.Method != http.MethodHead {
		if resp.ContentLength != 0 {
			if ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); ct == typeJSON {
				_ = json.NewDecoder(resp.Body).Decode(httpErr)
			}
		}
	}
	httpErr.Code = resp.StatusCode
	return httpErr
}
