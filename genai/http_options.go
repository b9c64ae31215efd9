// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package genai

import (
	"net/http"
	"time"

	"github.com/tiendc/go-deepcopy"
)

// HTTPOptions are request options. They can be set on a [ClientConfig] and
// overridden per call through the HTTPOptions field of the call's config.
type HTTPOptions struct {
	// BaseURL overrides the service endpoint, for example to route through a
	// gateway.
	BaseURL string
	// APIVersion overrides the API version path segment, such as "v1beta".
	APIVersion string
	// Headers are additional HTTP headers sent with each request. They take
	// precedence over the client's default headers but not over
	// authentication headers.
	Headers http.Header
	// Timeout bounds each request. It is also sent to the server as the
	// X-Server-Timeout header, in whole seconds rounded up.
	Timeout *time.Duration
}

// mergeHTTPOptions returns the options for one call: a deep copy of the
// client options with each field that is set in call replacing the client
// value. Headers are merged key by key. Neither argument is modified.
func mergeHTTPOptions(client HTTPOptions, call *HTTPOptions) (HTTPOptions, error) {
	var merged HTTPOptions
	if err := deepcopy.Copy(&merged, &client); err != nil {
		return HTTPOptions{}, err
	}
	if call == nil {
		return merged, nil
	}
	if call.BaseURL != "" {
		merged.BaseURL = call.BaseURL
	}
	if call.APIVersion != "" {
		merged.APIVersion = call.APIVersion
	}
	if call.Timeout != nil {
		merged.Timeout = Ptr(*call.Timeout)
	}
	if len(call.Headers) > 0 {
		if merged.Headers == nil {
			merged.Headers = http.Header{}
		}
		for k, v := range call.Headers {
			merged.Headers[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
	return merged, nil
}
