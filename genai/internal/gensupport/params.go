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

package gensupport

import (
	"net/http"
	"net/url"

	"google.golang.org/api/googleapi"
)

// URLParams is a simplified replacement for url.Values
// that safely builds up URL parameters for encoding.
type URLParams map[string][]string

// ParseURLParams parses an encoded query string. A malformed query yields an error.
func ParseURLParams(query string) (URLParams, error) {
	v, err := url.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	return URLParams(v), nil
}

// Get returns the first value for the given key, or "".
func (u URLParams) Get(key string) string {
	vs := u[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Set sets the key to value.
// It replaces any existing values.
func (u URLParams) Set(key, value string) {
	u[key] = []string{value}
}

// SetMulti sets the key to an array of values.
// It replaces any existing values.
// Note that values must not be modified after calling SetMulti
// so the caller is responsible for making a copy if necessary.
func (u URLParams) SetMulti(key string, values []string) {
	u[key] = values
}

// Encode encodes the values into “URL encoded” form
// ("bar=baz&foo=quux") sorted by key.
func (u URLParams) Encode() string {
	return url.Values(u).Encode()
}

// SetOptions sets the URL params and any additional `CallOption` or
// `MultiCallOption` passed in. A param already holding exactly the
// option's values is left untouched.
func SetOptions(u URLParams, opts ...googleapi.CallOption) {
	for _, o := range opts {
		if m, ok := o.(googleapi.MultiCallOption); ok {
			k, vs := m.GetMulti()
			if !sameValues(u[k], vs) {
				u.SetMulti(k, vs)
			}
			continue
		}
		k, v := o.Get()
		if !sameValues(u[k], []string{v}) {
			u.Set(k, v)
		}
	}
}

func sameValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SetHeaders sets common headers for all requests. The keysAndValues variatic
// argument must have an even length. userHeaders are applied last and win over
// every default, including the ones given in keysAndValues.
func SetHeaders(userAgent, contentType string, userHeaders http.Header, keysAndValues ...string) http.Header {
	reqHeaders := make(http.Header)
	reqHeaders.Set("x-goog-api-client", userAgent)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		reqHeaders.Set(keysAndValues[i], keysAndValues[i+1])
	}
	reqHeaders.Set("User-Agent", userAgent)
	if contentType != "" {
		reqHeaders.Set("Content-Type", contentType)
	}
	for k, v := range userHeaders {
		reqHeaders[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	return reqHeaders
}
