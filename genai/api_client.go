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
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/wavybaby5280/js-genai-wavy-sub000/genai/internal/gensupport"
	"google.golang.org/api/googleapi"
)

// apiClient sends requests in one dialect. Its fields are set by [NewClient]
// and never modified afterwards, so it is safe for concurrent use.
type apiClient struct {
	backend     Backend
	project     string
	location    string
	apiKey      string
	httpOptions HTTPOptions
	auth        Auth
	hc          *http.Client
	wsFactory   WebSocketFactory
	logger      *slog.Logger
}

// apiRequest describes one call to the service.
type apiRequest struct {
	method string
	// path relative to the versioned base URL, such as
	// "models/gemini-2.0-flash:generateContent".
	path string
	// body is marshaled as the JSON request body. It must be nil for GET.
	body any
	// httpOptions override the client options for this call.
	httpOptions *HTTPOptions
}

func (ac *apiClient) isVertexAI() bool {
	return ac.backend == BackendVertexAI
}

// resourcePath returns the project and location prefix for Vertex AI paths.
func (ac *apiClient) resourcePath() string {
	return "projects/" + ac.project + "/locations/" + ac.location
}

// shouldPrependResourcePath reports whether path must be qualified by
// project and location. Vertex AI express mode, which authenticates with an
// API key, uses unqualified paths, as do reads of publisher models.
func (ac *apiClient) shouldPrependResourcePath(method, path string) bool {
	if !ac.isVertexAI() || ac.apiKey != "" {
		return false
	}
	if strings.HasPrefix(path, "projects/") {
		return false
	}
	if method == http.MethodGet && strings.HasPrefix(path, "publishers/google/models") {
		return false
	}
	return true
}

// buildURL joins the base URL, API version, resource path and path. Any
// trailing slash on base is dropped, and empty segments are skipped. The
// resource path is not added to a path that already starts with "projects/".
func buildURL(base, apiVersion, resourcePath, path string) (*url.URL, error) {
	if base == "" {
		return nil, validationErrorf("HTTP options are not correctly set: base URL is empty")
	}
	elems := []string{strings.TrimSuffix(base, "/")}
	if apiVersion != "" {
		elems = append(elems, apiVersion)
	}
	if resourcePath != "" && !strings.HasPrefix(path, "projects/") {
		elems = append(elems, resourcePath)
	}
	if path != "" {
		elems = append(elems, path)
	}
	u, err := url.Parse(strings.Join(elems, "/"))
	if err != nil {
		return nil, fmt.Errorf("genai: invalid request URL: %w", err)
	}
	return u, nil
}

// newRequest builds the HTTP request for r. The returned cancel function
// releases the timeout, if any, and must be called once the response has
// been consumed.
func (ac *apiClient) newRequest(ctx context.Context, r *apiRequest, stream bool) (*http.Request, context.CancelFunc, error) {
	opts, err := mergeHTTPOptions(ac.httpOptions, r.httpOptions)
	if err != nil {
		return nil, nil, err
	}
	var resourcePath string
	if ac.shouldPrependResourcePath(r.method, r.path) {
		resourcePath = ac.resourcePath()
	}
	u, err := buildURL(opts.BaseURL, opts.APIVersion, resourcePath, r.path)
	if err != nil {
		return nil, nil, err
	}
	if stream {
		params, err := gensupport.ParseURLParams(u.RawQuery)
		if err != nil {
			return nil, nil, fmt.Errorf("genai: invalid request query: %w", err)
		}
		gensupport.SetOptions(params, googleapi.QueryParameter("alt", "sse"))
		u.RawQuery = params.Encode()
	}

	var body io.Reader
	if r.body != nil {
		if r.method == http.MethodGet {
			return nil, nil, validationErrorf("a GET request must not have a body")
		}
		data, err := sonic.ConfigStd.Marshal(r.body)
		if err != nil {
			return nil, nil, fmt.Errorf("genai: encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	var extra []string
	cancel := context.CancelFunc(func() {})
	if opts.Timeout != nil && *opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, *opts.Timeout)
		secs := int(math.Ceil(opts.Timeout.Seconds()))
		extra = append(extra, "X-Server-Timeout", strconv.Itoa(secs))
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("genai: building request: %w", err)
	}
	req.Header = gensupport.SetHeaders(gensupport.LibraryLabel(), "application/json", opts.Headers, extra...)
	if ac.auth != nil {
		if err := ac.auth.AddAuthHeaders(ctx, req.Header); err != nil {
			cancel()
			return nil, nil, fmt.Errorf("genai: authenticating request: %w", err)
		}
	}
	return req, cancel, nil
}

// do sends req and returns the response if its status is 2xx. Otherwise it
// returns a [*ClientError] or [*ServerError] and closes the body.
func (ac *apiClient) do(req *http.Request) (*http.Response, error) {
	ac.logger.Debug("genai request", "method", req.Method, "url", req.URL.Redacted())
	res, err := gensupport.SendRequest(req.Context(), ac.hc, req)
	if err != nil {
		return nil, err
	}
	if err := gensupport.CheckResponse(res); err != nil {
		res.Body.Close()
		ac.logger.Debug("genai request failed", "method", req.Method, "url", req.URL.Redacted(), "status", res.StatusCode)
		return nil, newAPIError(res, err)
	}
	return res, nil
}

// request sends r and decodes the JSON response into out, which may be nil.
func (ac *apiClient) request(ctx context.Context, r *apiRequest, out any) error {
	req, cancel, err := ac.newRequest(ctx, r, false)
	if err != nil {
		return err
	}
	defer cancel()
	res, err := ac.do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("genai: reading response: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(data, out); err != nil {
		return &ProtocolError{Reason: "response is not valid JSON", Frame: truncate(string(data), 1024), Err: err}
	}
	return nil
}

// requestStream sends r as a server-sent-events request and returns a
// decoder over the response body. Closing the decoder releases the request.
func (ac *apiClient) requestStream(ctx context.Context, r *apiRequest) (*frameDecoder, error) {
	req, cancel, err := ac.newRequest(ctx, r, true)
	if err != nil {
		return nil, err
	}
	res, err := ac.do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	return newFrameDecoder(cancelOnClose{res.Body, cancel}), nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
