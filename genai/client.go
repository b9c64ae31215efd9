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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/auth"
	"golang.org/x/net/http2"
	"golang.org/x/oauth2"
)

// A Client is a Google generative AI client.
//
// Clients should be reused instead of created as needed. The methods of
// Client are safe for concurrent use by multiple goroutines.
type Client struct {
	Models *Models
	Live   *Live

	ac *apiClient
}

// BaseURLParameters overrides the default endpoint of each backend.
type BaseURLParameters struct {
	GeminiURL string
	VertexURL string
}

// ClientConfig configures a [Client]. Fields left empty are read from the
// environment where noted.
type ClientConfig struct {
	// API key for the Gemini API, or for Vertex AI express mode.
	// Defaults to GOOGLE_API_KEY, then GEMINI_API_KEY.
	APIKey string
	// Backend to use. If unspecified, Vertex AI is used when
	// GOOGLE_GENAI_USE_VERTEXAI is "true" or "1", and the Gemini API
	// otherwise.
	Backend Backend
	// Google Cloud project for Vertex AI. Defaults to GOOGLE_CLOUD_PROJECT.
	Project string
	// Google Cloud location for Vertex AI. Defaults to
	// GOOGLE_CLOUD_LOCATION, then "global".
	Location string
	// Credentials for Vertex AI. If nil and no other authentication is
	// configured, Application Default Credentials are used.
	Credentials *auth.Credentials
	// TokenSource for Vertex AI, as an alternative to Credentials.
	TokenSource oauth2.TokenSource
	// Auth, if set, replaces all other authentication.
	Auth Auth
	// HTTPClient sends requests. If nil, a client with HTTP/2 enabled is used.
	HTTPClient *http.Client
	// HTTPOptions apply to every request. They can be overridden per call.
	HTTPOptions HTTPOptions
	// BaseURLs override the default endpoints. HTTPOptions.BaseURL takes
	// precedence.
	BaseURLs *BaseURLParameters
	// WebSocketFactory creates the connections of live sessions. If nil,
	// connections are made with github.com/gorilla/websocket.
	WebSocketFactory WebSocketFactory
	// Logger receives diagnostic messages. If nil, nothing is logged.
	Logger *slog.Logger
}

const (
	geminiBaseURL    = "https://generativelanguage.googleapis.com/"
	geminiAPIVersion = "v1beta"
	vertexAPIVersion = "v1beta1"
)

func vertexBaseURL(location string) string {
	if location == "global" || location == "" {
		return "https://aiplatform.googleapis.com/"
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com/", location)
}

// NewClient creates a new Google generative AI client.
//
// You may configure the client by passing a [ClientConfig]. A nil config
// reads everything from the environment.
func NewClient(ctx context.Context, cc *ClientConfig) (*Client, error) {
	var config ClientConfig
	if cc != nil {
		config = *cc
	}
	if err := config.fillFromEnv(); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	defaults := HTTPOptions{}
	switch config.Backend {
	case BackendVertexAI:
		defaults.BaseURL = vertexBaseURL(config.Location)
		defaults.APIVersion = vertexAPIVersion
		if config.BaseURLs != nil && config.BaseURLs.VertexURL != "" {
			defaults.BaseURL = config.BaseURLs.VertexURL
		}
	default:
		defaults.BaseURL = geminiBaseURL
		defaults.APIVersion = geminiAPIVersion
		if config.BaseURLs != nil && config.BaseURLs.GeminiURL != "" {
			defaults.BaseURL = config.BaseURLs.GeminiURL
		}
	}
	opts, err := mergeHTTPOptions(defaults, &config.HTTPOptions)
	if err != nil {
		return nil, err
	}
	config.HTTPOptions = opts

	a, err := config.resolveAuth()
	if err != nil {
		return nil, err
	}
	hc := config.HTTPClient
	if hc == nil {
		hc = newDefaultHTTPClient(config.Logger)
	}
	ws := config.WebSocketFactory
	if ws == nil {
		ws = NewWebSocketFactory(nil)
	}
	ac := &apiClient{
		backend:     config.Backend,
		project:     config.Project,
		location:    config.Location,
		apiKey:      config.APIKey,
		httpOptions: config.HTTPOptions,
		auth:        a,
		hc:          hc,
		wsFactory:   ws,
		logger:      config.Logger,
	}
	config.Logger.Debug("genai client created", "backend", config.Backend.String(), "baseURL", opts.BaseURL, "apiVersion", opts.APIVersion)
	return &Client{
		Models: &Models{ac: ac},
		Live:   &Live{ac: ac},
		ac:     ac,
	}, nil
}

func (cc *ClientConfig) fillFromEnv() error {
	if cc.APIKey == "" {
		cc.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cc.APIKey == "" {
		cc.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cc.Backend == BackendUnspecified {
		switch strings.ToLower(os.Getenv("GOOGLE_GENAI_USE_VERTEXAI")) {
		case "1", "true":
			cc.Backend = BackendVertexAI
		default:
			cc.Backend = BackendMLDev
		}
	}
	if cc.Backend != BackendVertexAI {
		if cc.APIKey == "" && cc.Auth == nil {
			return errors.New("genai: an API key is required for the Gemini API; set ClientConfig.APIKey or GOOGLE_API_KEY")
		}
		return nil
	}
	if cc.APIKey != "" && (cc.Project != "" || cc.Location != "") {
		return errors.New("genai: project/location and API key are mutually exclusive for Vertex AI")
	}
	if cc.APIKey != "" {
		// Express mode.
		return nil
	}
	if cc.Project == "" {
		cc.Project = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if cc.Location == "" {
		cc.Location = os.Getenv("GOOGLE_CLOUD_LOCATION")
	}
	if cc.Location == "" {
		cc.Location = "global"
	}
	if cc.Project == "" {
		return errors.New("genai: a project is required for Vertex AI; set ClientConfig.Project or GOOGLE_CLOUD_PROJECT")
	}
	return nil
}

func (cc *ClientConfig) resolveAuth() (Auth, error) {
	switch {
	case cc.Auth != nil:
		return cc.Auth, nil
	case cc.APIKey != "":
		return NewAPIKeyAuth(cc.APIKey), nil
	case cc.Credentials != nil:
		return NewCredentialsAuth(cc.Credentials), nil
	case cc.TokenSource != nil:
		return NewTokenSourceAuth(cc.TokenSource), nil
	}
	a, err := detectDefaultAuth()
	if err != nil {
		return nil, fmt.Errorf("genai: finding default credentials: %w", err)
	}
	return a, nil
}

// newDefaultHTTPClient returns a client whose transport negotiates HTTP/2.
func newDefaultHTTPClient(logger *slog.Logger) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if err := http2.ConfigureTransport(t); err != nil {
		logger.Warn("HTTP/2 not configured", "err", err)
	}
	return &http.Client{Transport: t}
}

// ClientConfig returns the effective configuration of the client, with
// environment defaults applied.
func (c *Client) ClientConfig() ClientConfig {
	opts, err := mergeHTTPOptions(c.ac.httpOptions, nil)
	if err != nil {
		opts = c.ac.httpOptions
	}
	return ClientConfig{
		APIKey:           c.ac.apiKey,
		Backend:          c.ac.backend,
		Project:          c.ac.project,
		Location:         c.ac.location,
		Auth:             c.ac.auth,
		HTTPClient:       c.ac.hc,
		HTTPOptions:      opts,
		Logger:           c.ac.logger,
		WebSocketFactory: c.ac.wsFactory,
	}
}

// Close releases idle connections held by the client. Live sessions must be
// closed separately.
func (c *Client) Close() error {
	c.ac.hc.CloseIdleConnections()
	return nil
}
