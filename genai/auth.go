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
	"net/http"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"golang.org/x/oauth2"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Auth adds authentication headers to outgoing requests. It is applied after
// all other headers, so the header it sets cannot be overridden through
// [HTTPOptions].
type Auth interface {
	AddAuthHeaders(ctx context.Context, h http.Header) error
}

type apiKeyAuth struct {
	key string
}

// NewAPIKeyAuth returns an [Auth] that sends key in the x-goog-api-key
// header.
func NewAPIKeyAuth(key string) Auth {
	return apiKeyAuth{key: key}
}

func (a apiKeyAuth) AddAuthHeaders(_ context.Context, h http.Header) error {
	if a.key == "" {
		return errors.New("API key is empty")
	}
	h.Set("x-goog-api-key", a.key)
	return nil
}

type credentialsAuth struct {
	creds *auth.Credentials
}

// NewCredentialsAuth returns an [Auth] that sends a bearer token obtained
// from creds.
func NewCredentialsAuth(creds *auth.Credentials) Auth {
	return credentialsAuth{creds: creds}
}

func (a credentialsAuth) AddAuthHeaders(ctx context.Context, h http.Header) error {
	tok, err := a.creds.Token(ctx)
	if err != nil {
		return err
	}
	typ := tok.Type
	if typ == "" {
		typ = "Bearer"
	}
	h.Set("Authorization", typ+" "+tok.Value)
	return nil
}

type tokenSourceAuth struct {
	ts oauth2.TokenSource
}

// NewTokenSourceAuth returns an [Auth] that sends a token obtained from ts.
func NewTokenSourceAuth(ts oauth2.TokenSource) Auth {
	return tokenSourceAuth{ts: ts}
}

func (a tokenSourceAuth) AddAuthHeaders(_ context.Context, h http.Header) error {
	tok, err := a.ts.Token()
	if err != nil {
		return err
	}
	tok.SetAuthHeader(&http.Request{Header: h})
	return nil
}

// detectDefaultAuth returns an [Auth] backed by Application Default
// Credentials with the cloud-platform scope.
func detectDefaultAuth() (Auth, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{cloudPlatformScope},
	})
	if err != nil {
		return nil, err
	}
	return NewCredentialsAuth(creds), nil
}
