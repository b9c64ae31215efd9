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

// Package genai is a client for Google generative AI models, served either
// by the Gemini API or by Vertex AI.
//
// # Getting started
//
// Reading the [examples] is the best way to learn how to use this package.
//
// # Backends
//
// The same methods work against both backends. [NewClient] selects one from
// [ClientConfig.Backend] or, if unset, from the GOOGLE_GENAI_USE_VERTEXAI
// environment variable. Requests are translated to the selected backend's
// wire format; a field that backend does not accept is reported as a
// [*ValidationError] before anything is sent.
//
// # Authorization
//
// The Gemini API needs an API key. See the [setup tutorial] for details.
// Vertex AI uses Application Default Credentials unless credentials, a token
// source or an [Auth] are supplied.
//
// # Streaming
//
// [Models.GenerateContentStream] returns an iterator over partial responses.
// Call Next until it returns iterator.Done, and Close the iterator if you
// stop early.
//
// # Live sessions
//
// [Live.Connect] opens a bidirectional session over a WebSocket. Messages
// from the model are read with [Session.Receive]; turns, media and tool
// responses are sent with the Session's Send methods.
//
// # Tools
//
// Gemini can call functions if you tell it about them.
// Create FunctionDeclarations, add them to a Tool, and pass the Tool in the
// request config. The content returned from a model may include FunctionCall
// parts. Your code performs the requested call and sends back a
// FunctionResponse.
//
// The NewFunctionDeclaration function will infer the schema for a function
// you supply.
//
// # Errors
//
// Methods that call the service return a [*ClientError] for 4xx statuses
// and a [*ServerError] for 5xx statuses. Both wrap an [*APIError], which
// wraps the [*google.golang.org/api/googleapi.Error]. Malformed data from
// the service is reported as a [*ProtocolError].
//
// [examples]: https://pkg.go.dev/github.com/wavybaby5280/js-genai-wavy-sub000/genai#pkg-examples
// [setup tutorial]: https://ai.google.dev/tutorials/setup
package genai
