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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/api/googleapi"
)

// APIError is an error reported by the service, either as a non-2xx HTTP
// status or as an error object embedded in a streamed response.
//
// Errors returned by [Models] methods are a [*ClientError] for 4xx statuses
// and a [*ServerError] for 5xx statuses. Both unwrap to the APIError.
type APIError struct {
	// HTTP status code.
	Code int
	// Canonical status name, such as "NOT_FOUND", when the service sent one.
	Status string
	// Message from the service.
	Message string
	// Details from the service error, if any.
	Details []map[string]any
	// Raw response body, or the raw stream frame.
	Body string

	msg string
	err error
}

func (e *APIError) Error() string {
	return "genai: " + e.msg
}

// Unwrap returns the underlying [*googleapi.Error], if any.
func (e *APIError) Unwrap() error {
	return e.err
}

// ClientError is an [APIError] with a 4xx status.
type ClientError struct {
	*APIError
}

func (e *ClientError) Unwrap() error { return e.APIError }

// ServerError is an [APIError] with a 5xx status.
type ServerError struct {
	*APIError
}

func (e *ServerError) Unwrap() error { return e.APIError }

// ProtocolError reports data from the service that could not be decoded.
type ProtocolError struct {
	// Reason describes what was wrong.
	Reason string
	// Frame is the offending payload, if any.
	Frame string
	// Err is the underlying decode error, if any.
	Err error
}

func (e *ProtocolError) Error() string {
	var b strings.Builder
	b.WriteString("genai: protocol error: ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Frame != "" {
		fmt.Fprintf(&b, " (frame %q)", truncate(e.Frame, 256))
	}
	return b.String()
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// ValidationError reports a request the client refused to send.
type ValidationError struct {
	Message string
	err     error
}

func (e *ValidationError) Error() string {
	return "genai: " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.err }

// ErrSessionClosed is returned when sending on a closed live [Session].
var ErrSessionClosed = errors.New("genai: live session is closed")

// ErrFunctionResponseID is wrapped by the [ValidationError] returned when a
// live tool response on the Gemini API lacks the id of the call it answers.
var ErrFunctionResponseID = errors.New("FunctionResponse request must have an `id` field from the response of a ToolCall.FunctionCalls in Google AI.")

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func unsupported(field string, b Backend) error {
	return validationErrorf("%s parameter is not supported in %s", field, b)
}

// classify wraps ae in a [ClientError] or [ServerError] according to its code.
func classify(ae *APIError) error {
	switch {
	case ae.Code >= 500:
		return &ServerError{ae}
	case ae.Code >= 400:
		return &ClientError{ae}
	default:
		return ae
	}
}

// newAPIError builds an APIError from a non-2xx response whose body has
// already been consumed into herr by googleapi.CheckResponse.
func newAPIError(res *http.Response, err error) error {
	ae := &APIError{Code: res.StatusCode, err: err}
	var herr *googleapi.Error
	if errors.As(err, &herr) {
		ae.Message = herr.Message
		ae.Body = herr.Body
	}
	fillFromBody(ae, ae.Body)
	ae.msg = fmt.Sprintf("got status: %s. %s", statusLine(res), compactJSON(ae.Body))
	return classify(ae)
}

// streamFrameError returns the error carried by a streamed frame, or nil if
// the frame has no error object with a 4xx or 5xx code.
func streamFrameError(frame []byte) error {
	e := gjson.GetBytes(frame, "error")
	if !e.Exists() {
		return nil
	}
	code := int(e.Get("code").Int())
	if code < 400 || code >= 600 {
		return nil
	}
	ae := &APIError{Code: code, Body: string(frame)}
	fillFromBody(ae, ae.Body)
	status := ae.Status
	if status == "" {
		status = http.StatusText(code)
	}
	ae.msg = fmt.Sprintf("got status: %d %s. %s", code, status, compactJSON(ae.Body))
	return classify(ae)
}

func fillFromBody(ae *APIError, body string) {
	if !gjson.Valid(body) {
		return
	}
	e := gjson.Get(body, "error")
	if m := e.Get("message"); m.Exists() {
		ae.Message = m.String()
	}
	ae.Status = e.Get("status").String()
	for _, d := range e.Get("details").Array() {
		if m, ok := d.Value().(map[string]any); ok {
			ae.Details = append(ae.Details, m)
		}
	}
}

func statusLine(res *http.Response) string {
	if res.Status != "" {
		return res.Status
	}
	return fmt.Sprintf("%d %s", res.StatusCode, http.StatusText(res.StatusCode))
}

func compactJSON(s string) string {
	if gjson.Valid(s) {
		return gjson.Get(s, "@ugly").Raw
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
