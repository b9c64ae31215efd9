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
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"google.golang.org/api/iterator"
)

// Models calls the model methods of the service.
type Models struct {
	ac *apiClient
}

// GenerateContent generates a response from model for contents.
func (m *Models) GenerateContent(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error) {
	r, err := m.generateContentRequest(model, "generateContent", contents, config)
	if err != nil {
		return nil, err
	}
	var w wireGenerateContentResponse
	if err := m.ac.request(ctx, r, &w); err != nil {
		return nil, err
	}
	return (GenerateContentResponse{}).fromWire(m.ac.backend, &w)
}

// GenerateContentStream is like GenerateContent, but returns an iterator
// over the partial responses as the model produces them.
//
// The request is sent when GenerateContentStream is called. An error
// building or sending it, including a non-2xx status, is returned by the
// first call to Next.
func (m *Models) GenerateContentStream(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) *GenerateContentResponseIterator {
	r, err := m.generateContentRequest(model, "streamGenerateContent", contents, config)
	if err != nil {
		return &GenerateContentResponseIterator{err: err}
	}
	dec, err := m.ac.requestStream(ctx, r)
	if err != nil {
		return &GenerateContentResponseIterator{err: err}
	}
	return &GenerateContentResponseIterator{dec: dec, backend: m.ac.backend}
}

func (m *Models) generateContentRequest(model, method string, contents []*Content, config *GenerateContentConfig) (*apiRequest, error) {
	name, err := tModel(m.ac.backend, model)
	if err != nil {
		return nil, err
	}
	body, err := generateContentRequestToWire(m.ac.backend, contents, config)
	if err != nil {
		return nil, err
	}
	r := &apiRequest{method: http.MethodPost, path: name + ":" + method, body: body}
	if config != nil {
		r.httpOptions = config.HTTPOptions
	}
	return r, nil
}

// CountTokens counts the tokens in contents.
func (m *Models) CountTokens(ctx context.Context, model string, contents []*Content, config *CountTokensConfig) (*CountTokensResponse, error) {
	name, err := tModel(m.ac.backend, model)
	if err != nil {
		return nil, err
	}
	body, err := countTokensRequestToWire(m.ac.backend, contents, config)
	if err != nil {
		return nil, err
	}
	r := &apiRequest{method: http.MethodPost, path: name + ":countTokens", body: body}
	if config != nil {
		r.httpOptions = config.HTTPOptions
	}
	var w wireCountTokensResponse
	if err := m.ac.request(ctx, r, &w); err != nil {
		return nil, err
	}
	return (CountTokensResponse{}).fromWire(&w), nil
}

// EmbedContent returns one embedding per element of contents.
func (m *Models) EmbedContent(ctx context.Context, model string, contents []*Content, config *EmbedContentConfig) (*EmbedContentResponse, error) {
	name, err := tModel(m.ac.backend, model)
	if err != nil {
		return nil, err
	}
	method, body, err := embedContentRequestToWire(m.ac.backend, name, contents, config)
	if err != nil {
		return nil, err
	}
	r := &apiRequest{method: http.MethodPost, path: name + ":" + method, body: body}
	if config != nil {
		r.httpOptions = config.HTTPOptions
	}
	if m.ac.isVertexAI() {
		var w wirePredictEmbedResponse
		if err := m.ac.request(ctx, r, &w); err != nil {
			return nil, err
		}
		return (EmbedContentResponse{}).fromVertex(&w), nil
	}
	var w wireBatchEmbedContentsResponse
	if err := m.ac.request(ctx, r, &w); err != nil {
		return nil, err
	}
	return (EmbedContentResponse{}).fromMLDev(&w), nil
}

// Get returns information about a model.
func (m *Models) Get(ctx context.Context, model string, opts *HTTPOptions) (*Model, error) {
	name, err := tModel(m.ac.backend, model)
	if err != nil {
		return nil, err
	}
	var w wireModel
	if err := m.ac.request(ctx, &apiRequest{method: http.MethodGet, path: name, httpOptions: opts}, &w); err != nil {
		return nil, err
	}
	return (Model{}).fromWire(m.ac.backend, &w), nil
}

// GenerateContentResponseIterator is an iterator over GenerateContentResponse.
type GenerateContentResponseIterator struct {
	dec     *frameDecoder
	backend Backend
	err     error
	merged  *GenerateContentResponse
}

// Next returns the next response. It returns iterator.Done after the last
// response. A frame carrying a service error ends the stream with a
// [*ClientError] or [*ServerError].
func (iter *GenerateContentResponseIterator) Next() (*GenerateContentResponse, error) {
	if iter.err != nil {
		return nil, iter.err
	}
	frame, err := iter.dec.Next()
	if err == io.EOF {
		iter.err = iterator.Done
		return nil, iter.err
	}
	if err != nil {
		iter.err = err
		return nil, err
	}
	if err := streamFrameError(frame); err != nil {
		iter.fail(err)
		return nil, err
	}
	var w wireGenerateContentResponse
	if err := sonic.ConfigStd.Unmarshal(frame, &w); err != nil {
		err = &ProtocolError{Reason: "frame does not match the response schema", Frame: string(frame), Err: err}
		iter.fail(err)
		return nil, err
	}
	resp, err := (GenerateContentResponse{}).fromWire(iter.backend, &w)
	if err != nil {
		iter.fail(err)
		return nil, err
	}
	// Merge this response in with the ones we've already seen.
	iter.merged = joinResponses(iter.merged, resp)
	return resp, nil
}

func (iter *GenerateContentResponseIterator) fail(err error) {
	iter.err = err
	iter.dec.Close()
}

// Close stops the iteration and releases the connection. Next returns
// iterator.Done after Close unless the stream had already failed.
func (iter *GenerateContentResponseIterator) Close() error {
	if iter.dec == nil {
		return nil
	}
	if iter.err == nil {
		iter.err = iterator.Done
	}
	return iter.dec.Close()
}

// MergedResponse returns the result of combining all the streamed responses
// seen so far. Text parts of a candidate are concatenated, and the last
// finish reason and safety ratings of each candidate are kept.
// After iteration completes, the merged response should match the response
// obtained without streaming.
func (iter *GenerateContentResponseIterator) MergedResponse() *GenerateContentResponse {
	return iter.merged
}

// joinResponses merges src into dest, which should be the result of a
// streaming call. dest is owned by the iterator and shares no structs or
// slices with src. Parts are copied by value.
func joinResponses(dest, src *GenerateContentResponse) *GenerateContentResponse {
	if dest == nil {
		dest = &GenerateContentResponse{
			PromptFeedback: copyPromptFeedback(src.PromptFeedback),
			ModelVersion:   src.ModelVersion,
			ResponseID:     src.ResponseID,
			CreateTime:     src.CreateTime,
		}
	}
	dest.Candidates = joinCandidateLists(dest.Candidates, src.Candidates)
	// Take the last UsageMetadata.
	if src.UsageMetadata != nil {
		um := *src.UsageMetadata
		dest.UsageMetadata = &um
	}
	return dest
}

func copyPromptFeedback(pf *PromptFeedback) *PromptFeedback {
	if pf == nil {
		return nil
	}
	c := *pf
	c.SafetyRatings = copySafetyRatings(pf.SafetyRatings)
	return &c
}

func copySafetyRatings(rs []*SafetyRating) []*SafetyRating {
	if rs == nil {
		return nil
	}
	out := make([]*SafetyRating, len(rs))
	for i, r := range rs {
		if r != nil {
			c := *r
			out[i] = &c
		}
	}
	return out
}

func joinCandidateLists(dest, src []*Candidate) []*Candidate {
	indexToDestCandidate := map[int32]*Candidate{}
	for _, d := range dest {
		indexToDestCandidate[d.Index] = d
	}
	for _, s := range src {
		d := indexToDestCandidate[s.Index]
		if d == nil {
			d = &Candidate{Index: s.Index}
			indexToDestCandidate[s.Index] = d
			dest = append(dest, d)
		}
		d.Content = joinContent(d.Content, s.Content)
		// Take the last of these.
		if s.FinishReason != "" {
			d.FinishReason = s.FinishReason
		}
		if s.FinishMessage != "" {
			d.FinishMessage = s.FinishMessage
		}
		if s.SafetyRatings != nil {
			d.SafetyRatings = copySafetyRatings(s.SafetyRatings)
		}
		d.TokenCount += s.TokenCount
	}
	return dest
}

func joinContent(dest, src *Content) *Content {
	if src == nil {
		return dest
	}
	if dest == nil {
		dest = &Content{Role: src.Role}
	}
	// Assume roles are the same.
	dest.Parts = mergeTexts(append(dest.Parts, src.Parts...))
	return dest
}

func mergeTexts(in []Part) []Part {
	var out []Part
	i := 0
	for i < len(in) {
		if t, ok := in[i].(Text); ok {
			texts := []string{string(t)}
			var j int
			for j = i + 1; j < len(in); j++ {
				if t, ok := in[j].(Text); ok {
					texts = append(texts, string(t))
				} else {
					break
				}
			}
			// j is just after the last Text.
			out = append(out, Text(strings.Join(texts, "")))
			i = j
		} else {
			out = append(out, in[i])
			i++
		}
	}
	return out
}
