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
	"fmt"
	"time"
)

// Conversions between the canonical types and the wire shapes. Each toWire
// method takes the dialect and rejects fields that dialect does not accept.
// Each fromWire method takes the dialect and maps its field names back to
// the canonical ones. Neither direction modifies its input.

// transformSlice applies f to each element of from. It returns nil for a nil
// slice and stops at the first error.
func transformSlice[From, To any](from []From, f func(From) (To, error)) ([]To, error) {
	if from == nil {
		return nil, nil
	}
	to := make([]To, len(from))
	for i, e := range from {
		t, err := f(e)
		if err != nil {
			return nil, err
		}
		to[i] = t
	}
	return to, nil
}

func (t Text) toPart(Backend) (*wirePart, error) {
	s := string(t)
	return &wirePart{Text: &s}, nil
}

func (b Blob) toPart(be Backend) (*wirePart, error) {
	w, err := b.toWire(be)
	if err != nil {
		return nil, err
	}
	return &wirePart{InlineData: w}, nil
}

func (b *Blob) toWire(be Backend) (*wireBlob, error) {
	if b == nil {
		return nil, nil
	}
	if b.DisplayName != "" && be != BackendVertexAI {
		return nil, unsupported("displayName", be)
	}
	return &wireBlob{MIMEType: b.MIMEType, Data: b.Data, DisplayName: b.DisplayName}, nil
}

func (Blob) fromWire(w *wireBlob) *Blob {
	if w == nil {
		return nil
	}
	return &Blob{MIMEType: w.MIMEType, Data: w.Data, DisplayName: w.DisplayName}
}

func (f FileData) toPart(be Backend) (*wirePart, error) {
	if f.DisplayName != "" && be != BackendVertexAI {
		return nil, unsupported("displayName", be)
	}
	return &wirePart{FileData: &wireFileData{
		MIMEType:    f.MIMEType,
		FileURI:     f.URI,
		DisplayName: f.DisplayName,
	}}, nil
}

func (f FunctionCall) toPart(be Backend) (*wirePart, error) {
	w, err := f.toWire(be)
	if err != nil {
		return nil, err
	}
	return &wirePart{FunctionCall: w}, nil
}

func (f *FunctionCall) toWire(be Backend) (*wireFunctionCall, error) {
	if f == nil {
		return nil, nil
	}
	if f.ID != "" && be == BackendVertexAI {
		return nil, unsupported("id", be)
	}
	return &wireFunctionCall{ID: f.ID, Name: f.Name, Args: f.Args}, nil
}

func (FunctionCall) fromWire(be Backend, w *wireFunctionCall) *FunctionCall {
	if w == nil {
		return nil
	}
	fc := &FunctionCall{Name: w.Name, Args: w.Args}
	if be != BackendVertexAI {
		fc.ID = w.ID
	}
	return fc
}

func (f FunctionResponse) toPart(be Backend) (*wirePart, error) {
	w, err := f.toWire(be)
	if err != nil {
		return nil, err
	}
	return &wirePart{FunctionResponse: w}, nil
}

func (f *FunctionResponse) toWire(be Backend) (*wireFunctionResponse, error) {
	if f == nil {
		return nil, nil
	}
	if f.ID != "" && be == BackendVertexAI {
		return nil, unsupported("id", be)
	}
	return &wireFunctionResponse{ID: f.ID, Name: f.Name, Response: f.Response}, nil
}

func (FunctionResponse) fromWire(be Backend, w *wireFunctionResponse) *FunctionResponse {
	if w == nil {
		return nil
	}
	fr := &FunctionResponse{Name: w.Name, Response: w.Response}
	if be != BackendVertexAI {
		fr.ID = w.ID
	}
	return fr
}

func (e ExecutableCode) toPart(Backend) (*wirePart, error) {
	return &wirePart{ExecutableCode: &wireExecutableCode{
		Language: string(e.Language),
		Code:     e.Code,
	}}, nil
}

func (c CodeExecutionResult) toPart(Backend) (*wirePart, error) {
	return &wirePart{CodeExecutionResult: &wireCodeExecutionResult{
		Outcome: string(c.Outcome),
		Output:  c.Output,
	}}, nil
}

func partFromWire(be Backend, w *wirePart) (Part, error) {
	switch {
	case w.Text != nil:
		return Text(*w.Text), nil
	case w.InlineData != nil:
		return *(Blob{}).fromWire(w.InlineData), nil
	case w.FileData != nil:
		return FileData{
			MIMEType:    w.FileData.MIMEType,
			URI:         w.FileData.FileURI,
			DisplayName: w.FileData.DisplayName,
		}, nil
	case w.FunctionCall != nil:
		return *(FunctionCall{}).fromWire(be, w.FunctionCall), nil
	case w.FunctionResponse != nil:
		return *(FunctionResponse{}).fromWire(be, w.FunctionResponse), nil
	case w.ExecutableCode != nil:
		return ExecutableCode{
			Language: Language(w.ExecutableCode.Language),
			Code:     w.ExecutableCode.Code,
		}, nil
	case w.CodeExecutionResult != nil:
		return CodeExecutionResult{
			Outcome: Outcome(w.CodeExecutionResult.Outcome),
			Output:  w.CodeExecutionResult.Output,
		}, nil
	default:
		return nil, &ProtocolError{Reason: "part has no recognized field"}
	}
}

func (c *Content) toWire(be Backend) (*wireContent, error) {
	if c == nil {
		return nil, nil
	}
	parts, err := transformSlice(c.Parts, func(p Part) (*wirePart, error) {
		if p == nil {
			return nil, validationErrorf("content part is nil")
		}
		return p.toPart(be)
	})
	if err != nil {
		return nil, err
	}
	return &wireContent{Role: c.Role, Parts: parts}, nil
}

func (Content) fromWire(be Backend, w *wireContent) (*Content, error) {
	if w == nil {
		return nil, nil
	}
	parts, err := transformSlice(w.Parts, func(p *wirePart) (Part, error) {
		return partFromWire(be, p)
	})
	if err != nil {
		return nil, err
	}
	return &Content{Role: w.Role, Parts: parts}, nil
}

func contentsToWire(be Backend, cs []*Content) ([]*wireContent, error) {
	return transformSlice(cs, func(c *Content) (*wireContent, error) {
		return c.toWire(be)
	})
}

func toolsToWire(be Backend, ts []*Tool) ([]*wireTool, error) {
	return transformSlice(ts, func(t *Tool) (*wireTool, error) {
		return t.toWire(be)
	})
}

func (c *GenerationConfig) toWire(be Backend) (*wireGenerationConfig, error) {
	if c == nil {
		return nil, nil
	}
	if be != BackendVertexAI {
		if c.AudioTimestamp {
			return nil, unsupported("audioTimestamp", be)
		}
		if c.EnableAffectiveDialog != nil {
			return nil, unsupported("enableAffectiveDialog", be)
		}
	}
	return &wireGenerationConfig{
		CandidateCount:        c.CandidateCount,
		StopSequences:         c.StopSequences,
		MaxOutputTokens:       c.MaxOutputTokens,
		Temperature:           c.Temperature,
		TopP:                  c.TopP,
		TopK:                  c.TopK,
		Seed:                  c.Seed,
		PresencePenalty:       c.PresencePenalty,
		FrequencyPenalty:      c.FrequencyPenalty,
		ResponseMIMEType:      c.ResponseMIMEType,
		ResponseSchema:        c.ResponseSchema,
		ResponseModalities:    c.ResponseModalities,
		MediaResolution:       c.MediaResolution,
		SpeechConfig:          c.SpeechConfig,
		AudioTimestamp:        c.AudioTimestamp,
		EnableAffectiveDialog: c.EnableAffectiveDialog,
	}, nil
}

func (GenerationConfig) fromWire(w *wireGenerationConfig) *GenerationConfig {
	if w == nil {
		return nil
	}
	return &GenerationConfig{
		CandidateCount:        w.CandidateCount,
		StopSequences:         w.StopSequences,
		MaxOutputTokens:       w.MaxOutputTokens,
		Temperature:           w.Temperature,
		TopP:                  w.TopP,
		TopK:                  w.TopK,
		Seed:                  w.Seed,
		PresencePenalty:       w.PresencePenalty,
		FrequencyPenalty:      w.FrequencyPenalty,
		ResponseMIMEType:      w.ResponseMIMEType,
		ResponseSchema:        w.ResponseSchema,
		ResponseModalities:    w.ResponseModalities,
		MediaResolution:       w.MediaResolution,
		SpeechConfig:          w.SpeechConfig,
		AudioTimestamp:        w.AudioTimestamp,
		EnableAffectiveDialog: w.EnableAffectiveDialog,
	}
}

// isZero reports whether no generation field is set.
func (c *GenerationConfig) isZero() bool {
	if c == nil {
		return true
	}
	return c.CandidateCount == 0 && len(c.StopSequences) == 0 && c.MaxOutputTokens == 0 &&
		c.Temperature == nil && c.TopP == nil && c.TopK == nil && c.Seed == nil &&
		c.PresencePenalty == nil && c.FrequencyPenalty == nil && c.ResponseMIMEType == "" &&
		c.ResponseSchema == nil && c.ResponseModalities == nil && c.MediaResolution == "" &&
		c.SpeechConfig == nil && !c.AudioTimestamp && c.EnableAffectiveDialog == nil
}

func safetySettingsToWire(be Backend, ss []*SafetySetting) ([]*SafetySetting, error) {
	for _, s := range ss {
		if s != nil && s.Method != "" && be != BackendVertexAI {
			return nil, unsupported("method", be)
		}
	}
	return ss, nil
}

func (Candidate) fromWire(be Backend, w *wireCandidate) (*Candidate, error) {
	if w == nil {
		return nil, nil
	}
	content, err := (Content{}).fromWire(be, w.Content)
	if err != nil {
		return nil, err
	}
	return &Candidate{
		Index:         w.Index,
		Content:       content,
		FinishReason:  w.FinishReason,
		FinishMessage: w.FinishMessage,
		SafetyRatings: w.SafetyRatings,
		TokenCount:    w.TokenCount,
		AvgLogprobs:   w.AvgLogprobs,
	}, nil
}

func (GenerateContentResponse) fromWire(be Backend, w *wireGenerateContentResponse) (*GenerateContentResponse, error) {
	cands, err := transformSlice(w.Candidates, func(c *wireCandidate) (*Candidate, error) {
		return (Candidate{}).fromWire(be, c)
	})
	if err != nil {
		return nil, err
	}
	r := &GenerateContentResponse{
		Candidates:     cands,
		PromptFeedback: w.PromptFeedback,
		UsageMetadata:  w.UsageMetadata,
		ModelVersion:   w.ModelVersion,
		ResponseID:     w.ResponseID,
	}
	if be == BackendVertexAI && w.CreateTime != "" {
		t, err := time.Parse(time.RFC3339Nano, w.CreateTime)
		if err != nil {
			return nil, &ProtocolError{Reason: fmt.Sprintf("bad createTime %q", w.CreateTime), Err: err}
		}
		r.CreateTime = t
	}
	return r, nil
}
