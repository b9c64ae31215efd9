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
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
)

// viaJSON sends v through the JSON encoding and back into a new value of
// type T, as the service would see and return it.
func viaJSON[T any](t *testing.T, v any) *T {
	t.Helper()
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var out T
	if err := sonic.ConfigStd.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return &out
}

func TestContentRoundTrip(t *testing.T) {
	parts := []Part{
		Text("hello"),
		Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}},
		FileData{MIMEType: "application/pdf", URI: "gs://bucket/doc.pdf"},
		FunctionCall{Name: "find", Args: map[string]any{"q": "x", "n": 2.0}},
		FunctionCall{Name: "now", Args: map[string]any{}},
		FunctionResponse{Name: "find", Response: map[string]any{"hits": []any{"a", "b"}}},
		ExecutableCode{Language: LanguagePython, Code: "print(1)"},
		CodeExecutionResult{Outcome: OutcomeOK, Output: "1\n"},
	}
	for _, be := range []Backend{BackendMLDev, BackendVertexAI} {
		t.Run(be.String(), func(t *testing.T) {
			in := &Content{Role: RoleModel, Parts: parts}
			if be == BackendVertexAI {
				in = &Content{Role: RoleModel, Parts: append(parts, Blob{MIMEType: "image/jpeg", DisplayName: "photo"})}
			}
			w, err := in.toWire(be)
			if err != nil {
				t.Fatal(err)
			}
			got, err := (Content{}).fromWire(be, viaJSON[wireContent](t, w))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(in, got); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestContentWireShape(t *testing.T) {
	c := NewUserContent(
		Text("a"),
		Blob{MIMEType: "image/png", Data: []byte("png")},
		FileData{MIMEType: "video/mp4", URI: "https://x/v.mp4"},
		FunctionResponse{ID: "call-1", Name: "f", Response: map[string]any{"ok": true}},
	)
	w, err := c.toWire(BackendMLDev)
	if err != nil {
		t.Fatal(err)
	}
	got := *viaJSON[map[string]any](t, w)
	want := map[string]any{
		"role": "user",
		"parts": []any{
			map[string]any{"text": "a"},
			map[string]any{"inlineData": map[string]any{"mimeType": "image/png", "data": "cG5n"}},
			map[string]any{"fileData": map[string]any{"mimeType": "video/mp4", "fileUri": "https://x/v.mp4"}},
			map[string]any{"functionResponse": map[string]any{"id": "call-1", "name": "f", "response": map[string]any{"ok": true}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
}

func TestConverterRejections(t *testing.T) {
	for _, test := range []struct {
		name    string
		backend Backend
		convert func(Backend) error
		field   string
	}{
		{"blob display name", BackendMLDev, func(be Backend) error {
			_, err := NewUserContent(Blob{DisplayName: "d"}).toWire(be)
			return err
		}, "displayName"},
		{"file display name", BackendMLDev, func(be Backend) error {
			_, err := NewUserContent(FileData{URI: "u", DisplayName: "d"}).toWire(be)
			return err
		}, "displayName"},
		{"function call id", BackendVertexAI, func(be Backend) error {
			_, err := NewModelContent(FunctionCall{ID: "1", Name: "f"}).toWire(be)
			return err
		}, "id"},
		{"function response id", BackendVertexAI, func(be Backend) error {
			_, err := NewUserContent(FunctionResponse{ID: "1", Name: "f"}).toWire(be)
			return err
		}, "id"},
		{"audio timestamp", BackendMLDev, func(be Backend) error {
			_, err := (&GenerationConfig{AudioTimestamp: true}).toWire(be)
			return err
		}, "audioTimestamp"},
		{"affective dialog", BackendMLDev, func(be Backend) error {
			_, err := (&GenerationConfig{EnableAffectiveDialog: Ptr(true)}).toWire(be)
			return err
		}, "enableAffectiveDialog"},
		{"safety method", BackendMLDev, func(be Backend) error {
			_, err := safetySettingsToWire(be, []*SafetySetting{{Method: HarmBlockMethodProbability}})
			return err
		}, "method"},
		{"labels", BackendMLDev, func(be Backend) error {
			_, err := generateContentRequestToWire(be, []*Content{NewUserContent(Text("x"))}, &GenerateContentConfig{Labels: map[string]string{"a": "b"}})
			return err
		}, "labels"},
		{"enterprise web search", BackendMLDev, func(be Backend) error {
			_, err := (&Tool{EnterpriseWebSearch: &EnterpriseWebSearch{}}).toWire(be)
			return err
		}, "enterpriseWebSearch"},
		{"embed mime type", BackendMLDev, func(be Backend) error {
			_, _, err := embedContentRequestToWire(be, "models/m", []*Content{NewUserContent(Text("x"))}, &EmbedContentConfig{MIMEType: "text/plain"})
			return err
		}, "mimeType"},
	} {
		t.Run(test.name, func(t *testing.T) {
			err := test.convert(test.backend)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want *ValidationError", err)
			}
			want := test.field + " parameter is not supported in " + test.backend.String()
			if verr.Message != want {
				t.Errorf("got %q, want %q", verr.Message, want)
			}
			// The other dialect accepts the same input.
			other := BackendVertexAI
			if test.backend == BackendVertexAI {
				other = BackendMLDev
			}
			if err := test.convert(other); err != nil {
				t.Errorf("%s: %v", other, err)
			}
		})
	}
}

func TestVertexDropsFunctionIDs(t *testing.T) {
	w := &wireContent{Role: RoleModel, Parts: []*wirePart{
		{FunctionCall: &wireFunctionCall{ID: "c", Name: "f"}},
		{FunctionResponse: &wireFunctionResponse{ID: "c", Name: "f"}},
	}}
	for _, test := range []struct {
		backend Backend
		wantID  string
	}{
		{BackendMLDev, "c"},
		{BackendVertexAI, ""},
	} {
		got, err := (Content{}).fromWire(test.backend, w)
		if err != nil {
			t.Fatal(err)
		}
		want := &Content{Role: RoleModel, Parts: []Part{
			FunctionCall{ID: test.wantID, Name: "f"},
			FunctionResponse{ID: test.wantID, Name: "f"},
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: mismatch (-want, +got):\n%s", test.backend, diff)
		}
	}
}

func TestUnknownPart(t *testing.T) {
	_, err := (Content{}).fromWire(BackendMLDev, &wireContent{Parts: []*wirePart{{}}})
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Errorf("got %v, want *ProtocolError", err)
	}
}

func TestNilPart(t *testing.T) {
	_, err := (&Content{Parts: []Part{Text("a"), nil}}).toWire(BackendMLDev)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("got %v, want *ValidationError", err)
	}
}

func TestGenerationConfigRoundTrip(t *testing.T) {
	in := &GenerationConfig{
		CandidateCount:     2,
		StopSequences:      []string{"END"},
		MaxOutputTokens:    100,
		Temperature:        Ptr[float32](0.25),
		TopP:               Ptr[float32](0.5),
		TopK:               Ptr[float32](40),
		Seed:               Ptr[int32](7),
		ResponseMIMEType:   "application/json",
		ResponseSchema:     &Schema{Type: TypeObject, Properties: map[string]*Schema{"a": {Type: TypeString}}, Required: []string{"a"}},
		ResponseModalities: []Modality{ModalityText, ModalityAudio},
		MediaResolution:    MediaResolutionLow,
		SpeechConfig:       &SpeechConfig{VoiceConfig: &VoiceConfig{PrebuiltVoiceConfig: &PrebuiltVoiceConfig{VoiceName: "Kore"}}},
	}
	for _, be := range []Backend{BackendMLDev, BackendVertexAI} {
		w, err := in.toWire(be)
		if err != nil {
			t.Fatal(err)
		}
		got := (GenerationConfig{}).fromWire(viaJSON[wireGenerationConfig](t, w))
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("%s: mismatch (-want, +got):\n%s", be, diff)
		}
	}
	vertexOnly := &GenerationConfig{AudioTimestamp: true, EnableAffectiveDialog: Ptr(false)}
	w, err := vertexOnly.toWire(BackendVertexAI)
	if err != nil {
		t.Fatal(err)
	}
	if got := (GenerationConfig{}).fromWire(viaJSON[wireGenerationConfig](t, w)); !cmp.Equal(vertexOnly, got) {
		t.Errorf("got %+v, want %+v", got, vertexOnly)
	}
}

func TestToolRoundTrip(t *testing.T) {
	in := &Tool{
		FunctionDeclarations: []*FunctionDeclaration{{
			Name:        "weather",
			Description: "Current weather",
			Parameters: &Schema{
				Type:       TypeObject,
				Properties: map[string]*Schema{"city": {Type: TypeString, Description: "City name"}},
				Required:   []string{"city"},
			},
		}},
		CodeExecution: &ToolCodeExecution{},
		GoogleSearch:  &GoogleSearch{},
	}
	w, err := in.toWire(BackendMLDev)
	if err != nil {
		t.Fatal(err)
	}
	got := (Tool{}).fromWire(BackendMLDev, viaJSON[wireTool](t, w))
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}
	shape := *viaJSON[map[string]any](t, w)
	if _, ok := shape["codeExecution"]; !ok {
		t.Errorf("codeExecution missing from %v", shape)
	}
}

func TestGenerateContentResponseFromWire(t *testing.T) {
	w := viaJSON[wireGenerateContentResponse](t, map[string]any{
		"candidates": []any{map[string]any{
			"index":         1,
			"content":       map[string]any{"role": "model", "parts": []any{map[string]any{"text": "x"}}},
			"finishReason":  "MAX_TOKENS",
			"safetyRatings": []any{map[string]any{"category": "HARM_CATEGORY_HATE_SPEECH", "probability": "LOW"}},
			"avgLogprobs":   -0.5,
		}},
		"promptFeedback": map[string]any{"blockReason": "SAFETY"},
		"usageMetadata":  map[string]any{"promptTokenCount": 1, "cachedContentTokenCount": 2, "thoughtsTokenCount": 3, "totalTokenCount": 6},
		"createTime":     "2025-06-01T00:00:00Z",
	})
	got, err := (GenerateContentResponse{}).fromWire(BackendMLDev, w)
	if err != nil {
		t.Fatal(err)
	}
	want := &GenerateContentResponse{
		Candidates: []*Candidate{{
			Index:         1,
			Content:       &Content{Role: RoleModel, Parts: []Part{Text("x")}},
			FinishReason:  FinishReasonMaxTokens,
			SafetyRatings: []*SafetyRating{{Category: HarmCategoryHateSpeech, Probability: HarmProbabilityLow}},
			AvgLogprobs:   -0.5,
		}},
		PromptFeedback: &PromptFeedback{BlockReason: BlockReasonSafety},
		UsageMetadata:  &GenerateContentResponseUsageMetadata{PromptTokenCount: 1, CachedContentTokenCount: 2, ThoughtsTokenCount: 3, TotalTokenCount: 6},
	}
	// createTime is only read from Vertex AI.
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	w.CreateTime = "yesterday"
	_, err = (GenerateContentResponse{}).fromWire(BackendVertexAI, w)
	var perr *ProtocolError
	if !errors.As(err, &perr) || !strings.Contains(err.Error(), "createTime") {
		t.Errorf("got %v, want a createTime *ProtocolError", err)
	}
}

func TestEmbedRequestShapes(t *testing.T) {
	contents := []*Content{NewUserContent(Text("first"), Text("ignored")), NewUserContent(Text("second"))}
	config := &EmbedContentConfig{TaskType: TaskTypeClustering, OutputDimensionality: Ptr[int32](8)}

	method, body, err := embedContentRequestToWire(BackendVertexAI, "publishers/google/models/e", contents, config)
	if err != nil {
		t.Fatal(err)
	}
	if method != "predict" {
		t.Errorf("Vertex AI method = %q", method)
	}
	wantVertex := map[string]any{
		"instances": []any{
			map[string]any{"content": "first", "task_type": "CLUSTERING"},
			map[string]any{"content": "second", "task_type": "CLUSTERING"},
		},
		"parameters": map[string]any{"outputDimensionality": 8.0},
	}
	if diff := cmp.Diff(wantVertex, *viaJSON[map[string]any](t, body)); diff != "" {
		t.Errorf("Vertex AI body mismatch (-want, +got):\n%s", diff)
	}

	method, body, err = embedContentRequestToWire(BackendMLDev, "models/e", contents[1:], config)
	if err != nil {
		t.Fatal(err)
	}
	if method != "batchEmbedContents" {
		t.Errorf("Gemini API method = %q", method)
	}
	wantMLDev := map[string]any{
		"requests": []any{map[string]any{
			"model":                "models/e",
			"content":              map[string]any{"role": "user", "parts": []any{map[string]any{"text": "second"}}},
			"taskType":             "CLUSTERING",
			"outputDimensionality": 8.0,
		}},
	}
	if diff := cmp.Diff(wantMLDev, *viaJSON[map[string]any](t, body)); diff != "" {
		t.Errorf("Gemini API body mismatch (-want, +got):\n%s", diff)
	}
}

func TestModelFromWire(t *testing.T) {
	w := &wireModel{
		Name: "n", DisplayName: "d", Description: "desc",
		Version: "v", InputTokenLimit: 1, OutputTokenLimit: 2, SupportedGenerationMethods: []string{"embedContent"},
		VersionID: "vid", Labels: map[string]string{"k": "v"},
	}
	for _, test := range []struct {
		backend Backend
		want    *Model
	}{
		{BackendMLDev, &Model{Name: "n", DisplayName: "d", Description: "desc", Version: "v", InputTokenLimit: 1, OutputTokenLimit: 2, SupportedActions: []string{"embedContent"}}},
		{BackendVertexAI, &Model{Name: "n", DisplayName: "d", Description: "desc", Version: "vid", Labels: map[string]string{"k": "v"}}},
	} {
		if diff := cmp.Diff(test.want, (Model{}).fromWire(test.backend, w)); diff != "" {
			t.Errorf("%s: mismatch (-want, +got):\n%s", test.backend, diff)
		}
	}
}
