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
	"strings"
	"time"
)

// Backend selects the wire dialect a [Client] speaks.
type Backend int

const (
	// BackendUnspecified lets [NewClient] choose a backend from the environment.
	BackendUnspecified Backend = iota
	// BackendMLDev is the Gemini Developer API, authenticated with an API key.
	BackendMLDev
	// BackendVertexAI is the Vertex AI API, scoped to a project and location.
	BackendVertexAI
)

func (b Backend) String() string {
	switch b {
	case BackendMLDev:
		return "Gemini API"
	case BackendVertexAI:
		return "Vertex AI"
	default:
		return "unspecified backend"
	}
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// A Part is a piece of model content.
// A Part can be one of the following types:
//   - Text
//   - Blob
//   - FileData
//   - FunctionCall
//   - FunctionResponse
//   - ExecutableCode
//   - CodeExecutionResult
type Part interface {
	toPart(Backend) (*wirePart, error)
}

// A Text is a piece of text, like a question or phrase.
type Text string

// Blob contains raw media bytes.
type Blob struct {
	// The IANA standard MIME type of the source data.
	MIMEType string
	// Raw bytes for media formats.
	Data []byte
	// Optional. Display name of the blob. Vertex AI only.
	DisplayName string
}

// ImageData is a convenience function for creating an image
// Blob for input to a model.
// The format should be the second part of the MIME type, after "image/".
// For example, for a PNG image, pass "png".
func ImageData(format string, data []byte) Blob {
	return Blob{
		MIMEType: "image/" + format,
		Data:     data,
	}
}

// FileData is URI based data.
type FileData struct {
	// Optional. The IANA standard MIME type of the source data.
	MIMEType string
	// Required. URI.
	URI string
	// Optional. Display name of the file. Vertex AI only.
	DisplayName string
}

// FunctionCall is a predicted function call returned from the model that
// contains a string representing the FunctionDeclaration.Name with the
// arguments and their values.
type FunctionCall struct {
	// The unique id of the function call. Gemini API only; Vertex AI
	// responses never carry one.
	ID string
	// Required. The name of the function to call.
	Name string
	// Optional. The function parameters and values in JSON object format.
	Args map[string]any
}

// FunctionResponse is the result output from a FunctionCall that contains a
// string representing the FunctionDeclaration.Name and a structured JSON
// object containing any output from the function is used as context to the
// model.
type FunctionResponse struct {
	// The id of the function call this response is for. Required for live
	// sessions on the Gemini API, rejected by Vertex AI.
	ID string
	// Required. The name of the function that was called.
	Name string
	// Required. The function response in JSON object format.
	Response map[string]any
}

// Language is the programming language of [ExecutableCode].
type Language string

const (
	LanguageUnspecified Language = "LANGUAGE_UNSPECIFIED"
	LanguagePython      Language = "PYTHON"
)

// ExecutableCode is code generated by the model that is meant to be executed.
type ExecutableCode struct {
	Language Language
	Code     string
}

// Outcome is the result of running [ExecutableCode].
type Outcome string

const (
	OutcomeUnspecified      Outcome = "OUTCOME_UNSPECIFIED"
	OutcomeOK               Outcome = "OUTCOME_OK"
	OutcomeFailed           Outcome = "OUTCOME_FAILED"
	OutcomeDeadlineExceeded Outcome = "OUTCOME_DEADLINE_EXCEEDED"
)

// CodeExecutionResult is the result of executing [ExecutableCode].
type CodeExecutionResult struct {
	Outcome Outcome
	// Contains stdout when code execution is successful, stderr or other
	// description otherwise.
	Output string
}

// Content is the base structured datatype containing multi-part content of a message.
type Content struct {
	// Optional. The producer of the content. Must be either "user" or "model".
	//
	// Useful to set for multi-turn conversations, otherwise can be left blank
	// or unset.
	Role string
	// Ordered Parts that constitute a single message. Parts may have different
	// MIME types.
	Parts []Part
}

// NewUserContent returns a [Content] with a "user" role set and one or more
// parts.
func NewUserContent(parts ...Part) *Content {
	content := &Content{Role: RoleUser, Parts: []Part{}}
	for _, part := range parts {
		content.Parts = append(content.Parts, part)
	}
	return content
}

// NewModelContent returns a [Content] with a "model" role set and one or more
// parts.
func NewModelContent(parts ...Part) *Content {
	return &Content{Role: RoleModel, Parts: parts}
}

// Ptr returns a pointer to its argument.
// It can be used to initialize pointer fields:
//
//	config.Temperature = genai.Ptr[float32](0.1)
func Ptr[T any](t T) *T { return &t }

// Modality is a kind of content a model can produce.
type Modality string

const (
	ModalityUnspecified Modality = "MODALITY_UNSPECIFIED"
	ModalityText        Modality = "TEXT"
	ModalityImage       Modality = "IMAGE"
	ModalityAudio       Modality = "AUDIO"
)

// MediaResolution is the resolution used for media input.
type MediaResolution string

const (
	MediaResolutionUnspecified MediaResolution = "MEDIA_RESOLUTION_UNSPECIFIED"
	MediaResolutionLow         MediaResolution = "MEDIA_RESOLUTION_LOW"
	MediaResolutionMedium      MediaResolution = "MEDIA_RESOLUTION_MEDIUM"
	MediaResolutionHigh        MediaResolution = "MEDIA_RESOLUTION_HIGH"
)

// SpeechConfig configures speech generation.
type SpeechConfig struct {
	VoiceConfig  *VoiceConfig `json:"voiceConfig,omitempty"`
	LanguageCode string       `json:"languageCode,omitempty"`
}

// VoiceConfig selects a voice.
type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

// PrebuiltVoiceConfig names a prebuilt voice.
type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName,omitempty"`
}

// GenerationConfig holds configuration options for model generation.
type GenerationConfig struct {
	// Optional. Number of generated responses to return.
	CandidateCount int32
	// Optional. The set of character sequences (up to 5) that will stop output
	// generation. If specified, the API will stop at the first appearance of a
	// stop sequence. The stop sequence will not be included as part of the
	// response.
	StopSequences []string
	// Optional. The maximum number of tokens to include in a candidate.
	MaxOutputTokens int32
	// Optional. Controls the randomness of the output.
	Temperature *float32
	// Optional. The maximum cumulative probability of tokens to consider when
	// sampling.
	TopP *float32
	// Optional. The maximum number of tokens to consider when sampling.
	TopK *float32
	// Optional. Seed used in decoding.
	Seed *int32
	// Optional. Penalizes tokens that already appear in the generated text.
	PresencePenalty *float32
	// Optional. Penalizes tokens in proportion to how often they appear.
	FrequencyPenalty *float32
	// Optional. Output response mimetype of the generated candidate text.
	ResponseMIMEType string
	// Optional. Output response schema of the generated candidate text.
	ResponseSchema *Schema
	// Optional. The modalities of the response.
	ResponseModalities []Modality
	// Optional. Resolution of media input.
	MediaResolution MediaResolution
	// Optional. Speech generation configuration.
	SpeechConfig *SpeechConfig
	// Optional. Include audio timestamps in the request. Vertex AI only.
	AudioTimestamp bool
	// Optional. Enables affective dialog in live sessions. Vertex AI only.
	EnableAffectiveDialog *bool
}

// SetCandidateCount sets the CandidateCount field.
func (c *GenerationConfig) SetCandidateCount(x int32) { c.CandidateCount = x }

// SetMaxOutputTokens sets the MaxOutputTokens field.
func (c *GenerationConfig) SetMaxOutputTokens(x int32) { c.MaxOutputTokens = x }

// SetTemperature sets the Temperature field.
func (c *GenerationConfig) SetTemperature(x float32) { c.Temperature = &x }

// SetTopP sets the TopP field.
func (c *GenerationConfig) SetTopP(x float32) { c.TopP = &x }

// SetTopK sets the TopK field.
func (c *GenerationConfig) SetTopK(x float32) { c.TopK = &x }

// HarmCategory specifies the category of a harm.
type HarmCategory string

const (
	HarmCategoryUnspecified      HarmCategory = "HARM_CATEGORY_UNSPECIFIED"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryCivicIntegrity   HarmCategory = "HARM_CATEGORY_CIVIC_INTEGRITY"
)

// HarmBlockThreshold specifies block at and beyond a specified harm probability.
type HarmBlockThreshold string

const (
	HarmBlockUnspecified    HarmBlockThreshold = "HARM_BLOCK_THRESHOLD_UNSPECIFIED"
	HarmBlockLowAndAbove    HarmBlockThreshold = "BLOCK_LOW_AND_ABOVE"
	HarmBlockMediumAndAbove HarmBlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	HarmBlockOnlyHigh       HarmBlockThreshold = "BLOCK_ONLY_HIGH"
	HarmBlockNone           HarmBlockThreshold = "BLOCK_NONE"
	HarmBlockOff            HarmBlockThreshold = "OFF"
)

// HarmBlockMethod selects whether the threshold applies to probability or
// severity scores. Vertex AI only.
type HarmBlockMethod string

const (
	HarmBlockMethodUnspecified HarmBlockMethod = "HARM_BLOCK_METHOD_UNSPECIFIED"
	HarmBlockMethodSeverity    HarmBlockMethod = "SEVERITY"
	HarmBlockMethodProbability HarmBlockMethod = "PROBABILITY"
)

// HarmProbability specifies the probability that a piece of content is harmful.
type HarmProbability string

const (
	HarmProbabilityUnspecified HarmProbability = "HARM_PROBABILITY_UNSPECIFIED"
	HarmProbabilityNegligible  HarmProbability = "NEGLIGIBLE"
	HarmProbabilityLow         HarmProbability = "LOW"
	HarmProbabilityMedium      HarmProbability = "MEDIUM"
	HarmProbabilityHigh        HarmProbability = "HIGH"
)

// SafetySetting affects the safety-blocking behavior.
type SafetySetting struct {
	// Required. The category for this setting.
	Category HarmCategory `json:"category,omitempty"`
	// Required. Controls the probability threshold at which harm is blocked.
	Threshold HarmBlockThreshold `json:"threshold,omitempty"`
	// Optional. Vertex AI only.
	Method HarmBlockMethod `json:"method,omitempty"`
}

// SafetyRating is the safety rating for a piece of content.
type SafetyRating struct {
	Category    HarmCategory    `json:"category,omitempty"`
	Probability HarmProbability `json:"probability,omitempty"`
	Blocked     bool            `json:"blocked,omitempty"`
}

// FunctionCallingMode controls how the model uses declared functions.
type FunctionCallingMode string

const (
	FunctionCallingUnspecified FunctionCallingMode = "MODE_UNSPECIFIED"
	FunctionCallingAuto        FunctionCallingMode = "AUTO"
	FunctionCallingAny         FunctionCallingMode = "ANY"
	FunctionCallingNone        FunctionCallingMode = "NONE"
)

// ToolConfig configures tools.
type ToolConfig struct {
	FunctionCallingConfig *FunctionCallingConfig `json:"functionCallingConfig,omitempty"`
}

// FunctionCallingConfig holds configuration for function calling.
type FunctionCallingConfig struct {
	Mode FunctionCallingMode `json:"mode,omitempty"`
	// A set of function names that, when provided, limits the functions the
	// model will call. Only valid with mode ANY.
	AllowedFunctionNames []string `json:"allowedFunctionNames,omitempty"`
}

// GenerateContentConfig holds the optional parameters of a
// [Models.GenerateContent] call.
type GenerateContentConfig struct {
	// Used to override HTTP request options.
	HTTPOptions *HTTPOptions
	// Instructions for the model to steer it toward better performance.
	SystemInstruction *Content
	GenerationConfig
	SafetySettings []*SafetySetting
	Tools          []*Tool
	ToolConfig     *ToolConfig
	// Labels with user-defined metadata to break down billed charges.
	// Vertex AI only.
	Labels map[string]string
	// The name of a cached content to use as context.
	CachedContent string
}

// FinishReason is the reason why the model stopped generating tokens.
type FinishReason string

const (
	FinishReasonUnspecified FinishReason = "FINISH_REASON_UNSPECIFIED"
	FinishReasonStop        FinishReason = "STOP"
	FinishReasonMaxTokens   FinishReason = "MAX_TOKENS"
	FinishReasonSafety      FinishReason = "SAFETY"
	FinishReasonRecitation  FinishReason = "RECITATION"
	FinishReasonOther       FinishReason = "OTHER"
)

// BlockReason is the reason a prompt was blocked.
type BlockReason string

const (
	BlockReasonUnspecified BlockReason = "BLOCKED_REASON_UNSPECIFIED"
	BlockReasonSafety      BlockReason = "SAFETY"
	BlockReasonOther       BlockReason = "OTHER"
)

// Candidate is a response candidate generated from the model.
type Candidate struct {
	// Index of the candidate in the list of candidates.
	Index int32
	// Generated content returned from the model.
	Content *Content
	// The reason why the model stopped generating tokens.
	FinishReason FinishReason
	// Describes the reason the model stopped generating tokens in more detail.
	FinishMessage string
	// List of ratings for the safety of a response candidate.
	SafetyRatings []*SafetyRating
	// Token count for this candidate.
	TokenCount int32
	// Average log probability score of the candidate.
	AvgLogprobs float64
}

// FunctionCalls return all the FunctionCall parts in the candidate.
func (c *Candidate) FunctionCalls() []FunctionCall {
	if c.Content == nil {
		return nil
	}
	var fcs []FunctionCall
	for _, p := range c.Content.Parts {
		if fc, ok := p.(FunctionCall); ok {
			fcs = append(fcs, fc)
		}
	}
	return fcs
}

// PromptFeedback is a set of the feedback metadata the prompt specified in
// the request.
type PromptFeedback struct {
	BlockReason        BlockReason     `json:"blockReason,omitempty"`
	BlockReasonMessage string          `json:"blockReasonMessage,omitempty"`
	SafetyRatings      []*SafetyRating `json:"safetyRatings,omitempty"`
}

// GenerateContentResponseUsageMetadata is metadata on the generation
// request's token usage.
type GenerateContentResponseUsageMetadata struct {
	PromptTokenCount        int32 `json:"promptTokenCount,omitempty"`
	CachedContentTokenCount int32 `json:"cachedContentTokenCount,omitempty"`
	CandidatesTokenCount    int32 `json:"candidatesTokenCount,omitempty"`
	ToolUsePromptTokenCount int32 `json:"toolUsePromptTokenCount,omitempty"`
	ThoughtsTokenCount      int32 `json:"thoughtsTokenCount,omitempty"`
	TotalTokenCount         int32 `json:"totalTokenCount,omitempty"`
}

// GenerateContentResponse is the response from a GenerateContent or
// GenerateContentStream call.
type GenerateContentResponse struct {
	// Candidate responses from the model.
	Candidates []*Candidate
	// Returns the prompt's feedback related to the content filters.
	PromptFeedback *PromptFeedback
	// Usage metadata about the response(s).
	UsageMetadata *GenerateContentResponseUsageMetadata
	// The model version used to generate the response.
	ModelVersion string
	// Identifier for each response.
	ResponseID string
	// Timestamp when the request was made to the server. Vertex AI only.
	CreateTime time.Time
}

// Text concatenates the text parts of the first candidate.
// It returns the empty string if there are no candidates.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		if t, ok := p.(Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// CountTokensConfig holds the optional parameters of a [Models.CountTokens]
// call.
type CountTokensConfig struct {
	HTTPOptions *HTTPOptions
	// Instructions for the model. Vertex AI only.
	SystemInstruction *Content
	// Tools the model may use. Vertex AI only.
	Tools []*Tool
	// Generation configuration. Vertex AI only.
	GenerationConfig *GenerationConfig
}

// CountTokensResponse is the response from [Models.CountTokens].
type CountTokensResponse struct {
	// The total number of tokens counted across all instances from the request.
	TotalTokens int32
	// Number of tokens in the cached part of the prompt.
	CachedContentTokenCount int32
}

// TaskType is the type of task for which an embedding will be used.
type TaskType string

const (
	TaskTypeUnspecified        TaskType = "TASK_TYPE_UNSPECIFIED"
	TaskTypeRetrievalQuery     TaskType = "RETRIEVAL_QUERY"
	TaskTypeRetrievalDocument  TaskType = "RETRIEVAL_DOCUMENT"
	TaskTypeSemanticSimilarity TaskType = "SEMANTIC_SIMILARITY"
	TaskTypeClassification     TaskType = "CLASSIFICATION"
	TaskTypeClustering         TaskType = "CLUSTERING"
)

// EmbedContentConfig holds the optional parameters of a
// [Models.EmbedContent] call.
type EmbedContentConfig struct {
	HTTPOptions *HTTPOptions
	// Type of task for which the embedding will be used.
	TaskType TaskType
	// Title for the text. A non-empty title with no TaskType sets the task
	// type to TaskTypeRetrievalDocument.
	Title string
	// Reduced dimension for the output embedding.
	OutputDimensionality *int32
	// The MIME type of the input. Vertex AI only.
	MIMEType string
	// Whether to silently truncate inputs longer than the max sequence length.
	// Vertex AI only.
	AutoTruncate *bool
}

// ContentEmbeddingStatistics holds statistics of the input text associated
// with an embedding. Vertex AI only.
type ContentEmbeddingStatistics struct {
	// Whether the input text was truncated.
	Truncated bool
	// Number of tokens of the input text.
	TokenCount float32
}

// ContentEmbedding is a list of floats representing the embedding.
type ContentEmbedding struct {
	Values     []float32
	Statistics *ContentEmbeddingStatistics
}

// EmbedContentMetadata is request-level metadata. Vertex AI only.
type EmbedContentMetadata struct {
	BillableCharacterCount int32
}

// EmbedContentResponse is the response from [Models.EmbedContent].
type EmbedContentResponse struct {
	// One embedding per input content, in request order.
	Embeddings []*ContentEmbedding
	Metadata   *EmbedContentMetadata
}

// Model is information about a generative model.
type Model struct {
	// The resource name of the model.
	Name string
	// The human-readable name of the model.
	DisplayName string
	// A short description of the model.
	Description string
	// The version of the model.
	Version string
	// The maximum number of input tokens allowed for this model.
	// Gemini API only.
	InputTokenLimit int32
	// The maximum number of output tokens available for this model.
	// Gemini API only.
	OutputTokenLimit int32
	// The model's supported actions. Gemini API only.
	SupportedActions []string
	// Labels with user-defined metadata. Vertex AI only.
	Labels map[string]string
}

func (m *Model) String() string {
	return fmt.Sprintf("%s (%s)", m.Name, m.DisplayName)
}
