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

// JSON shapes sent to and received from the service. Field names follow the
// service's camelCase JSON mapping. Dialect-specific fields are populated
// only by the converter for that dialect.

type wireContent struct {
	Role  string      `json:"role,omitempty"`
	Parts []*wirePart `json:"parts,omitempty"`
}

type wirePart struct {
	Text                *string                  `json:"text,omitempty"`
	InlineData          *wireBlob                `json:"inlineData,omitempty"`
	FileData            *wireFileData            `json:"fileData,omitempty"`
	FunctionCall        *wireFunctionCall        `json:"functionCall,omitempty"`
	FunctionResponse    *wireFunctionResponse    `json:"functionResponse,omitempty"`
	ExecutableCode      *wireExecutableCode      `json:"executableCode,omitempty"`
	CodeExecutionResult *wireCodeExecutionResult `json:"codeExecutionResult,omitempty"`
}

type wireBlob struct {
	MIMEType    string `json:"mimeType,omitempty"`
	Data        []byte `json:"data,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type wireFileData struct {
	MIMEType    string `json:"mimeType,omitempty"`
	FileURI     string `json:"fileUri,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type wireFunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name,omitempty"`
	Args map[string]any `json:"args"`
}

type wireFunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Response map[string]any `json:"response"`
}

type wireExecutableCode struct {
	Language string `json:"language,omitempty"`
	Code     string `json:"code,omitempty"`
}

type wireCodeExecutionResult struct {
	Outcome string `json:"outcome,omitempty"`
	Output  string `json:"output,omitempty"`
}

type wireTool struct {
	FunctionDeclarations []*wireFunctionDeclaration `json:"functionDeclarations,omitempty"`
	CodeExecution        *ToolCodeExecution         `json:"codeExecution,omitempty"`
	GoogleSearch         *GoogleSearch              `json:"googleSearch,omitempty"`
	EnterpriseWebSearch  *EnterpriseWebSearch       `json:"enterpriseWebSearch,omitempty"`
}

type wireFunctionDeclaration struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Parameters  *Schema `json:"parameters,omitempty"`
	Response    *Schema `json:"response,omitempty"`
}

type wireGenerationConfig struct {
	CandidateCount        int32           `json:"candidateCount,omitempty"`
	StopSequences         []string        `json:"stopSequences,omitempty"`
	MaxOutputTokens       int32           `json:"maxOutputTokens,omitempty"`
	Temperature           *float32        `json:"temperature,omitempty"`
	TopP                  *float32        `json:"topP,omitempty"`
	TopK                  *float32        `json:"topK,omitempty"`
	Seed                  *int32          `json:"seed,omitempty"`
	PresencePenalty       *float32        `json:"presencePenalty,omitempty"`
	FrequencyPenalty      *float32        `json:"frequencyPenalty,omitempty"`
	ResponseMIMEType      string          `json:"responseMimeType,omitempty"`
	ResponseSchema        *Schema         `json:"responseSchema,omitempty"`
	ResponseModalities    []Modality      `json:"responseModalities,omitempty"`
	MediaResolution       MediaResolution `json:"mediaResolution,omitempty"`
	SpeechConfig          *SpeechConfig   `json:"speechConfig,omitempty"`
	AudioTimestamp        bool            `json:"audioTimestamp,omitempty"`
	EnableAffectiveDialog *bool           `json:"enableAffectiveDialog,omitempty"`
}

type wireGenerateContentRequest struct {
	Contents          []*wireContent        `json:"contents"`
	SystemInstruction *wireContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *wireGenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []*SafetySetting      `json:"safetySettings,omitempty"`
	Tools             []*wireTool           `json:"tools,omitempty"`
	ToolConfig        *ToolConfig           `json:"toolConfig,omitempty"`
	Labels            map[string]string     `json:"labels,omitempty"`
	CachedContent     string                `json:"cachedContent,omitempty"`
}

type wireCandidate struct {
	Index         int32           `json:"index,omitempty"`
	Content       *wireContent    `json:"content,omitempty"`
	FinishReason  FinishReason    `json:"finishReason,omitempty"`
	FinishMessage string          `json:"finishMessage,omitempty"`
	SafetyRatings []*SafetyRating `json:"safetyRatings,omitempty"`
	TokenCount    int32           `json:"tokenCount,omitempty"`
	AvgLogprobs   float64         `json:"avgLogprobs,omitempty"`
}

type wireGenerateContentResponse struct {
	Candidates     []*wireCandidate                      `json:"candidates,omitempty"`
	PromptFeedback *PromptFeedback                       `json:"promptFeedback,omitempty"`
	UsageMetadata  *GenerateContentResponseUsageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion   string                                `json:"modelVersion,omitempty"`
	ResponseID     string                                `json:"responseId,omitempty"`
	CreateTime     string                                `json:"createTime,omitempty"`
}

type wireCountTokensRequest struct {
	Contents          []*wireContent        `json:"contents"`
	SystemInstruction *wireContent          `json:"systemInstruction,omitempty"`
	Tools             []*wireTool           `json:"tools,omitempty"`
	GenerationConfig  *wireGenerationConfig `json:"generationConfig,omitempty"`
}

type wireCountTokensResponse struct {
	TotalTokens             int32 `json:"totalTokens,omitempty"`
	CachedContentTokenCount int32 `json:"cachedContentTokenCount,omitempty"`
}

// Gemini API embeddings.

type wireBatchEmbedContentsRequest struct {
	Requests []*wireEmbedContentRequest `json:"requests"`
}

type wireEmbedContentRequest struct {
	Model                string       `json:"model"`
	Content              *wireContent `json:"content"`
	TaskType             string       `json:"taskType,omitempty"`
	Title                string       `json:"title,omitempty"`
	OutputDimensionality *int32       `json:"outputDimensionality,omitempty"`
}

type wireBatchEmbedContentsResponse struct {
	Embeddings []*wireContentEmbedding `json:"embeddings,omitempty"`
}

type wireContentEmbedding struct {
	Values []float32 `json:"values,omitempty"`
}

// Vertex AI embeddings.

type wirePredictEmbedRequest struct {
	Instances  []*wireEmbedInstance `json:"instances"`
	Parameters *wireEmbedParameters `json:"parameters,omitempty"`
}

type wireEmbedInstance struct {
	Content  string `json:"content"`
	TaskType string `json:"task_type,omitempty"`
	Title    string `json:"title,omitempty"`
	MIMEType string `json:"mimeType,omitempty"`
}

type wireEmbedParameters struct {
	OutputDimensionality *int32 `json:"outputDimensionality,omitempty"`
	AutoTruncate         *bool  `json:"autoTruncate,omitempty"`
}

type wirePredictEmbedResponse struct {
	Predictions []*wireEmbedPrediction `json:"predictions,omitempty"`
	Metadata    *wireEmbedMetadata     `json:"metadata,omitempty"`
}

type wireEmbedPrediction struct {
	Embeddings *wireVertexEmbedding `json:"embeddings,omitempty"`
}

type wireVertexEmbedding struct {
	Values     []float32                `json:"values,omitempty"`
	Statistics *wireEmbeddingStatistics `json:"statistics,omitempty"`
}

type wireEmbeddingStatistics struct {
	Truncated  bool    `json:"truncated,omitempty"`
	TokenCount float32 `json:"token_count,omitempty"`
}

type wireEmbedMetadata struct {
	BillableCharacterCount int32 `json:"billableCharacterCount,omitempty"`
}

type wireModel struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	// Gemini API.
	Version                    string   `json:"version,omitempty"`
	InputTokenLimit            int32    `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit           int32    `json:"outputTokenLimit,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
	// Vertex AI.
	VersionID string            `json:"versionId,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Live API messages.

type wireLiveClientMessage struct {
	Setup         *wireLiveClientSetup         `json:"setup,omitempty"`
	ClientContent *wireLiveClientContent       `json:"clientContent,omitempty"`
	RealtimeInput *wireLiveClientRealtimeInput `json:"realtimeInput,omitempty"`
	ToolResponse  *wireLiveClientToolResponse  `json:"toolResponse,omitempty"`
}

type wireLiveClientSetup struct {
	Model                    string                              `json:"model,omitempty"`
	GenerationConfig         *wireGenerationConfig               `json:"generationConfig,omitempty"`
	SystemInstruction        *wireContent                        `json:"systemInstruction,omitempty"`
	Tools                    []*wireTool                         `json:"tools,omitempty"`
	SessionResumption        *wireSessionResumptionConfig        `json:"sessionResumption,omitempty"`
	ContextWindowCompression *wireContextWindowCompressionConfig `json:"contextWindowCompression,omitempty"`
	InputAudioTranscription  *AudioTranscriptionConfig           `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *AudioTranscriptionConfig           `json:"outputAudioTranscription,omitempty"`
}

type wireSessionResumptionConfig struct {
	Handle      string `json:"handle,omitempty"`
	Transparent bool   `json:"transparent,omitempty"`
}

type wireContextWindowCompressionConfig struct {
	TriggerTokens *int64             `json:"triggerTokens,omitempty,string"`
	SlidingWindow *wireSlidingWindow `json:"slidingWindow,omitempty"`
}

type wireSlidingWindow struct {
	TargetTokens *int64 `json:"targetTokens,omitempty,string"`
}

type wireLiveClientContent struct {
	Turns        []*wireContent `json:"turns,omitempty"`
	TurnComplete bool           `json:"turnComplete,omitempty"`
}

type wireLiveClientRealtimeInput struct {
	MediaChunks []*wireBlob `json:"mediaChunks,omitempty"`
}

type wireLiveClientToolResponse struct {
	FunctionResponses []*wireFunctionResponse `json:"functionResponses,omitempty"`
}

type wireLiveServerMessage struct {
	SetupComplete           *struct{}                           `json:"setupComplete,omitempty"`
	ServerContent           *wireLiveServerContent              `json:"serverContent,omitempty"`
	ToolCall                *wireLiveServerToolCall             `json:"toolCall,omitempty"`
	ToolCallCancellation    *wireLiveServerToolCallCancellation `json:"toolCallCancellation,omitempty"`
	UsageMetadata           *wireUsageMetadata                  `json:"usageMetadata,omitempty"`
	GoAway                  *wireLiveServerGoAway               `json:"goAway,omitempty"`
	SessionResumptionUpdate *wireSessionResumptionUpdate        `json:"sessionResumptionUpdate,omitempty"`
}

type wireLiveServerContent struct {
	ModelTurn           *wireContent   `json:"modelTurn,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
	GenerationComplete  bool           `json:"generationComplete,omitempty"`
	InputTranscription  *Transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *Transcription `json:"outputTranscription,omitempty"`
}

type wireLiveServerToolCall struct {
	FunctionCalls []*wireFunctionCall `json:"functionCalls,omitempty"`
}

type wireLiveServerToolCallCancellation struct {
	IDs []string `json:"ids,omitempty"`
}

type wireUsageMetadata struct {
	PromptTokenCount        int32 `json:"promptTokenCount,omitempty"`
	CachedContentTokenCount int32 `json:"cachedContentTokenCount,omitempty"`
	// Gemini API name for the response token count.
	ResponseTokenCount int32 `json:"responseTokenCount,omitempty"`
	// Vertex AI name for the response token count.
	CandidatesTokenCount    int32  `json:"candidatesTokenCount,omitempty"`
	ToolUsePromptTokenCount int32  `json:"toolUsePromptTokenCount,omitempty"`
	ThoughtsTokenCount      int32  `json:"thoughtsTokenCount,omitempty"`
	TotalTokenCount         int32  `json:"totalTokenCount,omitempty"`
	TrafficType             string `json:"trafficType,omitempty"`
}

type wireLiveServerGoAway struct {
	TimeLeft string `json:"timeLeft,omitempty"`
}

type wireSessionResumptionUpdate struct {
	NewHandle                      string `json:"newHandle,omitempty"`
	Resumable                      bool   `json:"resumable,omitempty"`
	LastConsumedClientMessageIndex int64  `json:"lastConsumedClientMessageIndex,omitempty,string"`
}
