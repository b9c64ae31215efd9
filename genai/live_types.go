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

import "time"

// LiveConnectConfig configures a live session.
type LiveConnectConfig struct {
	// Deprecated: set the individual generation fields below instead. When
	// set, it is used as the base that those fields are applied over.
	GenerationConfig *GenerationConfig
	// The modalities the model responds with. Vertex AI defaults to audio.
	ResponseModalities []Modality
	Temperature        *float32
	TopP               *float32
	TopK               *float32
	MaxOutputTokens    int32
	Seed               *int32
	MediaResolution    MediaResolution
	SpeechConfig       *SpeechConfig
	// Enables affective dialog. Vertex AI only.
	EnableAffectiveDialog *bool

	// Instructions for the model to steer it toward better performance.
	SystemInstruction *Content
	// Tools the model may use.
	Tools []*Tool
	// Configures resumption of this session.
	SessionResumption *SessionResumptionConfig
	// Configures context window compression.
	ContextWindowCompression *ContextWindowCompressionConfig
	// Requests transcription of the audio input.
	InputAudioTranscription *AudioTranscriptionConfig
	// Requests transcription of the audio output.
	OutputAudioTranscription *AudioTranscriptionConfig
}

// SessionResumptionConfig configures session resumption.
type SessionResumptionConfig struct {
	// The handle of a previous session to resume. Empty starts a new session.
	Handle string
	// Requests that the server report the index of the last consumed client
	// message. Vertex AI only.
	Transparent bool
}

// ContextWindowCompressionConfig enables compression of the context window.
type ContextWindowCompressionConfig struct {
	// Number of tokens that triggers compression.
	TriggerTokens *int64
	// Compression by sliding window.
	SlidingWindow *SlidingWindow
}

// SlidingWindow discards the oldest turns once the context grows past the
// trigger.
type SlidingWindow struct {
	// Number of tokens to keep after compression.
	TargetTokens *int64
}

// AudioTranscriptionConfig enables audio transcription. It has no fields.
type AudioTranscriptionConfig struct{}

// Transcription is a piece of transcribed audio.
type Transcription struct {
	Text     string `json:"text,omitempty"`
	Finished bool   `json:"finished,omitempty"`
}

// LiveClientMessage is a message sent on a live session. Exactly one field
// is set.
type LiveClientMessage struct {
	Setup         *LiveClientSetup
	ClientContent *LiveClientContent
	RealtimeInput *LiveClientRealtimeInput
	ToolResponse  *LiveClientToolResponse
}

// LiveClientSetup is the first message of a live session.
type LiveClientSetup struct {
	// The fully qualified model resource name.
	Model                    string
	GenerationConfig         *GenerationConfig
	SystemInstruction        *Content
	Tools                    []*Tool
	SessionResumption        *SessionResumptionConfig
	ContextWindowCompression *ContextWindowCompressionConfig
	InputAudioTranscription  *AudioTranscriptionConfig
	OutputAudioTranscription *AudioTranscriptionConfig
}

// LiveClientContent appends turns to the conversation.
type LiveClientContent struct {
	Turns []*Content
	// Whether the server should start generating after these turns.
	TurnComplete bool
}

// LiveClientRealtimeInput streams media to the model.
type LiveClientRealtimeInput struct {
	MediaChunks []*Blob
}

// LiveClientToolResponse answers tool calls made by the model.
type LiveClientToolResponse struct {
	FunctionResponses []*FunctionResponse
}

// LiveServerMessage is a message received on a live session. At most one
// field is set.
type LiveServerMessage struct {
	SetupComplete           *LiveServerSetupComplete
	ServerContent           *LiveServerContent
	ToolCall                *LiveServerToolCall
	ToolCallCancellation    *LiveServerToolCallCancellation
	UsageMetadata           *UsageMetadata
	GoAway                  *LiveServerGoAway
	SessionResumptionUpdate *LiveServerSessionResumptionUpdate
}

// LiveServerSetupComplete acknowledges the setup message.
type LiveServerSetupComplete struct{}

// LiveServerContent is content generated by the model.
type LiveServerContent struct {
	ModelTurn *Content
	// The model has finished its turn.
	TurnComplete bool
	// The client interrupted the model's turn.
	Interrupted bool
	// The model has finished generating.
	GenerationComplete  bool
	InputTranscription  *Transcription
	OutputTranscription *Transcription
}

// LiveServerToolCall asks the client to run functions.
type LiveServerToolCall struct {
	FunctionCalls []*FunctionCall
}

// LiveServerToolCallCancellation cancels earlier tool calls.
type LiveServerToolCallCancellation struct {
	IDs []string
}

// UsageMetadata reports token usage on a live session.
type UsageMetadata struct {
	PromptTokenCount        int32
	CachedContentTokenCount int32
	ResponseTokenCount      int32
	ToolUsePromptTokenCount int32
	ThoughtsTokenCount      int32
	TotalTokenCount         int32
	// Vertex AI only.
	TrafficType string
}

// LiveServerGoAway warns that the server will close the connection soon.
type LiveServerGoAway struct {
	// Time left before the connection is terminated.
	TimeLeft time.Duration
}

// LiveServerSessionResumptionUpdate reports a new resumption handle.
type LiveServerSessionResumptionUpdate struct {
	NewHandle string
	Resumable bool
	// Index of the last client message included in the state of NewHandle.
	LastConsumedClientMessageIndex int64
}

// LiveClientContentInput is the argument of [Session.SendClientContent].
type LiveClientContentInput struct {
	// Turns to append to the conversation. May be empty.
	Turns []*Content
	// Whether the server should start generating. Nil means true.
	TurnComplete *bool
}

// LiveRealtimeInput is the argument of [Session.SendRealtimeInput].
type LiveRealtimeInput struct {
	// Required. A chunk of media.
	Media *Blob
}

// LiveToolResponseInput is the argument of [Session.SendToolResponse].
type LiveToolResponseInput struct {
	// Required. One response per function call being answered.
	FunctionResponses []*FunctionResponse
}
