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
	"log/slog"
	"time"
)

// liveSetup builds the setup message for a session on model. Vertex AI
// sessions respond with audio unless the config names other modalities.
// config is not modified.
func liveSetup(be Backend, model string, config *LiveConnectConfig, logger *slog.Logger) *LiveClientSetup {
	setup := &LiveClientSetup{Model: model}
	if config == nil {
		config = &LiveConnectConfig{}
	}
	var gc GenerationConfig
	if config.GenerationConfig != nil {
		logger.Warn("LiveConnectConfig.GenerationConfig is deprecated; set the generation fields on LiveConnectConfig instead")
		gc = *config.GenerationConfig
	}
	if config.ResponseModalities != nil {
		gc.ResponseModalities = config.ResponseModalities
	}
	if config.Temperature != nil {
		gc.Temperature = config.Temperature
	}
	if config.TopP != nil {
		gc.TopP = config.TopP
	}
	if config.TopK != nil {
		gc.TopK = config.TopK
	}
	if config.MaxOutputTokens != 0 {
		gc.MaxOutputTokens = config.MaxOutputTokens
	}
	if config.Seed != nil {
		gc.Seed = config.Seed
	}
	if config.MediaResolution != "" {
		gc.MediaResolution = config.MediaResolution
	}
	if config.SpeechConfig != nil {
		gc.SpeechConfig = config.SpeechConfig
	}
	if config.EnableAffectiveDialog != nil {
		gc.EnableAffectiveDialog = config.EnableAffectiveDialog
	}
	if be == BackendVertexAI && len(gc.ResponseModalities) == 0 {
		gc.ResponseModalities = []Modality{ModalityAudio}
	}
	if !gc.isZero() {
		setup.GenerationConfig = &gc
	}
	setup.SystemInstruction = config.SystemInstruction
	setup.Tools = config.Tools
	setup.SessionResumption = config.SessionResumption
	setup.ContextWindowCompression = config.ContextWindowCompression
	setup.InputAudioTranscription = config.InputAudioTranscription
	setup.OutputAudioTranscription = config.OutputAudioTranscription
	return setup
}

func (m *LiveClientMessage) toWire(be Backend) (*wireLiveClientMessage, error) {
	w := &wireLiveClientMessage{}
	var err error
	switch {
	case m.Setup != nil:
		w.Setup, err = m.Setup.toWire(be)
	case m.ClientContent != nil:
		var turns []*wireContent
		if turns, err = contentsToWire(be, m.ClientContent.Turns); err == nil {
			w.ClientContent = &wireLiveClientContent{Turns: turns, TurnComplete: m.ClientContent.TurnComplete}
		}
	case m.RealtimeInput != nil:
		var chunks []*wireBlob
		if chunks, err = transformSlice(m.RealtimeInput.MediaChunks, func(b *Blob) (*wireBlob, error) {
			return b.toWire(be)
		}); err == nil {
			w.RealtimeInput = &wireLiveClientRealtimeInput{MediaChunks: chunks}
		}
	case m.ToolResponse != nil:
		var frs []*wireFunctionResponse
		if frs, err = transformSlice(m.ToolResponse.FunctionResponses, func(fr *FunctionResponse) (*wireFunctionResponse, error) {
			return fr.toWire(be)
		}); err == nil {
			w.ToolResponse = &wireLiveClientToolResponse{FunctionResponses: frs}
		}
	default:
		err = validationErrorf("live client message is empty")
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *LiveClientSetup) toWire(be Backend) (*wireLiveClientSetup, error) {
	w := &wireLiveClientSetup{
		Model:                    s.Model,
		InputAudioTranscription:  s.InputAudioTranscription,
		OutputAudioTranscription: s.OutputAudioTranscription,
	}
	var err error
	if w.GenerationConfig, err = s.GenerationConfig.toWire(be); err != nil {
		return nil, err
	}
	if w.SystemInstruction, err = s.SystemInstruction.toWire(be); err != nil {
		return nil, err
	}
	if w.Tools, err = toolsToWire(be, s.Tools); err != nil {
		return nil, err
	}
	if sr := s.SessionResumption; sr != nil {
		if sr.Transparent && be != BackendVertexAI {
			return nil, unsupported("transparent", be)
		}
		w.SessionResumption = &wireSessionResumptionConfig{Handle: sr.Handle, Transparent: sr.Transparent}
	}
	if cwc := s.ContextWindowCompression; cwc != nil {
		w.ContextWindowCompression = &wireContextWindowCompressionConfig{TriggerTokens: cwc.TriggerTokens}
		if cwc.SlidingWindow != nil {
			w.ContextWindowCompression.SlidingWindow = &wireSlidingWindow{TargetTokens: cwc.SlidingWindow.TargetTokens}
		}
	}
	return w, nil
}

// liveClientContent builds a clientContent message. A nil TurnComplete
// means true.
func liveClientContent(in LiveClientContentInput) (*LiveClientMessage, error) {
	turns, err := tContents(in.Turns)
	if err != nil {
		return nil, err
	}
	turnComplete := true
	if in.TurnComplete != nil {
		turnComplete = *in.TurnComplete
	}
	return &LiveClientMessage{ClientContent: &LiveClientContent{
		Turns:        turns,
		TurnComplete: turnComplete,
	}}, nil
}

func liveRealtimeInput(in LiveRealtimeInput) (*LiveClientMessage, error) {
	if in.Media == nil {
		return nil, validationErrorf("media is required")
	}
	return &LiveClientMessage{RealtimeInput: &LiveClientRealtimeInput{
		MediaChunks: []*Blob{in.Media},
	}}, nil
}

// liveToolResponse builds a toolResponse message. On the Gemini API every
// response must carry the id of the call it answers.
func liveToolResponse(be Backend, in LiveToolResponseInput) (*LiveClientMessage, error) {
	if len(in.FunctionResponses) == 0 {
		return nil, validationErrorf("functionResponses is required")
	}
	for i, fr := range in.FunctionResponses {
		switch {
		case fr == nil:
			return nil, validationErrorf("functionResponses[%d] is nil", i)
		case fr.Name == "":
			return nil, validationErrorf("functionResponses[%d]: name is required", i)
		case fr.Response == nil:
			return nil, validationErrorf("functionResponses[%d]: response is required", i)
		case fr.ID == "" && be != BackendVertexAI:
			return nil, &ValidationError{Message: ErrFunctionResponseID.Error(), err: ErrFunctionResponseID}
		}
	}
	return &LiveClientMessage{ToolResponse: &LiveClientToolResponse{
		FunctionResponses: in.FunctionResponses,
	}}, nil
}

func (LiveServerMessage) fromWire(be Backend, w *wireLiveServerMessage) (*LiveServerMessage, error) {
	m := &LiveServerMessage{}
	if w.SetupComplete != nil {
		m.SetupComplete = &LiveServerSetupComplete{}
	}
	if sc := w.ServerContent; sc != nil {
		turn, err := (Content{}).fromWire(be, sc.ModelTurn)
		if err != nil {
			return nil, err
		}
		m.ServerContent = &LiveServerContent{
			ModelTurn:           turn,
			TurnComplete:        sc.TurnComplete,
			Interrupted:         sc.Interrupted,
			GenerationComplete:  sc.GenerationComplete,
			InputTranscription:  sc.InputTranscription,
			OutputTranscription: sc.OutputTranscription,
		}
	}
	if tc := w.ToolCall; tc != nil {
		m.ToolCall = &LiveServerToolCall{}
		for _, fc := range tc.FunctionCalls {
			m.ToolCall.FunctionCalls = append(m.ToolCall.FunctionCalls, (FunctionCall{}).fromWire(be, fc))
		}
	}
	if tcc := w.ToolCallCancellation; tcc != nil {
		m.ToolCallCancellation = &LiveServerToolCallCancellation{IDs: tcc.IDs}
	}
	if um := w.UsageMetadata; um != nil {
		m.UsageMetadata = (UsageMetadata{}).fromWire(be, um)
	}
	if ga := w.GoAway; ga != nil {
		m.GoAway = &LiveServerGoAway{}
		if ga.TimeLeft != "" {
			d, err := time.ParseDuration(ga.TimeLeft)
			if err != nil {
				return nil, &ProtocolError{Reason: fmt.Sprintf("bad goAway timeLeft %q", ga.TimeLeft), Err: err}
			}
			m.GoAway.TimeLeft = d
		}
	}
	if sru := w.SessionResumptionUpdate; sru != nil {
		m.SessionResumptionUpdate = &LiveServerSessionResumptionUpdate{
			NewHandle:                      sru.NewHandle,
			Resumable:                      sru.Resumable,
			LastConsumedClientMessageIndex: sru.LastConsumedClientMessageIndex,
		}
	}
	return m, nil
}

func (UsageMetadata) fromWire(be Backend, w *wireUsageMetadata) *UsageMetadata {
	u := &UsageMetadata{
		PromptTokenCount:        w.PromptTokenCount,
		CachedContentTokenCount: w.CachedContentTokenCount,
		ToolUsePromptTokenCount: w.ToolUsePromptTokenCount,
		ThoughtsTokenCount:      w.ThoughtsTokenCount,
		TotalTokenCount:         w.TotalTokenCount,
	}
	if be == BackendVertexAI {
		u.ResponseTokenCount = w.CandidatesTokenCount
		u.TrafficType = w.TrafficType
	} else {
		u.ResponseTokenCount = w.ResponseTokenCount
	}
	return u
}
