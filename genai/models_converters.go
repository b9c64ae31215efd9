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

func generateContentRequestToWire(be Backend, contents []*Content, config *GenerateContentConfig) (*wireGenerateContentRequest, error) {
	contents, err := tContents(contents)
	if err != nil {
		return nil, err
	}
	wcs, err := contentsToWire(be, contents)
	if err != nil {
		return nil, err
	}
	req := &wireGenerateContentRequest{Contents: wcs}
	if config == nil {
		return req, nil
	}
	if len(config.Labels) > 0 && be != BackendVertexAI {
		return nil, unsupported("labels", be)
	}
	if req.SystemInstruction, err = config.SystemInstruction.toWire(be); err != nil {
		return nil, err
	}
	if !config.GenerationConfig.isZero() {
		if req.GenerationConfig, err = config.GenerationConfig.toWire(be); err != nil {
			return nil, err
		}
	}
	if req.SafetySettings, err = safetySettingsToWire(be, config.SafetySettings); err != nil {
		return nil, err
	}
	if req.Tools, err = toolsToWire(be, config.Tools); err != nil {
		return nil, err
	}
	req.ToolConfig = config.ToolConfig
	req.Labels = config.Labels
	req.CachedContent = config.CachedContent
	return req, nil
}

func countTokensRequestToWire(be Backend, contents []*Content, config *CountTokensConfig) (*wireCountTokensRequest, error) {
	contents, err := tContents(contents)
	if err != nil {
		return nil, err
	}
	wcs, err := contentsToWire(be, contents)
	if err != nil {
		return nil, err
	}
	req := &wireCountTokensRequest{Contents: wcs}
	if config == nil {
		return req, nil
	}
	if be != BackendVertexAI {
		switch {
		case config.SystemInstruction != nil:
			return nil, unsupported("systemInstruction", be)
		case config.Tools != nil:
			return nil, unsupported("tools", be)
		case config.GenerationConfig != nil:
			return nil, unsupported("generationConfig", be)
		}
	}
	if req.SystemInstruction, err = config.SystemInstruction.toWire(be); err != nil {
		return nil, err
	}
	if req.Tools, err = toolsToWire(be, config.Tools); err != nil {
		return nil, err
	}
	if req.GenerationConfig, err = config.GenerationConfig.toWire(be); err != nil {
		return nil, err
	}
	return req, nil
}

func (CountTokensResponse) fromWire(w *wireCountTokensResponse) *CountTokensResponse {
	return &CountTokensResponse{
		TotalTokens:             w.TotalTokens,
		CachedContentTokenCount: w.CachedContentTokenCount,
	}
}

// embedContentRequestToWire returns the method suffix and request body for an
// embedding call. The Gemini API batches one request per content. Vertex AI
// predicts one instance per content, embedding the text of its first part.
func embedContentRequestToWire(be Backend, model string, contents []*Content, config *EmbedContentConfig) (method string, body any, err error) {
	if _, err := tContents(contents); err != nil {
		return "", nil, err
	}
	if config == nil {
		config = &EmbedContentConfig{}
	}
	taskType := string(config.TaskType)
	if config.Title != "" && taskType == "" {
		taskType = string(TaskTypeRetrievalDocument)
	}
	if be == BackendVertexAI {
		req := &wirePredictEmbedRequest{Instances: []*wireEmbedInstance{}}
		for i, c := range contents {
			text, ok := tEmbedText(c)
			if !ok {
				return "", nil, validationErrorf("contents[%d]: Vertex AI embeds text only, and the first part is not text", i)
			}
			req.Instances = append(req.Instances, &wireEmbedInstance{
				Content:  text,
				TaskType: taskType,
				Title:    config.Title,
				MIMEType: config.MIMEType,
			})
		}
		if config.OutputDimensionality != nil || config.AutoTruncate != nil {
			req.Parameters = &wireEmbedParameters{
				OutputDimensionality: config.OutputDimensionality,
				AutoTruncate:         config.AutoTruncate,
			}
		}
		return "predict", req, nil
	}

	switch {
	case config.MIMEType != "":
		return "", nil, unsupported("mimeType", be)
	case config.AutoTruncate != nil:
		return "", nil, unsupported("autoTruncate", be)
	}
	req := &wireBatchEmbedContentsRequest{Requests: []*wireEmbedContentRequest{}}
	for _, c := range contents {
		wc, err := c.toWire(be)
		if err != nil {
			return "", nil, err
		}
		req.Requests = append(req.Requests, &wireEmbedContentRequest{
			Model:                model,
			Content:              wc,
			TaskType:             taskType,
			Title:                config.Title,
			OutputDimensionality: config.OutputDimensionality,
		})
	}
	return "batchEmbedContents", req, nil
}

func (EmbedContentResponse) fromMLDev(w *wireBatchEmbedContentsResponse) *EmbedContentResponse {
	r := &EmbedContentResponse{}
	for _, e := range w.Embeddings {
		if e == nil {
			continue
		}
		r.Embeddings = append(r.Embeddings, &ContentEmbedding{Values: e.Values})
	}
	return r
}

func (EmbedContentResponse) fromVertex(w *wirePredictEmbedResponse) *EmbedContentResponse {
	r := &EmbedContentResponse{}
	for _, p := range w.Predictions {
		if p == nil || p.Embeddings == nil {
			continue
		}
		e := &ContentEmbedding{Values: p.Embeddings.Values}
		if s := p.Embeddings.Statistics; s != nil {
			e.Statistics = &ContentEmbeddingStatistics{Truncated: s.Truncated, TokenCount: s.TokenCount}
		}
		r.Embeddings = append(r.Embeddings, e)
	}
	if w.Metadata != nil {
		r.Metadata = &EmbedContentMetadata{BillableCharacterCount: w.Metadata.BillableCharacterCount}
	}
	return r
}

func (Model) fromWire(be Backend, w *wireModel) *Model {
	m := &Model{
		Name:        w.Name,
		DisplayName: w.DisplayName,
		Description: w.Description,
	}
	if be == BackendVertexAI {
		m.Version = w.VersionID
		m.Labels = w.Labels
		return m
	}
	m.Version = w.Version
	m.InputTokenLimit = w.InputTokenLimit
	m.OutputTokenLimit = w.OutputTokenLimit
	m.SupportedActions = w.SupportedGenerationMethods
	return m
}
