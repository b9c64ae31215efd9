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
	"strings"
)

// tModel returns the model resource name for the dialect.
//
// On the Gemini API a bare name gets a "models/" prefix. On Vertex AI a
// bare name refers to a Google publisher model, and "owner/name" to a model
// published by owner.
func tModel(be Backend, model string) (string, error) {
	if model == "" {
		return "", validationErrorf("model is required")
	}
	if be == BackendVertexAI {
		if strings.HasPrefix(model, "publishers/") || strings.HasPrefix(model, "projects/") || strings.HasPrefix(model, "models/") {
			return model, nil
		}
		if owner, name, ok := strings.Cut(model, "/"); ok {
			return "publishers/" + owner + "/models/" + name, nil
		}
		return "publishers/google/models/" + model, nil
	}
	if strings.HasPrefix(model, "models/") || strings.HasPrefix(model, "tunedModels/") {
		return model, nil
	}
	return "models/" + model, nil
}

// tLiveModel is [tModel] for the setup message of a live session. Vertex AI
// requires publisher models to be fully qualified by project and location,
// except in express mode where there is no project.
func tLiveModel(be Backend, project, location, model string) (string, error) {
	m, err := tModel(be, model)
	if err != nil {
		return "", err
	}
	if be == BackendVertexAI && project != "" && strings.HasPrefix(m, "publishers/") {
		m = "projects/" + project + "/locations/" + location + "/" + m
	}
	return m, nil
}

// tContents checks that contents has no nil entries.
func tContents(contents []*Content) ([]*Content, error) {
	for i, c := range contents {
		if c == nil {
			return nil, validationErrorf("contents[%d] is nil", i)
		}
	}
	return contents, nil
}

// tEmbedText returns the text of the first part of c, which Vertex AI
// embeds.
func tEmbedText(c *Content) (string, bool) {
	if c == nil || len(c.Parts) == 0 {
		return "", false
	}
	t, ok := c.Parts[0].(Text)
	return string(t), ok
}
