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

// A Tool is a piece of code that enables the system to interact with
// external systems to perform an action, or set of actions, outside of
// knowledge and scope of the model.
type Tool struct {
	// A list of FunctionDeclarations available to the model that can
	// be used for function calling.
	//
	// The model or system does not execute the function. Instead the defined
	// function may be returned as a [FunctionCall] with arguments to the
	// client side for execution. The next conversation turn may contain a
	// [FunctionResponse] with the result.
	FunctionDeclarations []*FunctionDeclaration
	// Optional. Enables the model to execute code as part of generation.
	CodeExecution *ToolCodeExecution
	// Optional. Google Search tool type.
	GoogleSearch *GoogleSearch
	// Optional. Enterprise web search tool type. Vertex AI only.
	EnterpriseWebSearch *EnterpriseWebSearch
}

// ToolCodeExecution enables the code execution tool.
type ToolCodeExecution struct{}

// GoogleSearch enables grounding with Google Search.
type GoogleSearch struct{}

// EnterpriseWebSearch enables grounding with enterprise web search.
type EnterpriseWebSearch struct{}

func (v *Tool) toWire(b Backend) (*wireTool, error) {
	if v == nil {
		return nil, nil
	}
	if v.EnterpriseWebSearch != nil && b != BackendVertexAI {
		return nil, unsupported("enterpriseWebSearch", b)
	}
	fds, err := transformSlice(v.FunctionDeclarations, func(fd *FunctionDeclaration) (*wireFunctionDeclaration, error) {
		return fd.toWire(), nil
	})
	if err != nil {
		return nil, err
	}
	return &wireTool{
		FunctionDeclarations: fds,
		CodeExecution:        v.CodeExecution,
		GoogleSearch:         v.GoogleSearch,
		EnterpriseWebSearch:  v.EnterpriseWebSearch,
	}, nil
}

func (Tool) fromWire(_ Backend, p *wireTool) *Tool {
	if p == nil {
		return nil
	}
	var fds []*FunctionDeclaration
	for _, fd := range p.FunctionDeclarations {
		fds = append(fds, (FunctionDeclaration{}).fromWire(fd))
	}
	return &Tool{
		FunctionDeclarations: fds,
		CodeExecution:        p.CodeExecution,
		GoogleSearch:         p.GoogleSearch,
		EnterpriseWebSearch:  p.EnterpriseWebSearch,
	}
}

// FunctionDeclaration is structured representation of a function declaration as defined by the
// [OpenAPI 3.03 specification](https://spec.openapis.org/oas/v3.0.3). Included
// in this declaration are the function name and parameters.
// Combine FunctionDeclarations into Tools for use in a request or live session.
type FunctionDeclaration struct {
	// Required. The name of the function.
	// Must be a-z, A-Z, 0-9, or contain underscores and dashes, with a maximum
	// length of 63.
	Name string
	// Required. A brief description of the function.
	Description string
	// Optional. Describes the parameters to this function.
	Parameters *Schema
	// Optional. Describes the output from this function.
	Response *Schema
}

func (v *FunctionDeclaration) toWire() *wireFunctionDeclaration {
	if v == nil {
		return nil
	}
	return &wireFunctionDeclaration{
		Name:        v.Name,
		Description: v.Description,
		Parameters:  v.Parameters,
		Response:    v.Response,
	}
}

func (FunctionDeclaration) fromWire(p *wireFunctionDeclaration) *FunctionDeclaration {
	if p == nil {
		return nil
	}
	return &FunctionDeclaration{
		Name:        p.Name,
		Description: p.Description,
		Parameters:  p.Parameters,
		Response:    p.Response,
	}
}

// NewFunctionDeclaration creates a [FunctionDeclaration] from a Go function.
//
// This function infers the schema ([FunctionDeclaration.Parameters]) from the
// function with [FunctionSchema].
// An error is returned if the schema cannot be inferred.
// It may still be possible to construct a usable schema for the function; if so,
// build a [FunctionDeclaration] by hand, setting its exported fields.
func NewFunctionDeclaration(name, description string, function any, paramNames ...string) (*FunctionDeclaration, error) {
	schema, err := FunctionSchema(function, paramNames...)
	if err != nil {
		return nil, err
	}
	return &FunctionDeclaration{
		Name:        name,
		Description: description,
		Parameters:  schema,
	}, nil
}
