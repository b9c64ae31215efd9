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
	"fmt"
	"reflect"
)

// Type is the data type of a [Schema].
type Type string

const (
	TypeUnspecified Type = "TYPE_UNSPECIFIED"
	TypeString      Type = "STRING"
	TypeNumber      Type = "NUMBER"
	TypeInteger     Type = "INTEGER"
	TypeBoolean     Type = "BOOLEAN"
	TypeArray       Type = "ARRAY"
	TypeObject      Type = "OBJECT"
)

// The Schema object allows the definition of input and output data types.
// These types can be objects, but also primitives and arrays.
// Represents a select subset of an [OpenAPI 3.0 schema
// object](https://spec.openapis.org/oas/v3.0.3#schema).
//
// Schema is sent unchanged to both backends.
type Schema struct {
	// Required. Data type.
	Type Type `json:"type,omitempty"`
	// Optional. The format of the data. This is used only for primitive datatypes.
	// Supported formats:
	//
	//	for NUMBER type: float, double
	//	for INTEGER type: int32, int64
	Format string `json:"format,omitempty"`
	// Optional. A brief description of the parameter. This could contain examples
	// of use. Parameter description may be formatted as Markdown.
	Description string `json:"description,omitempty"`
	// Optional. Indicates if the value may be null.
	Nullable bool `json:"nullable,omitempty"`
	// Optional. Possible values of the element of Type.STRING with enum format.
	Enum []string `json:"enum,omitempty"`
	// Optional. Schema of the elements of Type.ARRAY.
	Items *Schema `json:"items,omitempty"`
	// Optional. Properties of Type.OBJECT.
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Optional. Required properties of Type.OBJECT.
	Required []string `json:"required,omitempty"`
	// Optional. The value should be validated against any (one or more) of the
	// subschemas in the list.
	AnyOf []*Schema `json:"anyOf,omitempty"`
}

// FunctionSchema returns a Schema for a Go function.
// Not all functions can be represented as Schemas.
// At present, variadic functions are not supported, and parameters
// must be of builtin, pointer, slice or array type.
//
// Parameter names are not available to the program. They can be supplied
// as arguments. If omitted, the names "p0", "p1", ... are used.
func FunctionSchema(function any, paramNames ...string) (*Schema, error) {
	t := reflect.TypeOf(function)
	if t == nil || t.Kind() != reflect.Func {
		return nil, fmt.Errorf("value of type %T is not a function", function)
	}
	if t.IsVariadic() {
		return nil, errors.New("variadic functions not supported")
	}
	params := map[string]*Schema{}
	var req []string
	for i := 0; i < t.NumIn(); i++ {
		var name string
		if i < len(paramNames) {
			name = paramNames[i]
		} else {
			name = fmt.Sprintf("p%d", i)
		}
		s, err := typeSchema(t.In(i))
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		params[name] = s
		// All parameters are required.
		req = append(req, name)
	}
	return &Schema{
		Type:       TypeObject,
		Properties: params,
		Required:   req,
	}, nil
}

func typeSchema(t reflect.Type) (_ *Schema, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("%s: %w", t, err)
		}
	}()
	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: TypeBoolean}, nil
	case reflect.String:
		return &Schema{Type: TypeString}, nil
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return &Schema{Type: TypeInteger, Format: "int64"}, nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return &Schema{Type: TypeInteger, Format: "int32"}, nil
	case reflect.Float32:
		return &Schema{Type: TypeNumber, Format: "float"}, nil
	case reflect.Float64, reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return &Schema{Type: TypeNumber, Format: "double"}, nil
	case reflect.Slice, reflect.Array:
		elemSchema, err := typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: TypeArray, Items: elemSchema}, nil
	case reflect.Pointer:
		// Treat a *T as a nullable T.
		s, err := typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		s.Nullable = true
		return s, nil
	default:
		return nil, errors.New("not supported")
	}
}
