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

// gen-examples copies the documentation snippets in internal/samples to
// genai/example_test.go. Snippet region markers ([START ...] and [END ...]
// comment lines, used to cut snippets for the website) and go:generate
// directives are dropped; everything else is kept as is.
//
// It's invoked with a go:generate directive in the samples file.
package main

import (
	"bytes"
	"flag"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"log"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	inPath := flag.String("in", "", "input file path")
	outPath := flag.String("out", "", "output file path")
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		log.Fatalf("got empty -in (%q) or -out (%q)", *inPath, *outPath)
	}
	src, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatal(err)
	}
	out, err := generate(filepath.Base(*inPath), src)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		log.Fatal(err)
	}
}

// generate returns the example file for the samples in src.
func generate(name string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	var groups []*ast.CommentGroup
	for _, cg := range file.Comments {
		if stripSnippetMarkers(cg) {
			groups = append(groups, cg)
		}
	}
	file.Comments = groups

	var buf bytes.Buffer
	buf.WriteString("// This file was generated from internal/samples/" + name + ". DO NOT EDIT.\n\n")
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}

// stripSnippetMarkers removes the comment lines between [START and [END,
// inclusive, and go:generate directives from cg. It reports whether any
// comment is left.
func stripSnippetMarkers(cg *ast.CommentGroup) bool {
	var kept []*ast.Comment
	inSnippetMarker := false
	for _, c := range cg.List {
		switch {
		case strings.Contains(c.Text, "[START"):
			inSnippetMarker = true
		case strings.Contains(c.Text, "[END"):
			inSnippetMarker = false
		case inSnippetMarker, strings.HasPrefix(c.Text, "//go:generate"):
		default:
			kept = append(kept, c)
		}
	}
	cg.List = kept
	return len(kept) > 0
}
