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

package gensupport

import (
	"runtime"
	"strings"
	"unicode"

	"github.com/wavybaby5280/js-genai-wavy-sub000/internal"
)

// GoVersion returns the Go runtime version in semver form. The returned
// string has no whitespace.
func GoVersion() string {
	return goVersion
}

// LibraryLabel identifies this library and the Go runtime to the service.
// It is sent as both the User-Agent and the x-goog-api-client header.
func LibraryLabel() string {
	return "google-genai-sdk/" + internal.Version + " gl-go/" + goVersion
}

var goVersion = goVer(runtime.Version())

const develPrefix = "devel +"

func goVer(s string) string {
	if rest, ok := strings.CutPrefix(s, develPrefix); ok {
		if p := strings.IndexFunc(rest, unicode.IsSpace); p >= 0 {
			rest = rest[:p]
		}
		return rest
	}
	if !strings.HasPrefix(s, "go1") {
		return ""
	}
	s = s[2:]
	var prerelease string
	if p := strings.IndexFunc(s, notSemverRune); p >= 0 {
		s, prerelease = s[:p], s[p:]
	}
	switch {
	case strings.HasSuffix(s, "."):
		s += "0"
	case strings.Count(s, ".") < 2:
		s += ".0"
	}
	if prerelease != "" {
		s += "-" + prerelease
	}
	return s
}

func notSemverRune(r rune) bool {
	return !strings.ContainsRune("0123456789.", r)
}
