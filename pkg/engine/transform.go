// Copyright 2025 un_pogaz
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// 🔤 TransformFunc is a per-item text transform applied after substitution.
type TransformFunc func(string) string

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
	titleCaser = cases.Title(language.Und)
)

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + lowerCaser.String(s[size:])
}

// 🏭 TransformFor returns the transform for a replace function. The
// function is assumed structurally valid; unknown values behave as
// identity.
func TransformFor(f operation.ReplaceFunc) TransformFunc {
	switch f {
	case operation.ReplaceFuncLowercase:
		return lowerCaser.String
	case operation.ReplaceFuncUppercase:
		return upperCaser.String
	case operation.ReplaceFuncTitlecase:
		return titleCaser.String
	case operation.ReplaceFuncCapitalize:
		return capitalize
	default:
		return func(s string) string { return s }
	}
}
