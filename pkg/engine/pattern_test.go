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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		name          string
		searchFor     string
		mode          operation.SearchMode
		caseSensitive bool
		wantErr       bool
	}{
		{
			name:      "character",
			searchFor: "a.b",
			mode:      operation.SearchModeCharacter,
		},
		{
			name:      "regex",
			searchFor: `\d+`,
			mode:      operation.SearchModeRegex,
		},
		{
			name:      "replace_field_ignores_search_text",
			searchFor: "",
			mode:      operation.SearchModeReplaceField,
		},
		{
			name:      "empty_search_text",
			searchFor: "",
			mode:      operation.SearchModeCharacter,
			wantErr:   true,
		},
		{
			name:      "invalid_regex",
			searchFor: "(",
			mode:      operation.SearchModeRegex,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePattern(tt.searchFor, tt.mode, tt.caseSensitive)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsPattern(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p)
		})
	}
}

func TestPatternApply(t *testing.T) {
	tests := []struct {
		name          string
		searchFor     string
		mode          operation.SearchMode
		caseSensitive bool
		replaceWith   string
		fn            TransformFunc
		in            []string
		want          []string
	}{
		{
			name:        "character_literal_dot",
			searchFor:   "a.b",
			mode:        operation.SearchModeCharacter,
			replaceWith: "X",
			in:          []string{"a.b and axb"},
			want:        []string{"X and axb"},
		},
		{
			name:        "case_insensitive_matches_all",
			searchFor:   "the",
			mode:        operation.SearchModeCharacter,
			replaceWith: "THE",
			in:          []string{"The cat in the hat"},
			want:        []string{"THE cat in THE hat"},
		},
		{
			name:          "case_sensitive_skips_mismatch",
			searchFor:     "the",
			mode:          operation.SearchModeCharacter,
			caseSensitive: true,
			replaceWith:   "THE",
			in:            []string{"The cat in the hat"},
			want:          []string{"The cat in THE hat"},
		},
		{
			name:        "regex_backreference",
			searchFor:   `(\w+), (\w+)`,
			mode:        operation.SearchModeRegex,
			replaceWith: "$2 $1",
			in:          []string{"Herbert, Frank"},
			want:        []string{"Frank Herbert"},
		},
		{
			name:        "regex_transform_applies_per_match",
			searchFor:   "cat",
			mode:        operation.SearchModeRegex,
			replaceWith: "$0",
			fn:          TransformFor(operation.ReplaceFuncUppercase),
			in:          []string{"the cat in the hat"},
			want:        []string{"the CAT in the hat"},
		},
		{
			name:        "character_transform_applies_to_whole_value",
			searchFor:   "cat",
			mode:        operation.SearchModeCharacter,
			replaceWith: "cat",
			fn:          TransformFor(operation.ReplaceFuncUppercase),
			in:          []string{"the cat in the hat"},
			want:        []string{"THE CAT IN THE HAT"},
		},
		{
			name:        "replace_field_swallows_everything",
			mode:        operation.SearchModeReplaceField,
			replaceWith: "new value",
			in:          []string{"old\nmulti-line\nvalue", ""},
			want:        []string{"new value", "new value"},
		},
		{
			name:        "no_match_is_identity",
			searchFor:   "zzz",
			mode:        operation.SearchModeCharacter,
			replaceWith: "x",
			in:          []string{"abc"},
			want:        []string{"abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompilePattern(tt.searchFor, tt.mode, tt.caseSensitive)
			require.NoError(t, err)

			got, err := p.Apply(tt.in, tt.replaceWith, tt.fn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformFor(t *testing.T) {
	tests := []struct {
		fn   operation.ReplaceFunc
		in   string
		want string
	}{
		{operation.ReplaceFuncIdentity, "The CAT", "The CAT"},
		{operation.ReplaceFuncLowercase, "The CAT", "the cat"},
		{operation.ReplaceFuncUppercase, "The cat", "THE CAT"},
		{operation.ReplaceFuncTitlecase, "the cat runs", "The Cat Runs"},
		{operation.ReplaceFuncCapitalize, "the CAT runs", "The cat runs"},
	}
	for _, tt := range tests {
		t.Run(string(tt.fn), func(t *testing.T) {
			assert.Equal(t, tt.want, TransformFor(tt.fn)(tt.in))
		})
	}
}
