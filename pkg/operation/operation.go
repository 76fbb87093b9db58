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

// Package operation defines the search/replace operation and menu value
// types, their validation, and the default-operation factory.
package operation

import (
	"fmt"
	"strings"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
)

// 🔍 SearchMode selects how the search text matches the source value.
type SearchMode string

const (
	// SearchModeCharacter matches the literal search text as a substring.
	SearchModeCharacter SearchMode = "character"
	// SearchModeRegex matches the search text as a regular expression.
	SearchModeRegex SearchMode = "regex"
	// SearchModeReplaceField unconditionally replaces the whole field.
	SearchModeReplaceField SearchMode = "replace_field"
)

// SearchModes lists the valid search modes.
var SearchModes = []SearchMode{SearchModeCharacter, SearchModeRegex, SearchModeReplaceField}

// 🔄 ReplaceMode selects how the computed value combines with the
// pre-existing destination value.
type ReplaceMode string

const (
	ReplaceModeReplace ReplaceMode = "replace"
	ReplaceModePrepend ReplaceMode = "prepend"
	ReplaceModeAppend  ReplaceMode = "append"
)

// ReplaceModes lists the valid replace modes.
var ReplaceModes = []ReplaceMode{ReplaceModeReplace, ReplaceModePrepend, ReplaceModeAppend}

// 🔤 ReplaceFunc is the post-substitution case transform.
type ReplaceFunc string

const (
	ReplaceFuncIdentity   ReplaceFunc = "identity"
	ReplaceFuncLowercase  ReplaceFunc = "lowercase"
	ReplaceFuncUppercase  ReplaceFunc = "uppercase"
	ReplaceFuncTitlecase  ReplaceFunc = "titlecase"
	ReplaceFuncCapitalize ReplaceFunc = "capitalize"
)

// ReplaceFuncs lists the valid replace functions.
var ReplaceFuncs = []ReplaceFunc{
	ReplaceFuncIdentity, ReplaceFuncLowercase, ReplaceFuncUppercase,
	ReplaceFuncTitlecase, ReplaceFuncCapitalize,
}

// WildcardIdentifier replaces the entire identifier set when used as the
// destination identifier type with a non-identifier source.
const WildcardIdentifier = "*"

// 📦 Operation is one configured search/replace rule.
type Operation struct {
	// Name identifies a shared, reusable operation; empty for ad-hoc ones.
	Name   string `json:"name" yaml:"name"`
	Active bool   `json:"active" yaml:"active"`

	// SearchField is a field name or the {template} sentinel.
	SearchField string `json:"search_field" yaml:"search_field"`
	// Template is the template source, used only with the sentinel.
	Template string `json:"s_r_template" yaml:"s_r_template"`

	SearchMode    SearchMode `json:"search_mode" yaml:"search_mode"`
	SearchFor     string     `json:"search_for" yaml:"search_for"`
	CaseSensitive bool       `json:"case_sensitive" yaml:"case_sensitive"`

	ReplaceWith string      `json:"replace_with" yaml:"replace_with"`
	ReplaceFunc ReplaceFunc `json:"replace_func" yaml:"replace_func"`

	// DestinationField is empty for "same as source".
	DestinationField string      `json:"destination_field" yaml:"destination_field"`
	ReplaceMode      ReplaceMode `json:"replace_mode" yaml:"replace_mode"`
	CommaSeparated   bool        `json:"comma_separated" yaml:"comma_separated"`

	SourceIdentType string `json:"s_r_src_ident" yaml:"s_r_src_ident"`
	DestIdentType   string `json:"s_r_dst_ident" yaml:"s_r_dst_ident"`

	// Display-window bounds for multi-valued previews.
	ResultsCount      int    `json:"results_count" yaml:"results_count"`
	StartingFrom      int    `json:"starting_from" yaml:"starting_from"`
	MultipleSeparator string `json:"multiple_separator" yaml:"multiple_separator"`

	// Err is a validation failure captured when the operation was created,
	// persisted as kind + message, never a live error value.
	Err *Error `json:"s_r_error,omitempty" yaml:"s_r_error,omitempty"`
}

// 🏭 Default returns the baseline "unconfigured" operation. Callers needing
// a comparison default request a fresh one per library context; there is
// no cached singleton to invalidate on library switch.
func Default() Operation {
	return Operation{
		Active:            true,
		SearchMode:        SearchModeCharacter,
		ReplaceFunc:       ReplaceFuncIdentity,
		ReplaceMode:       ReplaceModeReplace,
		CommaSeparated:    true,
		ResultsCount:      999,
		StartingFrom:      1,
		MultipleSeparator: " ::: ",
	}
}

// IsEmpty reports whether the operation is indistinguishable from the
// default baseline, ignoring the active flag and any captured error.
func (op Operation) IsEmpty(def Operation) bool {
	a, b := op, def
	a.Active, b.Active = true, true
	a.Err, b.Err = nil, nil
	return a == b
}

// 📝 String renders the operation in the compact form used by logs:
// name:"…" => "source" | "mode" | "search" | "replace".
func (op Operation) String() string {
	column := op.SearchField
	if op.DestinationField != "" && op.DestinationField != column {
		column += " => " + op.DestinationField
	}

	searchFor := op.SearchFor
	if op.SearchMode == SearchModeReplaceField {
		searchFor = "*"
	}
	replaceWith := op.ReplaceWith
	if op.SearchField == library.IdentifiersField {
		searchFor = op.SourceIdentType + ":" + searchFor
		dst := op.DestIdentType
		if dst == "" {
			dst = op.SourceIdentType
		}
		replaceWith = dst + ":" + strings.TrimSpace(replaceWith)
	}

	parts := []string{column}
	if op.Template != "" {
		parts = append(parts, op.Template)
	}
	parts = append(parts, string(op.SearchMode), searchFor, replaceWith)

	prefix := ""
	if op.Name != "" {
		prefix = fmt.Sprintf("name:%q => ", op.Name)
	}
	return prefix + `"` + strings.Join(parts, `" | "`) + `"`
}

// CleanEmpty drops operations indistinguishable from the default baseline.
func CleanEmpty(ops []Operation, def Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if !op.IsEmpty(def) {
			out = append(out, op)
		}
	}
	return out
}

// ActiveOperations filters out empty and inactive operations.
func ActiveOperations(ops []Operation, def Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, op := range CleanEmpty(ops, def) {
		if op.Active {
			out = append(out, op)
		}
	}
	return out
}
