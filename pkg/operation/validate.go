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

package operation

import (
	"fmt"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
)

// 🏷️ ErrorKind classifies an operation validation failure.
type ErrorKind string

const (
	// KindStructural marks a missing key or out-of-domain enum value,
	// detected without any library context.
	KindStructural ErrorKind = "structural"
	// KindSchema marks a reference to a field or identifier type absent
	// from the current library; re-checked whenever the library changes.
	KindSchema ErrorKind = "schema"
)

// ⚠️ Error is a validation failure that can cross a persistence boundary:
// an error kind plus a message, never a live error value.
type Error struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func structuralError(format string, args ...any) *Error {
	return &Error{Kind: KindStructural, Message: fmt.Sprintf(format, args...)}
}

func schemaError(format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Message: fmt.Sprintf(format, args...)}
}

// requiredKeys are the keys an operation record must carry. Missing keys
// are only observable when decoding from a raw map; a zero struct field is
// indistinguishable from an explicit zero.
var requiredKeys = []string{
	"name",
	"case_sensitive",
	"comma_separated",
	"destination_field",
	"multiple_separator",
	"replace_func",
	"replace_mode",
	"replace_with",
	"results_count",
	"s_r_dst_ident",
	"s_r_src_ident",
	"s_r_template",
	"search_field",
	"search_for",
	"search_mode",
	"starting_from",
}

// ✅ ValidateStructure checks the operation against its own declared
// domains. It never consults the library.
func (op Operation) ValidateStructure() *Error {
	if op.Err != nil {
		return op.Err
	}

	ok := false
	for _, f := range ReplaceFuncs {
		if op.ReplaceFunc == f {
			ok = true
			break
		}
	}
	if !ok {
		return structuralError("the operation field %q contains an invalid value (%s)", "replace_func", op.ReplaceFunc)
	}

	ok = false
	for _, m := range ReplaceModes {
		if op.ReplaceMode == m {
			ok = true
			break
		}
	}
	if !ok {
		return structuralError("the operation field %q contains an invalid value (%s)", "replace_mode", op.ReplaceMode)
	}

	ok = false
	for _, m := range SearchModes {
		if op.SearchMode == m {
			ok = true
			break
		}
	}
	if !ok {
		return structuralError("the operation field %q contains an invalid value (%s)", "search_mode", op.SearchMode)
	}

	if op.SearchField == "" {
		return structuralError(`you must specify a "Search field"`)
	}
	return nil
}

// ✅ ValidateSchema checks the operation against the current library:
// the named fields and identifier types must exist. Call it after
// ValidateStructure; it assumes the enum domains hold.
func (op Operation) ValidateSchema(schema *library.Schema, identTypes []string) *Error {
	if !schema.CanSearch(op.SearchField) {
		return schemaError("search field %q is not available for this library", op.SearchField)
	}
	if op.DestinationField != "" && !schema.CanWrite(op.DestinationField) {
		return schemaError("destination field %q is not available for this library", op.DestinationField)
	}

	if op.SearchField == library.IdentifiersField && op.SourceIdentType != "" {
		found := false
		for _, t := range identTypes {
			if t == op.SourceIdentType {
				found = true
				break
			}
		}
		if !found {
			return schemaError("identifier type %q is not available for this library", op.SourceIdentType)
		}
	}
	return nil
}

// ✅ Validate runs both validation passes, structural first.
func (op Operation) Validate(schema *library.Schema, identTypes []string) *Error {
	if err := op.ValidateStructure(); err != nil {
		return err
	}
	return op.ValidateSchema(schema, identTypes)
}

// 📦 FromMap decodes an operation from a raw key/value record, rejecting
// records with missing keys. Import paths use it so that a truncated
// hand-edited file fails structurally instead of silently defaulting.
func FromMap(src map[string]any) (Operation, *Error) {
	for _, key := range requiredKeys {
		if _, present := src[key]; !present {
			return Operation{}, structuralError("invalid operation, the %q key is missing", key)
		}
	}

	op := Operation{
		Name:              stringKey(src, "name"),
		Active:            boolKey(src, "active", true),
		SearchField:       stringKey(src, "search_field"),
		Template:          stringKey(src, "s_r_template"),
		SearchMode:        SearchMode(stringKey(src, "search_mode")),
		SearchFor:         stringKey(src, "search_for"),
		CaseSensitive:     boolKey(src, "case_sensitive", false),
		ReplaceWith:       stringKey(src, "replace_with"),
		ReplaceFunc:       ReplaceFunc(stringKey(src, "replace_func")),
		DestinationField:  stringKey(src, "destination_field"),
		ReplaceMode:       ReplaceMode(stringKey(src, "replace_mode")),
		CommaSeparated:    boolKey(src, "comma_separated", false),
		SourceIdentType:   stringKey(src, "s_r_src_ident"),
		DestIdentType:     stringKey(src, "s_r_dst_ident"),
		ResultsCount:      intKey(src, "results_count"),
		StartingFrom:      intKey(src, "starting_from"),
		MultipleSeparator: stringKey(src, "multiple_separator"),
	}
	return op, nil
}

func stringKey(src map[string]any, key string) string {
	s, _ := src[key].(string)
	return s
}

func boolKey(src map[string]any, key string, def bool) bool {
	if v, ok := src[key].(bool); ok {
		return v
	}
	return def
}

func intKey(src map[string]any, key string) int {
	switch v := src[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
