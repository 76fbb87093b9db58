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

package library

import (
	"sort"
	"strings"
)

// TemplateField is the sentinel field selector meaning "evaluate a template
// expression instead of reading a stored field".
const TemplateField = "{template}"

// IdentifiersField is the name of the identifier-map field.
const IdentifiersField = "identifiers"

// 🏷️ Datatype is the host datatype of a schema field.
type Datatype string

const (
	DatatypeText        Datatype = "text"
	DatatypeSeries      Datatype = "series"
	DatatypeEnumeration Datatype = "enumeration"
	DatatypeComments    Datatype = "comments"
	DatatypeRating      Datatype = "rating"
	DatatypeInt         Datatype = "int"
	DatatypeFloat       Datatype = "float"
	DatatypeBool        Datatype = "bool"
	DatatypeDatetime    Datatype = "datetime"
	DatatypeComposite   Datatype = "composite"
	DatatypeIdentifiers Datatype = "identifiers"
)

// 🔧 Separators configures how a multi-valued field is split and joined.
type Separators struct {
	// UIToList splits a user-visible string into list items.
	UIToList string
	// ListToUI joins list items back into a user-visible string.
	ListToUI string
}

// 🏷️ FieldMeta describes one field of the library schema.
type FieldMeta struct {
	Name     string
	Datatype Datatype
	// IsMultiple is non-nil when the field is inherently multi-valued.
	IsMultiple *Separators
	// CompositeTemplate is the template source of a composite field.
	CompositeTemplate string
	// DateFormat is the display format for datetime fields.
	DateFormat string
	// Renormalize is an optional per-value rewrite applied on read. The
	// authors field uses it to turn the internal '|' separator into a comma.
	Renormalize func(string) string
}

// IsCSP reports whether the field is the identifier (colon-separated pair) map.
func (m *FieldMeta) IsCSP() bool {
	return m.Datatype == DatatypeIdentifiers
}

// IsComposite reports whether the field is computed from a template.
func (m *FieldMeta) IsComposite() bool {
	return m.Datatype == DatatypeComposite
}

// 📚 Schema is the set of fields available in the current library.
type Schema struct {
	fields []FieldMeta
	byName map[string]*FieldMeta
}

// 🏭 NewSchema builds a schema from field definitions.
func NewSchema(fields ...FieldMeta) *Schema {
	s := &Schema{
		fields: append([]FieldMeta(nil), fields...),
		byName: make(map[string]*FieldMeta, len(fields)),
	}
	for i := range s.fields {
		s.byName[s.fields[i].Name] = &s.fields[i]
	}
	return s
}

// 🔍 Field looks up a field by name.
func (s *Schema) Field(name string) (*FieldMeta, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// 📋 SearchableFields returns the fields an operation may read from,
// sorted, with the template sentinel inserted after the leading blank the
// host UI shows. Composite fields are searchable but not writable.
func (s *Schema) SearchableFields() []string {
	out := make([]string, 0, len(s.fields)+1)
	for i := range s.fields {
		out = append(out, s.fields[i].Name)
	}
	sort.Strings(out)
	out = append([]string{TemplateField}, out...)
	return out
}

// 📋 WritableFields returns the fields an operation may write to.
func (s *Schema) WritableFields() []string {
	out := make([]string, 0, len(s.fields))
	for i := range s.fields {
		if s.fields[i].IsComposite() {
			continue
		}
		out = append(out, s.fields[i].Name)
	}
	sort.Strings(out)
	return out
}

// CanSearch reports whether field is a valid operation source.
func (s *Schema) CanSearch(field string) bool {
	if field == TemplateField {
		return true
	}
	_, ok := s.byName[field]
	return ok
}

// CanWrite reports whether field is a valid operation destination.
func (s *Schema) CanWrite(field string) bool {
	m, ok := s.byName[field]
	return ok && !m.IsComposite()
}

// 🏭 NewCalibreSchema returns the standard column set of a calibre library,
// used by tests and as the default schema of a fresh library file.
func NewCalibreSchema() *Schema {
	comma := &Separators{UIToList: ",", ListToUI: ", "}
	ampersand := &Separators{UIToList: "&", ListToUI: " & "}
	return NewSchema(
		FieldMeta{Name: "title", Datatype: DatatypeText},
		FieldMeta{Name: "authors", Datatype: DatatypeText, IsMultiple: ampersand,
			Renormalize: func(v string) string { return strings.ReplaceAll(v, "|", ",") }},
		FieldMeta{Name: "author_sort", Datatype: DatatypeText},
		FieldMeta{Name: "series", Datatype: DatatypeSeries},
		FieldMeta{Name: "tags", Datatype: DatatypeText, IsMultiple: comma},
		FieldMeta{Name: "publisher", Datatype: DatatypeText},
		FieldMeta{Name: "languages", Datatype: DatatypeText, IsMultiple: comma},
		FieldMeta{Name: "rating", Datatype: DatatypeRating},
		FieldMeta{Name: "comments", Datatype: DatatypeComments},
		FieldMeta{Name: "pubdate", Datatype: DatatypeDatetime, DateFormat: "2006-01-02"},
		FieldMeta{Name: IdentifiersField, Datatype: DatatypeIdentifiers, IsMultiple: comma},
		FieldMeta{Name: "series_index", Datatype: DatatypeFloat},
		FieldMeta{Name: "author_link", Datatype: DatatypeComposite, IsMultiple: comma,
			CompositeTemplate: "{authors}"},
	)
}
