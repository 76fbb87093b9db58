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
	"context"
	"sort"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎮 MemoryLibrary is an in-memory Library, the stand-in for the host
// database in tests and in the CLI. Not safe for concurrent use.
type MemoryLibrary struct {
	schema *Schema
	books  map[int]Record
	ids    []int
	marks  map[string][]int
	idents []string
}

// 🏭 NewMemoryLibrary creates an empty library with the given schema.
func NewMemoryLibrary(schema *Schema) *MemoryLibrary {
	return &MemoryLibrary{
		schema: schema,
		books:  map[int]Record{},
		marks:  map[string][]int{},
	}
}

// 📝 AddBook inserts or replaces a record under the given id.
func (l *MemoryLibrary) AddBook(id int, rec Record) {
	if _, exists := l.books[id]; !exists {
		l.ids = append(l.ids, id)
		sort.Ints(l.ids)
	}
	l.books[id] = rec.Clone()
}

// RegisterIdentifierType declares an identifier type not yet present on any
// book, mirroring how the host exposes types from other libraries.
func (l *MemoryLibrary) RegisterIdentifierType(t string) {
	l.idents = append(l.idents, t)
}

func (l *MemoryLibrary) Schema() *Schema {
	return l.schema
}

func (l *MemoryLibrary) AllIDs() []int {
	return append([]int(nil), l.ids...)
}

func (l *MemoryLibrary) Metadata(id int) (Record, error) {
	rec, ok := l.books[id]
	if !ok {
		return nil, errors.Errorf("no book with id %d", id)
	}
	return rec.Clone(), nil
}

func (l *MemoryLibrary) SetField(ctx context.Context, field string, updates map[int]any) error {
	logger := zerolog.Ctx(ctx)

	if !l.schema.CanWrite(field) {
		return errors.Errorf("field %q is not writable", field)
	}
	for id := range updates {
		if _, ok := l.books[id]; !ok {
			return errors.Errorf("setting field %q: no book with id %d", field, id)
		}
	}
	for id, val := range updates {
		if val == nil {
			delete(l.books[id], field)
			continue
		}
		l.books[id][field] = val
	}

	logger.Debug().Str("field", field).Int("books", len(updates)).Msg("field updated")
	return nil
}

func (l *MemoryLibrary) AllFieldFor(field string, ids []int) (map[int]any, error) {
	if _, ok := l.schema.Field(field); !ok {
		return nil, errors.Errorf("unknown field %q", field)
	}
	out := make(map[int]any, len(ids))
	for _, id := range ids {
		rec, ok := l.books[id]
		if !ok {
			return nil, errors.Errorf("snapshotting field %q: no book with id %d", field, id)
		}
		out[id] = rec.Clone()[field]
	}
	return out, nil
}

// 📋 IdentifierTypes collects every identifier type present on any book,
// plus the registered extras, sorted.
func (l *MemoryLibrary) IdentifierTypes() []string {
	seen := map[string]bool{}
	for _, t := range l.idents {
		seen[t] = true
	}
	for _, rec := range l.books {
		if m, ok := rec[IdentifiersField].(map[string]string); ok {
			for t := range m {
				seen[t] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (l *MemoryLibrary) MarkBooks(label string, ids []int) error {
	l.marks[label] = append([]int(nil), ids...)
	return nil
}

// Marked returns the ids marked under a label, for tests and the CLI report.
func (l *MemoryLibrary) Marked(label string) []int {
	return append([]int(nil), l.marks[label]...)
}
