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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasValue(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"empty_string", "", false},
		{"string", "x", true},
		{"false", false, true},
		{"zero_int", 0, true},
		{"float", 2.5, true},
		{"empty_list", []string{}, false},
		{"list", []string{"a"}, true},
		{"empty_map", map[string]string{}, false},
		{"map", map[string]string{"isbn": "1"}, true},
		{"zero_time", time.Time{}, false},
		{"time", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasValue(tt.v))
		})
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both_nil", nil, nil, true},
		{"nil_vs_empty_string", nil, "", false},
		{"strings", "a", "a", true},
		{"lists_equal", []string{"a", "b"}, []string{"a", "b"}, true},
		{"lists_order", []string{"a", "b"}, []string{"b", "a"}, false},
		{"maps_equal", map[string]string{"isbn": "1"}, map[string]string{"isbn": "1"}, true},
		{"maps_differ", map[string]string{"isbn": "1"}, map[string]string{"isbn": "2"}, false},
		{"ints", 4, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueEqual(tt.a, tt.b))
		})
	}
}

func TestDisplayString(t *testing.T) {
	schema := NewCalibreSchema()
	tags, _ := schema.Field("tags")
	pubdate, _ := schema.Field("pubdate")

	assert.Equal(t, "", DisplayString(nil, nil))
	assert.Equal(t, "Fiction, Drama", DisplayString([]string{"Fiction", "Drama"}, tags))
	assert.Equal(t, "goodreads:2, isbn:1",
		DisplayString(map[string]string{"isbn": "1", "goodreads": "2"}, nil))
	assert.Equal(t, "1957-03-12",
		DisplayString(time.Date(1957, 3, 12, 0, 0, 0, 0, time.UTC), pubdate))
	assert.Equal(t, "2", DisplayString(2.0, nil))
	assert.Equal(t, "2.5", DisplayString(2.5, nil))
}

func TestRecordClone(t *testing.T) {
	rec := Record{
		"tags":        []string{"a"},
		"identifiers": map[string]string{"isbn": "1"},
	}
	clone := rec.Clone()

	clone["tags"].([]string)[0] = "changed"
	clone["identifiers"].(map[string]string)["isbn"] = "2"

	assert.Equal(t, []string{"a"}, rec["tags"])
	assert.Equal(t, "1", rec["identifiers"].(map[string]string)["isbn"])
}

func TestSchemaFields(t *testing.T) {
	schema := NewCalibreSchema()

	// The template sentinel is searchable but never writable.
	assert.True(t, schema.CanSearch(TemplateField))
	assert.False(t, schema.CanWrite(TemplateField))
	assert.Equal(t, TemplateField, schema.SearchableFields()[0])

	// Composite fields are readable but not writable.
	assert.True(t, schema.CanSearch("author_link"))
	assert.False(t, schema.CanWrite("author_link"))

	assert.True(t, schema.CanWrite("tags"))
	assert.False(t, schema.CanSearch("no_such_field"))
}

func TestMemoryLibrarySetField(t *testing.T) {
	ctx := context.Background()
	lib := NewMemoryLibrary(NewCalibreSchema())
	lib.AddBook(1, Record{"title": "A", "tags": []string{"x"}})

	require.NoError(t, lib.SetField(ctx, "tags", map[int]any{1: []string{"y"}}))
	rec, err := lib.Metadata(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, rec["tags"])

	// nil deletes the field
	require.NoError(t, lib.SetField(ctx, "tags", map[int]any{1: nil}))
	rec, err = lib.Metadata(1)
	require.NoError(t, err)
	_, present := rec["tags"]
	assert.False(t, present)

	// unknown book and non-writable field are rejected
	require.Error(t, lib.SetField(ctx, "tags", map[int]any{9: []string{"y"}}))
	require.Error(t, lib.SetField(ctx, "author_link", map[int]any{1: "x"}))
}

func TestMemoryLibraryIdentifierTypes(t *testing.T) {
	lib := NewMemoryLibrary(NewCalibreSchema())
	lib.RegisterIdentifierType("amazon")
	lib.AddBook(1, Record{"identifiers": map[string]string{"isbn": "1"}})
	lib.AddBook(2, Record{"identifiers": map[string]string{"goodreads": "2"}})

	assert.Equal(t, []string{"amazon", "goodreads", "isbn"}, lib.IdentifierTypes())
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	schema := NewCalibreSchema()
	path := filepath.Join(t.TempDir(), "library"+SnapshotExtension)

	lib := NewMemoryLibrary(schema)
	lib.RegisterIdentifierType("isbn")
	lib.AddBook(1, Record{
		"title":       "Dune",
		"authors":     []string{"Frank Herbert"},
		"tags":        []string{"Sci-Fi", "Classics"},
		"identifiers": map[string]string{"isbn": "9780441013593"},
		"pubdate":     time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
		"rating":      10,
	})
	lib.AddBook(2, Record{"title": "Untitled"})

	require.NoError(t, lib.Save(ctx, path))

	got, err := Open(ctx, path, schema)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, got.AllIDs())

	rec, err := got.Metadata(1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", rec["title"])
	assert.Equal(t, []string{"Frank Herbert"}, rec["authors"])
	assert.Equal(t, []string{"Sci-Fi", "Classics"}, rec["tags"])
	assert.Equal(t, map[string]string{"isbn": "9780441013593"}, rec["identifiers"])
	assert.Equal(t, time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC), rec["pubdate"])
	assert.Equal(t, 10, rec["rating"])
}

func TestOpenRejectsWrongMagic(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "not-a-library"+SnapshotExtension)
	require.NoError(t, os.WriteFile(path, []byte("PKZZ0000not a snapshot"), 0o644))

	_, err := Open(ctx, path, NewCalibreSchema())
	require.Error(t, err)
}
