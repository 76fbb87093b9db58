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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/template"
)

func mustDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newTestEngine() *Engine {
	schema := library.NewCalibreSchema()
	return New(schema, template.NewSimpleEvaluator(schema))
}

func evaluate(t *testing.T, op operation.Operation, rec library.Record) (*Proposal, error) {
	t.Helper()
	eng := newTestEngine()
	prep, err := eng.Prepare(context.Background(), op, []string{"isbn", "goodreads"})
	require.NoError(t, err)
	return prep.Evaluate(context.Background(), rec)
}

func TestEvaluateScenarios(t *testing.T) {
	tests := []struct {
		name        string
		op          func() operation.Operation
		rec         library.Record
		wantField   string
		wantNew     any
		wantChanged bool
	}{
		{
			name: "character_replace_in_title",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "title"
				op.SearchFor = "the"
				op.ReplaceWith = "THE"
				return op
			},
			rec:         library.Record{"title": "the cat in the hat"},
			wantField:   "title",
			wantNew:     "THE cat in THE hat",
			wantChanged: true,
		},
		{
			name: "identity_replacement_is_unchanged",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "title"
				op.SearchFor = "cat"
				op.ReplaceWith = "cat"
				return op
			},
			rec:         library.Record{"title": "the cat"},
			wantField:   "title",
			wantNew:     "the cat",
			wantChanged: false,
		},
		{
			name: "template_to_comments",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = library.TemplateField
				op.Template = "{title} - {authors}"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = "$0"
				op.DestinationField = "comments"
				return op
			},
			rec: library.Record{
				"title":   "Dune",
				"authors": []string{"Frank Herbert"},
			},
			wantField:   "comments",
			wantNew:     "Dune - Frank Herbert",
			wantChanged: true,
		},
		{
			name: "scalar_string_splits_into_list_destination",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "publisher"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = "Fiction, Drama"
				op.DestinationField = "tags"
				return op
			},
			rec:         library.Record{"publisher": "Anything"},
			wantField:   "tags",
			wantNew:     []string{"Fiction", "Drama"},
			wantChanged: true,
		},
		{
			name: "list_destination_without_split_strips_commas",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "publisher"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = "Fiction, Drama"
				op.DestinationField = "tags"
				op.CommaSeparated = false
				return op
			},
			rec:         library.Record{"publisher": "Anything"},
			wantField:   "tags",
			wantNew:     []string{"Fiction Drama"},
			wantChanged: true,
		},
		{
			name: "append_puts_old_value_last",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "tags"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = "New"
				op.ReplaceMode = operation.ReplaceModeAppend
				return op
			},
			rec:         library.Record{"tags": []string{"Old"}},
			wantField:   "tags",
			wantNew:     []string{"New", "Old"},
			wantChanged: true,
		},
		{
			name: "prepend_puts_old_value_first",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "tags"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = "New"
				op.ReplaceMode = operation.ReplaceModePrepend
				return op
			},
			rec:         library.Record{"tags": []string{"Old"}},
			wantField:   "tags",
			wantNew:     []string{"Old", "New"},
			wantChanged: true,
		},
		{
			name: "empty_title_becomes_unknown",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "title"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = ""
				return op
			},
			rec:         library.Record{"title": "Dune"},
			wantField:   "title",
			wantNew:     UnknownTitle,
			wantChanged: true,
		},
		{
			name: "empty_datetime_becomes_null",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "pubdate"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = ""
				return op
			},
			rec:         library.Record{"pubdate": mustDate(1965, 8, 1), "title": "x"},
			wantField:   "pubdate",
			wantNew:     nil,
			wantChanged: true,
		},
		{
			name: "absent_to_empty_is_not_a_change",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "series"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = ""
				return op
			},
			rec:         library.Record{"title": "x"},
			wantField:   "series",
			wantNew:     "",
			wantChanged: false,
		},
		{
			name: "value_to_empty_is_a_change",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "series"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = ""
				return op
			},
			rec:         library.Record{"series": "A", "title": "x"},
			wantField:   "series",
			wantNew:     "",
			wantChanged: true,
		},
		{
			name: "rating_floor_rounds_to_even",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "rating"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = "7"
				return op
			},
			rec:         library.Record{"rating": 4},
			wantField:   "rating",
			wantNew:     6,
			wantChanged: true,
		},
		{
			name: "rating_ten_is_kept",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "rating"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = "10"
				return op
			},
			rec:         library.Record{"rating": 4},
			wantField:   "rating",
			wantNew:     10,
			wantChanged: true,
		},
		{
			name: "rating_zero_becomes_null",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "rating"
				op.SearchMode = operation.SearchModeReplaceField
				op.ReplaceWith = "0"
				return op
			},
			rec:         library.Record{"rating": 4},
			wantField:   "rating",
			wantNew:     nil,
			wantChanged: true,
		},
		{
			name: "authors_renormalize_pipe",
			op: func() operation.Operation {
				op := operation.Default()
				op.SearchField = "authors"
				op.SearchFor = "zzz"
				op.ReplaceWith = "x"
				op.CommaSeparated = false
				return op
			},
			rec:         library.Record{"authors": []string{"Herbert| Frank"}},
			wantField:   "authors",
			wantNew:     []string{"Herbert Frank"},
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluate(t, tt.op(), tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, got.Field)
			assert.Equal(t, tt.wantNew, got.New)
			assert.Equal(t, tt.wantChanged, got.Changed)
		})
	}
}

func TestEvaluateRatingOutOfRange(t *testing.T) {
	op := operation.Default()
	op.SearchField = "rating"
	op.SearchMode = operation.SearchModeReplaceField
	op.ReplaceWith = "11"

	_, err := evaluate(t, op, library.Record{"rating": 4})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.False(t, IsInvalidIdentifier(err))
}

func TestEvaluateIdentifierSubtype(t *testing.T) {
	op := operation.Default()
	op.SearchField = library.IdentifiersField
	op.SourceIdentType = "isbn"
	op.DestIdentType = "isbn"
	op.SearchFor = "9780441013593"
	op.ReplaceWith = "9999999999999"

	rec := library.Record{
		"identifiers": map[string]string{"isbn": "9780441013593", "goodreads": "234225"},
	}
	got, err := evaluate(t, op, rec)
	require.NoError(t, err)

	// single-key update into a copy; unrelated pairs survive
	assert.Equal(t, map[string]string{
		"isbn":      "9999999999999",
		"goodreads": "234225",
	}, got.New)
	assert.True(t, got.Changed)
	// the original record value is untouched
	assert.Equal(t, "9780441013593", rec["identifiers"].(map[string]string)["isbn"])
}

func TestEvaluateIdentifierWildcard(t *testing.T) {
	op := operation.Default()
	op.SearchField = library.IdentifiersField
	op.DestIdentType = operation.WildcardIdentifier
	op.SearchFor = "isbn:"
	op.ReplaceWith = "ean:"

	// wildcard may only target identifiers when a sub-type source is read
	_, err := evaluate(t, op, library.Record{
		"identifiers": map[string]string{"isbn": "111"},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// reading a non-identifier source, wildcard reparses type:value pairs
	op2 := operation.Default()
	op2.SearchField = "publisher"
	op2.SearchMode = operation.SearchModeReplaceField
	op2.ReplaceWith = "ean:12345"
	op2.DestinationField = library.IdentifiersField
	op2.DestIdentType = operation.WildcardIdentifier

	got, err := evaluate(t, op2, library.Record{
		"publisher":   "x",
		"identifiers": map[string]string{"isbn": "111"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ean": "12345"}, got.New)
}

func TestEvaluateIdentifierInvalidPair(t *testing.T) {
	op := operation.Default()
	op.SearchField = "publisher"
	op.SearchMode = operation.SearchModeReplaceField
	op.ReplaceWith = "no-colon-here"
	op.DestinationField = library.IdentifiersField
	op.DestIdentType = operation.WildcardIdentifier

	_, err := evaluate(t, op, library.Record{"publisher": "x"})
	require.Error(t, err)
	assert.True(t, IsInvalidIdentifier(err))
	assert.Contains(t, err.Error(), "comma-separated list of pairs")
}

func TestEvaluateIdentifierDestRequiresType(t *testing.T) {
	op := operation.Default()
	op.SearchField = "publisher"
	op.SearchMode = operation.SearchModeReplaceField
	op.ReplaceWith = "111"
	op.DestinationField = library.IdentifiersField

	_, err := evaluate(t, op, library.Record{"publisher": "x"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestPrepareErrors(t *testing.T) {
	eng := newTestEngine()
	identTypes := []string{"isbn"}

	// structural failure surfaces from Prepare
	op := operation.Default()
	op.SearchField = ""
	_, err := eng.Prepare(context.Background(), op, identTypes)
	require.Error(t, err)

	// template source requires an explicit destination
	op = operation.Default()
	op.SearchField = library.TemplateField
	op.Template = "{title}"
	op.SearchMode = operation.SearchModeReplaceField
	_, err = eng.Prepare(context.Background(), op, identTypes)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// broken template fails before any book is read
	op = operation.Default()
	op.SearchField = library.TemplateField
	op.Template = "{nope}"
	op.SearchMode = operation.SearchModeReplaceField
	op.DestinationField = "comments"
	_, err = eng.Prepare(context.Background(), op, identTypes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), template.ErrorPrefix)

	// empty search text in character mode
	op = operation.Default()
	op.SearchField = "title"
	_, err = eng.Prepare(context.Background(), op, identTypes)
	require.Error(t, err)
	assert.True(t, IsPattern(err))
}

func TestPreviewWindow(t *testing.T) {
	eng := newTestEngine()

	op := operation.Default()
	op.SearchField = "tags"
	op.SearchFor = "T"
	op.ReplaceWith = "t"
	op.StartingFrom = 2
	op.ResultsCount = 2
	op.MultipleSeparator = " ::: "

	books := []PreviewBook{{
		ID:     1,
		Record: library.Record{"tags": []string{"Tag1", "Tag2", "Tag3", "Tag4", "Tag5"}},
	}}

	results, err := eng.Preview(context.Background(), op, nil, books)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, 1, results[0].BookID)
	assert.Equal(t, "Tag2 ::: Tag3", results[0].Text)
	assert.Equal(t, "tag2 ::: tag3", results[0].Result)
}

func TestPreviewScalar(t *testing.T) {
	eng := newTestEngine()

	op := operation.Default()
	op.SearchField = "title"
	op.SearchFor = "cat"
	op.ReplaceWith = "dog"

	books := []PreviewBook{
		{ID: 1, Record: library.Record{"title": "the cat"}},
		{ID: 2, Record: library.Record{"title": "no match"}},
	}

	results, err := eng.Preview(context.Background(), op, nil, books)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "the cat", results[0].Text)
	assert.Equal(t, "the dog", results[0].Result)
	assert.Equal(t, "no match", results[1].Result)
}
