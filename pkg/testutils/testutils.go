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

// Package testutils provides shared fixtures for the engine and batch
// tests: a small in-memory library with known books, and a context
// carrying a test logger.
package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
)

// 🧪 Context returns a context whose logger writes through t.Log.
func Context(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// 📚 NewTestLibrary builds an in-memory library with the standard column
// set and three known books.
func NewTestLibrary(t *testing.T) *library.MemoryLibrary {
	t.Helper()

	lib := library.NewMemoryLibrary(library.NewCalibreSchema())
	lib.RegisterIdentifierType("isbn")
	lib.RegisterIdentifierType("goodreads")

	lib.AddBook(1, library.Record{
		"title":   "the cat in the hat",
		"authors": []string{"Dr. Seuss"},
		"tags":    []string{"Fiction", "Children"},
		"identifiers": map[string]string{
			"isbn": "9780394800011",
		},
		"pubdate": time.Date(1957, 3, 12, 0, 0, 0, 0, time.UTC),
		"rating":  8,
	})
	lib.AddBook(2, library.Record{
		"title":   "Dune",
		"authors": []string{"Frank Herbert"},
		"tags":    []string{"Sci-Fi"},
		"identifiers": map[string]string{
			"isbn":      "9780441013593",
			"goodreads": "234225",
		},
	})
	lib.AddBook(3, library.Record{
		"title": "Untagged",
	})

	return lib
}
