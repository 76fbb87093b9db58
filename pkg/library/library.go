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
)

// 🎯 Library is the host-database collaborator consumed by the engine and
// the batch driver. All calls are synchronous; one batch run owns the
// library for its duration.
type Library interface {
	// Schema returns the field schema of the current library.
	Schema() *Schema
	// AllIDs returns every book id, in stable order.
	AllIDs() []int
	// Metadata returns a snapshot of one book's record.
	Metadata(id int) (Record, error)
	// SetField writes new values for one field across several books.
	SetField(ctx context.Context, field string, updates map[int]any) error
	// AllFieldFor snapshots the current values of one field for the given
	// books, for restore-on-failure commits.
	AllFieldFor(field string, ids []int) (map[int]any, error)
	// IdentifierTypes lists the identifier types present in the library.
	IdentifierTypes() []string
	// MarkBooks tags a set of books with a host-side mark label.
	MarkBooks(label string, ids []int) error
}
