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
	"strings"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// 📦 PreviewBook pairs a book id with its record for preview rendering.
type PreviewBook struct {
	ID     int
	Record library.Record
}

// 📦 PreviewResult is one book's before/after text for display.
type PreviewResult struct {
	BookID int
	Text   string
	Result string
}

// 👁️ Preview renders what an operation would do to sample records, without
// proposing any write. It is a pure function of its inputs, called on
// demand; there is no reactive recomputation behind it.
func (e *Engine) Preview(ctx context.Context, op operation.Operation, identTypes []string, books []PreviewBook) ([]PreviewResult, error) {
	prep, err := e.Prepare(ctx, op, identTypes)
	if err != nil {
		return nil, err
	}

	out := make([]PreviewResult, 0, len(books))
	for _, book := range books {
		src, err := e.ReadField(ctx, book.Record, op.SearchField, op.Template, op.SourceIdentType)
		if err != nil {
			return nil, err
		}

		substituted, err := prep.pattern.Apply(src, op.ReplaceWith, prep.transform)
		if err != nil {
			return nil, err
		}

		merged, err := e.mergeDestination(op, prep.destMeta, substituted, book.Record.Get(prep.dest))
		if err != nil {
			return nil, err
		}

		var result string
		if prep.destMeta.IsMultiple != nil && len(merged) > 1 {
			result = strings.Join(window(merged, op), op.MultipleSeparator)
		} else {
			sep := ""
			if op.CommaSeparated {
				sep = ","
			}
			result = strings.Join(merged, sep)
		}

		out = append(out, PreviewResult{
			BookID: book.ID,
			Text:   strings.Join(window(src, op), op.MultipleSeparator),
			Result: result,
		})
	}
	return out, nil
}

// window applies the display bounds of the operation to a value list.
func window(values []string, op operation.Operation) []string {
	if len(values) <= 1 {
		return values
	}
	start := op.StartingFrom - 1
	if start < 0 {
		start = 0
	}
	if start >= len(values) {
		return nil
	}
	end := len(values)
	if op.ResultsCount > 0 && start+op.ResultsCount < end {
		end = start + op.ResultsCount
	}
	return values[start:end]
}
