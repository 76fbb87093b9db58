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

package batch

import (
	"fmt"
	"strings"
	"time"
)

// ⚠️ InvalidOperation records one operation rejected before evaluation.
type InvalidOperation struct {
	// Index is the 1-based position in the active operation list.
	Index   int
	Message string
}

// ⚠️ Failure records one per-book error, either a deferred evaluation
// error or a commit failure.
type Failure struct {
	BookID   int
	BookInfo string
	Field    string
	Message  string
}

// 📋 Report is the outcome of one batch run. A run never fails silently:
// everything that went wrong is listed here.
type Report struct {
	OperationCount int
	BookCount      int

	InvalidOperations []InvalidOperation
	Failures          []Failure
	// UpdateError is set when an interrupt/restore-style commit failed.
	UpdateError string
	// Restored reports that the library was written back to its
	// pre-commit state.
	Restored bool

	Cancelled bool
	// Aborted reports that the run stopped because of an invalid
	// operation under the abort (or declined ask) strategy.
	Aborted bool

	BooksUpdated  int
	FieldsUpdated int
	Duration      time.Duration
}

// Ok reports whether the run completed with no errors of any kind.
func (r *Report) Ok() bool {
	return !r.Cancelled && !r.Aborted && !r.Restored &&
		len(r.InvalidOperations) == 0 && len(r.Failures) == 0 && r.UpdateError == ""
}

// 📝 Summary renders the human-readable run summary the host would show in
// its report dialog.
func (r *Report) Summary() string {
	var b strings.Builder

	switch {
	case r.Cancelled:
		b.WriteString("Mass Search/Replace was cancelled. No change.\n")
	case r.Aborted:
		b.WriteString("Mass Search/Replace was aborted.\n")
	default:
		fmt.Fprintf(&b, "Search/Replace performed for %d books with a total of %d fields modified.\n",
			r.BooksUpdated, r.FieldsUpdated)
	}

	if len(r.InvalidOperations) > 0 {
		fmt.Fprintf(&b, "%d invalid operations were detected:\n", len(r.InvalidOperations))
		for _, op := range r.InvalidOperations {
			fmt.Fprintf(&b, "  Operation %d/%d > %s\n", op.Index, r.OperationCount, op.Message)
		}
	}

	if r.UpdateError != "" {
		fmt.Fprintf(&b, "An error occurred during the library update: %s\n", r.UpdateError)
		if r.Restored {
			b.WriteString("The library was restored to its original state.\n")
		}
	}

	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, "%d errors occurred during the library update:\n", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  Book %s | %s > %s\n", f.BookInfo, f.Field, f.Message)
		}
	}

	fmt.Fprintf(&b, "Search/Replace executed in %.3f seconds.\n", r.Duration.Seconds())
	return b.String()
}
