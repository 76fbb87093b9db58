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
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/engine"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/log"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// 🎮 Prompter answers the questions a run can ask mid-flight. A nil
// Prompter behaves as if every question was declined.
type Prompter interface {
	// ContinueOnInvalid is asked once per run, when the first invalid
	// operation is met under the ask strategy. Returning false aborts
	// the run before any evaluation happens.
	ContinueOnInvalid(invalid []InvalidOperation) bool
}

// 📊 ProgressFunc receives evaluation progress. opNum and bookNum are
// 1-based.
type ProgressFunc func(opNum, opCount, bookNum, bookCount int)

// 🔧 Options configures a batch run.
type Options struct {
	Library library.Library
	Engine  *engine.Engine

	OperationStrategy OperationStrategy
	UpdateStrategy    UpdateStrategy

	Prompter Prompter
	Progress ProgressFunc

	// Console, when non-nil, receives one operation header per prepared
	// operation and one change line per evaluated book, the way the host
	// shows its update report.
	Console *log.Logger

	// MarkLabel, when non-empty, marks every updated book with this
	// label after a successful commit.
	MarkLabel string
}

// 🚀 Runner evaluates a chain of operations over a set of books and
// commits the accumulated field updates in one pass.
type Runner struct {
	opts Options
}

// 🏭 NewRunner creates a batch runner. Library and Engine are required.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Library == nil {
		return nil, errors.Errorf("batch: library is required")
	}
	if opts.Engine == nil {
		return nil, errors.Errorf("batch: engine is required")
	}
	if opts.OperationStrategy == "" {
		opts.OperationStrategy = DefaultOperationStrategy
	}
	if opts.UpdateStrategy == "" {
		opts.UpdateStrategy = DefaultUpdateStrategy
	}
	if !ValidOperationStrategy(opts.OperationStrategy) {
		return nil, errors.Errorf("batch: unknown operation strategy %q", opts.OperationStrategy)
	}
	if !ValidUpdateStrategy(opts.UpdateStrategy) {
		return nil, errors.Errorf("batch: unknown update strategy %q", opts.UpdateStrategy)
	}
	return &Runner{opts: opts}, nil
}

// 🔄 Run evaluates ops over bookIDs and commits the resulting updates.
//
// Evaluation is sequential: operations run in list order, and within an
// operation, books run in the given order. Later operations observe the
// pending writes of earlier ones, so a chain behaves as if each
// operation had already been committed. Nothing touches the library
// until the commit phase.
//
// The returned error is only set for unrecoverable evaluation errors.
// Invalid operations, per-book failures, commit failures and
// cancellation are reported through the Report instead.
func (r *Runner) Run(ctx context.Context, ops []operation.Operation, bookIDs []int) (*Report, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	active := operation.ActiveOperations(ops, operation.Default())
	report := &Report{OperationCount: len(active), BookCount: len(bookIDs)}

	identTypes := r.opts.Library.IdentifierTypes()

	// Prepare every operation up front so invalid ones surface before
	// any book is evaluated.
	prepared := make([]*engine.Prepared, 0, len(active))
	for i, op := range active {
		prep, err := r.opts.Engine.Prepare(ctx, op, identTypes)
		if err != nil {
			report.InvalidOperations = append(report.InvalidOperations, InvalidOperation{
				Index:   i + 1,
				Message: err.Error(),
			})
			continue
		}
		prepared = append(prepared, prep)
	}

	if len(report.InvalidOperations) > 0 {
		switch r.opts.OperationStrategy {
		case OperationAbort:
			report.Aborted = true
		case OperationAsk:
			if r.opts.Prompter == nil || !r.opts.Prompter.ContinueOnInvalid(report.InvalidOperations) {
				report.Aborted = true
			}
		case OperationHide:
			// Invalid operations are silently skipped.
			report.InvalidOperations = nil
		}
	}
	if report.Aborted {
		report.Duration = time.Since(start)
		logger.Warn().Int("invalid", len(report.InvalidOperations)).Msg("batch run aborted on invalid operations")
		return report, nil
	}

	writes := NewWriteSet()

	records := make(map[int]library.Record, len(bookIDs))
	for _, id := range bookIDs {
		rec, err := r.opts.Library.Metadata(id)
		if err != nil {
			return report, errors.Errorf("loading book %d: %w", id, err)
		}
		records[id] = rec
	}

	for opNum, prep := range prepared {
		if r.opts.Console != nil {
			r.opts.Console.StartOperation(ctx, log.OperationRun{
				Index:   opNum + 1,
				Count:   len(prepared),
				Summary: prep.Op.String(),
			})
		}
		for bookNum, id := range bookIDs {
			select {
			case <-ctx.Done():
				report.Cancelled = true
				report.Duration = time.Since(start)
				logger.Warn().Msg("batch run cancelled, no change")
				return report, nil
			default:
			}
			if r.opts.Progress != nil {
				r.opts.Progress(opNum+1, len(prepared), bookNum+1, len(bookIDs))
			}

			rec := records[id]
			// Later operations must see pending writes to the field
			// they read, so patch the working record first.
			for _, field := range writes.Fields() {
				if v, ok := writes.Get(field, id); ok {
					if v == nil {
						delete(rec, field)
					} else {
						rec[field] = v
					}
				}
			}

			proposal, err := prep.Evaluate(ctx, rec)
			if err != nil {
				if engine.IsInvalidIdentifier(err) {
					// Deferred: the rest of the run continues and the
					// failure is reported at the end.
					report.Failures = append(report.Failures, Failure{
						BookID:   id,
						BookInfo: bookInfo(rec),
						Field:    prep.Destination(),
						Message:  err.Error(),
					})
					if r.opts.Console != nil {
						r.opts.Console.LogBookChange(ctx, log.BookChange{
							BookID: id,
							Title:  bookInfo(rec),
							Field:  prep.Destination(),
							Old:    r.displayValue(prep.Destination(), rec.Get(prep.Destination())),
							Failed: true,
						})
					}
					continue
				}
				report.Duration = time.Since(start)
				return report, errors.Errorf("operation %d on book %d: %w", opNum+1, id, err)
			}
			if r.opts.Console != nil {
				r.opts.Console.LogBookChange(ctx, log.BookChange{
					BookID:  id,
					Title:   bookInfo(rec),
					Field:   proposal.Field,
					Old:     r.displayValue(proposal.Field, proposal.Old),
					New:     r.displayValue(proposal.Field, proposal.New),
					Changed: proposal.Changed,
				})
			}
			if proposal.Changed {
				writes.Put(proposal.Field, id, proposal.New)
			}
		}
		if r.opts.Console != nil {
			r.opts.Console.EndOperation(ctx)
		}
	}

	r.commit(ctx, writes, records, report)

	if report.UpdateError == "" && !report.Restored && r.opts.MarkLabel != "" && report.BooksUpdated > 0 {
		if err := r.opts.Library.MarkBooks(r.opts.MarkLabel, writes.Books()); err != nil {
			logger.Warn().Err(err).Msg("marking updated books failed")
		}
	}

	report.Duration = time.Since(start)
	logger.Info().
		Int("books", report.BooksUpdated).
		Int("fields", report.FieldsUpdated).
		Dur("duration", report.Duration).
		Msg("batch run finished")
	return report, nil
}

// commit writes the accumulated updates to the library according to the
// update strategy.
func (r *Runner) commit(ctx context.Context, writes *WriteSet, records map[int]library.Record, report *Report) {
	logger := zerolog.Ctx(ctx)

	if writes.Empty() {
		return
	}

	switch r.opts.UpdateStrategy {
	case UpdateSafely, UpdateDontStop:
		r.commitPerBook(ctx, writes, records, report)
	default:
		// interrupt and restore commit in bulk, and only when the
		// evaluation phase finished clean.
		if len(report.Failures) > 0 {
			logger.Warn().Int("failures", len(report.Failures)).Msg("bulk commit skipped because of evaluation failures")
			return
		}
		r.commitBulk(ctx, writes, report)
	}
}

// commitPerBook writes field by field, book by book, collecting every
// failure. Under "safely stop" the first failure stops further writes;
// under "don't stop" the commit runs to the end regardless.
func (r *Runner) commitPerBook(ctx context.Context, writes *WriteSet, records map[int]library.Record, report *Report) {
	updatedBooks := make(map[int]bool)
	stopped := false

	for _, field := range writes.Fields() {
		for id, value := range writes.Updates(field) {
			if stopped {
				break
			}
			err := r.opts.Library.SetField(ctx, field, map[int]any{id: value})
			if err != nil {
				report.Failures = append(report.Failures, Failure{
					BookID:   id,
					BookInfo: bookInfo(records[id]),
					Field:    field,
					Message:  err.Error(),
				})
				if r.opts.UpdateStrategy == UpdateSafely {
					stopped = true
				}
				continue
			}
			updatedBooks[id] = true
			report.FieldsUpdated++
		}
	}
	report.BooksUpdated = len(updatedBooks)
}

// commitBulk writes each field in a single library call. Under
// "restore", a failure rolls every already-written field back to its
// pre-commit value.
func (r *Runner) commitBulk(ctx context.Context, writes *WriteSet, report *Report) {
	logger := zerolog.Ctx(ctx)

	var backups map[string]map[int]any
	if r.opts.UpdateStrategy == UpdateRestore {
		backups = make(map[string]map[int]any, len(writes.Fields()))
		for _, field := range writes.Fields() {
			updates := writes.Updates(field)
			ids := make([]int, 0, len(updates))
			for id := range updates {
				ids = append(ids, id)
			}
			prev, err := r.opts.Library.AllFieldFor(field, ids)
			if err != nil {
				report.UpdateError = fmt.Sprintf("backing up field %q: %s", field, err)
				return
			}
			backups[field] = prev
		}
	}

	written := make([]string, 0, len(writes.Fields()))
	for _, field := range writes.Fields() {
		if err := r.opts.Library.SetField(ctx, field, writes.Updates(field)); err != nil {
			report.UpdateError = fmt.Sprintf("updating field %q: %s", field, err)
			if r.opts.UpdateStrategy == UpdateRestore {
				r.restore(ctx, backups, written, report)
			}
			return
		}
		written = append(written, field)
		report.FieldsUpdated += len(writes.Updates(field))
	}
	report.BooksUpdated = len(writes.Books())
	logger.Debug().Int("fields", len(written)).Msg("bulk commit done")
}

// restore writes the backed-up values of every already-committed field
// back to the library.
func (r *Runner) restore(ctx context.Context, backups map[string]map[int]any, written []string, report *Report) {
	logger := zerolog.Ctx(ctx)
	for _, field := range written {
		if err := r.opts.Library.SetField(ctx, field, backups[field]); err != nil {
			// Restoring failed too. The library is left part-way
			// through, which the report has to say plainly.
			report.UpdateError += fmt.Sprintf("; restoring field %q failed: %s", field, err)
			logger.Error().Err(err).Str("field", field).Msg("restore failed")
			return
		}
	}
	report.Restored = true
	report.FieldsUpdated = 0
	logger.Warn().Msg("library restored to its pre-update state")
}

// displayValue renders a field value for the console change line.
func (r *Runner) displayValue(field string, v any) string {
	meta, _ := r.opts.Engine.Schema().Field(field)
	return library.DisplayString(v, meta)
}

// bookInfo renders a short "Title (id)" label for error reporting.
func bookInfo(rec library.Record) string {
	title, _ := rec["title"].(string)
	if title == "" {
		title = "Unknown"
	}
	return title
}
