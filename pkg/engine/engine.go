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

// Package engine evaluates search/replace operations against book records:
// field access, pattern matching and substitution, and destination
// resolution compose into a per-book pipeline that proposes writes.
package engine

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/template"
)

// 🎮 Engine binds a library schema and a template evaluator. It holds no
// per-run state; one engine serves any number of prepared operations.
type Engine struct {
	schema *library.Schema
	eval   template.Evaluator
}

// 🏭 New creates an engine over the given schema and template evaluator.
func New(schema *library.Schema, eval template.Evaluator) *Engine {
	return &Engine{schema: schema, eval: eval}
}

// Schema returns the schema the engine was built over.
func (e *Engine) Schema() *library.Schema {
	return e.schema
}

// 🎯 Prepared is one operation validated and compiled for repeated
// per-book evaluation.
type Prepared struct {
	Op operation.Operation

	engine    *Engine
	pattern   *Pattern
	transform TransformFunc
	dest      string
	destMeta  *library.FieldMeta
}

// Destination returns the resolved destination field name.
func (p *Prepared) Destination() string {
	return p.dest
}

// 🔧 Prepare validates an operation (structural, then library schema, then
// template and pattern) and compiles it. All errors here are per-operation
// and surface before any book is touched.
func (e *Engine) Prepare(ctx context.Context, op operation.Operation, identTypes []string) (*Prepared, error) {
	logger := zerolog.Ctx(ctx)

	if err := op.Validate(e.schema, identTypes); err != nil {
		return nil, err
	}

	if op.SearchField == library.TemplateField {
		if err := template.Check(ctx, e.eval, op.Template, nil); err != nil {
			return nil, errors.Errorf("template error: %w", err)
		}
	}

	dest, destMeta, err := e.resolveDest(op)
	if err != nil {
		return nil, err
	}

	pattern, err := CompilePattern(op.SearchFor, op.SearchMode, op.CaseSensitive)
	if err != nil {
		return nil, err
	}

	logger.Debug().Stringer("operation", op).Str("destination", dest).Msg("operation prepared")

	return &Prepared{
		Op:        op,
		engine:    e,
		pattern:   pattern,
		transform: TransformFor(op.ReplaceFunc),
		dest:      dest,
		destMeta:  destMeta,
	}, nil
}

// 📦 Proposal is the outcome of evaluating one operation against one book:
// the destination field, the computed value, and whether it differs from
// the record's current value.
type Proposal struct {
	Field   string
	Old     any
	New     any
	Changed bool
}

// 🔄 Evaluate runs the accessor → match/replace → destination pipeline for
// one record. The record should already carry any pending write for the
// destination field so chained operations compose.
func (p *Prepared) Evaluate(ctx context.Context, rec library.Record) (*Proposal, error) {
	src, err := p.engine.ReadField(ctx, rec, p.Op.SearchField, p.Op.Template, p.Op.SourceIdentType)
	if err != nil {
		return nil, err
	}

	substituted, err := p.pattern.Apply(src, p.Op.ReplaceWith, p.transform)
	if err != nil {
		return nil, err
	}

	original := rec.Get(p.dest)

	merged, err := p.engine.mergeDestination(p.Op, p.destMeta, substituted, original)
	if err != nil {
		return nil, err
	}

	final, err := p.engine.finalizeDestination(p.Op, p.dest, p.destMeta, merged, original)
	if err != nil {
		return nil, err
	}

	// only a real transition counts: no write for nil → "" style no-ops
	changed := !library.ValueEqual(original, final) &&
		(library.HasValue(original) || library.HasValue(final))

	return &Proposal{
		Field:   p.dest,
		Old:     original,
		New:     final,
		Changed: changed,
	}, nil
}
