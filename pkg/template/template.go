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

// Package template provides the host templating collaborator used when an
// operation's source is the {template} sentinel or a composite field.
package template

import (
	"context"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
)

// ErrorPrefix marks an evaluation failure in rendered output, matching the
// host formatter's sentinel convention.
const ErrorPrefix = "TEMPLATE_ERROR: "

// 🎯 Evaluator renders a template expression against one book record.
type Evaluator interface {
	Evaluate(ctx context.Context, template string, rec library.Record) (string, error)
}

// fieldRef matches a {field} reference. Function-call syntax of the full
// host template language is not reproduced here.
var fieldRef = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_#:]*)\}`)

// 🎮 SimpleEvaluator substitutes {field} references with the record's
// display values. It covers the template shapes the plugin itself stores;
// a richer host evaluator can be injected in its place.
type SimpleEvaluator struct {
	schema *library.Schema
}

// 🏭 NewSimpleEvaluator creates an evaluator over the given schema.
func NewSimpleEvaluator(schema *library.Schema) *SimpleEvaluator {
	return &SimpleEvaluator{schema: schema}
}

func (e *SimpleEvaluator) Evaluate(ctx context.Context, template string, rec library.Record) (string, error) {
	var evalErr error
	out := fieldRef.ReplaceAllStringFunc(template, func(ref string) string {
		name := strings.Trim(ref, "{}")
		meta, ok := e.schema.Field(name)
		if !ok {
			if evalErr == nil {
				evalErr = errors.Errorf("%sunknown field %q", ErrorPrefix, name)
			}
			return ""
		}
		return library.DisplayString(rec.Get(name), meta)
	})
	if evalErr != nil {
		return "", evalErr
	}
	return out, nil
}

// ✅ Check validates a template ahead of a batch run by evaluating it
// against a sample record. A nil sample checks field references only.
func Check(ctx context.Context, eval Evaluator, template string, sample library.Record) error {
	if strings.TrimSpace(template) == "" {
		return errors.Errorf("template is empty")
	}
	if sample == nil {
		sample = library.Record{}
	}
	if _, err := eval.Evaluate(ctx, template, sample); err != nil {
		return errors.Errorf("checking template: %w", err)
	}
	return nil
}
