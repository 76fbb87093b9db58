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
	"sort"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
)

// 📖 ReadField reads a named field (or evaluates a template) off a record
// and normalizes it into an ordered sequence of strings. The sequence is
// never empty: an absent scalar yields [""], an absent multi-valued field
// yields [] which the final fallback turns into [""].
func (e *Engine) ReadField(ctx context.Context, rec library.Record, field, tmpl, srcIdentType string) ([]string, error) {
	if field == "" {
		return []string{""}, nil
	}

	if field == library.TemplateField {
		v, err := e.eval.Evaluate(ctx, tmpl, rec)
		if err != nil {
			return nil, errors.Errorf("evaluating template: %w", err)
		}
		return []string{v}, nil
	}

	meta, ok := e.schema.Field(field)
	if !ok {
		return nil, errors.Errorf("unknown field %q", field)
	}

	var val []string
	switch {
	case meta.IsCSP():
		val = readIdentifiers(rec.Get(field), srcIdentType)

	case meta.IsComposite():
		display, err := e.eval.Evaluate(ctx, meta.CompositeTemplate, rec)
		if err != nil {
			return nil, errors.Errorf("evaluating composite field %q: %w", field, err)
		}
		if meta.IsMultiple != nil {
			for _, piece := range strings.Split(display, meta.IsMultiple.UIToList) {
				val = append(val, strings.TrimSpace(piece))
			}
		} else {
			val = []string{display}
		}

	default:
		val = readScalarOrList(rec.Get(field), meta)
	}

	if meta.Renormalize != nil {
		for i := range val {
			val[i] = meta.Renormalize(val[i])
		}
	}

	if len(val) == 0 {
		val = []string{""}
	}
	return val, nil
}

// readIdentifiers flattens the identifier map: one "type:value" entry per
// pair, or the single value of the requested sub-type. Keys are sorted so
// reads are stable.
func readIdentifiers(raw any, srcIdentType string) []string {
	m, _ := raw.(map[string]string)
	if srcIdentType != "" {
		return []string{m[srcIdentType]}
	}
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+":"+m[k])
	}
	return out
}

// readScalarOrList normalizes a stored value per the field's shape.
// Multi-valued emptiness ([]) and scalar emptiness ([""]) are distinct.
func readScalarOrList(raw any, meta *library.FieldMeta) []string {
	switch t := raw.(type) {
	case nil:
		if meta.IsMultiple != nil {
			return nil
		}
		return []string{""}
	case []string:
		return append([]string(nil), t...)
	case string:
		return []string{t}
	case time.Time:
		return []string{library.DisplayString(t, meta)}
	default:
		// numbers and booleans read as their display string
		return []string{library.DisplayString(t, meta)}
	}
}
