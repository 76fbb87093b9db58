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
	"strconv"
	"strings"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// UnknownTitle is written in place of an empty title; the host refuses
// empty titles.
const UnknownTitle = "Unknown"

// 🧭 resolveDest defaults an empty destination to the source field. A
// template or composite source has no writable default and must name a
// destination explicitly.
func (e *Engine) resolveDest(op operation.Operation) (string, *library.FieldMeta, error) {
	dest := op.DestinationField
	if dest == "" {
		srcMeta, _ := e.schema.Field(op.SearchField)
		if op.SearchField == library.TemplateField || (srcMeta != nil && srcMeta.IsComposite()) {
			return "", nil, validationErrorf(
				"you must specify a destination when source is a composite field or a template")
		}
		dest = op.SearchField
	}
	meta, ok := e.schema.Field(dest)
	if !ok {
		return "", nil, validationErrorf("unknown destination field %q", dest)
	}
	return dest, meta, nil
}

// 🔀 mergeDestination runs the order-sensitive middle of the resolution:
// rating range check, identifier-target check, multi-valued split or
// separator stripping, then the prepend/append merge with the current
// destination value. Splitting happens before merging.
//
// The merge ordering follows the documented contract: append puts the new
// values first and the old value last; prepend puts the old value first.
func (e *Engine) mergeDestination(op operation.Operation, destMeta *library.FieldMeta, values []string, currentDest any) ([]string, error) {
	if destMeta.Datatype == library.DatatypeRating && len(values) > 0 && values[0] != "" {
		v, err := strconv.Atoi(strings.TrimSpace(values[0]))
		if err != nil || v < 0 || v > 10 {
			return nil, validationErrorf(
				"the replacement value for a rating column must be empty or an integer between 0 and 10")
		}
	}

	if destMeta.IsCSP() {
		if op.DestIdentType == "" ||
			(op.SearchField == library.IdentifiersField && op.DestIdentType == operation.WildcardIdentifier) {
			return nil, validationErrorf("you must specify a destination identifier type")
		}
	}

	if destMeta.IsMultiple != nil {
		if op.CommaSeparated {
			splitter := destMeta.IsMultiple.UIToList
			var split []string
			for _, v := range values {
				for _, piece := range strings.Split(v, splitter) {
					piece = strings.TrimSpace(piece)
					if piece != "" {
						split = append(split, piece)
					}
				}
			}
			values = split
		} else {
			stripped := make([]string, len(values))
			for i, v := range values {
				stripped[i] = strings.ReplaceAll(v, ",", "")
			}
			values = stripped
		}
	}

	if op.ReplaceMode != operation.ReplaceModeReplace {
		old := normalizeCurrent(currentDest, destMeta, op.DestIdentType)
		switch op.ReplaceMode {
		case operation.ReplaceModeAppend:
			values = append(values, old...)
		case operation.ReplaceModePrepend:
			values = append(old, values...)
		}
	}

	return values, nil
}

// normalizeCurrent turns the pre-existing destination value into a list the
// same way an accessor read would.
func normalizeCurrent(current any, destMeta *library.FieldMeta, destIdentType string) []string {
	if destMeta.IsCSP() {
		return readIdentifiers(current, destIdentType)
	}
	switch t := current.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), t...)
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	default:
		return []string{library.DisplayString(t, destMeta)}
	}
}

// 🏁 finalizeDestination produces the final value to write: identifier-map
// reconstruction, scalar joining, and type coercion.
func (e *Engine) finalizeDestination(op operation.Operation, dest string, destMeta *library.FieldMeta, values []string, currentDest any) (any, error) {
	if destMeta.IsMultiple != nil {
		if destMeta.IsCSP() {
			return rebuildIdentifiers(op, values, currentDest)
		}
		return values, nil
	}

	sep := ""
	if op.CommaSeparated {
		sep = ","
	}
	joined := strings.Join(values, sep)
	if dest == "title" && joined == "" {
		joined = UnknownTitle
	}

	if joined == "" && destMeta.Datatype == library.DatatypeDatetime {
		return nil, nil
	}
	if destMeta.Datatype == library.DatatypeRating {
		return coerceRating(joined)
	}
	return joined, nil
}

// rebuildIdentifiers reconstructs the identifier map, either as a
// single-key update into a copy of the existing map or by reparsing the
// whole value list as type:value pairs.
func rebuildIdentifiers(op operation.Operation, values []string, currentDest any) (any, error) {
	if op.DestIdentType != "" && op.DestIdentType != operation.WildcardIdentifier {
		current, _ := currentDest.(map[string]string)
		out := make(map[string]string, len(current)+1)
		for k, v := range current {
			out[k] = v
		}
		out[op.DestIdentType] = strings.Join(values, "")
		return out, nil
	}

	out := make(map[string]string, len(values))
	for _, v := range values {
		parts := strings.SplitN(v, ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, errInvalidIdentifier()
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}

// coerceRating maps empty and zero to null and floor-rounds to the nearest
// even number, the host's half-star storage convention.
func coerceRating(joined string) (any, error) {
	if joined == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(joined))
	if err != nil || v < 0 || v > 10 {
		return nil, validationErrorf(
			"the replacement value for a rating column must be empty or an integer between 0 and 10")
	}
	if v == 0 {
		return nil, nil
	}
	return (v / 2) * 2, nil
}
