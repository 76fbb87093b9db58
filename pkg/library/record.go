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

// Package library models book-metadata records and the host-database
// collaborator the search/replace engine operates against.
package library

import (
	"fmt"
	"sort"
	"time"
)

// 📚 Record is one book's metadata, keyed by field name. Values are nil,
// string, []string, map[string]string (identifier map), bool, int, float64
// or time.Time. The engine never owns records; it reads snapshots and
// proposes writes.
type Record map[string]any

// 🔍 Get returns the raw value for a field, nil when absent.
func (r Record) Get(field string) any {
	return r[field]
}

// 📝 Clone returns a shallow-ish copy of the record. Slice and map values
// are copied one level deep so a patched clone never aliases the original.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		switch t := v.(type) {
		case []string:
			out[k] = append([]string(nil), t...)
		case map[string]string:
			m := make(map[string]string, len(t))
			for ik, iv := range t {
				m[ik] = iv
			}
			out[k] = m
		default:
			out[k] = v
		}
	}
	return out
}

// ✅ HasValue reports whether a field value counts as "present". nil is
// absent. Booleans and numbers always count, including false and zero.
// Strings, slices and maps count only when non-empty.
func HasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool, int, int64, float64:
		return true
	case string:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]string:
		return len(t) > 0
	case time.Time:
		return !t.IsZero()
	default:
		return true
	}
}

// ⚖️ ValueEqual compares two field values for the "changed?" decision.
func ValueEqual(a, b any) bool {
	switch at := a.(type) {
	case []string:
		bt, ok := b.([]string)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if at[i] != bt[i] {
				return false
			}
		}
		return true
	case map[string]string:
		bt, ok := b.(map[string]string)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, v := range at {
			if bt[k] != v {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// 📝 DisplayString renders a value the way the host UI would show it.
func DisplayString(v any, meta *FieldMeta) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		sep := ", "
		if meta != nil && meta.IsMultiple != nil {
			sep = meta.IsMultiple.ListToUI
		}
		out := ""
		for i, s := range t {
			if i > 0 {
				out += sep
			}
			out += s
		}
		return out
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := ""
		for i, k := range keys {
			if i > 0 {
				out += ", "
			}
			out += k + ":" + t[k]
		}
		return out
	case time.Time:
		format := time.DateOnly
		if meta != nil && meta.DateFormat != "" {
			format = meta.DateFormat
		}
		return t.Format(format)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		// trim the mantissa for whole numbers, as the host UI does
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
