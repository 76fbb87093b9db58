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

// 📦 WriteSet accumulates pending field updates keyed by (field, book id).
// It is owned exclusively by one in-flight batch run; commit order follows
// first-seen order of fields and books.
type WriteSet struct {
	fields     map[string]map[int]any
	fieldOrder []string
	bookOrder  []int
	seenBooks  map[int]bool
}

// 🏭 NewWriteSet creates an empty write-set.
func NewWriteSet() *WriteSet {
	return &WriteSet{
		fields:    map[string]map[int]any{},
		seenBooks: map[int]bool{},
	}
}

// 📝 Put records a pending value for one field of one book, replacing any
// earlier pending value for the same pair.
func (w *WriteSet) Put(field string, id int, value any) {
	updates, ok := w.fields[field]
	if !ok {
		updates = map[int]any{}
		w.fields[field] = updates
		w.fieldOrder = append(w.fieldOrder, field)
	}
	updates[id] = value
	if !w.seenBooks[id] {
		w.seenBooks[id] = true
		w.bookOrder = append(w.bookOrder, id)
	}
}

// 🔍 Get returns the pending value for a pair, if any. A pending nil
// (cleared field) still reports true.
func (w *WriteSet) Get(field string, id int) (any, bool) {
	updates, ok := w.fields[field]
	if !ok {
		return nil, false
	}
	v, ok := updates[id]
	return v, ok
}

// Fields returns the touched fields in first-seen order.
func (w *WriteSet) Fields() []string {
	return append([]string(nil), w.fieldOrder...)
}

// Updates returns the pending values for one field.
func (w *WriteSet) Updates(field string) map[int]any {
	return w.fields[field]
}

// Books returns every book with at least one pending write, in first-seen
// order.
func (w *WriteSet) Books() []int {
	return append([]int(nil), w.bookOrder...)
}

// PairCount is the total number of pending (field, book) writes.
func (w *WriteSet) PairCount() int {
	n := 0
	for _, updates := range w.fields {
		n += len(updates)
	}
	return n
}

// Empty reports whether no writes are pending.
func (w *WriteSet) Empty() bool {
	return len(w.fields) == 0
}
