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

// 🚦 OperationStrategy decides what an invalid operation does to the run.
type OperationStrategy string

const (
	// OperationAbort stops the whole batch on the first invalid operation.
	OperationAbort OperationStrategy = "abort"
	// OperationAsk prompts once per batch; the answer applies to every
	// subsequent invalid operation.
	OperationAsk OperationStrategy = "ask"
	// OperationHide silently skips invalid operations.
	OperationHide OperationStrategy = "hide"
)

// DefaultOperationStrategy is used when the configured value is unknown.
const DefaultOperationStrategy = OperationAsk

// ValidOperationStrategy reports whether s is a known strategy.
func ValidOperationStrategy(s OperationStrategy) bool {
	switch s {
	case OperationAbort, OperationAsk, OperationHide:
		return true
	}
	return false
}

// 🚦 UpdateStrategy decides how the accumulated write-set is committed.
type UpdateStrategy string

const (
	// UpdateInterrupt applies the write-set as one multi-field update; on
	// failure it reports and leaves data as far as the host got.
	UpdateInterrupt UpdateStrategy = "interrupt"
	// UpdateRestore snapshots affected fields first and writes the
	// snapshot back when the commit fails.
	UpdateRestore UpdateStrategy = "restore"
	// UpdateSafely commits field by field, book by book, stopping on the
	// first failure while keeping a per-book failure list.
	UpdateSafely UpdateStrategy = "safely stop"
	// UpdateDontStop is UpdateSafely without the early stop.
	UpdateDontStop UpdateStrategy = "don't stop"
)

// DefaultUpdateStrategy is used when the configured value is unknown.
const DefaultUpdateStrategy = UpdateInterrupt

// ValidUpdateStrategy reports whether s is a known strategy.
func ValidUpdateStrategy(s UpdateStrategy) bool {
	switch s {
	case UpdateInterrupt, UpdateRestore, UpdateSafely, UpdateDontStop:
		return true
	}
	return false
}
