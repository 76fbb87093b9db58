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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// ⚠️ PatternError reports search text that is empty or fails to compile in
// both the case-folded and bare attempts.
type PatternError struct {
	Message string
	Cause   error
}

func (e *PatternError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PatternError) Unwrap() error {
	return e.Cause
}

// ⚠️ ValidationError reports a domain violation during destination
// resolution: missing destination for a template/composite source, an
// out-of-range rating, an ambiguous identifier target, or a malformed
// identifier pair string.
type ValidationError struct {
	Message string
	// invalidIdentifier marks the one kind the batch driver collects
	// best-effort instead of aborting the run.
	invalidIdentifier bool
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// errInvalidIdentifier builds the deferrable malformed identifier error.
func errInvalidIdentifier() *ValidationError {
	return &ValidationError{
		Message:           "invalid identifier string, it must be a comma-separated list of pairs of strings separated by a colon",
		invalidIdentifier: true,
	}
}

// ✅ IsInvalidIdentifier reports whether err is the malformed identifier
// validation error the batch driver defers instead of aborting on.
func IsInvalidIdentifier(err error) bool {
	var v *ValidationError
	return errors.As(err, &v) && v.invalidIdentifier
}

// ✅ IsValidation reports whether err is any destination validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ✅ IsPattern reports whether err is a pattern compilation error.
func IsPattern(err error) bool {
	var p *PatternError
	return errors.As(err, &p)
}
