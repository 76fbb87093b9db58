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
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// wholeFieldPattern matches the entire field value across all lines, so
// whole-field replace, prepend and append run through the same
// substitution pipeline as regex mode.
const wholeFieldPattern = `(?s)\A.*\z`

// 🎯 Pattern is a compiled search pattern plus the mode it was built for.
type Pattern struct {
	re   *regexp.Regexp
	mode operation.SearchMode
}

// 🏭 CompilePattern compiles the search text for the given mode.
// Character mode escapes the text into an exact-substring pattern; regex
// mode compiles it directly, first with case folding when requested and
// again without if the folded compile fails; replace-field mode ignores
// the text and uses an always-match-whole-input pattern.
func CompilePattern(searchFor string, mode operation.SearchMode, caseSensitive bool) (*Pattern, error) {
	if mode == operation.SearchModeReplaceField {
		return &Pattern{re: regexp.MustCompile(wholeFieldPattern), mode: mode}, nil
	}

	if searchFor == "" {
		return nil, &PatternError{Message: `you must specify a search expression in the "Search for" field`}
	}

	expr := searchFor
	if mode == operation.SearchModeCharacter {
		expr = regexp.QuoteMeta(searchFor)
	}

	if !caseSensitive {
		re, err := regexp.Compile("(?i)" + expr)
		if err == nil {
			return &Pattern{re: re, mode: mode}, nil
		}
		// some patterns only compile without the fold flags prepended
		re, bareErr := regexp.Compile(expr)
		if bareErr == nil {
			return &Pattern{re: re, mode: mode}, nil
		}
		return nil, &PatternError{Message: "invalid search expression", Cause: err}
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Message: "invalid search expression", Cause: err}
	}
	return &Pattern{re: re, mode: mode}, nil
}

// 🔄 Apply substitutes every non-overlapping match in each value with
// replaceWith (back-reference expansion honored) and applies the transform
// per the mode contract: over the whole substituted string in character
// mode, over just the replaced text of each match otherwise. Failures are
// captured and returned, never propagated as a panic.
func (p *Pattern) Apply(values []string, replaceWith string, fn TransformFunc) (result []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.Errorf("applying pattern: %v", r)
		}
	}()

	if fn == nil {
		fn = func(s string) string { return s }
	}

	result = make([]string, 0, len(values))
	for _, v := range values {
		switch p.mode {
		case operation.SearchModeCharacter:
			result = append(result, fn(p.substitute(v, replaceWith, nil)))
		default:
			result = append(result, p.substitute(v, replaceWith, fn))
		}
	}
	return result, nil
}

// substitute expands replaceWith for each match, passing the expanded text
// through matchFn when given.
func (p *Pattern) substitute(s, replaceWith string, matchFn TransformFunc) string {
	var b strings.Builder
	last := 0
	for _, m := range p.re.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:m[0]])
		expanded := string(p.re.ExpandString(nil, replaceWith, s, m))
		if matchFn != nil {
			expanded = matchFn(expanded)
		}
		b.WriteString(expanded)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
