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

// Package config persists the plugin preferences, shared operation
// lists, and menu archives.
package config

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/batch"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// 🔌 Parser is the interface for preference parsers
type Parser interface {
	// 📝 Parse parses the preferences from bytes
	Parse(ctx context.Context, data []byte) (*Prefs, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// ⚠️ ErrorStrategy holds the two failure policies of a batch run.
type ErrorStrategy struct {
	Operation batch.OperationStrategy `json:"Operation" yaml:"operation"`
	Update    batch.UpdateStrategy    `json:"Update" yaml:"update"`
}

// 📚 Prefs represents the complete plugin preferences. The JSON keys
// match the stored preference names, which predate this codebase.
type Prefs struct {
	Menus         []operation.Menu      `json:"Menu" yaml:"menu"`
	Quick         []operation.Operation `json:"Quick" yaml:"quick"`
	UpdateReport  bool                  `json:"UpdateReport" yaml:"update_report"`
	UseMark       bool                  `json:"UseMark" yaml:"use_mark"`
	ErrorStrategy ErrorStrategy         `json:"ErrorStrategy" yaml:"error_strategy"`
}

// 🏭 DefaultPrefs returns the out-of-the-box preferences.
func DefaultPrefs() *Prefs {
	return &Prefs{
		ErrorStrategy: ErrorStrategy{
			Operation: batch.DefaultOperationStrategy,
			Update:    batch.DefaultUpdateStrategy,
		},
	}
}

// 🎯 Load loads the preferences from a file
func Load(ctx context.Context, path string) (*Prefs, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading preferences")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading preferences file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	prefs, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing preferences: %w", err)
	}

	if err := prefs.Validate(); err != nil {
		return nil, errors.Errorf("validating preferences: %w", err)
	}

	return prefs, nil
}

// 💾 Save writes the preferences as JSON, the stored format.
func (prefs *Prefs) Save(ctx context.Context, path string) error {
	logger := zerolog.Ctx(ctx)

	if err := prefs.Validate(); err != nil {
		return errors.Errorf("validating preferences: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling preferences: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Errorf("writing preferences file: %w", err)
	}

	logger.Debug().Str("path", path).Msg("preferences saved")
	return nil
}

// 🔍 Validate checks the preferences and fills in defaults.
func (prefs *Prefs) Validate() error {
	// Set defaults
	if prefs.ErrorStrategy.Operation == "" {
		prefs.ErrorStrategy.Operation = batch.DefaultOperationStrategy
	}
	if prefs.ErrorStrategy.Update == "" {
		prefs.ErrorStrategy.Update = batch.DefaultUpdateStrategy
	}

	if !batch.ValidOperationStrategy(prefs.ErrorStrategy.Operation) {
		return errors.Errorf("unknown operation error strategy %q", prefs.ErrorStrategy.Operation)
	}
	if !batch.ValidUpdateStrategy(prefs.ErrorStrategy.Update) {
		return errors.Errorf("unknown update error strategy %q", prefs.ErrorStrategy.Update)
	}

	// Drop operations left indistinguishable from the default.
	def := operation.Default()
	prefs.Quick = operation.CleanEmpty(prefs.Quick, def)
	for i := range prefs.Menus {
		prefs.Menus[i].Operations = operation.CleanEmpty(prefs.Menus[i].Operations, def)
	}

	return nil
}

// 🔧 JSONParser implements the Parser interface for JSON files
type JSONParser struct{}

func init() {
	Register(&JSONParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".json")
}

// 📝 Parse parses the preferences from JSON bytes
func (p *JSONParser) Parse(ctx context.Context, data []byte) (*Prefs, error) {
	var prefs Prefs
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&prefs); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return &prefs, nil
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Prefs, error) {
	var prefs Prefs
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&prefs); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &prefs, nil
}
