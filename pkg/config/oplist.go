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

package config

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// operationList is the on-disk shape of an exported operation list.
type operationList struct {
	Operations []json.RawMessage `json:"Operations"`
}

// 📥 ImportOperations reads an operation list file. JSON files use the
// exported {"Operations": [...]} shape; .hcl files use operation blocks.
// Every record must carry the full key set, so lists written by other
// versions of the plugin are rejected instead of silently defaulted.
func ImportOperations(ctx context.Context, path string) ([]operation.Operation, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("importing operation list")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading operation list: %w", err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".hcl") {
		return parseOperationsHCL(ctx, data, path)
	}

	var list operationList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.Errorf("parsing operation list: %w", err)
	}

	ops := make([]operation.Operation, 0, len(list.Operations))
	for i, raw := range list.Operations {
		var src map[string]any
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, errors.Errorf("parsing operation %d: %w", i+1, err)
		}
		op, verr := operation.FromMap(src)
		if verr != nil {
			return nil, errors.Errorf("operation %d: %w", i+1, verr)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// 📤 ExportOperations writes an operation list as JSON.
func ExportOperations(ctx context.Context, path string, ops []operation.Operation) error {
	logger := zerolog.Ctx(ctx)

	raws := make([]json.RawMessage, 0, len(ops))
	for i, op := range ops {
		raw, err := json.Marshal(op)
		if err != nil {
			return errors.Errorf("marshaling operation %d: %w", i+1, err)
		}
		raws = append(raws, raw)
	}

	data, err := json.MarshalIndent(operationList{Operations: raws}, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling operation list: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Errorf("writing operation list: %w", err)
	}

	logger.Debug().Str("path", path).Int("operations", len(ops)).Msg("operation list exported")
	return nil
}
