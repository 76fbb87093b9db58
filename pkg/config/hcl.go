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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// operationBlock is the HCL surface of one operation. Optional
// attributes are pointers so an omitted attribute falls back to the
// default operation instead of the zero value.
type operationBlock struct {
	Name string `hcl:"name,label"`

	Active      *bool   `hcl:"active,optional"`
	SearchField string  `hcl:"search_field"`
	Template    *string `hcl:"template,optional"`

	SearchMode    *string `hcl:"search_mode,optional"`
	SearchFor     *string `hcl:"search_for,optional"`
	CaseSensitive *bool   `hcl:"case_sensitive,optional"`

	ReplaceWith *string `hcl:"replace_with,optional"`
	ReplaceFunc *string `hcl:"replace_func,optional"`

	DestinationField *string `hcl:"destination_field,optional"`
	ReplaceMode      *string `hcl:"replace_mode,optional"`
	CommaSeparated   *bool   `hcl:"comma_separated,optional"`

	SourceIdentType *string `hcl:"source_identifier,optional"`
	DestIdentType   *string `hcl:"destination_identifier,optional"`
}

// operationFile is the root HCL body: a list of operation blocks.
type operationFile struct {
	Operations []operationBlock `hcl:"operation,block"`
}

// 📝 parseOperationsHCL parses an operation list written as HCL blocks:
//
//	operation "strip marks" {
//	  search_field = "title"
//	  search_mode  = "regex"
//	  search_for   = "\\s*\\[.*\\]$"
//	}
func parseOperationsHCL(ctx context.Context, data []byte, filename string) ([]operation.Operation, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			// template_field lets a block target the template sentinel
			// without spelling out its literal form.
			"template_field":    cty.StringVal(library.TemplateField),
			"identifiers_field": cty.StringVal(library.IdentifiersField),
		},
	}

	var file operationFile
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &file)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	ops := make([]operation.Operation, 0, len(file.Operations))
	for i, block := range file.Operations {
		op := block.toOperation()
		if verr := op.ValidateStructure(); verr != nil {
			return nil, errors.Errorf("operation %d (%s): %w", i+1, block.Name, verr)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// toOperation applies the block attributes over the default operation.
func (b operationBlock) toOperation() operation.Operation {
	op := operation.Default()
	op.Name = b.Name
	op.SearchField = b.SearchField

	if b.Active != nil {
		op.Active = *b.Active
	}
	if b.Template != nil {
		op.Template = *b.Template
	}
	if b.SearchMode != nil {
		op.SearchMode = operation.SearchMode(*b.SearchMode)
	}
	if b.SearchFor != nil {
		op.SearchFor = *b.SearchFor
	}
	if b.CaseSensitive != nil {
		op.CaseSensitive = *b.CaseSensitive
	}
	if b.ReplaceWith != nil {
		op.ReplaceWith = *b.ReplaceWith
	}
	if b.ReplaceFunc != nil {
		op.ReplaceFunc = operation.ReplaceFunc(*b.ReplaceFunc)
	}
	if b.DestinationField != nil {
		op.DestinationField = *b.DestinationField
	}
	if b.ReplaceMode != nil {
		op.ReplaceMode = operation.ReplaceMode(*b.ReplaceMode)
	}
	if b.CommaSeparated != nil {
		op.CommaSeparated = *b.CommaSeparated
	}
	if b.SourceIdentType != nil {
		op.SourceIdentType = *b.SourceIdentType
	}
	if b.DestIdentType != nil {
		op.DestIdentType = *b.DestIdentType
	}
	return op
}
