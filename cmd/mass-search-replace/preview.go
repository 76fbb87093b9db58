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

package main

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/engine"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/template"
)

// newPreviewCmd creates the preview command
func newPreviewCmd() *cobra.Command {
	var (
		listPath string
		menuName string
		bookSpec string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what each operation would produce, without writing",
		Long: `Preview evaluates each operation of the chain over the selected books
and prints the source text next to the value the operation would write.
The library snapshot is never modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			ops, err := loadOperations(ctx, listPath, menuName)
			if err != nil {
				return err
			}
			ids, err := parseBookIDs(bookSpec, lib)
			if err != nil {
				return err
			}

			books := make([]engine.PreviewBook, 0, len(ids))
			for _, id := range ids {
				rec, err := lib.Metadata(id)
				if err != nil {
					return errors.Errorf("loading book %d: %w", id, err)
				}
				books = append(books, engine.PreviewBook{ID: id, Record: rec})
			}

			eng := engine.New(lib.Schema(), template.NewSimpleEvaluator(lib.Schema()))
			identTypes := lib.IdentifierTypes()

			for i, op := range ops {
				pterm.DefaultSection.Printfln("Operation %d/%d: %s", i+1, len(ops), op.String())

				results, err := eng.Preview(ctx, op, identTypes, books)
				if err != nil {
					pterm.Error.Printfln("invalid operation: %s", err)
					continue
				}

				rows := pterm.TableData{{"Book", "Search text", "Result"}}
				for _, r := range results {
					rows = append(rows, []string{strconv.Itoa(r.BookID), r.Text, r.Result})
				}
				if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
					return errors.Errorf("rendering preview: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&listPath, "operations", "o", "", "operation list file (.json or .hcl)")
	cmd.Flags().StringVarP(&menuName, "menu", "m", "", "menu name from the preferences")
	cmd.Flags().StringVarP(&bookSpec, "books", "b", "", "comma-separated book ids (default: all)")

	return cmd
}
