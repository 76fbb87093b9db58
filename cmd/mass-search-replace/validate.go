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
	"sync"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/config"
)

// newValidateCmd creates the validate command
func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate operation list files against the library",
		Long: `Validate parses each operation list file and checks every operation
against the library schema: field names, identifier types, enum values
and template syntax. Files are checked concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			schema := lib.Schema()
			identTypes := lib.IdentifierTypes()

			var mu sync.Mutex
			invalid := 0

			g, gctx := errgroup.WithContext(ctx)
			for _, path := range args {
				path := path
				g.Go(func() error {
					ops, err := config.ImportOperations(gctx, path)
					if err != nil {
						return errors.Errorf("%s: %w", path, err)
					}

					var bad []string
					for i, op := range ops {
						if verr := op.Validate(schema, identTypes); verr != nil {
							bad = append(bad, pterm.Sprintf("operation %d (%s): %s", i+1, op.String(), verr.Message))
						}
					}

					mu.Lock()
					defer mu.Unlock()
					if len(bad) == 0 {
						pterm.Success.Printfln("%s: %d operations ok", path, len(ops))
						return nil
					}
					invalid += len(bad)
					pterm.Error.Printfln("%s:", path)
					for _, msg := range bad {
						pterm.Error.Printfln("  %s", msg)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if invalid > 0 {
				return errors.Errorf("%d invalid operations", invalid)
			}
			return nil
		},
	}
	return cmd
}
