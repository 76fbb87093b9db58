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
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/batch"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/engine"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/log"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/template"
)

// newRunCmd creates the run command
func newRunCmd() *cobra.Command {
	var (
		listPath    string
		menuName    string
		bookSpec    string
		markLabel   string
		opStrategy  string
		updStrategy string
		assumeYes   bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a chain of operations and update the library",
		Long: `Run evaluates a chain of search/replace operations over the selected
books and commits the changes to the library snapshot. It will:
1. Load the library snapshot and the operation chain
2. Validate every operation against the library schema
3. Evaluate the chain book by book, in order
4. Commit the accumulated changes and rewrite the snapshot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			console := log.New(cmd.OutOrStdout(), zerolog.GlobalLevel())
			ctx := console.Zerolog().WithContext(cmd.Context())

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

			prefs, err := loadPrefs(ctx)
			if err != nil {
				return err
			}
			if opStrategy != "" {
				prefs.ErrorStrategy.Operation = batch.OperationStrategy(opStrategy)
			}
			if updStrategy != "" {
				prefs.ErrorStrategy.Update = batch.UpdateStrategy(updStrategy)
			}
			if err := prefs.Validate(); err != nil {
				return err
			}

			if markLabel == "" && prefs.UseMark {
				markLabel = "mass_search_replace_updated"
			}

			console.Header(fmt.Sprintf("running %d operations over %d books", len(ops), len(ids)))

			progress, _ := pterm.DefaultProgressbar.
				WithTotal(len(ops) * len(ids)).
				WithTitle("Search/Replace").
				Start()

			runner, err := batch.NewRunner(batch.Options{
				Library:           lib,
				Engine:            engine.New(lib.Schema(), template.NewSimpleEvaluator(lib.Schema())),
				OperationStrategy: prefs.ErrorStrategy.Operation,
				UpdateStrategy:    prefs.ErrorStrategy.Update,
				Prompter:          &consolePrompter{assumeYes: assumeYes},
				Progress:          progressFor(progress),
				Console:           console,
				MarkLabel:         markLabel,
			})
			if err != nil {
				return err
			}

			report, err := runner.Run(ctx, ops, ids)
			if progress != nil {
				_, _ = progress.Stop()
			}
			if err != nil {
				return errors.Errorf("running operations: %w", err)
			}

			console.LogNewline()
			fmt.Fprint(cmd.OutOrStdout(), report.Summary())

			if dryRun {
				console.Info("dry run, snapshot not rewritten")
			}
			if report.Cancelled || report.Aborted {
				return nil
			}
			if !dryRun {
				if err := lib.Save(ctx, libraryPath); err != nil {
					return errors.Errorf("saving library: %w", err)
				}
			}
			if !report.Ok() {
				console.Warning("run finished with errors")
				return errors.Errorf("run finished with errors")
			}
			if !dryRun {
				console.Success("library snapshot updated")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&listPath, "operations", "o", "", "operation list file (.json or .hcl)")
	cmd.Flags().StringVarP(&menuName, "menu", "m", "", "menu name from the preferences")
	cmd.Flags().StringVarP(&bookSpec, "books", "b", "", "comma-separated book ids (default: all)")
	cmd.Flags().StringVar(&markLabel, "mark", "", "mark updated books with this label")
	cmd.Flags().StringVar(&opStrategy, "operation-strategy", "", "invalid operation policy: abort, ask, hide")
	cmd.Flags().StringVar(&updStrategy, "update-strategy", "", "update failure policy: interrupt, restore, safely stop, don't stop")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "continue without asking on invalid operations")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "evaluate and report without rewriting the snapshot")

	return cmd
}

// progressFor advances the bar from the runner's own counts. The bar is
// initially sized from the loaded operation list, which can overshoot:
// the runner skips inactive, empty and invalid operations, so the real
// total is opCount * bookCount as reported by the first callback.
func progressFor(bar *pterm.ProgressbarPrinter) batch.ProgressFunc {
	return func(opNum, opCount, bookNum, bookCount int) {
		if total := opCount * bookCount; bar.Total != total {
			bar.Total = total
		}
		bar.UpdateTitle(fmt.Sprintf("Operation %d/%d", opNum, opCount))
		bar.Increment()
	}
}

// 🎮 consolePrompter answers batch questions on the terminal.
type consolePrompter struct {
	assumeYes bool
}

func (p *consolePrompter) ContinueOnInvalid(invalid []batch.InvalidOperation) bool {
	for _, op := range invalid {
		pterm.Warning.Printfln("operation %d is invalid: %s", op.Index, op.Message)
	}
	if p.assumeYes {
		return true
	}
	ok, _ := pterm.DefaultInteractiveConfirm.
		WithDefaultText("Ignore the invalid operations and continue?").
		Show()
	return ok
}
