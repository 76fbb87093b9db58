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
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/config"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// newOperationsCmd creates the operations command group
func newOperationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "Inspect and convert operation list files",
	}
	cmd.AddCommand(newOperationsShowCmd(), newOperationsConvertCmd())
	return cmd
}

func newOperationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print the operations of a list file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := config.ImportOperations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for i, op := range ops {
				marker := pterm.Green("active")
				if !op.Active {
					marker = pterm.Gray("inactive")
				}
				pterm.Printfln("%2d. [%s] %s", i+1, marker, op.String())
			}
			return nil
		},
	}
}

func newOperationsConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <src> <dst.json>",
		Short: "Convert an operation list file to the exported JSON shape",
		Long: `Convert reads an operation list in any supported format, including
HCL operation blocks, and writes it back in the JSON shape the plugin
exchanges with other installs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ops, err := config.ImportOperations(ctx, args[0])
			if err != nil {
				return err
			}
			if err := config.ExportOperations(ctx, args[1], ops); err != nil {
				return err
			}
			pterm.Success.Printfln("wrote %d operations (%d active)",
				len(ops), len(operation.ActiveOperations(ops, operation.Default())))
			return nil
		},
	}
}
