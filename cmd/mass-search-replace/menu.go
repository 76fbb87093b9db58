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

	"github.com/un-pogaz/Mass-Search-Replace/pkg/config"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// newMenuCmd creates the menu command group
func newMenuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "List, export, and import configured menus",
	}
	cmd.AddCommand(newMenuListCmd(), newMenuExportCmd(), newMenuImportCmd())
	return cmd
}

func newMenuListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the menus of the preferences file",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := loadPrefs(cmd.Context())
			if err != nil {
				return err
			}

			rows := pterm.TableData{{"Active", "SubMenu", "Text", "Operations"}}
			for _, m := range prefs.Menus {
				text := m.Text
				if text == "" {
					text = "--- separator ---"
				}
				rows = append(rows, []string{
					strconv.FormatBool(m.Active), m.SubMenu, text, strconv.Itoa(len(m.Operations)),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

func newMenuExportCmd() *cobra.Command {
	var iconDir string

	cmd := &cobra.Command{
		Use:   "export <archive.zip>",
		Short: "Export the configured menus and their icons to a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			prefs, err := loadPrefs(ctx)
			if err != nil {
				return err
			}
			if len(prefs.Menus) == 0 {
				return errors.Errorf("no menus to export")
			}
			return config.ExportMenuArchive(ctx, args[0], prefs.Menus, iconDir)
		},
	}

	cmd.Flags().StringVar(&iconDir, "icons", "icons", "directory holding the menu icon files")
	return cmd
}

func newMenuImportCmd() *cobra.Command {
	var (
		iconDir string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "import <archive.zip>",
		Short: "Import menus from a zip archive into the preferences",
		Long: `Import reads a menu archive, extracts the bundled icons, and appends
the menus to the preferences file. With --replace the existing menus
are dropped first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if prefsPath == "" {
				return errors.Errorf("--prefs is required to import menus")
			}

			menus, err := config.ImportMenuArchive(ctx, args[0], iconDir)
			if err != nil {
				return err
			}

			prefs, err := loadPrefs(ctx)
			if err != nil {
				return err
			}
			if replace {
				prefs.Menus = menus
			} else {
				prefs.Menus = append(prefs.Menus, menus...)
			}
			if err := prefs.Save(ctx, prefsPath); err != nil {
				return err
			}

			pterm.Success.Printfln("imported %d menus (%d runnable)",
				len(menus), len(operation.ActiveMenus(menus)))
			return nil
		},
	}

	cmd.Flags().StringVar(&iconDir, "icons", "icons", "directory to extract the menu icon files into")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the existing menus instead of appending")
	return cmd
}
