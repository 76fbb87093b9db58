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
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Flags
	libraryPath string
	prefsPath   string
	debug       bool
)

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mass-search-replace",
		Short: "Apply chained search/replace operations to book metadata",
		Long: `mass-search-replace runs configured search/replace operations over the
metadata of a book library snapshot. Operations are evaluated in order,
each one seeing the result of the previous, and the accumulated changes
are committed in one pass at the end.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	cmd.PersistentFlags().StringVarP(&libraryPath, "library", "l", "library.msrl", "library snapshot path")
	cmd.PersistentFlags().StringVarP(&prefsPath, "prefs", "p", "", "preferences file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(
		newRunCmd(),
		newPreviewCmd(),
		newValidateCmd(),
		newMenuCmd(),
		newOperationsCmd(),
	)
	return cmd
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
