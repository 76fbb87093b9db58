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
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/config"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/library"
	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

// openLibrary loads the library snapshot named by the --library flag.
func openLibrary(ctx context.Context) (*library.MemoryLibrary, error) {
	lib, err := library.Open(ctx, libraryPath, library.NewCalibreSchema())
	if err != nil {
		return nil, errors.Errorf("opening library %q: %w", libraryPath, err)
	}
	return lib, nil
}

// loadPrefs loads the preferences file, or the defaults when no --prefs
// flag was given.
func loadPrefs(ctx context.Context) (*config.Prefs, error) {
	if prefsPath == "" {
		return config.DefaultPrefs(), nil
	}
	return config.Load(ctx, prefsPath)
}

// loadOperations resolves the operation source of a command: either an
// operation list file or a named menu from the preferences.
func loadOperations(ctx context.Context, listPath, menuName string) ([]operation.Operation, error) {
	switch {
	case listPath != "" && menuName != "":
		return nil, errors.Errorf("--operations and --menu are mutually exclusive")

	case listPath != "":
		return config.ImportOperations(ctx, listPath)

	case menuName != "":
		prefs, err := loadPrefs(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range operation.ActiveMenus(prefs.Menus) {
			if m.Text == menuName {
				return m.Operations, nil
			}
		}
		return nil, errors.Errorf("no runnable menu named %q", menuName)

	default:
		return nil, errors.Errorf("one of --operations or --menu is required")
	}
}

// parseBookIDs parses a comma-separated id list; empty means all books.
func parseBookIDs(spec string, lib *library.MemoryLibrary) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return lib.AllIDs(), nil
	}
	parts := strings.Split(spec, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.Errorf("invalid book id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
