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
	"archive/zip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/un-pogaz/Mass-Search-Replace/pkg/operation"
)

const (
	// ArchiveManifest is the menu list entry inside a menu archive.
	ArchiveManifest = "owip.json"
	// ArchiveExtension is the menu archive file extension.
	ArchiveExtension = ".zip"

	archiveImageDir  = "images"
	archiveImageGlob = "images/**/*.{png,svg}"
)

// archiveManifest is the JSON shape of the manifest entry.
type archiveManifest struct {
	Menus []json.RawMessage `json:"Menu"`
}

// 📤 ExportMenuArchive writes menus and their icons to a zip archive.
// Icons are taken from iconDir and stored under images/; a menu whose
// icon file is missing is still exported, without the icon.
func ExportMenuArchive(ctx context.Context, dst string, menus []operation.Menu, iconDir string) error {
	logger := zerolog.Ctx(ctx)

	f, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	raws := make([]json.RawMessage, 0, len(menus))
	for i, m := range menus {
		raw, err := json.Marshal(m)
		if err != nil {
			return errors.Errorf("marshaling menu %d: %w", i+1, err)
		}
		raws = append(raws, raw)
	}
	manifest, err := json.MarshalIndent(archiveManifest{Menus: raws}, "", "  ")
	if err != nil {
		return errors.Errorf("marshaling manifest: %w", err)
	}

	w, err := zw.Create(ArchiveManifest)
	if err != nil {
		return errors.Errorf("creating manifest entry: %w", err)
	}
	if _, err := w.Write(manifest); err != nil {
		return errors.Errorf("writing manifest: %w", err)
	}

	for _, name := range menuImages(menus) {
		src := filepath.Join(iconDir, name)
		data, err := os.ReadFile(src)
		if err != nil {
			logger.Warn().Str("icon", name).Err(err).Msg("menu icon not exported")
			continue
		}
		w, err := zw.Create(path.Join(archiveImageDir, name))
		if err != nil {
			return errors.Errorf("creating icon entry %q: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return errors.Errorf("writing icon %q: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Errorf("closing archive: %w", err)
	}

	logger.Info().Str("path", dst).Int("menus", len(menus)).Msg("menu archive exported")
	return nil
}

// 📥 ImportMenuArchive reads menus from a zip archive and extracts the
// bundled icons into iconDir. Menu records missing keys are rejected.
func ImportMenuArchive(ctx context.Context, src string, iconDir string) ([]operation.Menu, error) {
	logger := zerolog.Ctx(ctx)

	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, errors.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	var menus []operation.Menu
	foundManifest := false

	for _, f := range zr.File {
		name := path.Clean(f.Name)
		if strings.HasPrefix(name, "..") {
			return nil, errors.Errorf("archive entry %q escapes the archive", f.Name)
		}

		switch {
		case name == ArchiveManifest:
			foundManifest = true
			menus, err = readArchiveManifest(f)
			if err != nil {
				return nil, err
			}

		default:
			ok, err := doublestar.Match(archiveImageGlob, name)
			if err != nil {
				return nil, errors.Errorf("matching entry %q: %w", name, err)
			}
			if !ok || iconDir == "" {
				continue
			}
			if err := extractArchiveIcon(f, name, iconDir); err != nil {
				return nil, err
			}
		}
	}

	if !foundManifest {
		return nil, errors.Errorf("invalid menu archive: no %s entry", ArchiveManifest)
	}

	logger.Info().Str("path", src).Int("menus", len(menus)).Msg("menu archive imported")
	return menus, nil
}

// readArchiveManifest decodes the menu list, rejecting records that
// miss required keys.
func readArchiveManifest(f *zip.File) ([]operation.Menu, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Errorf("opening manifest: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Errorf("reading manifest: %w", err)
	}

	var manifest archiveManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Errorf("parsing manifest: %w", err)
	}

	menus := make([]operation.Menu, 0, len(manifest.Menus))
	for i, raw := range manifest.Menus {
		var src map[string]any
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, errors.Errorf("parsing menu %d: %w", i+1, err)
		}
		if err := operation.ValidateMenuMap(src); err != nil {
			return nil, errors.Errorf("menu %d: %w", i+1, err)
		}
		var m operation.Menu
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, errors.Errorf("decoding menu %d: %w", i+1, err)
		}
		menus = append(menus, m)
	}
	return menus, nil
}

// extractArchiveIcon writes one images/ entry under iconDir, keeping
// the path below the images directory.
func extractArchiveIcon(f *zip.File, name, iconDir string) error {
	rel := strings.TrimPrefix(name, archiveImageDir+"/")
	dst := filepath.Join(iconDir, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Errorf("creating icon directory: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Errorf("opening icon %q: %w", name, err)
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Errorf("creating icon file %q: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return errors.Errorf("extracting icon %q: %w", name, err)
	}
	return nil
}

// menuImages collects the distinct icon names of the menus, in order.
func menuImages(menus []operation.Menu) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range menus {
		if m.Image == "" || seen[m.Image] {
			continue
		}
		seen[m.Image] = true
		names = append(names, m.Image)
	}
	return names
}
