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

package library

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	"gitlab.com/tozd/go/errors"
)

const (
	// snapshotMagic identifies a library snapshot file.
	snapshotMagic = "MSRL"
	// snapshotVersion is the current snapshot format version.
	snapshotVersion = 1
	// SnapshotExtension is the conventional file extension for snapshots.
	SnapshotExtension = ".msrl"
)

// 📦 snapshot is the on-disk shape of a MemoryLibrary: an lz4-framed
// msgpack document prefixed by a small plain header.
type snapshot struct {
	Version         int            `msgpack:"version"`
	Books           map[int]Record `msgpack:"books"`
	IdentifierTypes []string       `msgpack:"identifier_types,omitempty"`
}

// 💾 Save writes the library to path as a compressed snapshot.
func (l *MemoryLibrary) Save(ctx context.Context, path string) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Int("books", len(l.books)).Msg("saving library snapshot")

	snap := snapshot{
		Version:         snapshotVersion,
		Books:           l.books,
		IdentifierTypes: l.idents,
	}

	payload, err := msgpack.Marshal(&snap)
	if err != nil {
		return errors.Errorf("encoding snapshot: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(snapshotMagic)
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return errors.Errorf("compressing snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return errors.Errorf("flushing snapshot: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Errorf("writing snapshot file: %w", err)
	}
	return nil
}

// 📂 Open reads a snapshot from path into a new MemoryLibrary using the
// given schema.
func Open(ctx context.Context, path string, schema *Schema) (*MemoryLibrary, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("opening library snapshot")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading snapshot file: %w", err)
	}
	if len(data) < len(snapshotMagic) || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return nil, errors.Errorf("invalid snapshot file %s: bad magic", path)
	}

	zr := lz4.NewReader(bytes.NewReader(data[len(snapshotMagic):]))
	var payload bytes.Buffer
	if _, err := payload.ReadFrom(zr); err != nil {
		return nil, errors.Errorf("decompressing snapshot: %w", err)
	}

	var snap snapshot
	if err := msgpack.Unmarshal(payload.Bytes(), &snap); err != nil {
		return nil, errors.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, errors.Errorf("unsupported snapshot version %d", snap.Version)
	}

	lib := NewMemoryLibrary(schema)
	lib.idents = snap.IdentifierTypes
	for id, rec := range snap.Books {
		lib.AddBook(id, normalizeRecord(rec, schema))
	}
	return lib, nil
}

// 🔧 normalizeRecord re-types values that msgpack decodes generically:
// []any becomes []string, map[any]any becomes map[string]string for the
// identifier field, integer kinds collapse to int.
func normalizeRecord(rec Record, schema *Schema) Record {
	out := make(Record, len(rec))
	for field, v := range rec {
		meta, _ := schema.Field(field)
		out[field] = normalizeValue(v, meta)
	}
	return out
}

func normalizeValue(v any, meta *FieldMeta) any {
	switch t := v.(type) {
	case []any:
		vals := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				vals = append(vals, s)
			}
		}
		return vals
	case map[string]any:
		m := make(map[string]string, len(t))
		for k, item := range t {
			if s, ok := item.(string); ok {
				m[k] = s
			}
		}
		return m
	case map[any]any:
		m := make(map[string]string, len(t))
		for k, item := range t {
			ks, kok := k.(string)
			vs, vok := item.(string)
			if kok && vok {
				m[ks] = vs
			}
		}
		return m
	case int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return toInt(t)
	case string:
		if meta != nil && meta.Datatype == DatatypeDatetime {
			if parsed, err := time.Parse(time.RFC3339, t); err == nil {
				return parsed
			}
		}
		return t
	default:
		return t
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return int(t)
	default:
		return 0
	}
}
