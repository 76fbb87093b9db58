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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_book_change",
			op: func(t *testing.T, logger *Logger) {
				logger.LogBookChange(context.Background(), BookChange{
					BookID:  1,
					Title:   "Dune",
					Field:   "tags",
					Old:     "Fiction",
					New:     "Sci-Fi",
					Changed: true,
				})
			},
			wantLogs: []string{
				`⟳ Dune                                tags            "Fiction" => "Sci-Fi"`,
			},
		},
		{
			name: "log_operation_header",
			op: func(t *testing.T, logger *Logger) {
				logger.StartOperation(context.Background(), OperationRun{
					Index:   1,
					Count:   3,
					Summary: `tags | regex | "cat" => "dog"`,
				})
			},
			wantLogs: []string{
				`◆ Operation 1/3 • tags | regex | "cat" => "dog"`,
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("running operation chain")
			},
			wantLogs: []string{
				"mass-search-replace • running operation chain",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create buffer for console output
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			// Perform operation
			tt.op(t, logger)

			// Check output
			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	// Create logger
	logger := New(io.Discard, zerolog.InfoLevel)

	// Add to context
	ctx := context.Background()
	ctx = NewContext(ctx, logger)

	// Get from context
	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	// Check panic on missing logger
	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestBookChangeFormatting(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name   string
		change BookChange
		want   string
	}{
		{
			name: "changed_field",
			change: BookChange{
				BookID:  1,
				Title:   "Dune",
				Field:   "title",
				Old:     "dune",
				New:     "Dune",
				Changed: true,
			},
			want: `⟳ Dune                                title           "dune" => "Dune"`,
		},
		{
			name: "failed_change",
			change: BookChange{
				BookID: 2,
				Title:  "Hyperion",
				Field:  "identifiers",
				Old:    "isbn:123",
				New:    "bad value",
				Failed: true,
			},
			want: `✗ Hyperion                            identifiers     "isbn:123" => "bad value"`,
		},
		{
			name: "unchanged_field",
			change: BookChange{
				BookID: 3,
				Title:  "Foundation",
				Field:  "tags",
			},
			want: "- Foundation                          tags            unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			logger.LogBookChange(context.Background(), tt.change)

			output := strings.TrimSpace(buf.String())
			assert.Equal(t, tt.want, output, "formatted output should match")
		})
	}
}
