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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	bookIndent = 4  // spaces to indent book entries
	titleWidth = 35 // base width for the book title
	fieldWidth = 15 // width for the field name
)

// 🎯 BookChange represents one field change on one book for logging
type BookChange struct {
	BookID  int    // Library book id
	Title   string // Book title
	Field   string // Destination field
	Old     string // Value before the change
	New     string // Value after the change
	Changed bool   // Whether the value actually differs
	Failed  bool   // Whether the change could not be applied
}

// 📦 OperationRun represents one search/replace operation being applied
type OperationRun struct {
	Index   int    // 1-based position in the chain
	Count   int    // Total operations in the chain
	Summary string // Operation summary line
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *OperationRun
	changes   []BookChange
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// Zerolog exposes the structured logger so it can be attached to a
// context with zerolog's own helpers.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// 📝 formatBookChange formats a book change for display
func (l *Logger) formatBookChange(c BookChange) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case c.Failed:
		symbol = '✗'
		symbolColor = color.FgRed
	case c.Changed:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	detail := fmt.Sprintf("%q => %q", c.Old, c.New)
	if !c.Changed && !c.Failed {
		detail = "unchanged"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", bookIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", titleWidth, c.Title),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", fieldWidth, c.Field)),
		detail)
}

// 📝 LogBookChange logs a field change on one book
func (l *Logger) LogBookChange(ctx context.Context, c BookChange) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.changes = append(l.changes, c)

	fmt.Fprintln(l.console, l.formatBookChange(c))

	l.zlog.Info().
		Int("book", c.BookID).
		Str("title", c.Title).
		Str("field", c.Field).
		Str("old", c.Old).
		Str("new", c.New).
		Bool("changed", c.Changed).
		Bool("failed", c.Failed).
		Msg("book change")
}

// 📝 StartOperation starts a new search/replace operation
func (l *Logger) StartOperation(ctx context.Context, op OperationRun) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.changes = nil

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("Operation %d/%d", op.Index, op.Count),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Summary))

	l.zlog.Info().
		Int("index", op.Index).
		Int("count", op.Count).
		Str("operation", op.Summary).
		Msg("starting operation")
}

// 📝 EndOperation ends the current search/replace operation
func (l *Logger) EndOperation(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	changed := 0
	for _, c := range l.changes {
		if c.Changed {
			changed++
		}
	}
	l.zlog.Info().
		Int("index", l.currentOp.Index).
		Int("books", len(l.changes)).
		Int("changed", changed).
		Msg("operation complete")

	l.currentOp = nil
	l.changes = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	appText := color.New(color.Bold, color.FgCyan).Sprint("mass-search-replace")
	fmt.Fprintf(l.console, "\n%s %s\n\n", appText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
