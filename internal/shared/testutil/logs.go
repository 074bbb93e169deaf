// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call, logger attributes included
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type captureStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogCapture is a slog.Handler that keeps every record in memory.
// Loggers derived with With share the same store.
type LogCapture struct {
	store *captureStore
	attrs []slog.Attr
}

// NewTestLogger returns a logger whose output can be inspected
func NewTestLogger(t *testing.T) (*slog.Logger, *LogCapture) {
	t.Helper()
	c := &LogCapture{store: &captureStore{}}
	return slog.New(c), c
}

// Enabled implements slog.Handler
func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(c.attrs)+r.NumAttrs())
	for _, a := range c.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	c.store.mu.Lock()
	c.store.records = append(c.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	c.store.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(c.attrs)+len(attrs))
	merged = append(merged, c.attrs...)
	merged = append(merged, attrs...)
	return &LogCapture{store: c.store, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Records returns a copy of everything captured so far
func (c *LogCapture) Records() []LogRecord {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	out := make([]LogRecord, len(c.store.records))
	copy(out, c.store.records)
	return out
}

// Find returns the first record at level whose message contains msg
func (c *LogCapture) Find(level slog.Level, msg string) (LogRecord, bool) {
	for _, r := range c.Records() {
		if r.Level == level && strings.Contains(r.Message, msg) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// Count returns the number of records at level
func (c *LogCapture) Count(level slog.Level) int {
	n := 0
	for _, r := range c.Records() {
		if r.Level == level {
			n++
		}
	}
	return n
}

// AssertLogged fails the test unless a matching record was captured
func AssertLogged(t *testing.T, c *LogCapture, level slog.Level, msg string) LogRecord {
	t.Helper()
	r, ok := c.Find(level, msg)
	if !ok {
		t.Errorf("no %s log containing %q", level, msg)
		for _, rec := range c.Records() {
			t.Logf("  [%s] %s %v", rec.Level, rec.Message, rec.Attrs)
		}
	}
	return r
}

// AssertNoErrors fails the test if anything was logged at error level
func AssertNoErrors(t *testing.T, c *LogCapture) {
	t.Helper()
	for _, r := range c.Records() {
		if r.Level >= slog.LevelError {
			t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
		}
	}
}
