// Package saver schedules durability flushes for components that buffer
// writes. Components register a named flush function after their own
// initialization finishes; callers decide when FlushAll runs (on
// command exit, or on a timer as the watch command does).
package saver

import (
	"errors"
	"fmt"
	"log/slog"
)

// saveable is one registered flush target.
type saveable struct {
	name  string
	flush func() error
	dirty func() bool
}

// Manager owns the registered flush targets. It is not safe for
// concurrent registration and flushing; the host drives it from one
// logical thread like everything else.
type Manager struct {
	saveables []saveable
	logger    *slog.Logger
}

// NewManager creates an empty Manager. A nil logger means slog.Default().
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Register adds a flush target. dirty reports whether the target has
// unsaved data; nil means always flush. Registering the same name again
// replaces the previous target.
func (m *Manager) Register(name string, flush func() error, dirty func() bool) {
	for i, s := range m.saveables {
		if s.name == name {
			m.saveables[i].flush = flush
			m.saveables[i].dirty = dirty
			return
		}
	}
	m.saveables = append(m.saveables, saveable{name: name, flush: flush, dirty: dirty})
}

// FlushAll runs every registered flush in registration order, skipping
// targets that report themselves clean. A failing flush does not stop
// the others; all failures are joined into the returned error.
func (m *Manager) FlushAll() error {
	var errs []error
	for _, s := range m.saveables {
		if s.dirty != nil && !s.dirty() {
			continue
		}
		if err := s.flush(); err != nil {
			m.logger.Error("flush failed", "name", s.name, "error", err)
			errs = append(errs, fmt.Errorf("flush %s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
