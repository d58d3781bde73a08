// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/interop/driver"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so the caller skips message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for interop and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-frame state transitions, optional entry points
//   - [slog.LevelInfo]: lifecycle events (table built, device selected, resource shared)
//   - [slog.LevelWarn]: fallbacks (staged sharing, release errors)
//   - [slog.LevelError]: failed native calls, missing mandatory entry points
//
// Example:
//
//	interop.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	driver.SetLogger(l)
}

// Logger returns the current logger. The cu, vk and render packages call
// this to share the same configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
