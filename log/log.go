// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Logger writes key/value pairs to a Handler.
type Logger interface {
	// With returns a new Logger that has this logger's attributes plus the given attributes.
	With(ctx ...any) Logger

	// Debug logs at LevelDebug.
	Debug(msg string, ctx ...any)

	// Info logs at LevelInfo.
	Info(msg string, ctx ...any)

	// Warn logs at LevelWarn.
	Warn(msg string, ctx ...any)

	// Error logs at LevelError.
	Error(msg string, ctx ...any)

	// Handler returns the underlying handler of the inner logger.
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// NewLogger returns a logger with the specified handler set.
func NewLogger(h slog.Handler) Logger {
	return &logger{slog.New(h)}
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Handler() slog.Handler {
	return l.inner.Handler()
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.inner.Log(context.Background(), slog.LevelDebug, msg, ctx...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.inner.Log(context.Background(), slog.LevelInfo, msg, ctx...)
}

func (l *logger) Warn(msg string, ctx ...any) {
	l.inner.Log(context.Background(), slog.LevelWarn, msg, ctx...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.inner.Log(context.Background(), slog.LevelError, msg, ctx...)
}

var root atomic.Pointer[logger]

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	if lg, ok := l.(*logger); ok {
		root.Store(lg)
		return
	}
	root.Store(&logger{slog.New(l.Handler())})
}

// Root returns the root logger.
func Root() Logger {
	return root.Load()
}

// WithContext returns a logger carrying the given attributes,
// derived from the root logger.
func WithContext(ctx ...any) Logger {
	return Root().With(ctx...)
}

// Debug logs a message at the debug level with context key/value pairs.
func Debug(msg string, ctx ...any) {
	Root().Debug(msg, ctx...)
}

// Info logs a message at the info level with context key/value pairs.
func Info(msg string, ctx ...any) {
	Root().Info(msg, ctx...)
}

// Warn logs a message at the warn level with context key/value pairs.
func Warn(msg string, ctx ...any) {
	Root().Warn(msg, ctx...)
}

// Error logs a message at the error level with context key/value pairs.
func Error(msg string, ctx ...any) {
	Root().Error(msg, ctx...)
}
