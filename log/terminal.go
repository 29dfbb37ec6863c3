// Copyright (c) 2021 The wasabi-swap-farm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const termTimeFormat = "01-02|15:04:05.000"

// TerminalHandler formats records for human readability on a terminal,
// with color-coded level output and a terse timestamp. Interactive use
// only.
//
//	INFO [01-02|15:04:05.000] message key=value key=value ...
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      *slog.LevelVar
	useColor bool
	attrs    []slog.Attr

	buf []byte
}

// NewTerminalHandler returns a terminal handler logging all levels.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	var level slog.LevelVar
	level.Set(slog.LevelDebug)
	return NewTerminalHandlerWithLevel(wr, &level, useColor)
}

// NewTerminalHandlerWithLevel returns the same handler as
// NewTerminalHandler but it only outputs records which are less than or
// equal to the specified verbosity level.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl *slog.LevelVar, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		wr:       wr,
		lvl:      lvl,
		useColor: useColor,
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.format(h.buf[:0], r)
	if _, err := h.wr.Write(buf); err != nil {
		return err
	}
	h.buf = buf[:0]
	return nil
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *TerminalHandler) WithGroup(_ string) slog.Handler {
	panic("not implemented")
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:       h.wr,
		lvl:      h.lvl,
		useColor: h.useColor,
		attrs:    append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

func (h *TerminalHandler) format(buf []byte, r slog.Record) []byte {
	tag := levelTag(r.Level)
	if h.useColor {
		if color := levelColor(r.Level); color > 0 {
			tag = fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, tag)
		}
	}
	buf = append(buf, tag...)
	buf = append(buf, " ["...)
	buf = r.Time.AppendFormat(buf, termTimeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		buf = h.appendAttr(buf, attr)
		return true
	})
	return append(buf, '\n')
}

func (h *TerminalHandler) appendAttr(buf []byte, attr slog.Attr) []byte {
	attr = builtinReplace(attr, true)
	buf = append(buf, ' ')
	if h.useColor {
		buf = append(buf, fmt.Sprintf("\x1b[%dm%s\x1b[0m=", colorGreen, attr.Key)...)
	} else {
		buf = append(buf, attr.Key...)
		buf = append(buf, '=')
	}
	return append(buf, attr.Value.String()...)
}

const (
	colorRed    = 31
	colorGreen  = 32
	colorYellow = 33
	colorCyan   = 36
)

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	default:
		return "EROR"
	}
}

func levelColor(l slog.Level) int {
	switch {
	case l < slog.LevelInfo:
		return colorCyan
	case l < slog.LevelWarn:
		return colorGreen
	case l < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

// StdoutHandler returns a terminal handler on stdout, colored when stdout
// is a terminal, plain logfmt otherwise.
func StdoutHandler() slog.Handler {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return NewTerminalHandler(os.Stdout, true)
	}
	return LogfmtHandler(os.Stdout)
}
