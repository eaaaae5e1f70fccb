// Package logging builds the process logger from configuration.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/najoast/chatreg/config"
)

// Logger is a slog.Logger whose level can be changed after construction.
type Logger struct {
	*slog.Logger

	level  *slog.LevelVar
	closer io.Closer
}

// New builds a logger writing to cfg.Output (stdout, stderr or a file path).
func New(cfg config.LogConfig) (*Logger, error) {
	var (
		w      io.Writer
		closer io.Closer
	)

	switch cfg.Output {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f
	}

	l := NewWithWriter(cfg, w)
	l.closer = closer
	return l, nil
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(cfg config.LogConfig, w io.Writer) *Logger {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(cfg.Level))

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = newColorHandler(w, level, cfg.Color)
	}

	return &Logger{Logger: slog.New(handler), level: level}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a configured level onto slog. Unknown levels mean info.
func ParseLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the minimum level of every handler derived from l.
func (l *Logger) SetLevel(level config.LogLevel) {
	l.level.Set(ParseLevel(level))
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// colorHandler writes one human-readable, optionally colorized line per record.
type colorHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string

	faint, debug, info, warn, fail *color.Color
}

func newColorHandler(w io.Writer, level slog.Leveler, useColor bool) *colorHandler {
	h := &colorHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
		faint: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgCyan),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{h.faint, h.debug, h.info, h.warn, h.fail} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return h
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder

	buf.WriteString(h.faint.Sprint(r.Time.Format("15:04:05") + " "))

	switch {
	case r.Level >= slog.LevelError:
		buf.WriteString(h.fail.Sprint("ERR "))
	case r.Level >= slog.LevelWarn:
		buf.WriteString(h.warn.Sprint("WRN "))
	case r.Level >= slog.LevelInfo:
		buf.WriteString(h.info.Sprint("INF "))
	default:
		buf.WriteString(h.debug.Sprint("DBG "))
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.prefix, a)
		return true
	})

	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

func (h *colorHandler) writeAttr(buf *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, prefix+a.Key+".", ga)
		}
		return
	}
	buf.WriteString(h.faint.Sprint(" " + prefix + a.Key + "="))
	buf.WriteString(a.Value.String())
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
