// Package logger provides the structured logging stack shared by the
// dispatcher, downloader and query engine: a colorized console handler for
// local development and a bus-backed handler that forwards warn/error
// records to the host as diagnostic events, fanned out behind a single
// slog.Logger.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/navigraph/navdata-interface/internal/bus"
)

// ANSI color codes.
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Gray   = "\033[37m"
)

// ConsoleHandler renders records as a single colorized line, matching the
// terse console output a simulator add-on's dev console expects.
type ConsoleHandler struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleHandler(out io.Writer) *ConsoleHandler {
	return &ConsoleHandler{out: out}
}

func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	levelColor := Reset
	switch r.Level {
	case slog.LevelDebug:
		levelColor = Gray
	case slog.LevelInfo:
		levelColor = Green
	case slog.LevelWarn:
		levelColor = Yellow
	case slog.LevelError:
		levelColor = Red
	}

	timeStr := r.Time.Format(time.TimeOnly)
	msg := fmt.Sprintf("%s[NAVIGRAPH]%s %s%s%s [%s] %s\n", Blue, Reset, levelColor, r.Level.String()[:4], Reset, timeStr, r.Message)

	_, err := h.out.Write([]byte(msg))
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *ConsoleHandler) WithGroup(name string) slog.Handler       { return h }

// BusHandler forwards warn-and-above records onto the host bus's event
// topic, as a {level, message, time, data} JSON object (with no "event"
// field, unlike the dispatcher's events), so a host-side dev console can surface them
// without tailing a file. It intentionally drops Info/Debug records — the
// host only cares about things worth a diagnostic.
type BusHandler struct {
	mu  sync.Mutex
	bus bus.HostBus
}

func NewBusHandler() *BusHandler {
	return &BusHandler{}
}

// SetBus attaches the live host bus once the dispatcher has one; records
// logged before this call are simply dropped, matching the teacher's
// SetContext-before-first-emit pattern.
func (h *BusHandler) SetBus(b bus.HostBus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bus = b
}

func (h *BusHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (h *BusHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	b := h.bus
	h.mu.Unlock()

	if b == nil {
		return nil
	}

	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	payload, err := json.Marshal(map[string]any{
		"level":   r.Level.String(),
		"message": r.Message,
		"time":    r.Time.Format(time.RFC3339),
		"data":    attrs,
	})
	if err != nil {
		return err
	}

	b.Publish(bus.TopicEvent, payload)
	return nil
}

func (h *BusHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *BusHandler) WithGroup(name string) slog.Handler       { return h }

// FanoutHandler dispatches every record to each wrapped handler.
type FanoutHandler struct {
	handlers []slog.Handler
}

func (h *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			_ = handler.Handle(ctx, r)
		}
	}
	return nil
}

func (h *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &FanoutHandler{handlers: next}
}

func (h *FanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &FanoutHandler{handlers: next}
}

// New builds the logger used across the module: console output plus a
// BusHandler the caller attaches to the live bus once it exists.
func New(consoleOutput io.Writer) (*slog.Logger, *BusHandler) {
	busHandler := NewBusHandler()
	handler := &FanoutHandler{
		handlers: []slog.Handler{NewConsoleHandler(consoleOutput), busHandler},
	}
	return slog.New(handler), busHandler
}
