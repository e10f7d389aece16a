package clog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
)

// requestColumns are printed inline after the level, in this order, and
// removed from the trailing attribute list.
var requestColumns = []string{"proto", "method", "path", "status", "duration"}

type TextHandlerConfig struct {
	Color bool
	Level *slog.Level
}

type TextHandlerOption func(*TextHandlerConfig)

func WithColor(c bool) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Color = c
	}
}

func WithLevel(level slog.Level) TextHandlerOption {
	return func(cfg *TextHandlerConfig) {
		cfg.Level = &level
	}
}

// HTTPTextHandler renders one request per line for local development:
// timestamp, colored level, the request columns, the message, then any
// remaining attributes indented below.
type HTTPTextHandler struct {
	cfg   TextHandlerConfig
	attrs []slog.Attr
	mu    *sync.Mutex
	w     io.Writer
}

func NewHTTPTextHandler(w io.Writer, opts ...TextHandlerOption) *HTTPTextHandler {
	cfg := TextHandlerConfig{Color: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HTTPTextHandler{cfg: cfg, mu: &sync.Mutex{}, w: w}
}

func (h *HTTPTextHandler) Enabled(_ context.Context, l slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.cfg.Level != nil {
		minLevel = h.cfg.Level.Level()
	}
	return l >= minLevel
}

func (h *HTTPTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

// WithGroup is accepted but flattened: the text format has no nesting.
func (h *HTTPTextHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *HTTPTextHandler) Handle(_ context.Context, record slog.Record) error {
	kv := map[string]slog.Value{}
	for _, attr := range h.attrs {
		kv[attr.Key] = attr.Value
	}
	record.Attrs(func(attr slog.Attr) bool {
		kv[attr.Key] = attr.Value
		return true
	})

	paint := h.painter(record.Level)
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%s %s ", record.Time.Format(time.RFC3339), paint(record.Level.String()))
	for _, key := range requestColumns {
		if v, ok := kv[key]; ok {
			fmt.Fprintf(buf, "%s ", v)
			delete(kv, key)
		}
	}
	fmt.Fprint(buf, h.paintIf(color.FgGreen)(record.Message))
	if e, ok := kv[ErrorAttributeKey]; ok {
		delete(kv, ErrorAttributeKey)
		fmt.Fprintf(buf, " %s", h.paintIf(color.FgRed)(e.String()))
	}
	fmt.Fprintln(buf)

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "    %s=%s\n", k, kv[k])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write log record: %w", err)
	}
	return nil
}

func (h *HTTPTextHandler) painter(level slog.Level) func(...any) string {
	switch {
	case level >= slog.LevelError:
		return h.paintIf(color.FgRed)
	case level >= slog.LevelWarn:
		return h.paintIf(color.FgYellow)
	case level >= slog.LevelInfo:
		return h.paintIf(color.FgBlue)
	default:
		return h.paintIf(color.FgCyan)
	}
}

func (h *HTTPTextHandler) paintIf(attr color.Attribute) func(...any) string {
	if !h.cfg.Color {
		return fmt.Sprint
	}
	return color.New(attr).SprintFunc()
}
