package slog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Format selects how NewLogger renders records.
type Format string

const (
	// FormatCompact is one line per record with attributes as a JSON object:
	//	10:40:35  INFO extraction completed {"normalize.tier":"strict"}
	FormatCompact Format = "compact"
	// FormatText is slog's key=value handler.
	FormatText Format = "text"
	// FormatJSON is slog's JSON handler, for log aggregation.
	FormatJSON Format = "json"
)

// ParseFormat parses a format name. Unknown names give FormatCompact.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText
	case FormatJSON:
		return FormatJSON
	default:
		return FormatCompact
	}
}

// CompactHandler is a slog.Handler for terminals. Colors are enabled when
// the output is a character device.
type CompactHandler struct {
	mu     *sync.Mutex
	output io.Writer
	level  slog.Leveler
	colors bool
	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*CompactHandler)(nil)

// NewCompactHandler returns a CompactHandler writing to w at level.
func NewCompactHandler(w io.Writer, level slog.Leveler) *CompactHandler {
	colors := false
	if f, ok := w.(*os.File); ok {
		colors = isTerminal(f)
	}
	return &CompactHandler{mu: &sync.Mutex{}, output: w, level: level, colors: colors}
}

func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("15:04:05")...)
	buf = append(buf, ' ')

	level := fmt.Sprintf("%5s", LogLevelString(r.Level))
	if h.colors {
		buf = append(buf, colorForLevel(r.Level)...)
		buf = append(buf, level...)
		buf = append(buf, colorReset...)
	} else {
		buf = append(buf, level...)
	}
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	fields := h.fields(r)
	if len(fields) > 0 {
		buf = append(buf, ' ')
		buf = appendJSONObject(buf, fields)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(buf)
	return err
}

func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &clone
}

func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

// fields returns handler and record attributes in order, with group
// prefixes applied and empty attributes dropped.
func (h *CompactHandler) fields(r slog.Record) []slog.Attr {
	fields := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	fields = append(fields, h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, h.qualify([]slog.Attr{attr})...)
		return true
	})
	return fields
}

func (h *CompactHandler) qualify(attrs []slog.Attr) []slog.Attr {
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		attr.Value = attr.Value.Resolve()
		if attr.Equal(slog.Attr{}) {
			continue
		}
		if attr.Value.Kind() == slog.KindGroup {
			nested := &CompactHandler{groups: append(append([]string{}, h.groups...), attr.Key)}
			out = append(out, nested.qualify(attr.Value.Group())...)
			continue
		}
		attr.Key = prefix + attr.Key
		out = append(out, attr)
	}
	return out
}

// appendJSONObject encodes fields as a JSON object, keeping their order.
func appendJSONObject(buf []byte, fields []slog.Attr) []byte {
	buf = append(buf, '{')
	for i, field := range fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, _ := json.Marshal(field.Key)
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, jsonValue(field.Value)...)
	}
	return append(buf, '}')
}

func jsonValue(v slog.Value) []byte {
	var value any
	switch v.Kind() {
	case slog.KindDuration:
		value = v.Duration().String()
	case slog.KindTime:
		value = v.Time().Format("2006-01-02T15:04:05.000Z07:00")
	default:
		value = v.Any()
		if err, ok := value.(error); ok {
			value = err.Error()
		}
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		encoded, _ = json.Marshal(fmt.Sprint(value))
	}
	return encoded
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
