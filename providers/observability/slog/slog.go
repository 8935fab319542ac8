package slog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/leofalp/pdfstruct/providers/observability"
)

// summaryKeys are written first on a span's end record, in this order, so a
// finished extraction reads mode, tier and failure kind at a glance.
var summaryKeys = []string{
	observability.AttrDocumentMode,
	observability.AttrNormalizeTier,
	observability.AttrErrorKind,
	observability.AttrLLMFinishReason,
}

// Observer implements observability.Provider on top of a slog.Logger.
//
// A span produces one record when it ends: Debug when it succeeded, Warn when
// it carries an error status or a recorded error. Counters and histograms are
// aggregated in memory per label set and never logged above Trace; read them
// back with CounterValue and Observations. In the CLI and server they sit
// behind the Prometheus registry via observability.Compose, so only the
// tracer and logger of this type are used there.
type Observer struct {
	logger *slog.Logger

	mu         sync.Mutex
	counters   map[string]map[string]*series
	histograms map[string]*summary
}

type series struct {
	labels map[string]string
	total  int64
}

type summary struct {
	count int64
	sum   float64
}

// New creates an observer writing to logger, or to slog.Default when nil.
func New(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{
		logger:     logger,
		counters:   make(map[string]map[string]*series),
		histograms: make(map[string]*summary),
	}
}

var _ observability.Provider = (*Observer)(nil)

// --- TRACING ---

func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	s := &span{observer: o, name: name, start: time.Now()}
	s.set(attrs)
	return observability.ContextWithSpan(ctx, s), s
}

type span struct {
	observer *Observer
	name     string
	start    time.Time

	mu          sync.Mutex
	attrs       []observability.Attribute
	status      observability.StatusCode
	description string
	err         error
	ended       bool
}

// set stores attrs, replacing earlier values for the same key.
func (s *span) set(attrs []observability.Attribute) {
	for _, attr := range attrs {
		replaced := false
		for i := range s.attrs {
			if s.attrs[i].Key == attr.Key {
				s.attrs[i] = attr
				replaced = true
				break
			}
		}
		if !replaced {
			s.attrs = append(s.attrs, attr)
		}
	}
}

// End logs the span once. Later calls are ignored.
func (s *span) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	record := s.endRecord()
	level := slog.LevelDebug
	if s.status == observability.StatusError || s.err != nil {
		level = slog.LevelWarn
	}
	s.mu.Unlock()

	s.observer.logger.LogAttrs(context.Background(), level, "span end", record...)
}

func (s *span) endRecord() []slog.Attr {
	record := []slog.Attr{
		slog.String("span", s.name),
		slog.Duration(observability.AttrDuration, time.Since(s.start)),
	}

	promoted := make(map[string]bool, len(summaryKeys))
	for _, key := range summaryKeys {
		for _, attr := range s.attrs {
			if attr.Key == key {
				record = append(record, slog.Any(attr.Key, attr.Value))
				promoted[key] = true
			}
		}
	}

	record = append(record, slog.String(observability.AttrStatus, statusName(s.status)))
	if s.description != "" {
		record = append(record, slog.String(observability.AttrStatusDescription, s.description))
	}

	for _, attr := range s.attrs {
		if !promoted[attr.Key] {
			record = append(record, slog.Any(attr.Key, attr.Value))
		}
	}
	if s.err != nil {
		record = append(record, slog.String(observability.AttrError, s.err.Error()))
	}
	return record
}

func (s *span) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(attrs)
}

func (s *span) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
	s.description = description
}

// RecordError keeps the last error for the end record. The caller logs the
// failure itself, so nothing is written here.
func (s *span) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *span) AddEvent(name string, attrs ...observability.Attribute) {
	record := make([]slog.Attr, 0, len(attrs)+1)
	record = append(record, slog.String("span", s.name))
	record = append(record, toSlog(attrs)...)
	s.observer.logger.LogAttrs(context.Background(), slog.LevelDebug, name, record...)
}

func statusName(code observability.StatusCode) string {
	switch code {
	case observability.StatusOK:
		return "ok"
	case observability.StatusError:
		return "error"
	default:
		return "unset"
	}
}

// --- METRICS ---

func (o *Observer) Counter(name string) observability.Counter {
	return counter{observer: o, name: name}
}

func (o *Observer) Histogram(name string) observability.Histogram {
	return histogram{observer: o, name: name}
}

type counter struct {
	observer *Observer
	name     string
}

// Add ignores negative deltas, as Prometheus counters do.
func (c counter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	if value < 0 {
		return
	}
	c.observer.add(c.name, value, attrs)

	record := append([]slog.Attr{slog.String("metric", c.name), slog.Int64("delta", value)}, toSlog(attrs)...)
	c.observer.logger.LogAttrs(ctx, LevelTrace, "counter", record...)
}

type histogram struct {
	observer *Observer
	name     string
}

func (h histogram) Record(_ context.Context, value float64, _ ...observability.Attribute) {
	h.observer.mu.Lock()
	defer h.observer.mu.Unlock()
	s, ok := h.observer.histograms[h.name]
	if !ok {
		s = &summary{}
		h.observer.histograms[h.name] = s
	}
	s.count++
	s.sum += value
}

func (o *Observer) add(name string, value int64, attrs []observability.Attribute) {
	labels := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		labels[attr.Key] = fmt.Sprint(attr.Value)
	}
	key := seriesKey(labels)

	o.mu.Lock()
	defer o.mu.Unlock()
	byLabels, ok := o.counters[name]
	if !ok {
		byLabels = make(map[string]*series)
		o.counters[name] = byLabels
	}
	s, ok := byLabels[key]
	if !ok {
		s = &series{labels: labels}
		byLabels[key] = s
	}
	s.total += value
}

func seriesKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

// CounterValue returns the total of the named counter over every series whose
// labels include all of match. With no match it is the counter's grand total;
// an unused counter reads zero.
//
//	obs.CounterValue(observability.MetricNormalizeResults,
//	    observability.String(observability.AttrNormalizeTier, "lenient"))
func (o *Observer) CounterValue(name string, match ...observability.Attribute) int64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	var total int64
	for _, s := range o.counters[name] {
		if matches(s.labels, match) {
			total += s.total
		}
	}
	return total
}

func matches(labels map[string]string, match []observability.Attribute) bool {
	for _, attr := range match {
		if v, ok := labels[attr.Key]; !ok || v != fmt.Sprint(attr.Value) {
			return false
		}
	}
	return true
}

// Observations returns how many values the named histogram received and their
// sum.
func (o *Observer) Observations(name string) (count int64, sum float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.histograms[name]; ok {
		return s.count, s.sum
	}
	return 0, 0
}

// --- LOGGING ---

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, LevelTrace, msg, attrs)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs)
}

// log tags the record with the name of the span in ctx when that span
// belongs to this package, so provider logs line up with their extraction.
func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs []observability.Attribute) {
	if !o.logger.Enabled(ctx, level) {
		return
	}
	record := make([]slog.Attr, 0, len(attrs)+1)
	if s, ok := observability.SpanFromContext(ctx).(*span); ok {
		record = append(record, slog.String("span", s.name))
	}
	record = append(record, toSlog(attrs)...)
	o.logger.LogAttrs(ctx, level, msg, record...)
}

func toSlog(attrs []observability.Attribute) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, slog.Any(attr.Key, attr.Value))
	}
	return out
}
