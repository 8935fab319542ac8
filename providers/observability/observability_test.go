package observability

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestAttributeConstructors(t *testing.T) {
	tests := []struct {
		name      string
		attr      Attribute
		wantKey   string
		wantValue interface{}
	}{
		{"string", String("k", "v"), "k", "v"},
		{"int", Int("count", 42), "count", 42},
		{"int64", Int64("big", 9223372036854775807), "big", int64(9223372036854775807)},
		{"float64", Float64("ratio", 0.5), "ratio", 0.5},
		{"bool", Bool("flag", true), "flag", true},
		{"duration", Duration("elapsed", time.Second), "elapsed", time.Second},
		{"error", Error(errors.New("boom")), AttrError, "boom"},
		{"nil error", Error(nil), AttrError, ""},
		{"string slice", StringSlice("tiers", []string{"strict", "lenient"}), "tiers", []string{"strict", "lenient"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if !reflect.DeepEqual(tt.attr.Value, tt.wantValue) {
				t.Errorf("Value = %v, want %v", tt.attr.Value, tt.wantValue)
			}
		})
	}
}

func TestStatusCode_Values(t *testing.T) {
	if StatusUnset != 0 || StatusOK != 1 || StatusError != 2 {
		t.Errorf("unexpected status code values: %d %d %d", StatusUnset, StatusOK, StatusError)
	}
}

type recordingMetrics struct {
	counters []string
}

func (r *recordingMetrics) Counter(name string) Counter {
	r.counters = append(r.counters, name)
	return nil
}

func (r *recordingMetrics) Histogram(string) Histogram { return nil }

func TestCompose_RoutesEachConcern(t *testing.T) {
	base := &mockProvider{label: "base"}
	metrics := &recordingMetrics{}

	provider := Compose(base, metrics, base)
	provider.Counter(MetricNormalizeResults)

	if len(metrics.counters) != 1 || metrics.counters[0] != MetricNormalizeResults {
		t.Errorf("expected counter lookup to reach the metrics part, got %v", metrics.counters)
	}

	ctx, span := provider.StartSpan(context.Background(), SpanExtract)
	if ctx == nil || span != nil {
		t.Errorf("expected tracer part to handle StartSpan")
	}
}
