// Copyright 2025 The pmcpctl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ObservabilityHook receives log, error and metric events from an
// ObservableLogger.
type ObservabilityHook interface {
	// OnLog is called whenever a log event occurs
	OnLog(ctx context.Context, level log.Level, msg string, keyvals []any)

	// OnError is called whenever an error-level log occurs
	OnError(ctx context.Context, msg string, err error, keyvals []any)

	// OnMetric is called to record custom metrics
	OnMetric(ctx context.Context, name string, value float64, tags map[string]string)
}

// MetricsCollector aggregates metrics from log events in memory.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
}

// Metric represents a collected metric with its metadata.
type Metric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Tags      map[string]string `json:"tags"`
	Timestamp time.Time         `json:"timestamp"`
	Count     int64             `json:"count"`
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metric),
	}
}

// OnLog implements ObservabilityHook.
func (mc *MetricsCollector) OnLog(ctx context.Context, level log.Level, msg string, keyvals []any) {
	mc.recordMetric(MetricLogsCount, 1, map[string]string{
		"level": level.String(),
	})
}

// OnError implements ObservabilityHook.
func (mc *MetricsCollector) OnError(ctx context.Context, msg string, err error, keyvals []any) {
	tags := map[string]string{
		"error_type": "unknown",
	}
	if err != nil {
		tags["error_type"] = fmt.Sprintf("%T", err)
	}

	for i := 0; i < len(keyvals)-1; i += 2 {
		if key, ok := keyvals[i].(string); ok {
			if value, ok := keyvals[i+1].(string); ok {
				switch key {
				case "release", "operation", "cmd":
					tags[key] = value
				}
			}
		}
	}

	mc.recordMetric(MetricErrorsCount, 1, tags)
}

// OnMetric implements ObservabilityHook.
func (mc *MetricsCollector) OnMetric(ctx context.Context, name string, value float64, tags map[string]string) {
	mc.recordMetric(name, value, tags)
}

func (mc *MetricsCollector) recordMetric(name string, value float64, tags map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, tags)
	now := time.Now()
	if existing, ok := mc.metrics[key]; ok {
		existing.Value += value
		existing.Count++
		existing.Timestamp = now
		return
	}
	mc.metrics[key] = &Metric{
		Name:      name,
		Value:     value,
		Tags:      copyTags(tags),
		Timestamp: now,
		Count:     1,
	}
}

// metricKey is stable regardless of map iteration order.
func metricKey(name string, tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString(":" + k + "=" + tags[k])
	}
	return b.String()
}

func copyTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

// Snapshot returns a copy of the collected metrics sorted by name.
func (mc *MetricsCollector) Snapshot() []Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := make([]Metric, 0, len(mc.metrics))
	for _, m := range mc.metrics {
		cp := *m
		cp.Tags = copyTags(m.Tags)
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b Metric) int {
		return strings.Compare(metricKey(a.Name, a.Tags), metricKey(b.Name, b.Tags))
	})
	return out
}

// ObservableLogger wraps a logger with observability hooks.
type ObservableLogger struct {
	logger *log.Logger
	hooks  []ObservabilityHook
	mu     sync.RWMutex
}

// NewObservableLogger creates a new observable logger.
func NewObservableLogger(logger *log.Logger) *ObservableLogger {
	return &ObservableLogger{
		logger: logger,
		hooks:  make([]ObservabilityHook, 0),
	}
}

// AddHook adds an observability hook.
func (ol *ObservableLogger) AddHook(hook ObservabilityHook) {
	ol.mu.Lock()
	defer ol.mu.Unlock()
	ol.hooks = append(ol.hooks, hook)
}

// Logger returns the wrapped logger.
func (ol *ObservableLogger) Logger() *log.Logger {
	return ol.logger
}

// Debug logs a debug message and notifies hooks.
func (ol *ObservableLogger) Debug(msg string, keyvals ...any) {
	ol.logger.Debug(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.DebugLevel, msg, keyvals)
}

// Info logs an info message and notifies hooks.
func (ol *ObservableLogger) Info(msg string, keyvals ...any) {
	ol.logger.Info(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.InfoLevel, msg, keyvals)
}

// Warn logs a warning message and notifies hooks.
func (ol *ObservableLogger) Warn(msg string, keyvals ...any) {
	ol.logger.Warn(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.WarnLevel, msg, keyvals)
}

// Error logs an error message and notifies hooks.
func (ol *ObservableLogger) Error(msg string, keyvals ...any) {
	ol.logger.Error(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.ErrorLevel, msg, keyvals)

	var err error
	for i := 0; i < len(keyvals)-1; i += 2 {
		if key, ok := keyvals[i].(string); ok && key == "err" {
			if e, ok := keyvals[i+1].(error); ok {
				err = e
				break
			}
		}
	}

	ol.notifyErrorHooks(context.Background(), msg, err, keyvals)
}

// With returns a new logger with additional key-value pairs.
func (ol *ObservableLogger) With(keyvals ...any) *ObservableLogger {
	ol.mu.RLock()
	defer ol.mu.RUnlock()
	return &ObservableLogger{
		logger: ol.logger.With(keyvals...),
		hooks:  ol.hooks,
	}
}

// Metric records a custom metric.
func (ol *ObservableLogger) Metric(ctx context.Context, name string, value float64, tags map[string]string) {
	ol.notifyMetricHooks(ctx, name, value, tags)
}

// Time runs fn and records its duration under op. Success is logged at
// debug level, failure at warn level. The error of fn is returned as is.
func (ol *ObservableLogger) Time(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	ms := float64(time.Since(start).Microseconds()) / 1000

	tags := map[string]string{"operation": op, "status": "ok"}
	if err != nil {
		tags["status"] = "error"
		ol.Warn(fmt.Sprintf("%s failed after %.2fms", op, ms), "err", err)
	} else {
		ol.Debug(fmt.Sprintf("%s completed in %.2fms", op, ms))
	}
	ol.Metric(ctx, MetricOperationDuration, ms, tags)
	return err
}

func (ol *ObservableLogger) snapshotHooks() []ObservabilityHook {
	ol.mu.RLock()
	defer ol.mu.RUnlock()
	hooks := make([]ObservabilityHook, len(ol.hooks))
	copy(hooks, ol.hooks)
	return hooks
}

func (ol *ObservableLogger) notifyHooks(ctx context.Context, level log.Level, msg string, keyvals []any) {
	for _, hook := range ol.snapshotHooks() {
		hook.OnLog(ctx, level, msg, keyvals)
	}
}

func (ol *ObservableLogger) notifyErrorHooks(ctx context.Context, msg string, err error, keyvals []any) {
	for _, hook := range ol.snapshotHooks() {
		hook.OnError(ctx, msg, err, keyvals)
	}
}

func (ol *ObservableLogger) notifyMetricHooks(ctx context.Context, name string, value float64, tags map[string]string) {
	for _, hook := range ol.snapshotHooks() {
		hook.OnMetric(ctx, name, value, tags)
	}
}
