package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var defaultDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 20, 30, 60}

type generationKey struct {
	Provider      string
	Command       string
	Status        string
	ErrorCategory string
}

func (k generationKey) String() string {
	return strings.Join([]string{k.Provider, k.Command, k.Status, k.ErrorCategory}, "|")
}

func (k generationKey) labels() map[string]string {
	return map[string]string{
		"provider":       k.Provider,
		"command":        k.Command,
		"status":         k.Status,
		"error_category": k.ErrorCategory,
	}
}

type executionKey struct {
	Surface string
	Command string
	Outcome string
}

func (k executionKey) String() string {
	return strings.Join([]string{k.Surface, k.Command, k.Outcome}, "|")
}

func (k executionKey) labels() map[string]string {
	return map[string]string{
		"surface": k.Surface,
		"command": k.Command,
		"outcome": k.Outcome,
	}
}

// histogram buckets are cumulative: Observe bumps every bucket at or above
// the value.
type histogram struct {
	buckets []float64
	counts  []uint64
	count   uint64
	sum     float64
}

func newHistogram(buckets []float64) *histogram {
	cloned := append([]float64(nil), buckets...)
	return &histogram{
		buckets: cloned,
		counts:  make([]uint64, len(cloned)),
	}
}

func (h *histogram) Observe(value float64) {
	h.count++
	h.sum += value
	for i, upper := range h.buckets {
		if value <= upper {
			h.counts[i]++
		}
	}
}

type registry struct {
	mu sync.Mutex

	generationRequests map[generationKey]uint64
	generationLatency  map[generationKey]*histogram

	commandExecutions map[executionKey]uint64
}

func newRegistry() *registry {
	return &registry{
		generationRequests: make(map[generationKey]uint64),
		generationLatency:  make(map[generationKey]*histogram),
		commandExecutions:  make(map[executionKey]uint64),
	}
}

var (
	globalMu       sync.RWMutex
	globalRegistry = newRegistry()
)

func current() *registry {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalRegistry
}

// RecordGeneration counts one call to a generation backend.
func RecordGeneration(provider string, command string, status string, errorCategory string, duration time.Duration) {
	current().recordGeneration(generationKey{
		Provider:      provider,
		Command:       command,
		Status:        status,
		ErrorCategory: errorCategory,
	}, duration)
}

// RecordCommandExecution counts one dispatched command per surface. Outcome
// is success, busy, empty, too_long or failed.
func RecordCommandExecution(surface string, command string, outcome string) {
	current().recordExecution(executionKey{Surface: surface, Command: command, Outcome: outcome})
}

func PrometheusText() string {
	return current().renderPrometheus()
}

func ResetForTests() {
	globalMu.Lock()
	globalRegistry = newRegistry()
	globalMu.Unlock()
}

func (r *registry) recordGeneration(key generationKey, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generationRequests[key]++
	h, ok := r.generationLatency[key]
	if !ok {
		h = newHistogram(defaultDurationBuckets)
		r.generationLatency[key] = h
	}
	h.Observe(duration.Seconds())
}

func (r *registry) recordExecution(key executionKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commandExecutions[key]++
}

func (r *registry) renderPrometheus() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var builder strings.Builder

	writeHeader(&builder, "qalam_generation_requests_total", "Total generation backend requests.", "counter")
	for _, key := range sortedKeys(r.generationRequests) {
		builder.WriteString(fmt.Sprintf(
			"qalam_generation_requests_total{%s} %d\n",
			formatLabels(key.labels()),
			r.generationRequests[key],
		))
	}

	writeHeader(&builder, "qalam_generation_request_duration_seconds", "Generation request duration in seconds.", "histogram")
	for _, key := range sortedKeys(r.generationLatency) {
		writeHistogram(&builder, "qalam_generation_request_duration_seconds", key.labels(), r.generationLatency[key])
	}

	writeHeader(&builder, "qalam_command_executions_total", "Commands dispatched per surface and outcome.", "counter")
	for _, key := range sortedKeys(r.commandExecutions) {
		builder.WriteString(fmt.Sprintf(
			"qalam_command_executions_total{%s} %d\n",
			formatLabels(key.labels()),
			r.commandExecutions[key],
		))
	}

	return builder.String()
}

func sortedKeys[K interface {
	comparable
	String() string
}, V any](series map[K]V) []K {
	keys := make([]K, 0, len(series))
	for key := range series {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func writeHeader(builder *strings.Builder, name string, help string, kind string) {
	builder.WriteString(fmt.Sprintf("# HELP %s %s\n", name, help))
	builder.WriteString(fmt.Sprintf("# TYPE %s %s\n", name, kind))
}

func writeHistogram(builder *strings.Builder, metricName string, labels map[string]string, h *histogram) {
	formatted := formatLabels(labels)
	for i, bucket := range h.buckets {
		builder.WriteString(fmt.Sprintf("%s_bucket{%s,le=%q} %d\n", metricName, formatted, formatFloat(bucket), h.counts[i]))
	}
	builder.WriteString(fmt.Sprintf("%s_bucket{%s,le=\"+Inf\"} %d\n", metricName, formatted, h.count))
	builder.WriteString(fmt.Sprintf("%s_sum{%s} %g\n", metricName, formatted, h.sum))
	builder.WriteString(fmt.Sprintf("%s_count{%s} %d\n", metricName, formatted, h.count))
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", key, labels[key]))
	}
	return strings.Join(parts, ",")
}

func formatFloat(value float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", value), "0"), ".")
}
