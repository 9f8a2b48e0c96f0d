// Package metrics exposes counters, gauges, and histograms for the
// leaderboard service in Prometheus exposition format, hand-rolled rather
// than pulled from client_golang, matching the pack's own metrics style.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type counter struct {
	mu    sync.Mutex
	value uint64
}

func newCounter() *counter {
	return &counter{}
}

func (c *counter) inc() {
	c.mu.Lock()
	c.value++
	c.mu.Unlock()
}

func (c *counter) snapshot() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

type counterVec struct {
	mu     sync.RWMutex
	values map[string]uint64
}

func newCounterVec() *counterVec {
	return &counterVec{values: make(map[string]uint64)}
}

func (c *counterVec) inc(label string) {
	c.mu.Lock()
	c.values[label]++
	c.mu.Unlock()
}

func (c *counterVec) snapshot() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// histogram tracks per-bucket counts, not cumulative ones; counts[i] is the
// number of observations whose smallest fitting bucket is buckets[i].
// writeHistogram accumulates these into the cumulative le-buckets Prometheus
// expects at render time.
type histogram struct {
	mu      sync.RWMutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(edges []float64) *histogram {
	sorted := append([]float64(nil), edges...)
	sort.Float64s(sorted)
	return &histogram{buckets: sorted, counts: make([]uint64, len(sorted))}
}

func (h *histogram) observe(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if v < 0 {
		v = 0
	}
	h.mu.Lock()
	for i, upper := range h.buckets {
		if v <= upper {
			h.counts[i]++
			break
		}
	}
	h.count++
	h.sum += v
	h.mu.Unlock()
}

func (h *histogram) snapshot() (buckets []float64, counts []uint64, sum float64, count uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	buckets = append([]float64(nil), h.buckets...)
	counts = append([]uint64(nil), h.counts...)
	sum = h.sum
	count = h.count
	return
}

type gauge struct {
	mu    sync.Mutex
	value float64
}

func newGauge() *gauge {
	return &gauge{}
}

func (g *gauge) set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

func (g *gauge) snapshot() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

var (
	updatesTotal         = newCounter()
	updatesRejectedTotal = newCounterVec()
	rebuildsTotal        = newCounter()
	rebuildDurations     = newHistogram([]float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1})
	liveCustomersGauge   = newGauge()
	requestsTotal        = newCounterVec()
	requestLatencies     = newHistogram([]float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1})
)

// Rejection reason identifiers so callers avoid stringly-typed labels.
const (
	RejectReasonOutOfRange  = "out_of_range"
	RejectReasonBadArgument = "bad_argument"
)

// IncUpdate records one successfully applied score delta.
func IncUpdate() {
	updatesTotal.inc()
}

// IncUpdateRejected records one apply_delta call that failed validation.
func IncUpdateRejected(reason string) {
	if strings.TrimSpace(reason) == "" {
		reason = "unknown"
	}
	updatesRejectedTotal.inc(reason)
}

// ObserveRebuild records the wall-clock duration of one ranking view rebuild.
func ObserveRebuild(duration time.Duration) {
	rebuildsTotal.inc()
	rebuildDurations.observe(duration.Seconds())
}

// SetLiveCustomers records the size of the most recently published ranking
// view.
func SetLiveCustomers(n int) {
	liveCustomersGauge.set(float64(n))
}

// ObserveRequest records the outcome and latency of one HTTP request,
// labeled by endpoint and status code.
func ObserveRequest(endpoint string, status int, duration time.Duration) {
	requestsTotal.inc(endpoint + ":" + strconv.Itoa(status))
	requestLatencies.observe(duration.Seconds())
}

// Render exports all registered metrics in Prometheus exposition format.
func Render() string {
	var b strings.Builder

	writeMetricHeader(&b, "rankboard_updates_total", "counter")
	writeSimpleCounter(&b, "rankboard_updates_total", updatesTotal.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "rankboard_updates_rejected_total", "counter")
	writeCounter(&b, "rankboard_updates_rejected_total", "reason", updatesRejectedTotal.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "rankboard_rebuilds_total", "counter")
	writeSimpleCounter(&b, "rankboard_rebuilds_total", rebuildsTotal.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "rankboard_rebuild_duration_seconds", "histogram")
	writeHistogram(&b, "rankboard_rebuild_duration_seconds", rebuildDurations)
	b.WriteByte('\n')

	writeMetricHeader(&b, "rankboard_live_customers", "gauge")
	writeGauge(&b, "rankboard_live_customers", liveCustomersGauge.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "rankboard_http_requests_total", "counter")
	writeCounter(&b, "rankboard_http_requests_total", "endpoint_status", requestsTotal.snapshot())
	b.WriteByte('\n')

	writeMetricHeader(&b, "rankboard_http_request_duration_seconds", "histogram")
	writeHistogram(&b, "rankboard_http_request_duration_seconds", requestLatencies)
	b.WriteByte('\n')

	return b.String()
}

func writeMetricHeader(b *strings.Builder, name, typ string) {
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(typ)
	b.WriteByte('\n')
}

func writeSimpleCounter(b *strings.Builder, name string, value uint64) {
	fmt.Fprintf(b, "%s{} %d\n", name, value)
}

func writeGauge(b *strings.Builder, name string, value float64) {
	fmt.Fprintf(b, "%s{} %g\n", name, value)
}

func writeCounter(b *strings.Builder, name, label string, values map[string]uint64) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%s{} %d\n", name, 0)
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(b, "%s{%s=\"%s\"} %d\n", name, label, escapeLabel(key), values[key])
	}
}

func writeHistogram(b *strings.Builder, name string, h *histogram) {
	buckets, counts, sum, count := h.snapshot()
	if len(buckets) == 0 {
		fmt.Fprintf(b, "%s_bucket{le=\"+Inf\"} %d\n", name, count)
		fmt.Fprintf(b, "%s_sum %f\n", name, sum)
		fmt.Fprintf(b, "%s_count %d\n", name, count)
		return
	}
	var cumulative uint64
	for i, upper := range buckets {
		cumulative += counts[i]
		fmt.Fprintf(b, "%s_bucket{le=\"%g\"} %d\n", name, upper, cumulative)
	}
	fmt.Fprintf(b, "%s_bucket{le=\"+Inf\"} %d\n", name, count)
	fmt.Fprintf(b, "%s_sum %f\n", name, sum)
	fmt.Fprintf(b, "%s_count %d\n", name, count)
}

func escapeLabel(v string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\"", "\\\"")
	return replacer.Replace(v)
}
