package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysisStarted   = &counter{name: "analysis_started_total", help: "Total analyses started"}
	analysisCompleted = &counter{name: "analysis_completed_total", help: "Total analyses completed"}
	analysisFailed    = newCounterVec("analysis_failed_total", "Total analyses failed by stage", "stage")
	upstreamCalls     = &counter{name: "upstream_calls_total", help: "Total model invocations"}
	rateLimited       = &counter{name: "rate_limited_total", help: "Total requests rejected by the rate limiter"}
	requests          = newCounterVec("analyze_requests_total", "Finished /analyze requests by source kind and status", "source", "status")

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStarted.v.Add(1)
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompleted.v.Add(1)
}

// IncAnalysisFailed counts a failed analysis under the stage that failed.
func IncAnalysisFailed(stage string) {
	analysisFailed.Inc(stage)
}

// AddUpstreamCalls adds n model invocations to the upstream call counter.
func AddUpstreamCalls(n int) {
	if n > 0 {
		upstreamCalls.v.Add(uint64(n))
	}
}

// IncRateLimited counts requests rejected by the per-client limiter.
func IncRateLimited() {
	rateLimited.v.Add(1)
}

// IncRequest counts a finished /analyze request, including ones rejected
// before any model call.
func IncRequest(source, status string) {
	requests.Inc(source, status)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	for _, c := range []*counter{analysisStarted, analysisCompleted, upstreamCalls, rateLimited} {
		c.write(&buf)
	}
	analysisFailed.write(&buf)
	requests.write(&buf)
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type counter struct {
	name string
	help string
	v    atomic.Uint64
}

func (c *counter) write(buf *bytes.Buffer) {
	writeHeader(buf, c.name, c.help, "counter")
	fmt.Fprintf(buf, "%s %d\n", c.name, c.v.Load())
}

// counterVec is a counter partitioned by a fixed, ordered set of labels.
type counterVec struct {
	name   string
	help   string
	labels []string

	mu     sync.Mutex
	values map[string]uint64
	keys   map[string][]string
}

func newCounterVec(name, help string, labels ...string) *counterVec {
	return &counterVec{
		name:   name,
		help:   help,
		labels: labels,
		values: map[string]uint64{},
		keys:   map[string][]string{},
	}
}

func (v *counterVec) Inc(values ...string) {
	if len(values) != len(v.labels) {
		return
	}
	key := labelString(v.labels, values)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[key]++
}

func (v *counterVec) Value(values ...string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.values[labelString(v.labels, values)]
}

func (v *counterVec) write(buf *bytes.Buffer) {
	v.mu.Lock()
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	snapshot := make([]uint64, len(keys))
	for i, k := range keys {
		snapshot[i] = v.values[k]
	}
	v.mu.Unlock()

	writeHeader(buf, v.name, v.help, "counter")
	for i, k := range keys {
		fmt.Fprintf(buf, "%s{%s} %d\n", v.name, k, snapshot[i])
	}
}

func labelString(names, values []string) string {
	var b bytes.Buffer
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		var value string
		if i < len(values) {
			value = values[i]
		}
		fmt.Fprintf(&b, "%s=%s", name, strconv.Quote(value))
	}
	return b.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound covers it; counts
// are made cumulative when rendered.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeHeader(buf *bytes.Buffer, name, help, kind string) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s %s\n", name, kind)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	writeHeader(buf, name, help, "histogram")
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
