package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var ocrFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ocr_fallback_total",
	Help: "Documents whose direct text extraction was too short and went through OCR",
})

var validationVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "validation_verdicts_total",
	Help: "Answer validation outcomes",
}, []string{"supported"})

var answerCache = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "answer_cache_total",
	Help: "Semantic answer cache lookups by result",
}, []string{"result"})

var indexedChunks = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "indexed_chunks",
	Help: "Chunks in the active collection",
})

var pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pipeline_duration_seconds",
	Help:    "End to end time of an indexing or answer run.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"operation", "status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

// HttpStatusRecorder remembers the status code written by the wrapped handler.
type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses (MCP over SSE) working behind the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *HttpStatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func CaptureHttpRequest(path string, status int) {
	HttpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CapturePipelineMetrics(operation string, ok bool, timeElapsed time.Duration) {
	status := "ok"
	if !ok {
		status = "error"
	}
	pipelineDuration.WithLabelValues(operation, status).Observe(timeElapsed.Seconds())
}

func IncrementOCRFallback() {
	ocrFallbackTotal.Inc()
}

func CaptureVerdict(supported bool) {
	validationVerdicts.WithLabelValues(strconv.FormatBool(supported)).Inc()
}

func CaptureCacheLookup(hit bool) {
	if hit {
		answerCache.WithLabelValues("hit").Inc()
		return
	}
	answerCache.WithLabelValues("miss").Inc()
}

func SetIndexedChunks(n int) {
	indexedChunks.Set(float64(n))
}
