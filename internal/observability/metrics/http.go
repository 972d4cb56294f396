package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	askTotal             *prometheus.CounterVec
	askBlockedTotal      *prometheus.CounterVec
	askDuration          *prometheus.HistogramVec
	correctionTotal      *prometheus.CounterVec
	hallucinationTotal   *prometheus.CounterVec
	answerConfidence     *prometheus.HistogramVec
	retrievedChunks      *prometheus.HistogramVec
	retrievalBypassTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fta",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fta",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fta",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	askTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fta",
			Subsystem: "pipeline",
			Name:      "ask_total",
			Help:      "Total completed ask requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	askBlockedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fta",
			Subsystem: "pipeline",
			Name:      "ask_blocked_total",
			Help:      "Total ask requests rejected by the safety filter, by reason.",
		},
		[]string{"service", "reason"},
	)
	askDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fta",
			Subsystem: "pipeline",
			Name:      "ask_duration_seconds",
			Help:      "End-to-end ask pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	correctionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fta",
			Subsystem: "pipeline",
			Name:      "correction_total",
			Help:      "Total ask requests by corrective retrieval strategy.",
		},
		[]string{"service", "strategy"},
	)
	hallucinationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fta",
			Subsystem: "pipeline",
			Name:      "hallucination_flagged_total",
			Help:      "Total answers flagged by hallucination verification.",
		},
		[]string{"service"},
	)
	answerConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fta",
			Subsystem: "pipeline",
			Name:      "answer_confidence",
			Help:      "Distribution of combined answer confidence scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
		[]string{"service"},
	)
	retrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fta",
			Subsystem: "pipeline",
			Name:      "retrieved_chunks",
			Help:      "Distribution of context passages used per answered question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	retrievalBypassTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fta",
			Subsystem: "pipeline",
			Name:      "retrieval_bypass_total",
			Help:      "Total ask requests answered without knowledge-base retrieval.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		askTotal,
		askBlockedTotal,
		askDuration,
		correctionTotal,
		hallucinationTotal,
		answerConfidence,
		retrievedChunks,
		retrievalBypassTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		askTotal:             askTotal,
		askBlockedTotal:      askBlockedTotal,
		askDuration:          askDuration,
		correctionTotal:      correctionTotal,
		hallucinationTotal:   hallucinationTotal,
		answerConfidence:     answerConfidence,
		retrievedChunks:      retrievedChunks,
		retrievalBypassTotal: retrievalBypassTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordAsk(service, outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.askTotal.WithLabelValues(service, outcome).Inc()
	m.askDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordBlocked(service, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.askBlockedTotal.WithLabelValues(service, reason).Inc()
}

func (m *HTTPServerMetrics) RecordCorrection(service, strategy string) {
	if strategy == "" {
		strategy = "unknown"
	}
	m.correctionTotal.WithLabelValues(service, strategy).Inc()
}

func (m *HTTPServerMetrics) RecordHallucinationFlag(service string) {
	m.hallucinationTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordAnswerQuality(service string, confidence float64, sourceCount int) {
	m.answerConfidence.WithLabelValues(service).Observe(confidence)
	m.retrievedChunks.WithLabelValues(service).Observe(float64(sourceCount))
	if sourceCount == 0 {
		m.retrievalBypassTotal.WithLabelValues(service).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
