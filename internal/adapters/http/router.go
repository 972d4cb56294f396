package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmorozov/french-tutor-assistant/internal/config"
	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
	"github.com/dmorozov/french-tutor-assistant/internal/core/ports"
	"github.com/dmorozov/french-tutor-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg       config.Config
	ingest    ports.DocumentIngestor
	assistant ports.Assistant
	docs      ports.DocumentReader
	logger    *slog.Logger
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.DocumentIngestor,
	assistant ports.Assistant,
	docs ports.DocumentReader,
) *Router {
	return &Router{
		cfg:       cfg,
		ingest:    ingest,
		assistant: assistant,
		docs:      docs,
		logger:    slog.Default(),
	}
}

func (rt *Router) WithLogger(logger *slog.Logger) *Router {
	if logger != nil {
		rt.logger = logger
	}
	return rt
}

func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ask", rt.ask)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.cfg.APIMaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, rt.cfg.APIOverloadTimeout)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	result, err := rt.assistant.Ask(r.Context(), req.Question)
	if err != nil {
		rt.recordAsk("error", start, nil)
		rt.writeError(w, r, err)
		return
	}

	if result.Blocked {
		rt.recordAsk("blocked", start, result)
		writeJSON(w, http.StatusOK, result)
		return
	}

	rt.recordAsk("answered", start, result)
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) recordAsk(outcome string, start time.Time, result *domain.AskResult) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAsk(serviceName, outcome, time.Since(start))
	if result == nil {
		return
	}
	if result.Blocked {
		rt.metrics.RecordBlocked(serviceName, string(result.BlockReason))
		return
	}
	rt.metrics.RecordCorrection(serviceName, string(result.Strategy))
	rt.metrics.RecordAnswerQuality(serviceName, result.Confidence, len(result.Sources))
	if len(result.Issues) > 0 {
		rt.metrics.RecordHallucinationFlag(serviceName)
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// writeError logs the full wrapped chain and answers with a generic
// message plus the error kind. Backend detail (Ollama and Qdrant embed
// response bodies in their errors) must never reach the client.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	kind := errorKindLabel(err)

	rt.logger.Error("request_failed",
		"request_id", requestIDFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"kind", kind,
		"error", err,
	)

	message := "could not complete the request"
	if status == http.StatusNotFound {
		message = "document not found"
	}
	writeJSON(w, status, map[string]string{"error": message, "kind": kind})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
