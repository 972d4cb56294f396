package tracing

import (
	"context"
	"log/slog"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

// SlogSink writes pipeline trace entries to the structured log, one
// record per stage. It never blocks the pipeline: logging failures are
// the handler's problem, not ours.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Append(ctx context.Context, sessionID string, entry domain.TraceEntry) {
	attrs := []any{
		"session_id", sessionID,
		"stage", entry.Stage,
		"input", entry.Input,
		"output", entry.Output,
		"duration_ms", entry.DurationMS,
	}
	for key, value := range entry.Metadata {
		attrs = append(attrs, "meta_"+key, value)
	}
	s.logger.Log(ctx, slog.LevelDebug, "pipeline_stage", attrs...)
}
