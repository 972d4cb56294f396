package domain

import "time"

// TraceEntry records one pipeline stage transition. Entries are
// append-only within a single query lifetime; persistence is the trace
// sink's concern.
type TraceEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Stage      string            `json:"stage"`
	Input      string            `json:"input"`
	Output     string            `json:"output"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	DurationMS float64           `json:"duration_ms,omitempty"`
}

const traceFieldLimit = 500

// TruncateTraceField bounds free-text trace fields so a long document
// dump cannot bloat the trace.
func TruncateTraceField(s string) string {
	runes := []rune(s)
	if len(runes) <= traceFieldLimit {
		return s
	}
	return string(runes[:traceFieldLimit]) + "..."
}
