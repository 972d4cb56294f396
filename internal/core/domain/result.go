package domain

// SourceRef points the caller at a knowledge-base passage used in the
// answer.
type SourceRef struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Section    string `json:"section,omitempty"`
}

// AskResult is the structured outcome of one pipeline invocation.
type AskResult struct {
	ResponseText string             `json:"response_text"`
	Sources      []SourceRef        `json:"sources"`
	Confidence   float64            `json:"confidence"`
	Issues       []string           `json:"issues,omitempty"`
	Blocked      bool               `json:"blocked"`
	BlockReason  BlockReason        `json:"block_reason,omitempty"`
	Quality      RetrievalQuality   `json:"quality,omitempty"`
	Strategy     CorrectionStrategy `json:"strategy,omitempty"`
	Trace        []TraceEntry       `json:"trace,omitempty"`
}
