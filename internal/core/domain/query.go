package domain

// Language is the detected language of an incoming query.
type Language string

const (
	LanguageRussian Language = "ru"
	LanguageFrench  Language = "fr"
	LanguageOther   Language = "other"
)

// BlockReason identifies which safety check rejected a query.
type BlockReason string

const (
	BlockTooLong             BlockReason = "TooLong"
	BlockInjectionDetected   BlockReason = "InjectionDetected"
	BlockOffTopic            BlockReason = "OffTopic"
	BlockUnsupportedLanguage BlockReason = "UnsupportedLanguage"
)

// Query is a validated user question. Immutable once the safety filter
// has produced it.
type Query struct {
	Raw       string   `json:"raw"`
	Sanitized string   `json:"sanitized"`
	Language  Language `json:"language"`
}

// SafetyVerdict is the outcome of the safety filter. Metadata carries
// per-check values (topic score, matched pattern) for tracing.
type SafetyVerdict struct {
	Safe     bool              `json:"safe"`
	Reason   BlockReason       `json:"reason,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
