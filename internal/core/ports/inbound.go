package ports

import (
	"context"
	"io"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

// Assistant is the inbound contract for the question-answering pipeline.
type Assistant interface {
	Ask(ctx context.Context, question string) (*domain.AskResult, error)
}

// DocumentIngestor is the inbound contract for knowledge-base uploads.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document
// processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}
