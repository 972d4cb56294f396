package ports

import (
	"context"
	"io"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

// DocumentRepository persists and reads knowledge-base document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveClassification(ctx context.Context, id string, cls domain.TopicClassification) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// TopicClassifier labels extracted text with topic/level metadata.
type TopicClassifier interface {
	Classify(ctx context.Context, text string) (domain.TopicClassification, error)
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits text into semantically usable chunks.
type Chunker interface {
	Split(text string) []string
}

// VectorIndex indexes chunks and performs nearest-neighbor search over
// the knowledge base. The similarity metric is the index's concern.
type VectorIndex interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, k int) ([]domain.RetrievedDoc, error)
}

// Generator is the black-box text generator. Complete is bounded by the
// context deadline; it fails with a typed error on timeout or empty
// output and is never retried by the pipeline.
type Generator interface {
	Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// TraceSink accepts an ordered append of trace entries. Storage format
// is the sink's concern.
type TraceSink interface {
	Append(ctx context.Context, sessionID string, entry domain.TraceEntry)
}
