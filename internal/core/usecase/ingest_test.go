package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

type ingestRepoFake struct {
	created *domain.Document
	err     error
}

func (f *ingestRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	f.created = doc
	return nil
}

func (f *ingestRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, nil
}

func (f *ingestRepoFake) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return nil
}

func (f *ingestRepoFake) SaveClassification(context.Context, string, domain.TopicClassification) error {
	return nil
}

type storageFake struct {
	key  string
	data []byte
	err  error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	f.key = key
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.data = buf
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadSuccess(t *testing.T) {
	repo := &ingestRepoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "passe_compose-notes.txt", "text/plain",
		strings.NewReader("содержимое"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected status=uploaded, got %s", doc.Status)
	}
	if doc.Title != "passe compose notes" {
		t.Fatalf("expected derived title, got %q", doc.Title)
	}
	if !strings.HasSuffix(storage.key, "passe_compose-notes.txt") {
		t.Fatalf("unexpected storage key %q", storage.key)
	}
	if repo.created == nil || repo.created.ID != doc.ID {
		t.Fatalf("document metadata not persisted")
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("expected one ingestion event for %s, got %v", doc.ID, queue.published)
	}
}

func TestUploadStorageErrorStopsPipeline(t *testing.T) {
	repo := &ingestRepoFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, &storageFake{err: errors.New("disk full")}, queue)

	_, err := uc.Upload(context.Background(), "a.txt", "text/plain", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if repo.created != nil {
		t.Fatalf("metadata must not be created after storage failure")
	}
	if len(queue.published) != 0 {
		t.Fatalf("event must not be published after storage failure")
	}
}

func TestUploadQueueErrorSurfaces(t *testing.T) {
	uc := NewIngestDocumentUseCase(
		&ingestRepoFake{},
		&storageFake{},
		&queueFake{err: errors.New("nats down")},
	)

	_, err := uc.Upload(context.Background(), "a.txt", "text/plain", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"grammar notes.pdf", "grammar_notes.pdf"},
		{"../../../etc/passwd", "passwd"},
		{"словарь.xlsx", "_______.xlsx"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
