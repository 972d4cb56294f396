package httpadapter

import (
	"net/http"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

// Blocked queries never reach this mapping: the pipeline reports them
// as a successful result with blocked=true.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrRetrieval),
		domain.IsKind(err, domain.ErrGeneration),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorKindLabel names the error kind for programmatic callers. The
// label is the only error detail that crosses the HTTP boundary;
// wrapped chains can carry backend response bodies and stay in the log.
func errorKindLabel(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrValidation):
		return "validation"
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return "not_found"
	case domain.IsKind(err, domain.ErrRetrieval):
		return "retrieval"
	case domain.IsKind(err, domain.ErrGeneration):
		return "generation"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporary"
	default:
		return "internal"
	}
}
