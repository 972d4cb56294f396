package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
	"github.com/dmorozov/french-tutor-assistant/internal/core/ports"
)

// Router picks the extractor by mime type, falling back to the file
// extension when the upload came without one. Unknown formats are an
// invalid-input error so the worker marks the document failed instead
// of retrying forever.
type Router struct {
	plaintext   ports.TextExtractor
	pdf         ports.TextExtractor
	spreadsheet ports.TextExtractor
}

func NewRouter(plaintext, pdf, spreadsheet ports.TextExtractor) *Router {
	return &Router{
		plaintext:   plaintext,
		pdf:         pdf,
		spreadsheet: spreadsheet,
	}
}

func (r *Router) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	switch pick(doc) {
	case "pdf":
		return r.pdf.Extract(ctx, doc)
	case "spreadsheet":
		return r.spreadsheet.Extract(ctx, doc)
	case "plaintext":
		return r.plaintext.Extract(ctx, doc)
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "route extractor",
			errors.New("unsupported format: "+doc.MimeType+" "+doc.Filename))
	}
}

func pick(doc *domain.Document) string {
	mime := strings.ToLower(doc.MimeType)
	switch {
	case strings.Contains(mime, "pdf"):
		return "pdf"
	case strings.Contains(mime, "spreadsheet"), strings.Contains(mime, "excel"):
		return "spreadsheet"
	case strings.HasPrefix(mime, "text/"), strings.Contains(mime, "markdown"):
		return "plaintext"
	}

	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".pdf":
		return "pdf"
	case ".xlsx", ".xlsm":
		return "spreadsheet"
	case ".txt", ".md", ".csv":
		return "plaintext"
	}
	return ""
}
