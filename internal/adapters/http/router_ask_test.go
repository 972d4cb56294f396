package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmorozov/french-tutor-assistant/internal/config"
	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

type assistantFake struct {
	result *domain.AskResult
	err    error
}

func (f assistantFake) Ask(context.Context, string) (*domain.AskResult, error) {
	return f.result, f.err
}

func newAskHandler(f assistantFake) http.Handler {
	return NewRouter(config.Config{}, ingestErrFake{}, f, docsErrFake{}).Handler()
}

func postAsk(t *testing.T, handler http.Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestAskReturnsAnswerWithSources(t *testing.T) {
	handler := newAskHandler(assistantFake{
		result: &domain.AskResult{
			ResponseText: "Кот по-французски: le chat.",
			Sources: []domain.SourceRef{
				{DocumentID: "doc-1#0", Title: "Базовая лексика", Section: "vocabulary"},
			},
			Confidence: 0.92,
			Quality:    domain.QualityExcellent,
			Strategy:   domain.StrategyNone,
		},
	})

	res := postAsk(t, handler, map[string]any{"question": "Как будет кот по-французски?"})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var resp domain.AskResult
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ResponseText == "" {
		t.Fatalf("expected answer text, got %+v", resp)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].DocumentID != "doc-1#0" {
		t.Fatalf("unexpected sources: %+v", resp.Sources)
	}
	if resp.Blocked {
		t.Fatalf("answered question must not be blocked")
	}
}

func TestAskBlockedQueryReturns200WithBlockedFlag(t *testing.T) {
	handler := newAskHandler(assistantFake{
		result: &domain.AskResult{
			ResponseText: "Запрос отклонён: вопрос не относится к изучению французского языка.",
			Blocked:      true,
			BlockReason:  domain.BlockOffTopic,
		},
	})

	res := postAsk(t, handler, map[string]any{"question": "Напиши мне код на Python"})
	if res.Code != http.StatusOK {
		t.Fatalf("blocked query expected 200, got %d", res.Code)
	}

	var resp domain.AskResult
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Blocked {
		t.Fatalf("expected blocked=true in response")
	}
	if resp.BlockReason != domain.BlockOffTopic {
		t.Fatalf("expected OffTopic reason, got %q", resp.BlockReason)
	}
}

func TestAskEmptyQuestionReturns400(t *testing.T) {
	handler := newAskHandler(assistantFake{result: &domain.AskResult{}})

	res := postAsk(t, handler, map[string]any{"question": "   "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskInvalidJSONReturns400(t *testing.T) {
	handler := newAskHandler(assistantFake{result: &domain.AskResult{}})

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestAskGenerationFailureReturns503(t *testing.T) {
	handler := newAskHandler(assistantFake{
		err: domain.WrapError(domain.ErrGeneration, "generate answer", io.ErrUnexpectedEOF),
	})

	res := postAsk(t, handler, map[string]any{"question": "Как спрягается être?"})
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestAskMethodNotAllowed(t *testing.T) {
	handler := newAskHandler(assistantFake{result: &domain.AskResult{}})

	req := httptest.NewRequest(http.MethodGet, "/v1/ask", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}
