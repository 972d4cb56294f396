package usecase

import (
	"strings"
	"testing"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
	"github.com/dmorozov/french-tutor-assistant/internal/knowledge"
)

func newTestCorrectiveStage() *CorrectiveStage {
	tables := knowledge.Defaults()
	return NewCorrectiveStage(newTestSelfRAG(), tables.FallbackFacts)
}

func TestCorrectEmptySetFallsBack(t *testing.T) {
	stage := newTestCorrectiveStage()
	query := testQuery("какой артикль нужен перед словом maison")

	assessment, genCtx := stage.Correct(query, domain.RetrievedSet{})
	if assessment.Quality != domain.QualityPoor {
		t.Fatalf("expected poor quality for empty set, got %s", assessment.Quality)
	}
	if genCtx.Strategy != domain.StrategyFallback {
		t.Fatalf("expected fallback strategy, got %s", genCtx.Strategy)
	}
	if genCtx.Empty() {
		t.Fatalf("fallback must produce a non-empty context")
	}
	if genCtx.Instruction == "" {
		t.Fatalf("fallback must instruct the generator about missing knowledge")
	}
}

func TestCorrectExcellentSetPassesThrough(t *testing.T) {
	stage := newTestCorrectiveStage()
	query := testQuery("спряжение глагола être")
	set := domain.RetrievedSet{Docs: []domain.RetrievedDoc{
		{DocumentID: "d1", Text: "спряжение глагола être в настоящем времени", Score: 0.9},
		{DocumentID: "d2", Text: "спряжение глагола être в прошедшем времени", Score: 0.8},
	}}

	assessment, genCtx := stage.Correct(query, set)
	if assessment.Quality != domain.QualityExcellent {
		t.Fatalf("expected excellent quality, got %s", assessment.Quality)
	}
	if genCtx.Strategy != domain.StrategyNone {
		t.Fatalf("expected no correction, got %s", genCtx.Strategy)
	}
	if len(genCtx.Passages) != len(set.Docs) {
		t.Fatalf("expected passages unchanged, got %d", len(genCtx.Passages))
	}
	if len(assessment.DocScores) != len(set.Docs) {
		t.Fatalf("expected one score per document, got %d", len(assessment.DocScores))
	}
}

func TestCorrectGoodSetSupplementsFromFallbackTable(t *testing.T) {
	stage := newTestCorrectiveStage()
	query := testQuery("какой артикль нужен перед словом maison")
	set := domain.RetrievedSet{Docs: []domain.RetrievedDoc{
		{DocumentID: "d1", Text: "определённый артикль употребляется с известными предметами", Score: 0.8},
		{DocumentID: "d2", Text: "неопределённый артикль вводит новый предмет", Score: 0.7},
		{DocumentID: "d3", Text: "история кухни Прованса", Score: 0.2},
	}}

	assessment, genCtx := stage.Correct(query, set)
	if assessment.Quality != domain.QualityGood {
		t.Fatalf("expected good quality, got %s", assessment.Quality)
	}
	if genCtx.Strategy != domain.StrategySupplement {
		t.Fatalf("expected supplement strategy, got %s", genCtx.Strategy)
	}
	if len(genCtx.Passages) != len(set.Docs)+1 {
		t.Fatalf("expected one supplemental passage, got %d passages", len(genCtx.Passages))
	}
	last := genCtx.Passages[len(genCtx.Passages)-1]
	if !strings.HasPrefix(last.DocumentID, "kb-fallback-") {
		t.Fatalf("expected fallback passage last, got %s", last.DocumentID)
	}
}

func TestCorrectPartialSetRefines(t *testing.T) {
	stage := newTestCorrectiveStage()
	query := testQuery("какой артикль нужен перед словом maison")
	set := domain.RetrievedSet{Docs: []domain.RetrievedDoc{
		{DocumentID: "d1", Text: "определённый артикль употребляется с известными предметами", Score: 0.8},
		{DocumentID: "d2", Text: "история кухни Прованса", Score: 0.2},
		{DocumentID: "d3", Text: "расписание поездов Лион Марсель", Score: 0.2},
	}}

	assessment, genCtx := stage.Correct(query, set)
	if assessment.Quality != domain.QualityPartial {
		t.Fatalf("expected partial quality, got %s", assessment.Quality)
	}
	if genCtx.Strategy != domain.StrategyRefine {
		t.Fatalf("expected refine strategy, got %s", genCtx.Strategy)
	}
	if genCtx.Instruction == "" {
		t.Fatalf("refine must add a hedging instruction")
	}
	if len(genCtx.Passages) != len(set.Docs) {
		t.Fatalf("refine must not add passages, got %d", len(genCtx.Passages))
	}
}

func TestCorrectDoesNotMutateInputSet(t *testing.T) {
	stage := newTestCorrectiveStage()
	query := testQuery("какой артикль нужен перед словом maison")
	docs := []domain.RetrievedDoc{
		{DocumentID: "d1", Text: "определённый артикль употребляется с известными предметами", Score: 0.8},
		{DocumentID: "d2", Text: "неопределённый артикль вводит новый предмет", Score: 0.7},
		{DocumentID: "d3", Text: "история кухни Прованса", Score: 0.2},
	}
	set := domain.RetrievedSet{Docs: docs}

	_, _ = stage.Correct(query, set)
	if len(set.Docs) != 3 {
		t.Fatalf("input set mutated: %d docs", len(set.Docs))
	}
}
