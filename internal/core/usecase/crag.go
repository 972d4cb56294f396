package usecase

import (
	"strings"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
	"github.com/dmorozov/french-tutor-assistant/internal/knowledge"
)

// CorrectiveStage grades the retrieved set and transforms the context
// per strategy. Pure: no generator or index calls, only static fallback
// tables.
type CorrectiveStage struct {
	selfRAG  *SelfRAG
	fallback []knowledge.FallbackFact
}

func NewCorrectiveStage(selfRAG *SelfRAG, fallback []knowledge.FallbackFact) *CorrectiveStage {
	return &CorrectiveStage{
		selfRAG:  selfRAG,
		fallback: fallback,
	}
}

// Correct assesses quality, maps it to a strategy and applies the
// strategy to the context. FALLBACK guarantees a non-empty context even
// for an empty retrieved set.
func (c *CorrectiveStage) Correct(query domain.Query, set domain.RetrievedSet) (domain.QualityAssessment, domain.GenerationContext) {
	assessment := c.assess(query, set)
	strategy := domain.StrategyFor(assessment.Quality)

	ctx := domain.GenerationContext{
		Passages: append([]domain.RetrievedDoc(nil), set.Docs...),
		Strategy: strategy,
	}

	switch strategy {
	case domain.StrategyNone:
		// Context passes through unchanged.
	case domain.StrategySupplement:
		if fact, ok := c.matchFallback(query); ok {
			ctx.Passages = append(ctx.Passages, fallbackPassage(fact))
		}
	case domain.StrategyRefine:
		ctx.Instruction = "Качество найденного контекста ограничено: отвечай осторожно, " +
			"оговаривай неуверенность и предложи уточнить вопрос."
	case domain.StrategyFallback:
		for _, fact := range c.fallback {
			ctx.Passages = append(ctx.Passages, fallbackPassage(fact))
		}
		ctx.Instruction = "Релевантная информация в базе знаний не найдена: " +
			"используй только базовые сведения ниже и скажи, что ответ общий."
	}

	return assessment, ctx
}

// assess computes a per-document grounding indicator and classifies the
// set: all high -> EXCELLENT, majority high -> GOOD, some high ->
// PARTIAL, none high or empty -> POOR.
func (c *CorrectiveStage) assess(query domain.Query, set domain.RetrievedSet) domain.QualityAssessment {
	if set.Empty() {
		return domain.QualityAssessment{Quality: domain.QualityPoor}
	}

	scores := make([]float64, 0, len(set.Docs))
	high := 0
	var sum float64
	for _, doc := range set.Docs {
		grade, score := c.selfRAG.AssessRelevance(query, doc.Text)
		scores = append(scores, score)
		sum += score
		if grade == domain.QualityExcellent || grade == domain.QualityGood {
			high++
		}
	}

	aggregate := sum / float64(len(scores))
	quality := domain.QualityPoor
	switch {
	case high == len(set.Docs):
		quality = domain.QualityExcellent
	case high*2 > len(set.Docs):
		quality = domain.QualityGood
	case high > 0:
		quality = domain.QualityPartial
	}

	return domain.QualityAssessment{
		Quality:        quality,
		DocScores:      scores,
		AggregateScore: aggregate,
	}
}

func (c *CorrectiveStage) matchFallback(query domain.Query) (knowledge.FallbackFact, bool) {
	for _, fact := range c.fallback {
		for _, keyword := range fact.Keywords {
			if strings.Contains(query.Sanitized, strings.ToLower(keyword)) {
				return fact, true
			}
		}
	}
	return knowledge.FallbackFact{}, false
}

func fallbackPassage(fact knowledge.FallbackFact) domain.RetrievedDoc {
	return domain.RetrievedDoc{
		DocumentID: "kb-fallback-" + fact.Topic,
		Title:      "Базовые знания",
		Section:    fact.Topic,
		Text:       fact.Text,
	}
}
