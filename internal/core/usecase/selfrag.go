package usecase

import (
	"strings"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

// SelfRAG holds the self-assessment heuristics: whether a query needs
// retrieval at all, how relevant each retrieved passage is, and how
// well an answer is supported by its sources. The corrective stage uses
// the relevance grade as its grounding primitive.
type SelfRAG struct {
	triggersHigh []string
	triggersLow  []string
}

func NewSelfRAG(triggersHigh, triggersLow []string) *SelfRAG {
	return &SelfRAG{
		triggersHigh: triggersHigh,
		triggersLow:  triggersLow,
	}
}

// AssessRetrievalNeed decides whether the knowledge base should be
// consulted. Chitchat trigger words outnumbering domain triggers means
// the query can be answered directly from base knowledge.
func (s *SelfRAG) AssessRetrievalNeed(query domain.Query) (bool, float64) {
	lowered := query.Sanitized

	high := 0
	for _, trigger := range s.triggersHigh {
		if strings.Contains(lowered, trigger) {
			high++
		}
	}
	low := 0
	for _, trigger := range s.triggersLow {
		if strings.Contains(lowered, trigger) {
			low++
		}
	}

	switch {
	case low > high:
		return false, 0.9
	case high > 0:
		confidence := 0.6 + float64(high)*0.1
		if confidence > 1 {
			confidence = 1
		}
		return true, confidence
	default:
		return true, 0.7
	}
}

// AssessRelevance grades one passage against the query with token
// Jaccard plus a count of long query terms found verbatim in the text.
func (s *SelfRAG) AssessRelevance(query domain.Query, text string) (domain.RetrievalQuality, float64) {
	queryTokens := toTokenSet(query.Sanitized)
	docTokens := toTokenSet(text)
	jaccard := tokenJaccard(queryTokens, docTokens)

	textLower := strings.ToLower(text)
	keyTerms := 0
	for token := range queryTokens {
		if len([]rune(token)) > 4 && strings.Contains(textLower, token) {
			keyTerms++
		}
	}

	switch {
	case jaccard > 0.3 && keyTerms >= 2:
		return domain.QualityExcellent, 0.9
	case jaccard > 0.2 || keyTerms >= 1:
		return domain.QualityGood, 0.7
	case jaccard > 0.1:
		return domain.QualityPartial, 0.5
	default:
		return domain.QualityPoor, 0.3
	}
}

// AssessSupport measures what fraction of the answer's long tokens
// appear in the supplied context.
func (s *SelfRAG) AssessSupport(response string, context string) (bool, float64) {
	contextLower := strings.ToLower(context)
	supported := 0
	total := 0
	for token := range toTokenSet(response) {
		if len([]rune(token)) < 4 {
			continue
		}
		total++
		if strings.Contains(contextLower, token) {
			supported++
		}
	}
	if total == 0 {
		return true, 1
	}
	ratio := float64(supported) / float64(total)
	return ratio > 0.3, ratio
}

// AssessUtility estimates whether the answer is substantive and covers
// the query topic.
func (s *SelfRAG) AssessUtility(query domain.Query, response string) (bool, float64) {
	if len([]rune(response)) < 50 {
		return false, 0.2
	}

	queryTokens := toTokenSet(query.Sanitized)
	responseTokens := toTokenSet(response)

	coverage := tokenOverlap(queryTokens, responseTokens)
	score := 0.3 + coverage*0.7
	return score > 0.4, score
}
