package domain

// RetrievalQuality grades a retrieved set against the query.
type RetrievalQuality string

const (
	QualityExcellent RetrievalQuality = "excellent"
	QualityGood      RetrievalQuality = "good"
	QualityPartial   RetrievalQuality = "partial"
	QualityPoor      RetrievalQuality = "poor"
)

// CorrectionStrategy is a pure function of RetrievalQuality.
type CorrectionStrategy string

const (
	StrategyNone       CorrectionStrategy = "none"
	StrategySupplement CorrectionStrategy = "supplement"
	StrategyRefine     CorrectionStrategy = "refine"
	StrategyFallback   CorrectionStrategy = "fallback"
)

// StrategyFor maps quality to strategy. Identical input always yields
// identical output.
func StrategyFor(quality RetrievalQuality) CorrectionStrategy {
	switch quality {
	case QualityExcellent:
		return StrategyNone
	case QualityGood:
		return StrategySupplement
	case QualityPartial:
		return StrategyRefine
	default:
		return StrategyFallback
	}
}

// QualityAssessment is computed once per retrieved set.
type QualityAssessment struct {
	Quality        RetrievalQuality `json:"quality"`
	DocScores      []float64        `json:"doc_scores"`
	AggregateScore float64          `json:"aggregate_score"`
}

// GenerationContext is the final ordered context handed to the
// generator, after correction. Consumed exactly once.
type GenerationContext struct {
	Passages    []RetrievedDoc     `json:"passages"`
	Instruction string             `json:"instruction,omitempty"`
	Strategy    CorrectionStrategy `json:"strategy"`
}

func (c GenerationContext) Empty() bool { return len(c.Passages) == 0 }

// JoinedText mirrors RetrievedSet.JoinedText for the corrected context.
func (c GenerationContext) JoinedText(sep string) string {
	out := ""
	for i, p := range c.Passages {
		if i > 0 {
			out += sep
		}
		out += p.Text
	}
	return out
}
