package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
	"github.com/dmorozov/french-tutor-assistant/internal/core/ports"
	"github.com/dmorozov/french-tutor-assistant/internal/knowledge"
)

// Pipeline wires the stages into the Assistant use case: safety filter,
// retrieval-need assessment, query expansion, retrieval, corrective
// re-ranking, generation and hallucination verification. Stages run in
// this fixed order; a blocked query short-circuits before any external
// call.
type Pipeline struct {
	safety     *SafetyFilter
	selfRAG    *SelfRAG
	expander   *QueryExpander
	retriever  *Retriever
	corrective *CorrectiveStage
	detector   *HallucinationDetector
	cove       *ChainOfVerification

	generator ports.Generator
	trace     ports.TraceSink
	logger    *slog.Logger

	useHyDE           bool
	generationTimeout time.Duration
	temperature       float64
	maxTokens         int
	systemPrompt      string
	fewShot           []knowledge.FewShotExample
}

type PipelineConfig struct {
	UseHyDE           bool
	GenerationTimeout time.Duration
	Temperature       float64
	MaxTokens         int
	SystemPrompt      string
	FewShot           []knowledge.FewShotExample
}

type PipelineDeps struct {
	Safety     *SafetyFilter
	SelfRAG    *SelfRAG
	Expander   *QueryExpander
	Retriever  *Retriever
	Corrective *CorrectiveStage
	Detector   *HallucinationDetector
	CoVe       *ChainOfVerification
	Generator  ports.Generator
	Trace      ports.TraceSink
	Logger     *slog.Logger
}

func NewPipeline(deps PipelineDeps, cfg PipelineConfig) *Pipeline {
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 30 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		safety:            deps.Safety,
		selfRAG:           deps.SelfRAG,
		expander:          deps.Expander,
		retriever:         deps.Retriever,
		corrective:        deps.Corrective,
		detector:          deps.Detector,
		cove:              deps.CoVe,
		generator:         deps.Generator,
		trace:             deps.Trace,
		logger:            logger,
		useHyDE:           cfg.UseHyDE,
		generationTimeout: cfg.GenerationTimeout,
		temperature:       cfg.Temperature,
		maxTokens:         cfg.MaxTokens,
		systemPrompt:      cfg.SystemPrompt,
		fewShot:           cfg.FewShot,
	}
}

var _ ports.Assistant = (*Pipeline)(nil)

// Ask runs one question through the full pipeline. A stage panic is
// converted to an internal error instead of crashing the caller.
func (p *Pipeline) Ask(ctx context.Context, question string) (result *domain.AskResult, err error) {
	sessionID := uuid.NewString()
	recorder := newStageRecorder(ctx, sessionID, p.trace)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline_panic", "session_id", sessionID, "panic", fmt.Sprint(r))
			result = nil
			err = domain.WrapError(domain.ErrInternal, "pipeline stage", fmt.Errorf("panic: %v", r))
		}
	}()

	// Safety filter: no external calls before the query is validated.
	start := time.Now()
	query, verdict := p.safety.Filter(question)
	recorder.record("safety_filter", question, verdictSummary(verdict), verdict.Metadata, start)
	if !verdict.Safe {
		p.logger.Info("query_blocked",
			"session_id", sessionID,
			"reason", string(verdict.Reason),
		)
		return &domain.AskResult{
			ResponseText: verdict.Message,
			Blocked:      true,
			BlockReason:  verdict.Reason,
			Trace:        recorder.entries,
		}, nil
	}

	// Retrieval-need assessment: chitchat skips the knowledge base.
	start = time.Now()
	needsRetrieval, needConfidence := p.selfRAG.AssessRetrievalNeed(query)
	recorder.record("retrieval_need", query.Sanitized,
		strconv.FormatBool(needsRetrieval),
		map[string]string{"confidence": strconv.FormatFloat(needConfidence, 'f', 2, 64)},
		start)

	genCtx := domain.GenerationContext{Strategy: domain.StrategyNone}
	var assessment domain.QualityAssessment

	if needsRetrieval {
		start = time.Now()
		variants := p.expander.Expand(ctx, query, p.useHyDE)
		recorder.record("query_expansion", query.Raw,
			strings.Join(variants, " | "),
			map[string]string{"variant_count": strconv.Itoa(len(variants))},
			start)

		start = time.Now()
		set, retrieveErr := p.retriever.Retrieve(ctx, variants)
		if retrieveErr != nil {
			recorder.record("retrieval", query.Raw, "error: "+retrieveErr.Error(), nil, start)
			return nil, retrieveErr
		}
		recorder.record("retrieval", query.Raw, summarizeDocs(set),
			map[string]string{"document_ids": strings.Join(set.DocumentIDs(), ",")},
			start)

		start = time.Now()
		assessment, genCtx = p.corrective.Correct(query, set)
		recorder.record("corrective", summarizeDocs(set),
			string(assessment.Quality),
			map[string]string{
				"strategy":        string(genCtx.Strategy),
				"aggregate_score": strconv.FormatFloat(assessment.AggregateScore, 'f', 3, 64),
			},
			start)
	}

	contextText := genCtx.JoinedText("\n\n")

	// Generation: single bounded call, no retries.
	start = time.Now()
	response, err := p.generate(ctx, genCtx, query)
	if err != nil {
		recorder.record("generation", query.Raw, "error: "+err.Error(), nil, start)
		return nil, err
	}
	recorder.record("generation", domain.TruncateTraceField(contextText),
		domain.TruncateTraceField(response), nil, start)

	// Verification: layered detector plus claim-level re-check.
	start = time.Now()
	report := p.detector.Detect(response, contextText)
	verification := p.cove.Verify(response, contextText)
	confidence := 0.8*report.Confidence + 0.2*verification.Confidence

	issues := report.IssueStrings()
	for _, claim := range verification.Claims {
		if claim.Verified {
			continue
		}
		issues = append(issues, domain.IssueUnverified+": "+claim.Claim)
	}
	recorder.record("verification", domain.TruncateTraceField(response),
		strconv.FormatFloat(confidence, 'f', 3, 64),
		map[string]string{
			"grounding":      strconv.FormatFloat(report.GroundingScore, 'f', 3, 64),
			"hallucinations": strconv.FormatBool(report.HasHallucinations),
			"claims_checked": strconv.Itoa(len(verification.Claims)),
		},
		start)

	if report.HasHallucinations {
		p.logger.Warn("hallucination_flagged",
			"session_id", sessionID,
			"confidence", confidence,
			"issue_count", len(issues),
		)
	}

	return &domain.AskResult{
		ResponseText: response,
		Sources:      sourceRefs(genCtx),
		Confidence:   confidence,
		Issues:       issues,
		Quality:      assessment.Quality,
		Strategy:     genCtx.Strategy,
		Trace:        recorder.entries,
	}, nil
}

// generate calls the generator once under the configured deadline. An
// empty completion is a generation failure, not an answer.
func (p *Pipeline) generate(ctx context.Context, genCtx domain.GenerationContext, query domain.Query) (string, error) {
	prompt := buildPrompt(p.systemPrompt, p.fewShot, genCtx, query.Raw)

	genContext, cancel := context.WithTimeout(ctx, p.generationTimeout)
	defer cancel()

	response, err := p.generator.Complete(genContext, prompt, p.temperature, p.maxTokens)
	if err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "complete answer", err)
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return "", domain.WrapError(domain.ErrGeneration, "complete answer", fmt.Errorf("empty completion"))
	}
	return response, nil
}

func sourceRefs(genCtx domain.GenerationContext) []domain.SourceRef {
	refs := make([]domain.SourceRef, 0, len(genCtx.Passages))
	for _, passage := range genCtx.Passages {
		refs = append(refs, domain.SourceRef{
			DocumentID: passage.DocumentID,
			Title:      passage.Title,
			Section:    passage.Section,
		})
	}
	return refs
}

func verdictSummary(verdict domain.SafetyVerdict) string {
	if verdict.Safe {
		return "safe"
	}
	return "blocked: " + string(verdict.Reason)
}

// stageRecorder accumulates trace entries and forwards each one to the
// sink as it is produced.
type stageRecorder struct {
	ctx       context.Context
	sessionID string
	sink      ports.TraceSink
	entries   []domain.TraceEntry
}

func newStageRecorder(ctx context.Context, sessionID string, sink ports.TraceSink) *stageRecorder {
	return &stageRecorder{ctx: ctx, sessionID: sessionID, sink: sink}
}

func (r *stageRecorder) record(stage, input, output string, metadata map[string]string, start time.Time) {
	entry := domain.TraceEntry{
		Timestamp:  start,
		Stage:      stage,
		Input:      domain.TruncateTraceField(input),
		Output:     domain.TruncateTraceField(output),
		Metadata:   metadata,
		DurationMS: float64(time.Since(start).Microseconds()) / 1000,
	}
	r.entries = append(r.entries, entry)
	if r.sink != nil {
		r.sink.Append(r.ctx, r.sessionID, entry)
	}
}
