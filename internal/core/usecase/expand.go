package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
	"github.com/dmorozov/french-tutor-assistant/internal/core/ports"
	"github.com/dmorozov/french-tutor-assistant/internal/knowledge"
)

// QueryExpander derives retrieval variants from a validated query:
// synonym substitutions from the bilingual table, plus an optional HyDE
// pseudo-document. Variant order is deterministic for identical
// input+config; the original query always comes first.
type QueryExpander struct {
	rules       []knowledge.SynonymRule
	generator   ports.Generator
	maxVariants int
	temperature float64
	maxTokens   int
	timeout     time.Duration
	logger      *slog.Logger
}

type QueryExpanderConfig struct {
	Synonyms    []knowledge.SynonymRule
	MaxVariants int
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func NewQueryExpander(generator ports.Generator, cfg QueryExpanderConfig, logger *slog.Logger) *QueryExpander {
	if cfg.MaxVariants <= 0 {
		cfg.MaxVariants = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryExpander{
		rules:       cfg.Synonyms,
		generator:   generator,
		maxVariants: cfg.MaxVariants,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// Expand returns at least the original query. Synonym variants are
// produced in table order, one per matching rule variant, deduplicated
// while preserving order. With useHyde the generator synthesizes a
// short hypothetical answer appended as a pseudo-query; on generator
// failure a static template document stands in so retrieval still gets
// an answer-shaped variant.
func (e *QueryExpander) Expand(ctx context.Context, query domain.Query, useHyde bool) []string {
	variants := []string{query.Raw}
	seen := map[string]struct{}{strings.ToLower(query.Raw): {}}

	lowered := query.Sanitized
	for _, rule := range e.rules {
		term := strings.ToLower(rule.Term)
		if !strings.Contains(lowered, term) {
			continue
		}
		for _, syn := range rule.Variants {
			if len(variants) >= e.maxVariants {
				break
			}
			candidate := strings.ReplaceAll(lowered, term, strings.ToLower(syn))
			if _, dup := seen[candidate]; dup {
				continue
			}
			seen[candidate] = struct{}{}
			variants = append(variants, candidate)
		}
	}

	if useHyde {
		variants = append(variants, e.hypotheticalDocument(ctx, query))
	}
	return variants
}

// hypotheticalDocument implements HyDE: a short synthetic answer embeds
// closer to real answer passages than the bare question does.
func (e *QueryExpander) hypotheticalDocument(ctx context.Context, query domain.Query) string {
	if e.generator != nil {
		hydeCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		prompt := fmt.Sprintf(
			"Напиши краткий информативный абзац, который отвечал бы на вопрос: %q\n"+
				"Ответ должен быть на русском языке и касаться французской грамматики или перевода.",
			query.Raw,
		)
		doc, err := e.generator.Complete(hydeCtx, prompt, e.temperature, e.maxTokens)
		if err == nil && strings.TrimSpace(doc) != "" {
			return doc
		}
		e.logger.Warn("hyde_generation_failed", "error", err)
	}

	return fmt.Sprintf(
		"Информация о французском языке по теме: %s. Грамматические правила и примеры использования.",
		query.Raw,
	)
}
