package usecase

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

// HallucinationDetector runs the layered post-generation checks:
// lexical grounding, semantic consistency and confidence calibration,
// combined into one calibrated confidence score.
type HallucinationDetector struct {
	groundingThreshold  float64
	confidenceThreshold float64
	highMarkers         []string
	lowMarkers          []string
	negationPairs       [][2]string
}

type HallucinationDetectorConfig struct {
	GroundingThreshold  float64
	ConfidenceThreshold float64
	HighMarkers         []string
	LowMarkers          []string
	NegationPairs       [][2]string
}

func NewHallucinationDetector(cfg HallucinationDetectorConfig) *HallucinationDetector {
	if cfg.GroundingThreshold <= 0 {
		cfg.GroundingThreshold = 0.3
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.5
	}
	return &HallucinationDetector{
		groundingThreshold:  cfg.GroundingThreshold,
		confidenceThreshold: cfg.ConfidenceThreshold,
		highMarkers:         cfg.HighMarkers,
		lowMarkers:          cfg.LowMarkers,
		negationPairs:       cfg.NegationPairs,
	}
}

// Detect is deterministic over (response, context): identical inputs
// always produce identical reports.
func (d *HallucinationDetector) Detect(response, context string) domain.HallucinationReport {
	report := domain.HallucinationReport{Confidence: 1}

	grounding, ungrounded := d.lexicalGrounding(response, context)
	report.GroundingScore = grounding
	report.UngroundedTerms = ungrounded
	if grounding < d.groundingThreshold {
		report.Issues = append(report.Issues, domain.HallucinationIssue{
			Kind:   domain.IssueLowGrounding,
			Detail: fmt.Sprintf("только %.0f%% терминов ответа подтверждены контекстом", grounding*100),
		})
	}

	contradictions := d.semanticConsistency(response)
	consistency := 1.0
	if len(contradictions) > 0 {
		consistency = 0.5
		for _, detail := range contradictions {
			report.Issues = append(report.Issues, domain.HallucinationIssue{
				Kind:   domain.IssueContradiction,
				Detail: detail,
			})
		}
	}
	report.ConsistencyScore = consistency

	overconfident := d.confidenceCalibration(response, context)
	for _, claim := range overconfident {
		report.Issues = append(report.Issues, domain.HallucinationIssue{
			Kind:   domain.IssueOverconfident,
			Detail: claim,
		})
	}
	overconfidencePenalty := 0.25 * float64(len(overconfident))
	if overconfidencePenalty > 1 {
		overconfidencePenalty = 1
	}

	report.Confidence = 0.4*grounding + 0.3*consistency + 0.3*(1-overconfidencePenalty)
	report.HasHallucinations = report.Confidence < d.confidenceThreshold || len(contradictions) > 0

	return report
}

// lexicalGrounding measures the fraction of content-bearing terms in
// the response that also appear in the context. Content-bearing means
// French words of three letters or more plus Russian grammar
// terminology. An empty context means retrieval was intentionally
// bypassed; there is nothing to ground against, so the check passes.
func (d *HallucinationDetector) lexicalGrounding(response, context string) (float64, []string) {
	if strings.TrimSpace(context) == "" {
		return 1, nil
	}
	terms := contentTerms(response)
	if len(terms) == 0 {
		return 1, nil
	}

	contextLower := strings.ToLower(context)
	grounded := 0
	ungrounded := make([]string, 0, 8)
	for _, term := range terms {
		if strings.Contains(contextLower, term) {
			grounded++
		} else if len([]rune(term)) > 4 && len(ungrounded) < 10 {
			ungrounded = append(ungrounded, term)
		}
	}
	return float64(grounded) / float64(len(terms)), ungrounded
}

// semanticConsistency looks for opposing absolute claims in sentences
// that share enough words to be talking about the same thing.
func (d *HallucinationDetector) semanticConsistency(response string) []string {
	sentences := splitSentences(response)
	var contradictions []string

	for i, first := range sentences {
		firstLower := strings.ToLower(first)
		firstWords := toTokenSet(firstLower)
		for j, second := range sentences {
			if i == j {
				continue
			}
			secondLower := strings.ToLower(second)
			for _, pair := range d.negationPairs {
				if !strings.Contains(firstLower, pair[0]) || !strings.Contains(secondLower, pair[1]) {
					continue
				}
				shared := 0
				for token := range toTokenSet(secondLower) {
					if _, ok := firstWords[token]; ok {
						shared++
					}
				}
				if shared > 3 {
					contradictions = append(contradictions,
						fmt.Sprintf("противоречие %q и %q в близких предложениях", pair[0], pair[1]))
				}
			}
		}
	}
	return contradictions
}

// confidenceCalibration flags every high-certainty marker in the
// response that has no matching certainty marker in the context. Each
// hit is reported with its sentence so the user sees the exact claim.
func (d *HallucinationDetector) confidenceCalibration(response, context string) []string {
	responseLower := strings.ToLower(response)
	contextLower := strings.ToLower(context)

	var claims []string
	for _, marker := range d.highMarkers {
		marker = strings.ToLower(marker)
		if !strings.Contains(responseLower, marker) {
			continue
		}
		if strings.Contains(contextLower, marker) {
			continue
		}
		for _, sentence := range splitSentences(response) {
			if strings.Contains(strings.ToLower(sentence), marker) {
				claims = append(claims, fmt.Sprintf("%q: %s", marker, strings.TrimSpace(sentence)))
			}
		}
	}
	return claims
}

// contentTerms extracts French words (Latin script, length >= 3) and
// Russian grammar terminology from the response, deduplicated in order
// of first appearance.
func contentTerms(response string) []string {
	grammarStems := []string{"артикль", "глагол", "спряжен", "наклонен", "местоимен", "падеж"}

	seen := make(map[string]struct{})
	var terms []string
	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	for _, token := range splitTokensLower(response) {
		if isLatinWord(token) && len([]rune(token)) >= 3 {
			add(token)
			continue
		}
		for _, stem := range grammarStems {
			if strings.HasPrefix(token, stem) {
				add(token)
				break
			}
		}
	}
	return terms
}

func isLatinWord(token string) bool {
	for _, r := range token {
		if unicode.IsDigit(r) {
			return false
		}
		if !unicode.Is(unicode.Latin, r) {
			return false
		}
	}
	return token != ""
}
