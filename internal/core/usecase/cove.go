package usecase

import (
	"regexp"
	"strings"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

// ChainOfVerification re-checks a generated answer claim by claim
// against the context: extract claims, verify each lexically, aggregate
// into a VerificationOutcome.
type ChainOfVerification struct {
	minConfidence float64
}

var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:перевод|по-французски|французски|traduire)[:\s]+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)(?:правило|используется|образуется|спрягается)[:\s]+([^.!?\n]+)`),
	regexp.MustCompile(`(?i)(?:например|пример)[:\s]+([^.!?\n]+)`),
}

func NewChainOfVerification(minConfidence float64) *ChainOfVerification {
	if minConfidence <= 0 {
		minConfidence = 0.5
	}
	return &ChainOfVerification{minConfidence: minConfidence}
}

// Verify returns a verified outcome with confidence 1 when the answer
// contains no extractable claims: nothing checkable means nothing
// contradicted.
func (c *ChainOfVerification) Verify(response, context string) domain.VerificationOutcome {
	claims := extractClaims(response)
	if len(claims) == 0 {
		return domain.VerificationOutcome{Verified: true, Confidence: 1}
	}

	outcome := domain.VerificationOutcome{
		Claims: make([]domain.ClaimVerification, 0, len(claims)),
	}

	verified := 0
	var totalConfidence float64
	for _, claim := range claims {
		check := verifyClaim(claim, context)
		totalConfidence += check.Confidence
		if check.Verified {
			verified++
		}
		outcome.Claims = append(outcome.Claims, check)
	}

	outcome.Confidence = totalConfidence / float64(len(claims))
	outcome.Verified = float64(verified)/float64(len(claims)) > c.minConfidence
	return outcome
}

// extractClaims pulls translation statements, grammar rules and
// examples out of the answer, deduplicated in order of appearance.
func extractClaims(response string) []string {
	seen := make(map[string]struct{})
	var claims []string
	for _, pattern := range claimPatterns {
		for _, match := range pattern.FindAllStringSubmatch(response, -1) {
			claim := strings.TrimSpace(match[1])
			if claim == "" {
				continue
			}
			if _, dup := seen[claim]; dup {
				continue
			}
			seen[claim] = struct{}{}
			claims = append(claims, claim)
			if len(claims) >= 10 {
				return claims
			}
		}
	}
	return claims
}

// verifyClaim scores a single claim by the fraction of its long tokens
// present in the context, and picks the first context sentence
// containing one of them as evidence.
func verifyClaim(claim, context string) domain.ClaimVerification {
	claimTokens := make([]string, 0, 8)
	for _, token := range splitTokensLower(claim) {
		if len([]rune(token)) >= 4 {
			claimTokens = append(claimTokens, token)
		}
	}
	if len(claimTokens) == 0 {
		return domain.ClaimVerification{Claim: claim, Verified: true, Confidence: 1}
	}

	contextLower := strings.ToLower(context)
	matched := 0
	evidence := ""
	for _, token := range claimTokens {
		if !strings.Contains(contextLower, token) {
			continue
		}
		matched++
		if evidence == "" {
			for _, sentence := range splitSentences(context) {
				if strings.Contains(strings.ToLower(sentence), token) {
					evidence = domain.TruncateTraceField(sentence)
					break
				}
			}
		}
	}

	ratio := float64(matched) / float64(len(claimTokens))
	confidence := ratio * 1.5
	if confidence > 1 {
		confidence = 1
	}
	return domain.ClaimVerification{
		Claim:      claim,
		Verified:   ratio > 0.3,
		Confidence: confidence,
		Evidence:   evidence,
	}
}
