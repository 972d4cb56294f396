package domain

// HallucinationIssue is one flagged problem in a generated answer, with
// enough detail to show the user.
type HallucinationIssue struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

const (
	IssueLowGrounding  = "low_grounding"
	IssueContradiction = "contradiction"
	IssueOverconfident = "overconfident_claim"
	IssueUnverified    = "unverified_claim"
)

// HallucinationReport is derived from (response, context) and never
// mutated after creation.
type HallucinationReport struct {
	HasHallucinations bool                 `json:"has_hallucinations"`
	Confidence        float64              `json:"confidence"`
	GroundingScore    float64              `json:"grounding_score"`
	ConsistencyScore  float64              `json:"consistency_score"`
	UngroundedTerms   []string             `json:"ungrounded_terms,omitempty"`
	Issues            []HallucinationIssue `json:"issues,omitempty"`
}

// IssueStrings flattens issues for the caller-facing result.
func (r HallucinationReport) IssueStrings() []string {
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Kind+": "+issue.Detail)
	}
	return out
}

// ClaimVerification is the per-claim outcome of chain-of-verification.
type ClaimVerification struct {
	Claim      string  `json:"claim"`
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence,omitempty"`
}

// VerificationOutcome aggregates claim checks over one answer.
type VerificationOutcome struct {
	Verified   bool                `json:"verified"`
	Confidence float64             `json:"confidence"`
	Claims     []ClaimVerification `json:"claims,omitempty"`
}
