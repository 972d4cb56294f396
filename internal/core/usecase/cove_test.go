package usecase

import (
	"testing"
)

func TestVerifyNoClaimsIsVerified(t *testing.T) {
	cove := NewChainOfVerification(0.5)

	outcome := cove.Verify("Bonjour! Чем могу помочь?", "")
	if !outcome.Verified {
		t.Fatalf("answer without claims must verify")
	}
	if outcome.Confidence != 1 {
		t.Fatalf("expected confidence 1, got %f", outcome.Confidence)
	}
	if len(outcome.Claims) != 0 {
		t.Fatalf("expected no claims, got %d", len(outcome.Claims))
	}
}

func TestVerifyExtractsTranslationAndExampleClaims(t *testing.T) {
	cove := NewChainOfVerification(0.5)

	response := "Перевод: le chat. Например: je vois le chat."
	context := "Кот по-французски le chat. Пример употребления: je vois le chat noir."

	outcome := cove.Verify(response, context)
	if len(outcome.Claims) != 2 {
		t.Fatalf("expected 2 claims, got %d: %+v", len(outcome.Claims), outcome.Claims)
	}
	if !outcome.Verified {
		t.Fatalf("expected verified outcome, got %+v", outcome)
	}
	for _, claim := range outcome.Claims {
		if !claim.Verified {
			t.Fatalf("claim %q not verified", claim.Claim)
		}
		if claim.Evidence == "" {
			t.Fatalf("claim %q has no evidence sentence", claim.Claim)
		}
	}
}

func TestVerifyUnsupportedClaimFails(t *testing.T) {
	cove := NewChainOfVerification(0.5)

	response := "Правило: субжонктив обязателен после quoique."
	context := "le chat est un animal domestique"

	outcome := cove.Verify(response, context)
	if outcome.Verified {
		t.Fatalf("unsupported claim must fail verification: %+v", outcome)
	}
	if len(outcome.Claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(outcome.Claims))
	}
	if outcome.Claims[0].Verified {
		t.Fatalf("claim should be unverified")
	}
}

func TestVerifyClaimCapAtTen(t *testing.T) {
	cove := NewChainOfVerification(0.5)

	var response string
	for i := 0; i < 15; i++ {
		response += "Например: пример номер " + string(rune('а'+i)) + ".\n"
	}

	outcome := cove.Verify(response, "пример номер")
	if len(outcome.Claims) > 10 {
		t.Fatalf("expected at most 10 claims, got %d", len(outcome.Claims))
	}
}
