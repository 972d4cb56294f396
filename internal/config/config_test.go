package config

import "testing"

func TestLoadPipelineDefaults(t *testing.T) {
	t.Setenv("MAX_QUERY_LENGTH", "")
	t.Setenv("TOPIC_THRESHOLD", "")
	t.Setenv("MMR_LAMBDA", "")
	t.Setenv("RETRIEVAL_K", "")
	t.Setenv("FINAL_DOC_COUNT", "")
	t.Setenv("GROUNDING_THRESHOLD", "")
	t.Setenv("CONFIDENCE_THRESHOLD", "")

	cfg := Load()
	if cfg.MaxQueryLength != 2000 {
		t.Fatalf("expected default max query length 2000, got %d", cfg.MaxQueryLength)
	}
	if cfg.TopicThreshold != 0.1 {
		t.Fatalf("expected default topic threshold 0.1, got %v", cfg.TopicThreshold)
	}
	if cfg.MMRLambda != 0.7 {
		t.Fatalf("expected default mmr lambda 0.7, got %v", cfg.MMRLambda)
	}
	if cfg.RetrievalK != 10 {
		t.Fatalf("expected default retrieval k 10, got %d", cfg.RetrievalK)
	}
	if cfg.FinalDocCount != 5 {
		t.Fatalf("expected default final doc count 5, got %d", cfg.FinalDocCount)
	}
	if cfg.GroundingThreshold != 0.3 {
		t.Fatalf("expected default grounding threshold 0.3, got %v", cfg.GroundingThreshold)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Fatalf("expected default confidence threshold 0.5, got %v", cfg.ConfidenceThreshold)
	}
}

func TestLoadParsesPipelineOverrides(t *testing.T) {
	t.Setenv("MAX_QUERY_LENGTH", "500")
	t.Setenv("MMR_LAMBDA", "1.0")
	t.Setenv("ALLOWED_LANGUAGES", "ru, fr ,en")
	t.Setenv("USE_HYDE", "false")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "5")

	cfg := Load()
	if cfg.MaxQueryLength != 500 {
		t.Fatalf("expected max query length override, got %d", cfg.MaxQueryLength)
	}
	if cfg.MMRLambda != 1.0 {
		t.Fatalf("expected mmr lambda override, got %v", cfg.MMRLambda)
	}
	if len(cfg.AllowedLanguages) != 3 || cfg.AllowedLanguages[2] != "en" {
		t.Fatalf("expected trimmed language list, got %v", cfg.AllowedLanguages)
	}
	if cfg.UseHyDE {
		t.Fatalf("expected hyde disabled")
	}
	if cfg.GenerationTimeout.Seconds() != 5 {
		t.Fatalf("expected generation timeout 5s, got %v", cfg.GenerationTimeout)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RETRIEVAL_K", "not-a-number")
	t.Setenv("TOPIC_THRESHOLD", "also-bad")

	cfg := Load()
	if cfg.RetrievalK != 10 {
		t.Fatalf("expected fallback retrieval k, got %d", cfg.RetrievalK)
	}
	if cfg.TopicThreshold != 0.1 {
		t.Fatalf("expected fallback topic threshold, got %v", cfg.TopicThreshold)
	}
}
