package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
	"github.com/dmorozov/french-tutor-assistant/internal/knowledge"
)

type generatorFake struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *generatorFake) Complete(_ context.Context, prompt string, _ float64, _ int) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testQuery(raw string) domain.Query {
	return domain.Query{
		Raw:       raw,
		Sanitized: strings.ToLower(strings.TrimSpace(raw)),
		Language:  domain.LanguageRussian,
	}
}

func TestExpandOriginalAlwaysFirst(t *testing.T) {
	expander := NewQueryExpander(nil, QueryExpanderConfig{
		Synonyms:    knowledge.Defaults().Synonyms,
		MaxVariants: 4,
	}, nil)

	query := testQuery("Как спрягается глагол avoir?")
	variants := expander.Expand(context.Background(), query, false)

	if len(variants) == 0 || variants[0] != query.Raw {
		t.Fatalf("expected original query first, got %v", variants)
	}
	if len(variants) > 4 {
		t.Fatalf("expected at most 4 variants, got %d", len(variants))
	}
}

func TestExpandSynonymVariantsDeterministic(t *testing.T) {
	rules := []knowledge.SynonymRule{
		{Term: "глагол", Variants: []string{"verbe", "спряжение"}},
	}
	expander := NewQueryExpander(nil, QueryExpanderConfig{Synonyms: rules, MaxVariants: 4}, nil)

	query := testQuery("глагол être")
	first := expander.Expand(context.Background(), query, false)
	second := expander.Expand(context.Background(), query, false)

	want := []string{"глагол être", "verbe être", "спряжение être"}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("variants = %v, want %v", first, want)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expansion is not deterministic: %v vs %v", first, second)
	}
}

func TestExpandDeduplicatesVariants(t *testing.T) {
	rules := []knowledge.SynonymRule{
		{Term: "перевод", Variants: []string{"перевод", "traduction"}},
	}
	expander := NewQueryExpander(nil, QueryExpanderConfig{Synonyms: rules, MaxVariants: 4}, nil)

	variants := expander.Expand(context.Background(), testQuery("перевод слова"), false)
	want := []string{"перевод слова", "traduction слова"}
	if !reflect.DeepEqual(variants, want) {
		t.Fatalf("variants = %v, want %v", variants, want)
	}
}

func TestExpandHyDEUsesGenerator(t *testing.T) {
	gen := &generatorFake{response: "Глагол avoir спрягается так: j'ai, tu as, il a."}
	expander := NewQueryExpander(gen, QueryExpanderConfig{MaxVariants: 4}, nil)

	variants := expander.Expand(context.Background(), testQuery("спряжение avoir"), true)
	if gen.calls != 1 {
		t.Fatalf("expected one generator call, got %d", gen.calls)
	}
	last := variants[len(variants)-1]
	if last != gen.response {
		t.Fatalf("expected hypothetical document as last variant, got %q", last)
	}
}

func TestExpandHyDEFallsBackOnGeneratorError(t *testing.T) {
	gen := &generatorFake{err: errors.New("ollama down")}
	expander := NewQueryExpander(gen, QueryExpanderConfig{MaxVariants: 4}, nil)

	variants := expander.Expand(context.Background(), testQuery("спряжение avoir"), true)
	last := variants[len(variants)-1]
	if !strings.Contains(last, "спряжение avoir") {
		t.Fatalf("expected static template variant mentioning the query, got %q", last)
	}
	if !strings.Contains(last, "французском") {
		t.Fatalf("expected static template variant, got %q", last)
	}
}
