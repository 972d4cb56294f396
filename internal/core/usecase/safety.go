package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
)

// SafetyFilter validates incoming queries before any external call is
// made. Checks run in a fixed order and the first failure wins.
type SafetyFilter struct {
	maxLength        int
	injectionPhrases []string
	topicTerms       []string
	topicThreshold   float64
	allowedLanguages map[domain.Language]struct{}
}

type SafetyFilterConfig struct {
	MaxQueryLength   int
	InjectionPhrases []string
	TopicTerms       []string
	TopicThreshold   float64
	AllowedLanguages []string
}

func NewSafetyFilter(cfg SafetyFilterConfig) *SafetyFilter {
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = 2000
	}
	allowed := make(map[domain.Language]struct{}, len(cfg.AllowedLanguages))
	for _, lang := range cfg.AllowedLanguages {
		allowed[domain.Language(strings.ToLower(strings.TrimSpace(lang)))] = struct{}{}
	}
	if len(allowed) == 0 {
		allowed[domain.LanguageRussian] = struct{}{}
		allowed[domain.LanguageFrench] = struct{}{}
	}

	phrases := make([]string, 0, len(cfg.InjectionPhrases))
	for _, p := range cfg.InjectionPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			phrases = append(phrases, p)
		}
	}

	return &SafetyFilter{
		maxLength:        cfg.MaxQueryLength,
		injectionPhrases: phrases,
		topicTerms:       cfg.TopicTerms,
		topicThreshold:   cfg.TopicThreshold,
		allowedLanguages: allowed,
	}
}

// Filter runs all checks. It performs no external calls; the verdict
// metadata feeds the pipeline trace.
func (f *SafetyFilter) Filter(raw string) (domain.Query, domain.SafetyVerdict) {
	sanitized := strings.ToLower(strings.TrimSpace(raw))
	metadata := map[string]string{
		"original_length": strconv.Itoa(len([]rune(raw))),
	}

	if length := len([]rune(raw)); length > f.maxLength {
		return domain.Query{}, domain.SafetyVerdict{
			Reason:   domain.BlockTooLong,
			Message:  fmt.Sprintf("запрос слишком длинный (%d > %d символов)", length, f.maxLength),
			Metadata: metadata,
		}
	}

	if phrase, found := f.matchInjection(sanitized); found {
		metadata["matched_phrase"] = phrase
		return domain.Query{}, domain.SafetyVerdict{
			Reason:   domain.BlockInjectionDetected,
			Message:  "извините, я не могу обработать этот запрос",
			Metadata: metadata,
		}
	}

	score, relevant := f.topicRelevance(sanitized)
	metadata["topic_score"] = strconv.FormatFloat(score, 'f', 3, 64)
	if !relevant {
		return domain.Query{}, domain.SafetyVerdict{
			Reason: domain.BlockOffTopic,
			Message: "извините, я специализируюсь только на переводе с русского на французский " +
				"и вопросах французского языка",
			Metadata: metadata,
		}
	}

	language := detectLanguage(raw)
	metadata["language"] = string(language)
	if _, ok := f.allowedLanguages[language]; !ok {
		return domain.Query{}, domain.SafetyVerdict{
			Reason:   domain.BlockUnsupportedLanguage,
			Message:  "поддерживаются только запросы на русском и французском языках",
			Metadata: metadata,
		}
	}

	query := domain.Query{
		Raw:       raw,
		Sanitized: sanitized,
		Language:  language,
	}
	return query, domain.SafetyVerdict{Safe: true, Metadata: metadata}
}

func (f *SafetyFilter) matchInjection(sanitized string) (string, bool) {
	for _, phrase := range f.injectionPhrases {
		if strings.Contains(sanitized, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// topicRelevance scores term overlap against the in-domain vocabulary,
// normalized by query length capped at ten words. French diacritics
// alone count as a domain signal: a query quoting French text is
// on-topic even without a keyword hit.
func (f *SafetyFilter) topicRelevance(sanitized string) (float64, bool) {
	matches := 0
	for _, term := range f.topicTerms {
		if strings.Contains(sanitized, strings.ToLower(term)) {
			matches++
		}
	}

	wordCount := len(strings.Fields(sanitized))
	if wordCount < 1 {
		wordCount = 1
	}
	norm := wordCount
	if norm > 10 {
		norm = 10
	}
	score := float64(matches) / float64(norm)
	if score > 1 {
		score = 1
	}

	relevant := matches > 0 || hasFrenchDiacritics(sanitized) || score > f.topicThreshold
	return score, relevant
}

func hasFrenchDiacritics(s string) bool {
	return strings.ContainsAny(s, "éèêëàâäùûüôöîïç")
}

// detectLanguage counts script membership per rune. Cyrillic dominance
// means Russian; Latin dominance means French (the only Latin-script
// language in this domain). Anything else is unsupported.
func detectLanguage(s string) domain.Language {
	var cyrillic, latin, other int
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			continue
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		default:
			other++
		}
	}

	total := cyrillic + latin + other
	if total == 0 {
		return domain.LanguageOther
	}
	if other*2 > total {
		return domain.LanguageOther
	}
	if cyrillic >= latin {
		return domain.LanguageRussian
	}
	return domain.LanguageFrench
}
