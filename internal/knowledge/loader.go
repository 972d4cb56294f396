package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load returns the default tables overlaid with sections from the given
// YAML file. Empty path means defaults only. A section present in the
// file replaces the default section wholesale; absent sections keep the
// built-ins.
func Load(path string) (Tables, error) {
	tables := Defaults()
	if path == "" {
		return tables, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read knowledge file: %w", err)
	}

	var overrides Tables
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return Tables{}, fmt.Errorf("parse knowledge file: %w", err)
	}

	merge(&tables, overrides)
	return tables, nil
}

func merge(dst *Tables, src Tables) {
	if len(src.InjectionPhrases) > 0 {
		dst.InjectionPhrases = src.InjectionPhrases
	}
	if len(src.TopicTerms) > 0 {
		dst.TopicTerms = src.TopicTerms
	}
	if len(src.Synonyms) > 0 {
		dst.Synonyms = src.Synonyms
	}
	if len(src.FallbackFacts) > 0 {
		dst.FallbackFacts = src.FallbackFacts
	}
	if len(src.FewShot) > 0 {
		dst.FewShot = src.FewShot
	}
	if len(src.HighCertaintyMarkers) > 0 {
		dst.HighCertaintyMarkers = src.HighCertaintyMarkers
	}
	if len(src.LowCertaintyMarkers) > 0 {
		dst.LowCertaintyMarkers = src.LowCertaintyMarkers
	}
	if len(src.NegationPairs) > 0 {
		dst.NegationPairs = src.NegationPairs
	}
	if len(src.RetrievalTriggersHigh) > 0 {
		dst.RetrievalTriggersHigh = src.RetrievalTriggersHigh
	}
	if len(src.RetrievalTriggersLow) > 0 {
		dst.RetrievalTriggersLow = src.RetrievalTriggersLow
	}
	if src.SystemPrompt != "" {
		dst.SystemPrompt = src.SystemPrompt
	}
}
