package knowledge

// SynonymRule rewrites one domain term into query variants. Rules are
// an ordered slice so expansion output is reproducible.
type SynonymRule struct {
	Term     string   `yaml:"term"`
	Variants []string `yaml:"variants"`
}

// FallbackFact is a static base-knowledge snippet injected by the
// corrective stage when retrieval quality is weak.
type FallbackFact struct {
	Topic    string   `yaml:"topic"`
	Keywords []string `yaml:"keywords"`
	Text     string   `yaml:"text"`
}

// FewShotExample seeds the generation prompt.
type FewShotExample struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Tables bundles every static table the pipeline consumes. Loaded once
// at startup and treated as read-only afterwards, so concurrent
// pipelines can share one instance.
type Tables struct {
	InjectionPhrases []string         `yaml:"injection_phrases"`
	TopicTerms       []string         `yaml:"topic_terms"`
	Synonyms         []SynonymRule    `yaml:"synonyms"`
	FallbackFacts    []FallbackFact   `yaml:"fallback_facts"`
	FewShot          []FewShotExample `yaml:"few_shot"`

	HighCertaintyMarkers []string    `yaml:"high_certainty_markers"`
	LowCertaintyMarkers  []string    `yaml:"low_certainty_markers"`
	NegationPairs        [][2]string `yaml:"negation_pairs"`

	RetrievalTriggersHigh []string `yaml:"retrieval_triggers_high"`
	RetrievalTriggersLow  []string `yaml:"retrieval_triggers_low"`

	SystemPrompt string `yaml:"system_prompt"`
}

// Defaults returns the built-in tables for the Russian→French tutoring
// domain. A YAML file can override any section (see Load).
func Defaults() Tables {
	return Tables{
		InjectionPhrases: []string{
			"ignore previous instructions",
			"ignore all previous instructions",
			"previous instructions",
			"forget everything",
			"forget your role",
			"you are now a",
			"new instructions:",
			"system prompt",
			"jailbreak",
			"bypass the filter",
			"act as if",
			"pretend to be",
			"disregard your rules",
			"override the system",
			"забудь предыдущие инструкции",
			"игнорируй инструкции",
		},
		TopicTerms: []string{
			"перевод", "переведи", "перевести", "французск", "франция",
			"как сказать", "по-французски", "грамматик", "артикль",
			"глагол", "слово", "выражение", "фраза", "идиом", "означает",
			"язык", "произношение", "спряжение", "время глагол",
			"traduire", "traduction", "français", "russe", "grammaire",
			"verbe", "article", "expression", "mot", "phrase", "conjugaison",
		},
		Synonyms: []SynonymRule{
			{Term: "перевод", Variants: []string{"перевести", "translation", "traduire"}},
			{Term: "глагол", Variants: []string{"verb", "verbe", "спряжение"}},
			{Term: "спряжение", Variants: []string{"conjugation", "conjugaison"}},
			{Term: "артикль", Variants: []string{"article", "определённый артикль", "неопределённый артикль"}},
			{Term: "время", Variants: []string{"tense", "temps", "présent", "passé composé"}},
			{Term: "идиома", Variants: []string{"выражение", "фразеологизм", "idiome", "expression"}},
		},
		FallbackFacts: []FallbackFact{
			{
				Topic:    "articles",
				Keywords: []string{"артикль", "article", "le", "la", "les"},
				Text: "Во французском языке три типа артиклей: определённые (le, la, les), " +
					"неопределённые (un, une, des) и частичные (du, de la, de l').",
			},
			{
				Topic:    "verbs",
				Keywords: []string{"глагол", "спряжение", "verbe", "conjugaison"},
				Text: "Французские глаголы делятся на три группы: -er (1-я), -ir с -issons (2-я) " +
					"и неправильные (3-я). Aller — исключение из 1-й группы.",
			},
			{
				Topic:    "tenses",
				Keywords: []string{"время", "tense", "temps", "passé", "futur"},
				Text: "Основные времена: présent (настоящее), passé composé (прошедшее составное), " +
					"imparfait (незавершённое), futur simple (простое будущее).",
			},
		},
		FewShot: []FewShotExample{
			{
				Question: "Переведи: Доброе утро",
				Answer:   "Bonjour (утром до полудня). Дословно «доброе утро» — bon matin — во Франции не используется как приветствие.",
			},
			{
				Question: "Как спрягается глагол être в présent?",
				Answer:   "je suis, tu es, il/elle est, nous sommes, vous êtes, ils/elles sont.",
			},
		},
		HighCertaintyMarkers: []string{
			"всегда", "никогда", "точно", "безусловно", "100%",
			"гарантированно", "без исключений",
			"always", "never", "without exception",
			"toujours", "jamais",
		},
		LowCertaintyMarkers: []string{
			"возможно", "вероятно", "может быть", "иногда",
			"обычно", "как правило", "чаще всего",
		},
		NegationPairs: [][2]string{
			{"всегда", "никогда"},
			{"можно", "нельзя"},
			{"правильно", "неправильно"},
			{"мужской род", "женский род"},
			{"always", "never"},
		},
		RetrievalTriggersHigh: []string{
			"перевод", "переведи", "как сказать", "правило",
			"грамматика", "грамматик", "спряжение", "артикль", "идиом",
		},
		RetrievalTriggersLow: []string{
			"привет", "спасибо", "пока", "как дела",
		},
		SystemPrompt: "Ты — ассистент-переводчик с русского на французский. " +
			"Отвечай по-русски, опираясь только на предоставленный контекст. " +
			"Если контекста недостаточно, скажи об этом прямо.",
	}
}
