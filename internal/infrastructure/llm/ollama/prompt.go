package ollama

func buildClassificationPrompt(text string) string {
	const maxSnippet = 4000
	snippet := text
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return `You are a classifier for French language learning materials.
Return strict JSON object with keys:
topic (string: grammar, vocabulary, idioms, pronunciation or culture),
level (string: CEFR level A1-C2),
tags (array of strings),
confidence (number from 0 to 1),
summary (string, one sentence in Russian).
No markdown, no extra keys.

Document:
` + snippet
}
