package usecase

import (
	"strconv"
	"strings"

	"github.com/dmorozov/french-tutor-assistant/internal/core/domain"
	"github.com/dmorozov/french-tutor-assistant/internal/knowledge"
)

// buildPrompt assembles the generation prompt: system role, few-shot
// examples, corrective instruction, numbered context passages and the
// question. Passage order is preserved from the corrected context.
func buildPrompt(system string, fewShot []knowledge.FewShotExample, genCtx domain.GenerationContext, question string) string {
	var b strings.Builder

	b.WriteString(system)
	b.WriteString("\n\n")

	if len(fewShot) > 0 {
		b.WriteString("Примеры ответов:\n")
		for _, example := range fewShot {
			b.WriteString("Вопрос: ")
			b.WriteString(example.Question)
			b.WriteString("\nОтвет: ")
			b.WriteString(example.Answer)
			b.WriteString("\n\n")
		}
	}

	if genCtx.Instruction != "" {
		b.WriteString(genCtx.Instruction)
		b.WriteString("\n\n")
	}

	if !genCtx.Empty() {
		b.WriteString("Контекст:\n")
		for i, passage := range genCtx.Passages {
			b.WriteString("[")
			b.WriteString(passageLabel(i, passage))
			b.WriteString("] ")
			b.WriteString(strings.TrimSpace(passage.Text))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Вопрос: ")
	b.WriteString(question)
	b.WriteString("\nОтвет:")
	return b.String()
}

func passageLabel(i int, passage domain.RetrievedDoc) string {
	if passage.Title != "" {
		return passage.Title
	}
	return "источник " + strconv.Itoa(i+1)
}
