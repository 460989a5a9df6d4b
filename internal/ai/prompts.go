package ai

import (
	"fmt"
	"strings"

	"github.com/studytrack/studytrack-backend/internal/models"
)

// System prompts per assistant surface. The tone intentionally mirrors the
// study-plan focus of each category.
var systemPrompts = map[string]string{
	models.AIKindDSA: "You are a data structures and algorithms tutor. " +
		"Explain the requested topic with its core idea, time and space complexity, " +
		"a short Go code sketch, and two practice problems of increasing difficulty.",
	models.AIKindDevelopment: "You are a senior software engineer mentoring a junior developer. " +
		"Explain the requested topic with practical guidance, common pitfalls, and a concrete example.",
	models.AIKindSystemDesign: "You are a system design interviewer and coach. " +
		"Break the requested topic into requirements, high-level design, data model, " +
		"bottlenecks, and trade-offs.",
	models.AIKindJobSearch: "You are a career coach for software engineers. " +
		"Give actionable, specific advice for the requested topic, with examples where helpful.",
	models.AIKindSummary: "You summarize technical material. " +
		"Produce a concise summary with the key points as a short bullet list.",
}

// SystemPromptFor returns the system prompt for a response kind.
func SystemPromptFor(kind string) (string, error) {
	prompt, ok := systemPrompts[kind]
	if !ok {
		return "", fmt.Errorf("unknown AI response kind: %q", kind)
	}
	return prompt, nil
}

// BuildUserPrompt assembles the user message from the topic and optional
// extra context supplied by the caller.
func BuildUserPrompt(kind, topic, context string) string {
	var b strings.Builder

	switch kind {
	case models.AIKindSummary:
		b.WriteString("Summarize the following material:\n")
		b.WriteString(topic)
	default:
		b.WriteString("topic: ")
		b.WriteString(topic)
	}
	b.WriteString("\n")

	if context != "" {
		b.WriteString("additional_context: ")
		b.WriteString(context)
		b.WriteString("\n")
	}

	return b.String()
}
