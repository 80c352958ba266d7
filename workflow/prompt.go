package workflow

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultPrompt is the summarization prompt. It receives the retrieved
// context and the user's question.
const DefaultPrompt = `You are a legal expert assistant. Simplify the following legal information into clear, concise language:

Retrieved Legal Context: {{.Context}}

Original Query: {{.Query}}

Provide a clear, simplified explanation that a layperson can understand. Focus on key points and practical implications. If the retriever doesn't provide any information or if the query is not related to law, simply state that the question is not law-related and summarize it in easy language.`

// PromptData is the template input for the summarization prompt.
type PromptData struct {
	Context string
	Query   string
}

// ParsePrompt parses a summarization prompt template. The template must
// reference both {{.Context}} and {{.Query}}.
func ParsePrompt(text string) (*template.Template, error) {
	if !strings.Contains(text, ".Context") || !strings.Contains(text, ".Query") {
		return nil, fmt.Errorf("prompt template must reference .Context and .Query")
	}
	tmpl, err := template.New("summarize").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return tmpl, nil
}

func render(tmpl *template.Template, data PromptData) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

var defaultPrompt = template.Must(ParsePrompt(DefaultPrompt))
