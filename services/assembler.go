package services

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"ga-assistant-backend/models"
)

// systemTemplate is the GA Assistant persona prompt. The {{.History}} and
// {{.Context}} slots are filled by the assembler; %s receives the configured
// fallback message.
const systemTemplate = `You are 'GA Assistant', the AI assistant of the general affairs team at Dooohn Corporation.

Users will ask you questions about Dooohn Corporation.

[Rules]
1. Answer in Korean, politely, and only from the information given in [Context].
2. Structure answers in Markdown for readability, step by step.
3. Put blank lines before and after any table so the Markdown stays valid.
4. Present URLs on their own labelled line, e.g. '- 링크 : <url>'.
5. If [Context] contains no direct answer and is not relevant, reply exactly with:
%s
6. Use [Previous Conversation History] to stay consistent with the ongoing conversation. It is empty when there is no history.

[Form]
- 요약 : short answer to the question
- 상세 내용 : detailed answer

[Previous Conversation History]
{{.History}}

[Context]
{{.Context}}`

// DefaultSystemTemplate renders the system template with the fallback
// message inlined as rule 5.
func DefaultSystemTemplate(fallback string) string {
	return fmt.Sprintf(systemTemplate, fallback)
}

// PromptBuilder merges refined chunks and bounded conversation history into
// the final generation prompt.
type PromptBuilder struct {
	tmpl          *template.Template
	historyWindow int
}

// NewPromptBuilder parses the system template. Slots other than History and
// Context are rejected at assembly time, before the generator is called.
func NewPromptBuilder(systemTmpl string, historyWindow int) (*PromptBuilder, error) {
	tmpl, err := template.New("system").Option("missingkey=error").Parse(systemTmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTemplate, err)
	}
	if historyWindow < 1 {
		historyWindow = 5
	}
	return &PromptBuilder{tmpl: tmpl, historyWindow: historyWindow}, nil
}

// Assemble renders the prompt. An empty refined set produces an empty
// context section; the fallback behavior on empty context is an instruction
// inside the template, not logic here.
func (b *PromptBuilder) Assemble(refined []models.ScoredChunk, history []models.ConversationTurn, query string) (*models.AssembledPrompt, error) {
	contents := make([]string, len(refined))
	for i, sc := range refined {
		contents[i] = sc.Chunk.PageContent
	}
	contextSection := strings.Join(contents, "\n\n")
	historySection := RenderHistory(history, b.historyWindow)

	var buf bytes.Buffer
	err := b.tmpl.Execute(&buf, map[string]string{
		"History": historySection,
		"Context": contextSection,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTemplate, err)
	}

	// The current query is always the final turn.
	text := buf.String() + "\n\nuser: " + query

	return &models.AssembledPrompt{
		HistorySection: historySection,
		ContextSection: contextSection,
		UserInput:      query,
		Text:           text,
	}, nil
}

// RenderHistory renders at most the last `window` turns, oldest first, as
// labelled lines. No prior turns produce the empty string, never a
// placeholder.
func RenderHistory(history []models.ConversationTurn, window int) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	lines := make([]string, len(history))
	for i, turn := range history {
		lines[i] = turn.Role + ": " + turn.Content
	}
	return strings.Join(lines, "\n")
}
