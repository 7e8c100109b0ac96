package routing

import (
	"fmt"
	"strings"
)

const instructionTemplate = `You are a helpful %s. Decide whether the documentation below contains enough information to answer the user's question confidently and without fabrication.

Respond with a single JSON object and nothing else, using exactly these fields:
  "route": "answer" or "handoff"
  "answer": string
  "handoffPrompt": string
  "missingInfo": array of strings

Rules:
1. If the documentation contains enough information to answer the question confidently and without fabrication, set "route" to "answer" and put a direct, practical response grounded only in the documentation in "answer". Leave "handoffPrompt" as "" and "missingInfo" as [].
2. Otherwise set "route" to "handoff". Put a 1-3 sentence explanation of what is missing in "answer", a ready-to-paste prompt a person could give to a general-purpose assistant to get unstuck in "handoffPrompt", and a short list of concrete inputs needed (for example ["website url", "platform", "main goal"]) in "missingInfo".
3. Never fabricate facts that are not present in the documentation. When uncertain, prefer "handoff" over guessing.`

const noDocumentation = "(no documentation available)"

// BuildPrompt assembles the single text prompt sent to the generation backend:
// instruction block, documentation, question.
func BuildPrompt(role, knowledge, question string) string {
	if strings.TrimSpace(role) == "" {
		role = "assistant"
	}
	doc := knowledge
	if strings.TrimSpace(doc) == "" {
		doc = noDocumentation
	}

	var b strings.Builder
	fmt.Fprintf(&b, instructionTemplate, role)
	b.WriteString("\n\nDocumentation:\n")
	b.WriteString(doc)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}

// handoffTemplate is used when the decision has to be built locally or the
// backend chose handoff without supplying a prompt.
func handoffTemplate(question string, missing []string) string {
	var b strings.Builder
	b.WriteString("I need help with the following question: ")
	b.WriteString(strings.TrimSpace(question))
	if len(missing) > 0 {
		b.WriteString("\n\nHere is the context you will need (fill in the blanks):\n")
		for _, m := range missing {
			b.WriteString("- ")
			b.WriteString(m)
			b.WriteString(": \n")
		}
	}
	b.WriteString("\nPlease give me a practical, step-by-step answer and ask me for anything else you need.")
	return b.String()
}
