package chat

import (
	"strings"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
)

const (
	emptyAnswer      = "No response text returned."
	handoffSeparator = "\n\n---\n\nCopy and paste this into ChatGPT or Gemini:\n\n"
	missingHeader    = "\n\nMissing info:\n"
)

// Render turns a decision into the assistant turn shown to the user. It is
// pure: the same decision always renders to the same turn.
func Render(d domain.RouteDecision) domain.ChatTurn {
	content := d.Answer
	if strings.TrimSpace(content) == "" {
		content = emptyAnswer
	}

	turn := domain.ChatTurn{Role: domain.RoleAssistant}
	if d.Route == domain.RouteHandoff && d.HandoffPrompt != "" {
		var b strings.Builder
		b.WriteString(content)
		b.WriteString(handoffSeparator)
		b.WriteString(d.HandoffPrompt)
		if len(d.MissingInfo) > 0 {
			b.WriteString(missingHeader)
			for i, item := range d.MissingInfo {
				if i > 0 {
					b.WriteByte('\n')
				}
				b.WriteString("- " + item)
			}
		}
		content = b.String()
		turn.HandoffPrompt = d.HandoffPrompt
	}

	turn.Content = content
	return turn
}
