package routing

import (
	"encoding/json"
	"strings"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
)

// EmptyReplyText stands in for a backend that returned no text at all.
const EmptyReplyText = "No response text returned."

// HandoffExplanation is used when the backend chose handoff without saying why.
const HandoffExplanation = "The documentation doesn't cover this well enough to answer without guessing. Use the prompt below with a general-purpose assistant."

// Reply is the backend output resolved once at the boundary: either a
// structured decision or raw text that could not be parsed as one.
type Reply interface {
	Decision() domain.RouteDecision
	Structured() bool
}

// StructuredReply carries a decision parsed from well-formed backend output.
type StructuredReply struct {
	decision domain.RouteDecision
}

func (r StructuredReply) Decision() domain.RouteDecision { return r.decision }
func (r StructuredReply) Structured() bool               { return true }

// RawReply carries backend text that is not a decision. It degrades to a
// plain answer and never fails.
type RawReply struct {
	Text string
}

func (r RawReply) Decision() domain.RouteDecision {
	text := r.Text
	if strings.TrimSpace(text) == "" {
		text = EmptyReplyText
	}
	return domain.NewAnswer(text)
}

func (r RawReply) Structured() bool { return false }

type wireDecision struct {
	Route         *string  `json:"route"`
	Answer        string   `json:"answer"`
	HandoffPrompt string   `json:"handoffPrompt"`
	MissingInfo   []string `json:"missingInfo"`
}

// ParseReply classifies raw backend text. question is used to synthesize a
// handoff prompt when the backend picked handoff but left the prompt empty.
func ParseReply(raw, question string) Reply {
	body := stripCodeFence(strings.TrimSpace(raw))
	if !strings.HasPrefix(body, "{") {
		return RawReply{Text: raw}
	}

	var w wireDecision
	if err := json.Unmarshal([]byte(body), &w); err != nil || w.Route == nil {
		return RawReply{Text: raw}
	}

	route, err := domain.ParseRoute(strings.ToLower(strings.TrimSpace(*w.Route)))
	if err != nil {
		return RawReply{Text: raw}
	}

	switch route {
	case domain.RouteAnswer:
		if strings.TrimSpace(w.Answer) == "" {
			return RawReply{Text: raw}
		}
		return StructuredReply{decision: domain.NewAnswer(w.Answer)}
	default:
		missing := cleanList(w.MissingInfo)
		explanation := w.Answer
		if strings.TrimSpace(explanation) == "" {
			explanation = HandoffExplanation
		}
		prompt := w.HandoffPrompt
		if strings.TrimSpace(prompt) == "" {
			prompt = handoffTemplate(question, missing)
		}
		return StructuredReply{decision: domain.NewHandoff(explanation, prompt, missing)}
	}
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
