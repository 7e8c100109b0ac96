package routing

import (
	"testing"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		structured bool
		want       domain.RouteDecision
	}{
		{
			name:       "answer",
			raw:        `{"route":"answer","answer":"Use PageSpeed Insights.","handoffPrompt":"","missingInfo":[]}`,
			structured: true,
			want:       domain.NewAnswer("Use PageSpeed Insights."),
		},
		{
			name:       "answer drops stray handoff fields",
			raw:        `{"route":"answer","answer":"Yes.","handoffPrompt":"ignored","missingInfo":["x"]}`,
			structured: true,
			want:       domain.NewAnswer("Yes."),
		},
		{
			name:       "handoff",
			raw:        `{"route":"handoff","answer":"Not covered.","handoffPrompt":"Help me.","missingInfo":["platform"," ",""]}`,
			structured: true,
			want:       domain.NewHandoff("Not covered.", "Help me.", []string{"platform"}),
		},
		{
			name:       "handoff without explanation gets a default",
			raw:        `{"route":"handoff","answer":" ","handoffPrompt":"Help me.","missingInfo":[]}`,
			structured: true,
			want:       domain.NewHandoff(HandoffExplanation, "Help me.", []string{}),
		},
		{
			name:       "fenced json",
			raw:        "```json\n{\"route\":\"answer\",\"answer\":\"Fenced.\"}\n```",
			structured: true,
			want:       domain.NewAnswer("Fenced."),
		},
		{
			name:       "route is case-insensitive",
			raw:        `{"route":" Answer ","answer":"ok"}`,
			structured: true,
			want:       domain.NewAnswer("ok"),
		},
		{
			name: "plain text",
			raw:  "not json",
			want: domain.NewAnswer("not json"),
		},
		{
			name: "broken json keeps raw text verbatim",
			raw:  `{"route":"answer",`,
			want: domain.NewAnswer(`{"route":"answer",`),
		},
		{
			name: "missing route",
			raw:  `{"answer":"hello"}`,
			want: domain.NewAnswer(`{"answer":"hello"}`),
		},
		{
			name: "unknown route",
			raw:  `{"route":"escalate","answer":"hello"}`,
			want: domain.NewAnswer(`{"route":"escalate","answer":"hello"}`),
		},
		{
			name: "answer route without answer",
			raw:  `{"route":"answer","answer":""}`,
			want: domain.NewAnswer(`{"route":"answer","answer":""}`),
		},
		{
			name: "empty",
			raw:  "   ",
			want: domain.NewAnswer(EmptyReplyText),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := ParseReply(tt.raw, "question")
			assert.Equal(t, tt.structured, reply.Structured())
			assert.Equal(t, tt.want, reply.Decision())
		})
	}
}

func TestParseReply_HandoffWithoutPromptGetsTemplate(t *testing.T) {
	reply := ParseReply(`{"route":"handoff","answer":"Need more detail.","missingInfo":["website url"]}`, "How do I grow leads?")

	d := reply.Decision()
	assert.Equal(t, domain.RouteHandoff, d.Route)
	assert.Contains(t, d.HandoffPrompt, "How do I grow leads?")
	assert.Contains(t, d.HandoffPrompt, "- website url:")
	assert.Equal(t, []string{"website url"}, d.MissingInfo)
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("website optimization consultant", "# Speed\nUse PageSpeed Insights.", "How fast is my site?")

	assert.Contains(t, p, "You are a helpful website optimization consultant.")
	assert.Contains(t, p, "Documentation:\n# Speed\nUse PageSpeed Insights.")
	assert.Contains(t, p, "Question: How fast is my site?")
	assert.Contains(t, p, `prefer "handoff" over guessing`)
}

func TestBuildPrompt_EmptyKnowledgeAndRole(t *testing.T) {
	p := BuildPrompt("", "", "q")

	assert.Contains(t, p, "You are a helpful assistant.")
	assert.Contains(t, p, noDocumentation)
}
