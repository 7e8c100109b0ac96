package domain

// Role identifies who produced a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one immutable entry of a session transcript. HandoffPrompt is
// set only on assistant turns rendered from a handoff decision, so the copy
// action never has to parse Content.
type ChatTurn struct {
	Role          Role   `json:"role"`
	Content       string `json:"content"`
	HandoffPrompt string `json:"handoffPrompt,omitempty"`
}

// ModelInfo describes one generation model visible to the configured key.
type ModelInfo struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"displayName,omitempty"`
	Description      string   `json:"description,omitempty"`
	InputTokenLimit  int32    `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit int32    `json:"outputTokenLimit,omitempty"`
	SupportedActions []string `json:"supportedActions,omitempty"`
}
