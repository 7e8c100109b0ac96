package domain

import (
	"encoding/json"
	"time"
)

// Route is the outcome of the answer router.
type Route string

const (
	RouteAnswer  Route = "answer"
	RouteHandoff Route = "handoff"
)

func (r Route) IsValid() bool {
	switch r {
	case RouteAnswer, RouteHandoff:
		return true
	default:
		return false
	}
}

func ParseRoute(s string) (Route, error) {
	r := Route(s)
	if !r.IsValid() {
		return "", ErrInvalidRoute
	}
	return r, nil
}

// RouteDecision is the structured result for one question. Exactly one of the
// direct answer or the handoff package is meaningful; on RouteAnswer the
// handoff fields are empty.
type RouteDecision struct {
	Route         Route    `json:"route"`
	Answer        string   `json:"answer"`
	HandoffPrompt string   `json:"handoffPrompt"`
	MissingInfo   []string `json:"missingInfo"`
}

// MarshalJSON keeps missingInfo an array even when nothing is missing.
func (d RouteDecision) MarshalJSON() ([]byte, error) {
	type wire RouteDecision
	w := wire(d)
	if w.MissingInfo == nil {
		w.MissingInfo = []string{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON normalizes an absent or null missingInfo to an empty slice.
func (d *RouteDecision) UnmarshalJSON(data []byte) error {
	type wire RouteDecision
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.MissingInfo == nil {
		w.MissingInfo = []string{}
	}
	*d = RouteDecision(w)
	return nil
}

// NewAnswer builds a direct-answer decision.
func NewAnswer(answer string) RouteDecision {
	return RouteDecision{
		Route:       RouteAnswer,
		Answer:      answer,
		MissingInfo: []string{},
	}
}

// NewHandoff builds a handoff decision.
func NewHandoff(explanation, prompt string, missing []string) RouteDecision {
	if missing == nil {
		missing = []string{}
	}
	return RouteDecision{
		Route:         RouteHandoff,
		Answer:        explanation,
		HandoffPrompt: prompt,
		MissingInfo:   missing,
	}
}

// DecisionRecord is the audit row written for every routed question.
type DecisionRecord struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"request_id,omitempty"`
	Question       string    `json:"question"`
	Route          Route     `json:"route"`
	MissingInfo    []string  `json:"missing_info"`
	Fallback       bool      `json:"fallback"`
	Provider       string    `json:"provider"`
	KnowledgeChars int       `json:"knowledge_chars"`
	DurationMS     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r *DecisionRecord) Validate() error {
	if r.ID == "" || r.Question == "" {
		return ErrMissingRequiredField
	}
	if !r.Route.IsValid() {
		return ErrInvalidRoute
	}
	return nil
}
