// Package chat drives one conversation with the assistant: a transcript, the
// knowledge document loaded at start, and at most one outstanding question.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/profile"
	"go.uber.org/zap"
)

// ErrorReply is the single assistant turn shown when routing fails for any reason.
const ErrorReply = "I hit an error calling the assistant. Check the server logs for the exact /api/gemini error details."

var (
	ErrBusy          = errors.New("a question is already in flight")
	ErrEmptyQuestion = errors.New("question is empty")
)

// Backend is what a session needs from the assistant service.
type Backend interface {
	Knowledge(ctx context.Context) (string, error)
	Route(ctx context.Context, question, knowledge string) (domain.RouteDecision, error)
}

// Session is safe to share between goroutines, but only one Submit runs at a time.
type Session struct {
	backend Backend
	profile *profile.Profile
	logger  *zap.Logger

	mu           sync.Mutex
	turns        []domain.ChatTurn
	knowledge    string
	usedFallback bool
	inFlight     bool
}

func NewSession(backend Backend, p *profile.Profile, logger *zap.Logger) *Session {
	if p == nil {
		p = profile.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		backend: backend,
		profile: p,
		logger:  logger,
		turns: []domain.ChatTurn{
			{Role: domain.RoleAssistant, Content: p.Greeting},
		},
	}
}

// Start loads the knowledge document once. A failed or blank fetch falls back
// to the profile's document.
func (s *Session) Start(ctx context.Context) {
	content, err := s.backend.Knowledge(ctx)
	if err != nil {
		s.logger.Warn("knowledge fetch failed, using fallback document", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || strings.TrimSpace(content) == "" {
		s.knowledge = s.profile.FallbackDocument
		s.usedFallback = true
		return
	}
	s.knowledge = content
	s.usedFallback = false
}

// UsingFallback reports whether Start substituted the fallback document.
func (s *Session) UsingFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedFallback
}

// Submit asks one question and returns the assistant turn appended for it.
// The user turn is recorded before the backend is called, and exactly one
// assistant turn follows it whether or not routing succeeds.
func (s *Session) Submit(ctx context.Context, question string) (domain.ChatTurn, error) {
	if strings.TrimSpace(question) == "" {
		return domain.ChatTurn{}, ErrEmptyQuestion
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return domain.ChatTurn{}, ErrBusy
	}
	s.inFlight = true
	s.turns = append(s.turns, domain.ChatTurn{Role: domain.RoleUser, Content: question})
	knowledge := s.knowledge
	s.mu.Unlock()

	decision, err := s.backend.Route(ctx, question, knowledge)

	var turn domain.ChatTurn
	if err != nil {
		s.logger.Warn("route failed", zap.Error(err))
		turn = domain.ChatTurn{Role: domain.RoleAssistant, Content: ErrorReply}
	} else {
		turn = Render(decision)
	}

	s.mu.Lock()
	s.turns = append(s.turns, turn)
	s.inFlight = false
	s.mu.Unlock()

	return turn, nil
}

// Turns returns a copy of the transcript.
func (s *Session) Turns() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChatTurn(nil), s.turns...)
}

// LastHandoffPrompt returns the most recent handoff prompt, or "".
func (s *Session) LastHandoffPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.turns) - 1; i >= 0; i-- {
		if p := s.turns[i].HandoffPrompt; p != "" {
			return p
		}
	}
	return ""
}

func (s *Session) Knowledge() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knowledge
}
