package service

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/pagination"
	"github.com/cloo-solutions/roadmapbot/internal/routing"
	"github.com/cloo-solutions/roadmapbot/internal/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultDecisionPageSize = 20

// Router routes one question over a knowledge document
type Router interface {
	Route(ctx context.Context, question, knowledge string) (*routing.Result, error)
}

// ModelLister lists the models of the configured generation backend
type ModelLister interface {
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)
}

// DecisionRepository persists the routing audit log
type DecisionRepository interface {
	Create(ctx context.Context, rec *domain.DecisionRecord) error
	List(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.DecisionRecord], error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// AskInput is one routed question
type AskInput struct {
	Question  string
	Knowledge string
	RequestID string
}

// AssistantService routes questions and keeps the optional decision log
type AssistantService struct {
	router    Router
	models    ModelLister
	decisions DecisionRepository
	uuidGen   UUIDGenerator
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssistantService creates an AssistantService. models and decisions may be nil.
func NewAssistantService(router Router, models ModelLister, decisions DecisionRepository, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{
		router:    router,
		models:    models,
		decisions: decisions,
		uuidGen:   &DefaultUUIDGenerator{},
		logger:    logger,
		now:       time.Now,
	}
}

// Ask routes the question. The decision is logged when a repository is
// configured; a failed log write never fails the request.
func (s *AssistantService) Ask(ctx context.Context, input AskInput) (*routing.Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "AssistantService.Ask", telemetry.SpanAttributes{
		RequestID: input.RequestID,
		Operation: "route",
	})
	defer span.End()

	start := s.now()
	result, err := s.router.Route(ctx, input.Question, input.Knowledge)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			span.SetError(err)
		}
		return nil, err
	}
	elapsed := s.now().Sub(start)

	span.SetData("route", string(result.Decision.Route))
	s.logger.Info("question routed",
		zap.String("request_id", input.RequestID),
		zap.String("route", string(result.Decision.Route)),
		zap.Bool("fallback", result.Fallback),
		zap.String("provider", result.Provider),
		zap.Int("attempts", result.Attempts),
		zap.Duration("duration", elapsed),
	)

	if s.decisions != nil {
		s.record(ctx, input, result, elapsed)
	}
	return result, nil
}

func (s *AssistantService) record(ctx context.Context, input AskInput, result *routing.Result, elapsed time.Duration) {
	rec := &domain.DecisionRecord{
		ID:             s.uuidGen.NewString(),
		RequestID:      input.RequestID,
		Question:       input.Question,
		Route:          result.Decision.Route,
		MissingInfo:    result.Decision.MissingInfo,
		Fallback:       result.Fallback,
		Provider:       result.Provider,
		KnowledgeChars: len(input.Knowledge),
		DurationMS:     elapsed.Milliseconds(),
		CreatedAt:      s.now().UTC(),
	}
	if err := rec.Validate(); err != nil {
		s.logger.Warn("decision not recorded", zap.Error(err))
		return
	}
	if err := s.decisions.Create(ctx, rec); err != nil {
		s.logger.Warn("failed to record decision", zap.String("request_id", input.RequestID), zap.Error(err))
		telemetry.CaptureError(ctx, err)
	}
}

// ListModels lists the generation backend's models
func (s *AssistantService) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	if s.models == nil {
		return nil, domain.ErrGenerationNotConfigured
	}
	return s.models.ListModels(ctx)
}

// ListDecisions returns one page of the decision log, newest first
func (s *AssistantService) ListDecisions(ctx context.Context, cursor string, limit int) (*pagination.PageResult[*domain.DecisionRecord], error) {
	if s.decisions == nil {
		return nil, domain.ErrDecisionLogOff
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	return s.decisions.List(ctx, decoded, pagination.ClampLimit(limit, defaultDecisionPageSize))
}

// PruneDecisions deletes decisions created before cutoff
func (s *AssistantService) PruneDecisions(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.decisions == nil {
		return 0, domain.ErrDecisionLogOff
	}
	return s.decisions.DeleteOlderThan(ctx, cutoff)
}
