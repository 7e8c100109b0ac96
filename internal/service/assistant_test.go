package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/pagination"
	"github.com/cloo-solutions/roadmapbot/internal/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func answerResult() *routing.Result {
	return &routing.Result{
		Decision: domain.NewAnswer("Run Google PageSpeed Insights first."),
		Provider: "mock",
		Attempts: 1,
	}
}

func TestAssistantService_Ask(t *testing.T) {
	input := AskInput{Question: "How do I speed up my site?", Knowledge: "Use Google PageSpeed Insights.", RequestID: "req-1"}

	t.Run("routes and records", func(t *testing.T) {
		router := new(MockRouter)
		repo := new(MockDecisionRepository)
		router.On("Route", mock.Anything, input.Question, input.Knowledge).Return(answerResult(), nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(rec *domain.DecisionRecord) bool {
			return rec.ID == "dec-1" &&
				rec.RequestID == "req-1" &&
				rec.Route == domain.RouteAnswer &&
				rec.Provider == "mock" &&
				rec.KnowledgeChars == len(input.Knowledge)
		})).Return(nil)

		svc := NewAssistantService(router, nil, repo, nil)
		svc.uuidGen = fixedUUID("dec-1")

		res, err := svc.Ask(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, domain.RouteAnswer, res.Decision.Route)
		router.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("audit failure is not returned", func(t *testing.T) {
		router := new(MockRouter)
		repo := new(MockDecisionRepository)
		router.On("Route", mock.Anything, mock.Anything, mock.Anything).Return(answerResult(), nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		svc := NewAssistantService(router, nil, repo, nil)
		res, err := svc.Ask(context.Background(), input)

		require.NoError(t, err)
		assert.NotNil(t, res)
	})

	t.Run("works without decision log", func(t *testing.T) {
		router := new(MockRouter)
		router.On("Route", mock.Anything, mock.Anything, mock.Anything).Return(answerResult(), nil)

		svc := NewAssistantService(router, nil, nil, nil)
		_, err := svc.Ask(context.Background(), input)

		assert.NoError(t, err)
	})

	t.Run("router errors are not recorded", func(t *testing.T) {
		router := new(MockRouter)
		repo := new(MockDecisionRepository)
		upstream := &domain.UpstreamError{Service: "gemini", Status: 500}
		router.On("Route", mock.Anything, mock.Anything, mock.Anything).Return(nil, upstream)

		svc := NewAssistantService(router, nil, repo, nil)
		_, err := svc.Ask(context.Background(), input)

		assert.Equal(t, upstream, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAssistantService_ListModels(t *testing.T) {
	svc := NewAssistantService(new(MockRouter), nil, nil, nil)
	_, err := svc.ListModels(context.Background())
	assert.ErrorIs(t, err, domain.ErrGenerationNotConfigured)

	lister := new(MockModelLister)
	lister.On("ListModels", mock.Anything).Return([]domain.ModelInfo{{Name: "models/gemini-1.5-flash"}}, nil)

	svc = NewAssistantService(new(MockRouter), lister, nil, nil)
	models, err := svc.ListModels(context.Background())
	require.NoError(t, err)
	assert.Len(t, models, 1)
}

func TestAssistantService_ListDecisions(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc := NewAssistantService(new(MockRouter), nil, nil, nil)
		_, err := svc.ListDecisions(context.Background(), "", 10)
		assert.ErrorIs(t, err, domain.ErrDecisionLogOff)
	})

	t.Run("decodes cursor and clamps limit", func(t *testing.T) {
		repo := new(MockDecisionRepository)
		ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		cursor := pagination.EncodeCursor("dec-9", ts)
		page := &pagination.PageResult[*domain.DecisionRecord]{Items: []*domain.DecisionRecord{}}

		repo.On("List", mock.Anything, mock.MatchedBy(func(c *pagination.Cursor) bool {
			return c != nil && c.LastID == "dec-9" && c.Timestamp.Equal(ts)
		}), pagination.MaxLimit).Return(page, nil)

		svc := NewAssistantService(new(MockRouter), nil, repo, nil)
		got, err := svc.ListDecisions(context.Background(), cursor, 5000)

		require.NoError(t, err)
		assert.Equal(t, page, got)
		repo.AssertExpectations(t)
	})

	t.Run("first page uses default size", func(t *testing.T) {
		repo := new(MockDecisionRepository)
		repo.On("List", mock.Anything, (*pagination.Cursor)(nil), 20).
			Return(&pagination.PageResult[*domain.DecisionRecord]{}, nil)

		svc := NewAssistantService(new(MockRouter), nil, repo, nil)
		_, err := svc.ListDecisions(context.Background(), "", 0)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		svc := NewAssistantService(new(MockRouter), nil, new(MockDecisionRepository), nil)
		_, err := svc.ListDecisions(context.Background(), "%%%", 10)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
	})
}

func TestAssistantService_PruneDecisions(t *testing.T) {
	cutoff := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	repo := new(MockDecisionRepository)
	repo.On("DeleteOlderThan", mock.Anything, cutoff).Return(int64(4), nil)

	svc := NewAssistantService(new(MockRouter), nil, repo, nil)
	n, err := svc.PruneDecisions(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = NewAssistantService(new(MockRouter), nil, nil, nil).PruneDecisions(context.Background(), cutoff)
	assert.ErrorIs(t, err, domain.ErrDecisionLogOff)
}
