package handlers

import (
	"context"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/notion"
	"github.com/cloo-solutions/roadmapbot/internal/pagination"
	"github.com/cloo-solutions/roadmapbot/internal/routing"
	"github.com/cloo-solutions/roadmapbot/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockKnowledgeService struct {
	mock.Mock
}

func (m *MockKnowledgeService) Fetch(ctx context.Context) (*notion.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notion.Document), args.Error(1)
}

func (m *MockKnowledgeService) Snapshot(ctx context.Context) (*service.SnapshotResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SnapshotResult), args.Error(1)
}

type MockAssistantService struct {
	mock.Mock
}

func (m *MockAssistantService) Ask(ctx context.Context, input service.AskInput) (*routing.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*routing.Result), args.Error(1)
}

func (m *MockAssistantService) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModelInfo), args.Error(1)
}

func (m *MockAssistantService) ListDecisions(ctx context.Context, cursor string, limit int) (*pagination.PageResult[*domain.DecisionRecord], error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*domain.DecisionRecord]), args.Error(1)
}
