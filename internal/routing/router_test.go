package routing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
	name string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

func testRouter(gen Generator) *Router {
	return NewRouter(gen, profile.NewStaticStore(profile.Default()), Config{
		Timeout:        time.Second,
		Retries:        1,
		InitialBackoff: time.Millisecond,
	})
}

const speedDoc = "# Speed\nUse PageSpeed Insights."

func TestRouter_Route_Answer(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, speedDoc) && strings.Contains(p, "Question: How do I check my site speed?")
	})).Return(`{"route":"answer","answer":"Run your site through PageSpeed Insights and fix the top issues.","handoffPrompt":"","missingInfo":[]}`, nil)

	result, err := testRouter(gen).Route(context.Background(), "How do I check my site speed?", speedDoc)

	require.NoError(t, err)
	assert.Equal(t, domain.RouteAnswer, result.Decision.Route)
	assert.Contains(t, result.Decision.Answer, "PageSpeed Insights")
	assert.Empty(t, result.Decision.HandoffPrompt)
	assert.Empty(t, result.Decision.MissingInfo)
	assert.False(t, result.Fallback)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "mock", result.Provider)
	gen.AssertExpectations(t)
}

func TestRouter_Route_Handoff(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(`{"route":"handoff","answer":"The roadmap does not say which CMS to use.","handoffPrompt":"Recommend a CMS for my site.","missingInfo":["platform","budget"]}`, nil)

	result, err := testRouter(gen).Route(context.Background(), "What CMS should I use?", speedDoc)

	require.NoError(t, err)
	assert.Equal(t, domain.RouteHandoff, result.Decision.Route)
	assert.Equal(t, "Recommend a CMS for my site.", result.Decision.HandoffPrompt)
	assert.Equal(t, []string{"platform", "budget"}, result.Decision.MissingInfo)
}

func TestRouter_Route_MalformedOutputFallsBack(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("not json", nil)

	result, err := testRouter(gen).Route(context.Background(), "How do I check my site speed?", speedDoc)

	require.NoError(t, err)
	assert.Equal(t, domain.RouteAnswer, result.Decision.Route)
	assert.Equal(t, "not json", result.Decision.Answer)
	assert.Empty(t, result.Decision.HandoffPrompt)
	assert.Empty(t, result.Decision.MissingInfo)
	assert.True(t, result.Fallback)
}

func TestRouter_Route_EmptyOutputFallsBackToPlaceholder(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", nil)

	result, err := testRouter(gen).Route(context.Background(), "q", speedDoc)

	require.NoError(t, err)
	assert.Equal(t, EmptyReplyText, result.Decision.Answer)
	assert.True(t, result.Fallback)
}

func TestRouter_Route_EmptyKnowledgeHandsOffWithoutBackendCall(t *testing.T) {
	gen := new(MockGenerator)

	result, err := testRouter(gen).Route(context.Background(), "What CMS should I use?", "  \n")

	require.NoError(t, err)
	assert.Equal(t, domain.RouteHandoff, result.Decision.Route)
	assert.NotEmpty(t, result.Decision.HandoffPrompt)
	assert.Contains(t, result.Decision.HandoffPrompt, "What CMS should I use?")
	assert.Equal(t, []string{"website url", "platform", "main goal"}, result.Decision.MissingInfo)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRouter_Route_MissingQuestion(t *testing.T) {
	gen := new(MockGenerator)

	_, err := testRouter(gen).Route(context.Background(), "   ", speedDoc)

	assert.ErrorIs(t, err, domain.ErrQuestionRequired)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRouter_Route_NotConfigured(t *testing.T) {
	_, err := testRouter(nil).Route(context.Background(), "q", speedDoc)
	assert.ErrorIs(t, err, domain.ErrGenerationNotConfigured)
}

func TestRouter_Route_RetriesTransientFailureOnce(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return("", &domain.UpstreamError{Service: "mock", Status: 503}).Once()
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`{"route":"answer","answer":"ok"}`, nil).Once()

	result, err := testRouter(gen).Route(context.Background(), "q", speedDoc)

	require.NoError(t, err)
	assert.Equal(t, "ok", result.Decision.Answer)
	assert.Equal(t, 2, result.Attempts)
	gen.AssertNumberOfCalls(t, "Generate", 2)
}

func TestRouter_Route_GivesUpAfterOneRetry(t *testing.T) {
	gen := new(MockGenerator)
	upstream := &domain.UpstreamError{Service: "mock", Status: 500, Details: map[string]any{"message": "boom"}}
	gen.On("Generate", mock.Anything, mock.Anything).Return("", upstream)

	_, err := testRouter(gen).Route(context.Background(), "q", speedDoc)

	var got *domain.UpstreamError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 500, got.Status)
	assert.Equal(t, map[string]any{"message": "boom"}, got.Details)
	gen.AssertNumberOfCalls(t, "Generate", 2)
}

func TestRouter_Route_DoesNotRetryClientErrors(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", &domain.UpstreamError{Service: "mock", Status: 400})

	_, err := testRouter(gen).Route(context.Background(), "q", speedDoc)

	var got *domain.UpstreamError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 400, got.Status)
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestRouter_Route_TimeoutBecomesGatewayTimeout(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)

	_, err := testRouter(gen).Route(context.Background(), "q", speedDoc)

	var got *domain.UpstreamError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 504, got.Status)
	gen.AssertNumberOfCalls(t, "Generate", 2)
}

func TestRouter_Route_TimeoutLabelsBareService(t *testing.T) {
	gen := &MockGenerator{name: "gemini:gemini-1.5-flash"}
	gen.On("Generate", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded)

	_, err := testRouter(gen).Route(context.Background(), "q", speedDoc)

	var got *domain.UpstreamError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "gemini", got.Service)
}

func TestServiceOf(t *testing.T) {
	assert.Equal(t, "gemini", serviceOf("gemini:gemini-1.5-flash"))
	assert.Equal(t, "openai", serviceOf("openai:gpt-4o-mini"))
	assert.Equal(t, "mock", serviceOf("mock"))
}

func TestRouter_Route_UnknownErrorIsWrapped(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("tls handshake"))

	_, err := testRouter(gen).Route(context.Background(), "q", speedDoc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed")
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestNewRouter_Defaults(t *testing.T) {
	r := NewRouter(nil, profile.NewStaticStore(profile.Default()), Config{Retries: -3})

	assert.Equal(t, DefaultTimeout, r.cfg.Timeout)
	assert.Equal(t, 0, r.cfg.Retries)
	assert.Equal(t, defaultInitialBackoff, r.cfg.InitialBackoff)
}
