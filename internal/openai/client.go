// Package openai is an alternative generation backend using chat completions
// in JSON mode.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is the chat model used when none is configured
	DefaultModel = openai.GPT4oMini
	serviceName  = "openai"
)

var (
	// ErrEmptyPrompt is returned when the prompt is empty
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrNoChoices is returned when the API answers without any choice
	ErrNoChoices = errors.New("no completion choices returned")
)

// ChatAPI defines the interface for chat completion and model listing
type ChatAPI interface {
	CreateJSONCompletion(ctx context.Context, model, prompt string) (string, error)
	ListModelIDs(ctx context.Context) ([]string, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api   ChatAPI
	model string
}

type OpenAIAdapter struct {
	client *openai.Client
}

func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{client: openai.NewClient(apiKey)}
}

// CreateJSONCompletion sends a single user message and asks for a JSON object back
func (a *OpenAIAdapter) CreateJSONCompletion(ctx context.Context, model, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// ListModelIDs returns the ids of every model visible to the key
func (a *OpenAIAdapter) ListModelIDs(ctx context.Context) ([]string, error) {
	list, err := a.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:   NewOpenAIAdapter(cfg.APIKey),
		model: model,
	}
}

func (c *Client) Name() string {
	return serviceName + ":" + c.model
}

// Generate returns the raw completion text for the prompt
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	text, err := c.api.CreateJSONCompletion(ctx, c.model, prompt)
	if err != nil {
		return "", toUpstream(err)
	}
	return text, nil
}

// ListModels returns the visible models sorted by id
func (c *Client) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	ids, err := c.api.ListModelIDs(ctx)
	if err != nil {
		return nil, toUpstream(err)
	}
	sort.Strings(ids)

	models := make([]domain.ModelInfo, 0, len(ids))
	for _, id := range ids {
		models = append(models, domain.ModelInfo{Name: id, SupportedActions: []string{"chat.completions"}})
	}
	return models, nil
}

func toUpstream(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{
			Service: serviceName,
			Status:  statusOr(apiErr.HTTPStatusCode, http.StatusBadGateway),
			Details: map[string]any{
				"error": map[string]any{
					"type":    apiErr.Type,
					"code":    apiErr.Code,
					"message": apiErr.Message,
				},
			},
			Err: err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.UpstreamError{
			Service: serviceName,
			Status:  statusOr(reqErr.HTTPStatusCode, http.StatusBadGateway),
			Details: fmt.Sprint(reqErr.Err),
			Err:     err,
		}
	}

	return err
}

func statusOr(status, fallback int) int {
	if status == 0 {
		return fallback
	}
	return status
}
