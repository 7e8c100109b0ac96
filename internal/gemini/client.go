// Package gemini adapts the Google generative language API to the router's
// Generator interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-1.5-flash"
	serviceName  = "gemini"
)

var ErrNoAPIKey = errors.New("GEMINI_API_KEY not set")

// ModelsAPI is the subset of the genai models service this package uses.
type ModelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	List(ctx context.Context, config *genai.ListModelsConfig) (genai.Page[genai.Model], error)
}

type Client struct {
	models ModelsAPI
	model  string
}

type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newClientWithAPI(gc.Models, cfg.Model), nil
}

func newClientWithAPI(models ModelsAPI, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model}
}

func (c *Client) Name() string {
	return serviceName + ":" + c.model
}

// Generate asks for a JSON RouteDecision and returns the response text as-is.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   decisionSchema,
	})
	if err != nil {
		return "", toUpstream(err)
	}
	return resp.Text(), nil
}

// ListModels returns every model visible to the API key.
func (c *Client) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	var (
		out   []domain.ModelInfo
		token string
	)
	for {
		page, err := c.models.List(ctx, &genai.ListModelsConfig{PageToken: token})
		if err != nil {
			return nil, toUpstream(err)
		}
		for _, m := range page.Items {
			if m == nil {
				continue
			}
			out = append(out, domain.ModelInfo{
				Name:             m.Name,
				DisplayName:      m.DisplayName,
				Description:      m.Description,
				InputTokenLimit:  m.InputTokenLimit,
				OutputTokenLimit: m.OutputTokenLimit,
				SupportedActions: m.SupportedActions,
			})
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		token = page.NextPageToken
	}
}

var decisionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"route":         {Type: genai.TypeString, Enum: []string{string(domain.RouteAnswer), string(domain.RouteHandoff)}},
		"answer":        {Type: genai.TypeString},
		"handoffPrompt": {Type: genai.TypeString},
		"missingInfo":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required:         []string{"route", "answer", "handoffPrompt", "missingInfo"},
	PropertyOrdering: []string{"route", "answer", "handoffPrompt", "missingInfo"},
}

func toUpstream(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Code
		if status == 0 {
			status = http.StatusBadGateway
		}
		return &domain.UpstreamError{
			Service: serviceName,
			Status:  status,
			Details: map[string]any{
				"error": map[string]any{
					"code":    apiErr.Code,
					"status":  apiErr.Status,
					"message": apiErr.Message,
					"details": apiErr.Details,
				},
			},
			Err: err,
		}
	}
	return err
}
