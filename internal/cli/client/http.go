package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIURL     = "ROADMAP_API_URL"
	envAdminToken = "ROADMAP_ADMIN_TOKEN"

	defaultAPIURL = "http://localhost:8080"
)

type APIClient struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

// NewAPIClientWithCmd creates an APIClient with config cascade: flag → env → global config → default
// If cmd is nil, skips flag checking and goes directly to env → global config
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	var adminToken, baseURL string

	if cmd != nil {
		if flagToken, err := cmd.Flags().GetString("admin-token"); err == nil && flagToken != "" {
			adminToken = flagToken
		}
		if flagURL, err := cmd.Flags().GetString("api-url"); err == nil && flagURL != "" {
			baseURL = flagURL
		}
	}

	if adminToken == "" {
		adminToken = os.Getenv(envAdminToken)
	}
	if baseURL == "" {
		baseURL = os.Getenv(envAPIURL)
	}

	if adminToken == "" || baseURL == "" {
		globalConfig, err := LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		if globalConfig != nil {
			if adminToken == "" {
				adminToken = globalConfig.AdminToken
			}
			if baseURL == "" {
				baseURL = globalConfig.APIURL
			}
		}
	}

	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	return NewAPIClientWithConfig(adminToken, baseURL), nil
}

func NewAPIClient(cmd *cobra.Command) (*APIClient, error) {
	_ = godotenv.Load()
	return NewAPIClientWithCmd(cmd)
}

// NewAPIClientWithConfig creates an APIClient with explicit config.
func NewAPIClientWithConfig(adminToken, baseURL string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		adminToken: adminToken,
		httpClient: &http.Client{
			// Covers the server's generation timeout plus one retry.
			Timeout: 90 * time.Second,
		},
	}
}

// ErrorBody is the error shape every endpoint answers with.
type ErrorBody struct {
	Error   string          `json:"error"`
	Status  int             `json:"status,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// newAPIError picks the most specific message available: the upstream
// error message, then a plain details string, then the error field.
func newAPIError(status int, body []byte) *APIError {
	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return &APIError{StatusCode: status, Message: string(body)}
	}

	msg := eb.Error
	if len(eb.Details) > 0 {
		var nested struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		var plain string
		switch {
		case json.Unmarshal(eb.Details, &nested) == nil && nested.Error.Message != "":
			msg = nested.Error.Message
		case json.Unmarshal(eb.Details, &plain) == nil && plain != "":
			msg = eb.Error + ": " + plain
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg, Details: eb.Details}
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// KnowledgeBase is the flattened knowledge document.
type KnowledgeBase struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
}

type routeRequest struct {
	Prompt              string `json:"prompt"`
	NotionKnowledgeBase string `json:"notionKnowledgeBase"`
}

// Snapshot describes an archived knowledge document.
type Snapshot struct {
	Key         string `json:"key"`
	Bytes       int    `json:"bytes"`
	DownloadURL string `json:"download_url"`
	Truncated   bool   `json:"truncated,omitempty"`
}

// DecisionPage is one page of the decision log.
type DecisionPage struct {
	Items   []domain.DecisionRecord `json:"items"`
	Cursor  string                  `json:"cursor,omitempty"`
	HasMore bool                    `json:"has_more"`
}

func (c *APIClient) GetKnowledgeBase(ctx context.Context) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := c.do(ctx, http.MethodGet, "/api/knowledge-base", nil, &kb); err != nil {
		return nil, err
	}
	return &kb, nil
}

// Knowledge implements chat.Backend.
func (c *APIClient) Knowledge(ctx context.Context) (string, error) {
	kb, err := c.GetKnowledgeBase(ctx)
	if err != nil {
		return "", err
	}
	return kb.Content, nil
}

// Route implements chat.Backend.
func (c *APIClient) Route(ctx context.Context, question, knowledge string) (domain.RouteDecision, error) {
	var d domain.RouteDecision
	err := c.do(ctx, http.MethodPost, "/api/gemini", routeRequest{
		Prompt:              question,
		NotionKnowledgeBase: knowledge,
	}, &d)
	return d, err
}

func (c *APIClient) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	var resp struct {
		Models []domain.ModelInfo `json:"models"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/list-models", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

func (c *APIClient) CreateSnapshot(ctx context.Context) (*Snapshot, error) {
	var s Snapshot
	if err := c.do(ctx, http.MethodPost, "/api/knowledge-base/snapshots", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *APIClient) ListDecisions(ctx context.Context, cursor string, limit int) (*DecisionPage, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/decisions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page DecisionPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
