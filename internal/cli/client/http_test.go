package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Knowledge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/knowledge-base", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"content":"# Speed\n\nUse PageSpeed Insights.\n\n"}`))
	}))
	defer srv.Close()

	content, err := NewAPIClientWithConfig("", srv.URL).Knowledge(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "# Speed\n\nUse PageSpeed Insights.\n\n", content)
}

func TestAPIClient_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/gemini", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "What CMS should I use?", req["prompt"])
		assert.Equal(t, "", req["notionKnowledgeBase"])

		w.Write([]byte(`{"route":"handoff","answer":"Not covered.","handoffPrompt":"Help me pick a CMS.","missingInfo":["platform"]}`))
	}))
	defer srv.Close()

	d, err := NewAPIClientWithConfig("", srv.URL).Route(context.Background(), "What CMS should I use?", "")

	require.NoError(t, err)
	assert.Equal(t, domain.NewHandoff("Not covered.", "Help me pick a CMS.", []string{"platform"}), d)
}

func TestAPIClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "upstream message wins",
			status:  500,
			body:    `{"error":"Gemini request failed","status":500,"details":{"error":{"message":"backend exploded"}}}`,
			wantMsg: "backend exploded",
		},
		{
			name:    "string details appended",
			status:  500,
			body:    `{"error":"Failed to fetch knowledge base","details":"restricted resource"}`,
			wantMsg: "Failed to fetch knowledge base: restricted resource",
		},
		{
			name:    "plain error",
			status:  400,
			body:    `{"error":"prompt is required"}`,
			wantMsg: "prompt is required",
		},
		{
			name:    "non-json body",
			status:  502,
			body:    `Bad Gateway`,
			wantMsg: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewAPIClientWithConfig("", srv.URL).Route(context.Background(), "q", "kb")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestAPIClient_AdminCallsSendToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/knowledge-base/snapshots":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"key":"snapshots/root/20260101T000000Z.md","bytes":10,"download_url":"https://example/x"}`))
		case "/api/decisions":
			assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			w.Write([]byte(`{"items":[{"id":"d1","question":"q","route":"answer","missing_info":[],"fallback":false,"provider":"mock","knowledge_chars":3,"duration_ms":12,"created_at":"2026-01-01T00:00:00Z"}],"cursor":"next","has_more":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	api := NewAPIClientWithConfig("s3cret", srv.URL)

	snap, err := api.CreateSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "snapshots/root/20260101T000000Z.md", snap.Key)
	assert.Equal(t, 10, snap.Bytes)

	page, err := api.ListDecisions(context.Background(), "abc", 5)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.RouteAnswer, page.Items[0].Route)
	assert.Equal(t, "next", page.Cursor)
	assert.True(t, page.HasMore)
}

func TestAPIClient_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/list-models", r.URL.Path)
		w.Write([]byte(`{"models":[{"name":"models/gemini-1.5-flash","displayName":"Gemini 1.5 Flash"}]}`))
	}))
	defer srv.Close()

	models, err := NewAPIClientWithConfig("", srv.URL).ListModels(context.Background())

	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "Gemini 1.5 Flash", models[0].DisplayName)
}

func TestNewAPIClientWithCmd_Cascade(t *testing.T) {
	withTempConfig(t)
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://from-config:8080", AdminToken: "cfg-token"}))

	t.Run("global config", func(t *testing.T) {
		t.Setenv(envAPIURL, "")
		t.Setenv(envAdminToken, "")

		api, err := NewAPIClientWithCmd(nil)
		require.NoError(t, err)
		assert.Equal(t, "http://from-config:8080", api.baseURL)
		assert.Equal(t, "cfg-token", api.adminToken)
	})

	t.Run("env overrides config", func(t *testing.T) {
		t.Setenv(envAPIURL, "http://from-env:9090")
		t.Setenv(envAdminToken, "env-token")

		api, err := NewAPIClientWithCmd(nil)
		require.NoError(t, err)
		assert.Equal(t, "http://from-env:9090", api.baseURL)
		assert.Equal(t, "env-token", api.adminToken)
	})
}

func TestNewAPIClientWithCmd_Default(t *testing.T) {
	withTempConfig(t)
	t.Setenv(envAPIURL, "")
	t.Setenv(envAdminToken, "")

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, api.baseURL)
	assert.Empty(t, api.adminToken)
}
