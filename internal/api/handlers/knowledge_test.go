package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/notion"
	"github.com/cloo-solutions/roadmapbot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestKnowledgeHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		doc        *notion.Document
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "content",
			doc:        &notion.Document{Content: "# Roadmap\n\n- Run PageSpeed Insights\n"},
			wantStatus: http.StatusOK,
			wantBody:   `{"content":"# Roadmap\n\n- Run PageSpeed Insights\n"}`,
		},
		{
			name:       "empty document",
			doc:        &notion.Document{},
			wantStatus: http.StatusOK,
			wantBody:   `{"content":""}`,
		},
		{
			name:       "truncated",
			doc:        &notion.Document{Content: "a\n\n", Truncated: true},
			wantStatus: http.StatusOK,
			wantBody:   `{"content":"a\n\n","truncated":true}`,
		},
		{
			name:       "not configured",
			err:        domain.ErrKnowledgeNotConfigured,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"NOTION_PAGE_ID not configured"}`,
		},
		{
			name:       "traversal failure",
			err:        fmt.Errorf("failed to list children of root: %w", errors.New("restricted resource")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to fetch knowledge base","details":"failed to list children of root: restricted resource"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockKnowledgeService)
			if tt.err != nil {
				svc.On("Fetch", mock.Anything).Return(nil, tt.err)
			} else {
				svc.On("Fetch", mock.Anything).Return(tt.doc, nil)
			}

			w := httptest.NewRecorder()
			NewKnowledgeHandler(svc).Get(w, httptest.NewRequest(http.MethodGet, "/api/knowledge-base", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestKnowledgeHandler_Snapshot(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockKnowledgeService)
		svc.On("Snapshot", mock.Anything).Return(&service.SnapshotResult{
			Key:         "snapshots/root/20260101T000000Z.md",
			Bytes:       12,
			DownloadURL: "https://s3/signed",
		}, nil)

		w := httptest.NewRecorder()
		NewKnowledgeHandler(svc).Snapshot(w, httptest.NewRequest(http.MethodPost, "/api/knowledge-base/snapshots", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"key":"snapshots/root/20260101T000000Z.md","bytes":12,"download_url":"https://s3/signed"}`, w.Body.String())
	})

	t.Run("disabled", func(t *testing.T) {
		svc := new(MockKnowledgeService)
		svc.On("Snapshot", mock.Anything).Return(nil, domain.ErrSnapshotsDisabled)

		w := httptest.NewRecorder()
		NewKnowledgeHandler(svc).Snapshot(w, httptest.NewRequest(http.MethodPost, "/api/knowledge-base/snapshots", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"snapshot storage not configured"}`, w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockKnowledgeService)
		svc.On("Snapshot", mock.Anything).Return(nil, fmt.Errorf("%w: %w", service.ErrSnapshotStore, errors.New("bucket missing")))

		w := httptest.NewRecorder()
		NewKnowledgeHandler(svc).Snapshot(w, httptest.NewRequest(http.MethodPost, "/api/knowledge-base/snapshots", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to store snapshot","details":"failed to store snapshot: bucket missing"}`, w.Body.String())
	})

	t.Run("fetch failure", func(t *testing.T) {
		svc := new(MockKnowledgeService)
		svc.On("Snapshot", mock.Anything).Return(nil, errors.New("unauthorized"))

		w := httptest.NewRecorder()
		NewKnowledgeHandler(svc).Snapshot(w, httptest.NewRequest(http.MethodPost, "/api/knowledge-base/snapshots", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to fetch knowledge base","details":"unauthorized"}`, w.Body.String())
	})
}
