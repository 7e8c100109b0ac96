package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/cloo-solutions/roadmapbot/internal/api"
	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/notion"
	"github.com/cloo-solutions/roadmapbot/internal/service"
)

type KnowledgeService interface {
	Fetch(ctx context.Context) (*notion.Document, error)
	Snapshot(ctx context.Context) (*service.SnapshotResult, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type KnowledgeBaseResponse struct {
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Get serves the flattened knowledge document.
func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Fetch(r.Context())
	if err != nil {
		writeKnowledgeError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, KnowledgeBaseResponse{
		Content:   doc.Content,
		Truncated: doc.Truncated,
	})
}

// Snapshot archives the current document and returns its location.
func (h *KnowledgeHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotsDisabled) {
			api.HandleError(w, err)
			return
		}
		if errors.Is(err, service.ErrSnapshotStore) {
			api.ErrorWithDetails(w, http.StatusInternalServerError, "Failed to store snapshot", err.Error())
			return
		}
		writeKnowledgeError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, res)
}

func writeKnowledgeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrKnowledgeNotConfigured) {
		api.Error(w, http.StatusInternalServerError, domain.ErrKnowledgeNotConfigured.Message)
		return
	}
	api.ErrorWithDetails(w, http.StatusInternalServerError, "Failed to fetch knowledge base", err.Error())
}
