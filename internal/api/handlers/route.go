package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cloo-solutions/roadmapbot/internal/api"
	"github.com/cloo-solutions/roadmapbot/internal/api/middleware"
	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/pagination"
	"github.com/cloo-solutions/roadmapbot/internal/routing"
	"github.com/cloo-solutions/roadmapbot/internal/service"
)

type AssistantService interface {
	Ask(ctx context.Context, input service.AskInput) (*routing.Result, error)
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)
	ListDecisions(ctx context.Context, cursor string, limit int) (*pagination.PageResult[*domain.DecisionRecord], error)
}

type RouteHandler struct {
	svc AssistantService
}

func NewRouteHandler(svc AssistantService) *RouteHandler {
	return &RouteHandler{svc: svc}
}

type RouteRequest struct {
	Prompt              string `json:"prompt"`
	NotionKnowledgeBase string `json:"notionKnowledgeBase"`
}

type ModelsResponse struct {
	Models []domain.ModelInfo `json:"models"`
}

// Route answers or hands off a question. The body is a RouteDecision.
func (h *RouteHandler) Route(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		api.Error(w, http.StatusMethodNotAllowed, "Use POST")
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Ask(r.Context(), service.AskInput{
		Question:  req.Prompt,
		Knowledge: req.NotionKnowledgeBase,
		RequestID: middleware.GetRequestID(r.Context()),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("X-Route-Provider", result.Provider)
	if result.Fallback {
		w.Header().Set("X-Route-Fallback", "true")
	}
	api.JSON(w, http.StatusOK, result.Decision)
}

func (h *RouteHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.svc.ListModels(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if models == nil {
		models = []domain.ModelInfo{}
	}
	api.JSON(w, http.StatusOK, ModelsResponse{Models: models})
}

// ListDecisions serves the decision log, newest first.
func (h *RouteHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			api.HandleError(w, domain.ErrInvalidLimit)
			return
		}
		limit = parsed
	}

	page, err := h.svc.ListDecisions(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, page)
}
