package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
)

// ErrorResponse represents an error API response. Status and Details are set
// for upstream failures and for errors that carry a diagnostic.
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ErrorWithDetails writes an error JSON response carrying a diagnostic
func ErrorWithDetails(w http.ResponseWriter, status int, message string, details any) {
	JSON(w, status, ErrorResponse{Error: message, Details: details})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return UpstreamHTTPStatus(upstream.Status)
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeUpstream:
		return http.StatusBadGateway
	case domain.ErrCodeConfiguration, domain.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// UpstreamHTTPStatus passes upstream 5xx through and turns anything else into 502.
func UpstreamHTTPStatus(status int) int {
	if status >= 500 && status <= 599 {
		return status
	}
	return http.StatusBadGateway
}

// HandleError writes an appropriate error response based on the error type
func HandleError(w http.ResponseWriter, err error) {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		JSON(w, UpstreamHTTPStatus(upstream.Status), ErrorResponse{
			Error:   upstreamLabel(upstream.Service) + " request failed",
			Status:  upstream.Status,
			Details: upstreamDetails(upstream),
		})
		return
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		resp := ErrorResponse{Error: domainErr.Message}
		if domainErr.Err != nil {
			resp.Details = domainErr.Err.Error()
		}
		JSON(w, DomainErrorToHTTP(err), resp)
		return
	}

	ErrorWithDetails(w, http.StatusInternalServerError, "Server error", err.Error())
}

func upstreamLabel(service string) string {
	switch service {
	case "gemini":
		return "Gemini"
	case "openai":
		return "OpenAI"
	case "":
		return "Upstream"
	default:
		return strings.ToUpper(service[:1]) + service[1:]
	}
}

func upstreamDetails(e *domain.UpstreamError) any {
	if e.Details != nil {
		return e.Details
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return nil
}
