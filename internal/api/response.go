package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes. Failures of the
// remote HR platform surface as gateway errors.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
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
	case domain.ErrCodeForbidden:
		return http.StatusForbidden
	case domain.ErrCodeAuth, domain.ErrCodeDataShape:
		return http.StatusBadGateway
	case domain.ErrCodeUpstreamUnavailable, domain.ErrCodeNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an appropriate error response based on the error type.
// Errors outside the domain taxonomy are reported without their details.
func HandleError(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	Error(w, DomainErrorToHTTP(err), domainErr.Message)
}
