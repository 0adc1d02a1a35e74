package api

import (
	"encoding/json"
	"net/http"

	"github.com/hance08/paycore/internal/service"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    "BAD_REQUEST",
		Title:   http.StatusText(http.StatusBadRequest),
		Message: message,
	})
}

// writeError maps a service error to its status code. Only the stable user
// message goes out; the raw error is logged.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.Kind(err)
	status := StatusFor(kind)

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}

	writeJSON(w, status, ErrorResponse{
		Code:    string(kind),
		Title:   http.StatusText(status),
		Message: service.UserMessage(err),
	})
}

// StatusFor returns the HTTP status for an error kind.
func StatusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindNone:
		return http.StatusOK
	case service.KindInvalidAmount, service.KindInvalidInstruction:
		return http.StatusBadRequest
	case service.KindAccountNotFound, service.KindInstructionNotFound:
		return http.StatusNotFound
	case service.KindAccountNotActive,
		service.KindDestinationNotFound,
		service.KindRailPolicy,
		service.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case service.KindIdempotencyConflict, service.KindInvalidTransition:
		return http.StatusConflict
	case service.KindStoreConflict:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
