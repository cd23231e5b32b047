package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/parley/pkg/conversation"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// statusFor maps engine errors to HTTP status codes. Anything unrecognized
// is a server error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound),
		errors.Is(err, conversation.ErrUnknownNPC):
		return http.StatusNotFound
	case errors.Is(err, conversation.ErrInvalidKind),
		errors.Is(err, conversation.ErrCardNotInHand),
		errors.Is(err, conversation.ErrNilSession):
		return http.StatusBadRequest
	case errors.Is(err, conversation.ErrActiveSession),
		errors.Is(err, conversation.ErrSessionEnded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeEngineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Conversation request failed", "error", err)
		writeError(w, logger, status, "Internal server error")
		return
	}
	logger.Debug("Conversation request rejected", "error", err, "status", status)
	writeError(w, logger, status, err.Error())
}
