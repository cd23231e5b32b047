package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/conversation"
)

// SessionResponse pairs the session as it stands with the turn that got it
// there.
type SessionResponse struct {
	Session conversation.View        `json:"session"`
	Turn    *conversation.TurnResult `json:"turn,omitempty"`
}

type EndResponse struct {
	Outcome *conversation.Outcome `json:"outcome"`
}

// SpeakRequest names the hand card to play by its handle.
type SpeakRequest struct {
	Card *int `json:"card"`
}

type ConversationHandler struct {
	engine *conversation.Engine
	logger *slog.Logger
}

func NewConversationHandler(engine *conversation.Engine, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		engine: engine,
		logger: logger,
	}
}

// ServeHTTP handles conversation requests
// Routes:
// POST /v1/conversations             - Start a conversation
// GET  /v1/conversations/{id}        - Read the session view
// POST /v1/conversations/{id}/listen - Take a LISTEN turn
// POST /v1/conversations/{id}/speak  - Play a card from the hand
// POST /v1/conversations/{id}/end    - Leave and persist the outcome
func (h *ConversationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/conversations"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleStart(w, r)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		writeError(w, h.logger, http.StatusNotFound, "Unknown conversation route")
		return
	}
	if _, err := uuid.Parse(parts[0]); err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	s, err := h.engine.Session(parts[0])
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, SessionResponse{Session: s.View()})
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	switch parts[1] {
	case "listen":
		res, err := h.engine.Listen(r.Context(), s)
		if err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, SessionResponse{Session: s.View(), Turn: res})
	case "speak":
		h.handleSpeak(w, r, s)
	case "end":
		out, err := h.engine.EndSession(r.Context(), s)
		if err != nil {
			writeEngineError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, EndResponse{Outcome: out})
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown conversation action: "+parts[1])
	}
}

func (h *ConversationHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req conversation.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid start request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.PlayerID == "" || req.NPCID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "player_id and npc_id are required")
		return
	}
	if req.Kind == "" {
		req.Kind = conversation.KindFriendlyChat
	}

	s, res, err := h.engine.StartSession(r.Context(), req)
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, SessionResponse{Session: s.View(), Turn: res})
}

func (h *ConversationHandler) handleSpeak(w http.ResponseWriter, r *http.Request, s *conversation.Session) {
	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Card == nil {
		writeError(w, h.logger, http.StatusBadRequest, "card is required")
		return
	}

	res, err := h.engine.Speak(r.Context(), s, card.Handle(*req.Card))
	if err != nil {
		writeEngineError(w, h.logger, err)
		return
	}
	// A rejected play is a normal turn result, not an HTTP error.
	writeJSON(w, h.logger, http.StatusOK, SessionResponse{Session: s.View(), Turn: res})
}
