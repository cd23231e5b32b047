package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/jwebster45206/parley/pkg/player"
	"github.com/jwebster45206/parley/pkg/relationship"
	"github.com/jwebster45206/parley/pkg/storage"
)

type StatsResponse struct {
	PlayerID string         `json:"player_id"`
	XP       map[string]int `json:"xp"`
	Levels   map[string]int `json:"levels"`
}

type ObligationsResponse struct {
	PlayerID    string                   `json:"player_id"`
	Obligations []*obligation.Obligation `json:"obligations"`
}

// PlayerHandler serves persisted player data.
type PlayerHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewPlayerHandler(storage storage.Storage, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles player requests
// Routes:
// GET /v1/players/{id}/stats
// GET /v1/players/{id}/obligations
// GET /v1/players/{id}/relationships/{npc_id}
func (h *PlayerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/players"), "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Player ID and resource are required (e.g., /v1/players/{id}/stats)")
		return
	}
	playerID := parts[0]

	switch {
	case parts[1] == "stats" && len(parts) == 2:
		h.handleStats(w, r, playerID)
	case parts[1] == "obligations" && len(parts) == 2:
		h.handleObligations(w, r, playerID)
	case parts[1] == "relationships" && len(parts) == 3 && parts[2] != "":
		h.handleRelationship(w, r, playerID, parts[2])
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown player resource")
	}
}

func (h *PlayerHandler) handleStats(w http.ResponseWriter, r *http.Request, playerID string) {
	stats, err := h.storage.LoadPlayerStats(r.Context(), playerID)
	if err != nil {
		h.logger.Error("Failed to load player stats", "error", err, "player_id", playerID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load player stats")
		return
	}
	if stats == nil {
		stats = player.NewStats(playerID)
	}

	resp := StatsResponse{
		PlayerID: playerID,
		XP:       make(map[string]int, len(player.AllStats)),
		Levels:   make(map[string]int, len(player.AllStats)),
	}
	for _, stat := range player.AllStats {
		resp.XP[string(stat)] = stats.XP[stat]
		resp.Levels[string(stat)] = stats.Level(stat)
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *PlayerHandler) handleObligations(w http.ResponseWriter, r *http.Request, playerID string) {
	queue, err := h.storage.ListObligations(r.Context(), playerID)
	if err != nil {
		h.logger.Error("Failed to list obligations", "error", err, "player_id", playerID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list obligations")
		return
	}
	if queue == nil {
		queue = []*obligation.Obligation{}
	}
	writeJSON(w, h.logger, http.StatusOK, ObligationsResponse{PlayerID: playerID, Obligations: queue})
}

func (h *PlayerHandler) handleRelationship(w http.ResponseWriter, r *http.Request, playerID, npcID string) {
	rec, err := h.storage.LoadRelationship(r.Context(), playerID, npcID)
	if err != nil {
		h.logger.Error("Failed to load relationship", "error", err, "player_id", playerID, "npc_id", npcID)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load relationship")
		return
	}
	if rec == nil {
		rec = relationship.NewRecord(playerID, npcID)
	}
	writeJSON(w, h.logger, http.StatusOK, rec)
}
