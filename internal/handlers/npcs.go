package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/parley/pkg/catalog"
)

type NPCSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Personality string `json:"personality"`
	Connection  string `json:"connection"`
	Requests    int    `json:"requests"`
}

type NPCHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewNPCHandler(cat *catalog.Catalog, logger *slog.Logger) *NPCHandler {
	return &NPCHandler{
		catalog: cat,
		logger:  logger,
	}
}

// ServeHTTP lists NPCs at /v1/npcs and returns one profile at /v1/npcs/{id}.
func (h *NPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/npcs"), "/")
	if id == "" {
		npcs := h.catalog.NPCs()
		out := make([]NPCSummary, 0, len(npcs))
		for _, npc := range npcs {
			out = append(out, NPCSummary{
				ID:          npc.ID,
				Name:        npc.Name,
				Description: npc.Description,
				Personality: string(npc.Personality),
				Connection:  string(npc.Connection),
				Requests:    len(npc.Requests),
			})
		}
		writeJSON(w, h.logger, http.StatusOK, out)
		return
	}

	if strings.Contains(id, "/") {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid NPC ID")
		return
	}
	npc, ok := h.catalog.NPC(id)
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "NPC not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, npc)
}
