package handlers

import (
	"net/http"

	"github.com/agentstation/rankmap/internal/server/response"
)

// HandleHealth handles GET /health (liveness probe).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "rankmap-api",
		"version": "v1",
	})
}

// HandleReady handles GET /api/v1/ready. The service is ready once a
// non-empty snapshot has been published.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	snap := h.client.Snapshot()
	if snap.Catalog.Len() == 0 {
		response.ServiceUnavailable(w, "No catalog published yet")
		return
	}

	response.OK(w, map[string]any{
		"status":   "ready",
		"build_id": snap.BuildID,
		"colleges": snap.Catalog.Len(),
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
	})
}
