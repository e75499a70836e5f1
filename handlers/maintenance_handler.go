package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/torvik/lumengallery/services"
)

// MaintenanceHandler exposes offline repair operations.
type MaintenanceHandler struct {
	Centroids *services.CentroidService
}

// RebuildCentroids recomputes person centroids from current face
// membership. An optional ?limit=N caps how many persons are visited.
func (mh *MaintenanceHandler) RebuildCentroids(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteAPIError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	updated, err := mh.Centroids.RebuildAll(limit)
	if err != nil {
		log.Printf("Error rebuilding centroids: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "rebuild_failed", "Failed to rebuild centroids")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}
