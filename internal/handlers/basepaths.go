package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"image-catalog/internal/catalog"
	"image-catalog/internal/logging"
)

// BasePathRequest is the POST /api/basepaths body.
type BasePathRequest struct {
	Path string `json:"path"`
}

// BasePathResponse is the wire form of a registered base path.
type BasePathResponse struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// ListBasePaths returns every registered base path.
func (h *Handlers) ListBasePaths(w http.ResponseWriter, _ *http.Request) {
	entries, err := h.db.GetBasePaths()
	if err != nil {
		writeJSONError(w, "failed to load base paths", http.StatusServiceUnavailable)
		return
	}

	response := make([]BasePathResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, BasePathResponse{ID: entry.ID, Path: entry.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// AddBasePath registers a new directory for cataloging. The path must be
// absolute and exist as a directory. On success the base path cache is
// flagged for refresh so the next pass picks the new root up.
func (h *Handlers) AddBasePath(w http.ResponseWriter, r *http.Request) {
	var req BasePathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}
	if !filepath.IsAbs(req.Path) {
		writeJSONError(w, "path must be absolute", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(req.Path)
	if err != nil || !info.IsDir() {
		writeJSONError(w, "path is not an existing directory", http.StatusBadRequest)
		return
	}

	id, err := h.db.AddBasePath(filepath.Clean(req.Path))
	if err != nil {
		if errors.Is(err, catalog.ErrBasePathExists) {
			writeJSONError(w, "base path already registered", http.StatusConflict)
			return
		}
		writeJSONError(w, "failed to store base path", http.StatusServiceUnavailable)
		return
	}

	logging.Info("Base path registered: %s (id %d)", req.Path, id)
	h.sched.RequestRefresh()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, BasePathResponse{ID: id, Path: filepath.Clean(req.Path)})
}

// TriggerRefresh flags the base path cache for reload on the next
// scheduler cycle. This is also the operator's escape hatch out of a
// degraded state after restoring the database file.
func (h *Handlers) TriggerRefresh(w http.ResponseWriter, _ *http.Request) {
	h.sched.RequestRefresh()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "refresh_requested"})
}
