// Package handlers implements the HTTP API: health probes, base path
// management and the manual refresh trigger.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"image-catalog/internal/catalog"
	"image-catalog/internal/health"
	"image-catalog/internal/reconciler"
)

type Handlers struct {
	db      *catalog.Database
	state   *health.ServiceState
	sched   *reconciler.Scheduler
	version string
}

func New(db *catalog.Database, state *health.ServiceState, sched *reconciler.Scheduler, version string) *Handlers {
	return &Handlers{
		db:      db,
		state:   state,
		sched:   sched,
		version: version,
	}
}

// RegisterRoutes binds every API route onto the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/basepaths", h.ListBasePaths).Methods(http.MethodGet)
	api.HandleFunc("/basepaths", h.AddBasePath).Methods(http.MethodPost)
	api.HandleFunc("/refresh", h.TriggerRefresh).Methods(http.MethodPost)
}
