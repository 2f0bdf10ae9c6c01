package handlers

import (
	"net/http"
	"runtime"
	"time"

	"image-catalog/internal/health"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// ComponentStatus is the wire form of one component's health.
type ComponentStatus struct {
	Degradation string `json:"degradation"`
	Level       int    `json:"level"`
	Reason      string `json:"reason,omitempty"`
}

// HealthResponse contains the health check response
type HealthResponse struct {
	Status   string          `json:"status"`
	Version  string          `json:"version"`
	Uptime   string          `json:"uptime"`
	Service  ComponentStatus `json:"service"`
	Database ComponentStatus `json:"database"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports the degradation level of each component. A fully
// degraded database turns the whole response into a 503 so external
// monitors alert on storage loss.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	service := h.state.ServiceHealth()
	database := h.state.DatabaseHealth()

	response := HealthResponse{
		Status:  statusHealthy,
		Version: h.version,
		Uptime:  h.state.Uptime().Round(time.Second).String(),
		Service: ComponentStatus{
			Degradation: service.Level.String(),
			Level:       int(service.Level),
			Reason:      service.Reason,
		},
		Database: ComponentStatus{
			Degradation: database.Level.String(),
			Level:       int(database.Level),
			Reason:      database.Reason,
		},
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	code := http.StatusOK
	if database.Level == health.FullyDegraded || service.Level == health.FullyDegraded {
		response.Status = statusDegraded
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if r.Method != http.MethodHead {
		writeJSON(w, response)
	}
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 while the database is usable and 503 once
// it is fully degraded.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.state.DatabaseHealth().Level == health.FullyDegraded {
		w.WriteHeader(http.StatusServiceUnavailable)
		if r.Method != http.MethodHead {
			writeJSON(w, map[string]string{"status": "not_ready"})
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "ready"})
	}
}
