// Package health tracks per-component degradation levels for the service.
//
// The persistence layer is the only writer of the database component; the
// scheduler reads it to decide whether a reconciliation pass may run. All
// accessors are safe for concurrent use.
package health

import (
	"sync"
	"time"
)

// Level is the degradation level of a single component.
type Level int

const (
	// Healthy means the component is fully operational.
	Healthy Level = iota
	// PartDegraded means the component is slow or experiencing minor issues.
	PartDegraded
	// FullyDegraded means the component is unusable.
	FullyDegraded
)

// String returns the operational string form of a level.
func (l Level) String() string {
	switch l {
	case Healthy:
		return "none"
	case PartDegraded:
		return "partial"
	case FullyDegraded:
		return "fully_degraded"
	default:
		return "unknown"
	}
}

// Component is a health snapshot of one component.
type Component struct {
	Level  Level
	Reason string
}

// ServiceState is the process-wide health object shared between the
// persistence layer, the scheduler and the HTTP status endpoints.
type ServiceState struct {
	mu       sync.RWMutex
	service  Component
	database Component

	Version     string
	StartupTime time.Time
}

// NewServiceState creates a healthy ServiceState stamped with the service
// version and the current time.
func NewServiceState(version string) *ServiceState {
	return &ServiceState{
		Version:     version,
		StartupTime: time.Now(),
	}
}

// SetDatabaseHealth records the database component's degradation level with
// a human-readable reason.
func (s *ServiceState) SetDatabaseHealth(level Level, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.database = Component{Level: level, Reason: reason}
}

// DatabaseHealth returns the database component snapshot.
func (s *ServiceState) DatabaseHealth() Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.database
}

// SetServiceHealth records the overall service degradation level.
func (s *ServiceState) SetServiceHealth(level Level, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.service = Component{Level: level, Reason: reason}
}

// ServiceHealth returns the service component snapshot.
func (s *ServiceState) ServiceHealth() Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.service
}

// Uptime returns the elapsed time since the service started.
func (s *ServiceState) Uptime() time.Duration {
	return time.Since(s.StartupTime)
}
