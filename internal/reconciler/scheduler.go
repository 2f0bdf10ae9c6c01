package reconciler

import (
	"context"
	"sync"
	"time"

	"image-catalog/internal/events"
	"image-catalog/internal/health"
	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"
	"image-catalog/internal/scanner"
)

// tickInterval is how often the run loop wakes up to evaluate pass
// conditions and drain the bus. Passes themselves are gated on the
// configured scan interval.
const tickInterval = time.Second

// Scheduler drives one reconciliation pass per configured interval and
// honors on-demand cache refresh requests. It is the single consumer of
// the event bus.
type Scheduler struct {
	cache      *Cache
	reconciler *Reconciler
	bus        *events.Bus
	state      *health.ServiceState
	interval   time.Duration

	mu               sync.Mutex
	lastPass         time.Time
	refreshRequested bool

	// now is replaceable in tests.
	now func() time.Time
}

// NewScheduler wires a scheduler over the injected cache, reconciler and
// bus. The interval is the full reconciliation pass period.
func NewScheduler(cache *Cache, rec *Reconciler, bus *events.Bus, state *health.ServiceState, interval time.Duration) *Scheduler {
	return &Scheduler{
		cache:      cache,
		reconciler: rec,
		bus:        bus,
		state:      state,
		interval:   interval,
		now:        time.Now,
	}
}

// RequestRefresh flags the base path cache for reload at the start of the
// next cycle. Called from HTTP triggers such as a base path addition.
func (s *Scheduler) RequestRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshRequested = true
}

// Run executes the cooperative main loop until ctx is cancelled: each tick
// evaluates pass conditions, then drains queued mutation events. Handler
// errors are logged and the loop continues; the persistence layer has
// already degraded health by the time a handler fails on storage.
func (s *Scheduler) Run(ctx context.Context) {
	logging.Info("Scheduler started (scan interval: %v)", s.interval)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.Cycle(ctx)
		}
	}
}

// Cycle runs one scheduler iteration: a possible reconciliation pass
// followed by a bus drain.
func (s *Scheduler) Cycle(ctx context.Context) {
	s.RunPass(ctx)

	if err := s.bus.ProcessAll(); err != nil {
		logging.Error("Event handling failed: %v", err)
	}
}

// RunPass applies the pass algorithm:
//
//  1. With database health fully degraded and no refresh requested, skip
//     entirely — do not hammer a broken store.
//  2. A requested refresh runs first; failure skips the pass, success
//     clears the degradation.
//  3. Reconcile every cached base path if this is the first pass or the
//     interval has elapsed.
//  4. lastPass is stamped after the pass so pass duration is absorbed
//     rather than causing back-to-back re-triggering.
func (s *Scheduler) RunPass(ctx context.Context) {
	refresh := s.takeRefreshRequest()
	degraded := s.state.DatabaseHealth().Level == health.FullyDegraded

	if degraded && !refresh {
		logging.Debug("Skipping pass: database fully degraded")
		metrics.ScanPassesSkipped.WithLabelValues("degraded").Inc()
		return
	}

	if refresh {
		if !s.cache.Refresh() {
			logging.Warn("Skipping pass: cache refresh failed")
			metrics.ScanPassesSkipped.WithLabelValues("refresh_failed").Inc()
			return
		}
	}

	s.mu.Lock()
	due := s.lastPass.IsZero() || s.now().Sub(s.lastPass) > s.interval
	s.mu.Unlock()

	if !due {
		return
	}

	s.runReconciliation(ctx)

	s.mu.Lock()
	s.lastPass = s.now()
	s.mu.Unlock()
}

// runReconciliation scans every cached base path and diffs the results.
// The snapshot taken here stays stable for the whole pass even if a
// refresh is requested mid-pass.
func (s *Scheduler) runReconciliation(ctx context.Context) {
	start := s.now()
	bindings := s.cache.Snapshot()

	logging.Info("Starting reconciliation pass over %d base paths", len(bindings))
	metrics.ScanPassesTotal.Inc()

	var stats PassStats
	for _, binding := range bindings {
		select {
		case <-ctx.Done():
			logging.Info("Reconciliation pass interrupted by shutdown")
			return
		default:
		}

		err := binding.Scanner.Scan(ctx, func(listing scanner.DirectoryListing) error {
			return s.reconciler.ReconcileDirectory(binding.Entry, listing, &stats)
		})
		if err != nil {
			// Storage fault mid-pass: health is degraded, stop scanning.
			logging.Error("Reconciliation aborted for base path %s: %v", binding.Entry.Path, err)
			break
		}
	}

	duration := time.Since(start)
	metrics.ScanPassDuration.Set(duration.Seconds())
	metrics.ScanLastPassTimestamp.Set(float64(s.now().Unix()))

	logging.Info("Pass complete in %v: %d scanned, %d new, %d modified, %d unchanged (%d events queued)",
		duration, stats.Scanned, stats.New, stats.Modified, stats.Unchanged, s.bus.Len())
}

// LastPass returns the completion time of the most recent pass.
func (s *Scheduler) LastPass() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPass
}

func (s *Scheduler) takeRefreshRequest() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	requested := s.refreshRequested
	s.refreshRequested = false
	return requested
}
