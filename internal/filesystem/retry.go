// Package filesystem wraps file opens with retry logic for NFS stale
// file handle errors, which image libraries on network mounts hit when
// the exporting server re-exports mid-scan.
package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"
)

// RetryConfig configures retry behavior for filesystem operations.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isStaleError checks if an error is an NFS stale file handle error
// (ESTALE, errno 116 on Linux).
func isStaleError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}
	return false
}

// OpenWithRetry performs os.Open, retrying stale file handle errors with
// exponential backoff. Any other error is returned immediately.
func OpenWithRetry(path string, config RetryConfig) (*os.File, error) {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		file, err := os.Open(path)
		if err == nil {
			if attempt > 0 {
				logging.Info("Open succeeded on retry %d for %s", attempt, path)
				metrics.FilesystemRetrySuccess.Inc()
			}
			return file, nil
		}

		lastErr = err

		if !isStaleError(err) {
			return nil, err
		}

		metrics.FilesystemStaleErrors.Inc()

		if attempt < config.MaxRetries {
			logging.Debug("Stale file handle for %s, retrying in %v (attempt %d/%d)",
				path, backoff, attempt+1, config.MaxRetries)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > config.MaxBackoff {
				backoff = config.MaxBackoff
			}
		}
	}

	logging.Warn("Open failed after %d retries for %s: %v", config.MaxRetries, path, lastErr)
	metrics.FilesystemRetryFailures.Inc()
	return nil, lastErr
}
