// Package startup holds build identity and the startup and shutdown
// logging helpers used by main.
package startup

import (
	"os"
	"runtime"
	"time"

	"image-catalog/internal/config"
	"image-catalog/internal/logging"
)

// Build information, set at build time via ldflags:
//
//	go build -ldflags "-X image-catalog/internal/startup.Version=1.0.0 \
//	  -X image-catalog/internal/startup.Commit=$(git rev-parse --short HEAD) \
//	  -X image-catalog/internal/startup.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version information about the binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// GetBuildInfo returns the build information of the running binary.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
	}
}

// LogFatal logs the message and exits with status 1.
func LogFatal(format string, v ...interface{}) {
	logging.Error(format, v...)
	os.Exit(1)
}

// LogBanner logs the startup banner with build and configuration details.
func LogBanner(cfg *config.Config) {
	logging.Info("Image catalog starting")
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Go version: %s", GoVersion)
	cfg.LogDetails()
}

// LogServerStarted logs the listening port and total startup duration.
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("HTTP server listening on :%s (started in %v)", port, elapsed.Round(time.Millisecond))
}

// LogShutdownInitiated logs the signal that triggered shutdown.
func LogShutdownInitiated(signal string) {
	logging.Info("Received %s, shutting down...", signal)
}

// LogShutdownStep logs the start of one shutdown step.
func LogShutdownStep(step string) {
	logging.Info("  %s...", step)
}

// LogShutdownComplete logs the end of a clean shutdown.
func LogShutdownComplete() {
	logging.Info("Shutdown complete")
}
