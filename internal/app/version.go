package app

import "fmt"

// Build metadata, injected via ldflags:
//
//	go build -ldflags "-X github.com/painradar/painradar-backend/internal/app.Version=1.2.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion formats the build metadata for startup logs and the health
// endpoint.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
