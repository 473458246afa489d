package app

import "fmt"

// Version, Commit, and BuildTime are stamped by the release build:
// go build -ldflags "-X github.com/carelog/carelog-backend/internal/app.Version=1.2.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion is the version string surfaced in startup logs and /health.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
