package main

import (
	"fmt"
	"runtime"
)

// Build metadata, set with -ldflags "-X main.Version=..." at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the full version string printed by --version.
func GetVersion() string {
	return fmt.Sprintf("s3-static-sync version %s (commit: %s, built: %s, %s %s/%s)",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
