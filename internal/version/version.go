package version

import "fmt"

var (
	// Version is the installer builder version written to build receipts. Set via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns the version recorded in build receipts.
func Short() string {
	return Version
}

// Full returns the version line printed by the version subcommand.
func Full() string {
	return fmt.Sprintf("scx-installer %s (commit %s, built %s)", Version, Commit, BuildTime)
}
