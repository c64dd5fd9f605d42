// Package version carries build metadata stamped by the linker.
package version

import "fmt"

// Set with -ldflags "-X github.com/dkoosis/resusage/internal/version.Version=...".
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String formats the build metadata for `resusage version`.
func String() string {
	return fmt.Sprintf("resusage %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
