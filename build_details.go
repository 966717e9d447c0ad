package restparams

import (
	"fmt"
	"runtime"
)

// Set via ldflags at release time, e.g.
//
//	-X github.com/erraggy/restparams.version=v1.0.0
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Version returns the compiled version or "dev" if run from source.
func Version() string {
	return version
}

// Commit returns the git commit the binary was built from, or "unknown".
func Commit() string {
	return commit
}

// BuildTime returns the RFC3339 build timestamp, or "unknown".
func BuildTime() string {
	return buildTime
}

// GoVersion returns the Go runtime version.
func GoVersion() string {
	return runtime.Version()
}

// UserAgent returns the name/version string reported by the CLI and the MCP server.
func UserAgent() string {
	return fmt.Sprintf("restparams/%s", version)
}
