// Package version holds build metadata injected via -ldflags.
package version

// Version is the release version.
var Version = "0.0.0"

// GitCommit is the source revision the binary was built from.
var GitCommit = "unknown"

// BuildDate is the build timestamp.
var BuildDate = "unknown"

// Info returns the build metadata as served by /version.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     GitCommit,
		"build_date": BuildDate,
	}
}
