// Package version exposes the build information stamped in at link time.
package version

import (
	"github.com/prometheus/common/version"
)

const Program = "archsite"

var (
	Version   string = "dev"
	GitCommit string = "unknown"
	BuildTime string = "unknown"
)

func init() {
	version.Version = Version
	version.Revision = GitCommit
	version.BuildDate = BuildTime
}

// GetFullVersion is the one line form shown by --version.
func GetFullVersion() string {
	return Version + " (commit: " + GitCommit + ", built: " + BuildTime + ")"
}

// Print renders the multi line banner used by `archsite version`.
func Print() string {
	return version.Print(Program)
}

// Info is the one line form used in startup logs.
func Info() string {
	return version.Info()
}
