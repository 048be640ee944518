// Package version holds build metadata for palsnap, injected with ldflags:
//
//	-X github.com/jmylchreest/palsnap/internal/version.Version=x.y.z
//	-X github.com/jmylchreest/palsnap/internal/version.Commit=$(git rev-parse HEAD)
//	-X github.com/jmylchreest/palsnap/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in version strings and the HTTP User-Agent.
const Name = "palsnap"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the build metadata of the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a human-readable version line.
func String() string {
	info := GetInfo()
	if Commit == "unknown" || Date == "unknown" {
		return fmt.Sprintf("%s %s (%s, %s)", Name, info.Version, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("%s %s (commit %s, built %s, %s, %s)",
		Name, info.Version, shortCommit(info.Commit), info.Date, info.GoVersion, info.Platform)
}

// UserAgent returns the User-Agent header value for outgoing requests.
func UserAgent() string {
	return Name + "/" + Version
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
