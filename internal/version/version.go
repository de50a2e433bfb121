// Package version provides application version information.
// The version can be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/ramonehamilton/SWU-Companion/internal/version.Version=v1.2.3"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the application version. It defaults to "dev" and can be
// overridden at build time using ldflags.
var Version = "dev"

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// Revision returns the VCS revision embedded by the Go toolchain, if any.
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}

// String formats version, revision and platform for display.
func String() string {
	rev := Revision()
	if rev == "" {
		rev = "unknown"
	}
	return fmt.Sprintf("swu-companion %s (%s, %s/%s)", Version, rev, runtime.GOOS, runtime.GOARCH)
}
