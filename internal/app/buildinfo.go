package app

import (
	"fmt"
	"runtime"
)

// Build information, set with -ldflags "-X" at release time.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// VersionString is printed by --version.
func VersionString() string {
	return fmt.Sprintf("pagescrape %s (%s, %s) %s %s/%s",
		BuildVersion, BuildCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
