package version

import (
	"fmt"
	"runtime"
	"time"
)

// Overridden at build time with -ldflags "-X".
var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-10-15T18:42:00Z
	GoVersion = runtime.Version()
)

// String is the one-line build description used in logs and the bot.
func String() string {
	return fmt.Sprintf("yodda %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
