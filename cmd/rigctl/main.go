// Rigctl is a local control plane that drives autonomous coding agents
// through a disciplined lifecycle: it allocates isolated working copies of
// a repository, spawns agents inside terminal multiplexer sessions, tracks
// each unit of work through a state machine with artifact gates, detects
// and recovers from agent crashes, and coordinates merging via local git
// operations or a remote pull-request platform.
package main

import (
	"os"
	"runtime/debug"

	"github.com/rigctl/rigctl/internal/commands"
)

// version is set via ldflags (-X main.version=v1.0.0) or detected
// automatically from Go module info embedded by go install.
var version = "dev"

func main() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	if err := commands.Execute(version); err != nil {
		os.Exit(1)
	}
}
