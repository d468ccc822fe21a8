// Command pkgresolve resolves installer packages from build manifests.
package main

import (
	"os"

	"github.com/albertocavalcante/go-pkgresolve/internal/cli"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(cli.Execute(cli.BuildInfo{Version: version, Commit: commit, Date: date}))
}
