package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of pkgresolve",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "pkgresolve %s\n", orDefault(info.Version, "dev"))
			if info.Commit != "" && info.Commit != "none" {
				fmt.Fprintf(w, "  commit: %s\n", info.Commit)
			}
			if info.Date != "" && info.Date != "unknown" {
				fmt.Fprintf(w, "  built:  %s\n", info.Date)
			}
			if bi, ok := debug.ReadBuildInfo(); ok {
				fmt.Fprintf(w, "  go:     %s\n", bi.GoVersion)
			}
		},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
