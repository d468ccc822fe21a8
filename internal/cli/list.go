package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-pkgresolve"
)

type listOptions struct {
	version      string
	prerelease   bool
	nightlies    bool
	manifestFile string
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list PROJECT",
		Short: "List the packages of the newest matching version on every platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.version, "version", "", "Version, version prefix or \"latest\" (default latest)")
	f.BoolVar(&opts.prerelease, "prerelease", false, "Select prerelease versions")
	f.BoolVar(&opts.nightlies, "nightlies", false, "Select nightly builds")
	f.StringVar(&opts.manifestFile, "manifest", "", "Read this manifest file instead of the manifest directory")

	return cmd
}

func (a *app) runList(cmd *cobra.Command, project string, opts listOptions) error {
	r, err := a.resolver()
	if err != nil {
		return err
	}
	m, err := a.loadManifest(project, opts.manifestFile)
	if err != nil {
		return err
	}

	list, err := r.PackageList(cmd.Context(), m, pkgresolve.Query{
		Version:    opts.version,
		Prerelease: opts.prerelease,
		Nightlies:  opts.nightlies,
	})
	if err != nil {
		return err
	}

	for _, pvs := range list {
		for _, arches := range pvs {
			for _, art := range arches {
				art.URL = a.packageURL(art.Artifact)
				art.Project = project
				art.Channel = a.opts.Channel
			}
		}
	}

	return a.render(cmd.OutOrStdout(), list, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PLATFORM\tPLATFORM VERSION\tARCH\tVERSION\tURL")
		for _, row := range listRows(list) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Platform, row.PlatformVersion, row.Arch, row.Version, row.URL)
		}
		return tw.Flush()
	})
}

func listRows(list pkgresolve.PackageList) []*pkgresolve.Artifact {
	var rows []*pkgresolve.Artifact
	for _, pvs := range list {
		for _, arches := range pvs {
			for _, art := range arches {
				rows = append(rows, art)
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Platform != rows[j].Platform {
			return rows[i].Platform < rows[j].Platform
		}
		if rows[i].PlatformVersion != rows[j].PlatformVersion {
			return rows[i].PlatformVersion < rows[j].PlatformVersion
		}
		return rows[i].Arch < rows[j].Arch
	})
	return rows
}
