package cli

import (
	"fmt"
	"io"

	semver "github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-pkgresolve"
	"github.com/albertocavalcante/go-pkgresolve/version"
)

type versionsOptions struct {
	constraint   string
	latest       bool
	prerelease   bool
	nightlies    bool
	manifestFile string
}

func newVersionsCmd(a *app) *cobra.Command {
	var opts versionsOptions

	cmd := &cobra.Command{
		Use:   "versions PROJECT",
		Short: "List the versions published for a project",
		Example: `  pkgresolve versions chef --constraint ">= 12, < 13"
  pkgresolve versions chef --latest --prerelease`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVersions(cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.constraint, "constraint", "", "Only list versions satisfying this semver range")
	f.BoolVar(&opts.latest, "latest", false, "Print only the version that would be selected")
	f.BoolVar(&opts.prerelease, "prerelease", false, "With --latest, select prerelease versions")
	f.BoolVar(&opts.nightlies, "nightlies", false, "With --latest, select nightly builds")
	f.StringVar(&opts.manifestFile, "manifest", "", "Read this manifest file instead of the manifest directory")

	return cmd
}

type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Format  string `json:"format" yaml:"format"`
	Bucket  string `json:"bucket" yaml:"bucket"`
}

func (a *app) runVersions(w io.Writer, project string, opts versionsOptions) error {
	var constraint *semver.Constraints
	if opts.constraint != "" {
		c, err := semver.NewConstraint(opts.constraint)
		if err != nil {
			return fmt.Errorf("invalid constraint %q: %w", opts.constraint, err)
		}
		constraint = c
	}

	r, err := a.resolver()
	if err != nil {
		return err
	}
	m, err := a.loadManifest(project, opts.manifestFile)
	if err != nil {
		return err
	}

	var versions []version.Version
	if opts.latest {
		v, ok, err := r.Latest(m, pkgresolve.Query{Prerelease: opts.prerelease, Nightlies: opts.nightlies})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: no version of %s in channel %s", pkgresolve.ErrInvalidDownloadPath, project, a.opts.Channel)
		}
		versions = []version.Version{v}
	} else {
		versions = r.Versions(m)
	}

	infos := make([]versionInfo, 0, len(versions))
	for _, v := range versions {
		if constraint != nil && !v.Satisfies(constraint) {
			continue
		}
		infos = append(infos, describeVersion(v))
	}

	return a.render(w, infos, func(w io.Writer) error {
		for _, info := range infos {
			fmt.Fprintln(w, info.Version)
		}
		return nil
	})
}
