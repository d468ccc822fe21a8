package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-pkgresolve"
)

type resolveOptions struct {
	version         string
	prerelease      bool
	nightlies       bool
	platform        string
	platformVersion string
	arch            string
	manifestFile    string
}

func newResolveCmd(a *app) *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve PROJECT",
		Short: "Print the package to download for one platform",
		Example: `  pkgresolve resolve chef --platform centos --platform-version 7.4 --arch x86_64
  pkgresolve resolve chef --version 12 --platform ubuntu --platform-version 16.04 --arch amd64 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResolve(cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.version, "version", "", "Version, version prefix or \"latest\" (default latest)")
	f.BoolVar(&opts.prerelease, "prerelease", false, "Select prerelease versions")
	f.BoolVar(&opts.nightlies, "nightlies", false, "Select nightly builds")
	f.StringVarP(&opts.platform, "platform", "p", "", "Client platform, e.g. ubuntu or centos")
	f.StringVarP(&opts.platformVersion, "platform-version", "l", "", "Client platform version, e.g. 16.04")
	f.StringVarP(&opts.arch, "arch", "m", "", "Client machine architecture, e.g. x86_64")
	f.StringVar(&opts.manifestFile, "manifest", "", "Read this manifest file instead of the manifest directory")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("platform-version")
	_ = cmd.MarkFlagRequired("arch")

	return cmd
}

func (a *app) runResolve(w io.Writer, project string, opts resolveOptions) error {
	r, err := a.resolver()
	if err != nil {
		return err
	}
	m, err := a.loadManifest(project, opts.manifestFile)
	if err != nil {
		return err
	}

	art, err := r.Resolve(m, pkgresolve.Request{
		Project:         project,
		Channel:         a.opts.Channel,
		Version:         opts.version,
		Prerelease:      opts.prerelease,
		Nightlies:       opts.nightlies,
		Platform:        opts.platform,
		PlatformVersion: opts.platformVersion,
		Arch:            opts.arch,
	})
	if err != nil {
		return err
	}

	out := *art
	out.URL = a.packageURL(art.Artifact)

	return a.render(w, out, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		fmt.Fprintf(tw, "url\t%s\n", out.URL)
		fmt.Fprintf(tw, "md5\t%s\n", out.MD5)
		fmt.Fprintf(tw, "sha256\t%s\n", out.SHA256)
		if out.SHA1 != "" {
			fmt.Fprintf(tw, "sha1\t%s\n", out.SHA1)
		}
		fmt.Fprintf(tw, "version\t%s\n", out.Version)
		if out.Yolo {
			fmt.Fprintf(tw, "yolo\ttrue\n")
		}
		return tw.Flush()
	})
}
