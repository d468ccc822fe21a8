package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-pkgresolve/platform"
)

type platformInfo struct {
	Name         string `json:"name" yaml:"name"`
	Remap        string `json:"remap,omitempty" yaml:"remap,omitempty"`
	VersionRemap string `json:"version_remap,omitempty" yaml:"version_remap,omitempty"`
	MajorOnly    bool   `json:"major_only,omitempty" yaml:"major_only,omitempty"`
	Yolo         bool   `json:"yolo,omitempty" yaml:"yolo,omitempty"`
	FallbackArch string `json:"fallback_arch,omitempty" yaml:"fallback_arch,omitempty"`
	WindowFloor  string `json:"window_floor,omitempty" yaml:"window_floor,omitempty"`
}

type platformsOutput struct {
	Platforms   []platformInfo    `json:"platforms" yaml:"platforms"`
	ArchAliases map[string]string `json:"arch_aliases,omitempty" yaml:"arch_aliases,omitempty"`
}

func newPlatformsCmd(a *app) *cobra.Command {
	var source bool

	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "Show the platform table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source {
				return a.printPlatformSource(cmd.OutOrStdout())
			}

			r, err := a.resolver()
			if err != nil {
				return err
			}
			out := describeTable(r.Table())

			return a.render(cmd.OutOrStdout(), out, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tREMAP\tVERSION REMAP\tMAJOR ONLY\tFALLBACK ARCH\tYOLO")
				for _, p := range out.Platforms {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%t\n",
						p.Name, orDash(p.Remap), orDash(p.VersionRemap), p.MajorOnly, orDash(p.FallbackArch), p.Yolo)
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				aliases := make([]string, 0, len(out.ArchAliases))
				for alias := range out.ArchAliases {
					aliases = append(aliases, alias)
				}
				sort.Strings(aliases)
				for _, alias := range aliases {
					fmt.Fprintf(w, "arch %s -> %s\n", alias, out.ArchAliases[alias])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&source, "source", false, "Print the platform definition file instead")

	return cmd
}

func describeTable(t *platform.Table) platformsOutput {
	out := platformsOutput{ArchAliases: t.ArchAliases()}
	for _, s := range t.Specs() {
		out.Platforms = append(out.Platforms, platformInfo{
			Name:         s.Name,
			Remap:        s.Remap,
			VersionRemap: s.VersionRemap.String(),
			MajorOnly:    s.MajorOnly,
			Yolo:         s.Yolo,
			FallbackArch: s.FallbackArch,
			WindowFloor:  s.WindowFloor,
		})
	}
	return out
}

func (a *app) printPlatformSource(w io.Writer) error {
	src := platform.DefaultSource()
	if a.opts.PlatformsFile != "" {
		data, err := os.ReadFile(a.opts.PlatformsFile)
		if err != nil {
			return fmt.Errorf("read platform table: %w", err)
		}
		src = data
	}
	_, err := w.Write(src)
	return err
}
