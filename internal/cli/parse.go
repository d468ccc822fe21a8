package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-pkgresolve/selection"
	"github.com/albertocavalcante/go-pkgresolve/version"
)

type parsedVersion struct {
	Input      string `json:"input" yaml:"input"`
	Format     string `json:"format" yaml:"format"`
	Major      uint64 `json:"major" yaml:"major"`
	Minor      uint64 `json:"minor" yaml:"minor"`
	Patch      uint64 `json:"patch" yaml:"patch"`
	Prerelease string `json:"prerelease,omitempty" yaml:"prerelease,omitempty"`
	Build      string `json:"build,omitempty" yaml:"build,omitempty"`
	Iteration  *int   `json:"iteration,omitempty" yaml:"iteration,omitempty"`
	Bucket     string `json:"bucket" yaml:"bucket"`
	SemVer     string `json:"semver" yaml:"semver"`
}

func newParseCmd(a *app) *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "parse VERSION...",
		Short: "Show how version strings are parsed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := version.DefaultFormats
			if formatName != "" {
				f, ok := version.ParseFormatName(formatName)
				if !ok {
					return fmt.Errorf("unknown version format %q", formatName)
				}
				formats = []version.Format{f}
			}

			out := make([]parsedVersion, 0, len(args))
			for _, raw := range args {
				v, err := version.ParseWith(raw, formats...)
				if err != nil {
					return err
				}
				out = append(out, newParsedVersion(v))
			}

			return a.render(cmd.OutOrStdout(), out, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "INPUT\tFORMAT\tRELEASE\tPRERELEASE\tBUILD\tITERATION\tBUCKET")
				for _, p := range out {
					iteration := "-"
					if p.Iteration != nil {
						iteration = fmt.Sprint(*p.Iteration)
					}
					fmt.Fprintf(tw, "%s\t%s\t%d.%d.%d\t%s\t%s\t%s\t%s\n",
						p.Input, p.Format, p.Major, p.Minor, p.Patch,
						orDash(p.Prerelease), orDash(p.Build), iteration, p.Bucket)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "", "Parse with this format only (rubygems, git_describe, project_semver, semver, partial_semver)")

	return cmd
}

func newParsedVersion(v version.Version) parsedVersion {
	p := parsedVersion{
		Input:      v.String(),
		Format:     v.Format().String(),
		Major:      v.Major(),
		Minor:      v.Minor(),
		Patch:      v.Patch(),
		Prerelease: v.Prerelease(),
		Build:      v.Build(),
		Bucket:     bucketOf(v).String(),
		SemVer:     v.SemverString(),
	}
	if it, ok := v.Iteration(); ok {
		p.Iteration = &it
	}
	return p
}

func describeVersion(v version.Version) versionInfo {
	return versionInfo{Version: v.String(), Format: v.Format().String(), Bucket: bucketOf(v).String()}
}

func bucketOf(v version.Version) selection.Bucket {
	return selection.BucketFor(v.HasPrerelease(), v.HasBuild())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type comparison struct {
	A        string `json:"a" yaml:"a"`
	B        string `json:"b" yaml:"b"`
	Result   int    `json:"result" yaml:"result"`
	Equal    bool   `json:"equal" yaml:"equal"`
	Relation string `json:"relation" yaml:"relation"`
}

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare A B",
		Short: "Compare two version strings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			va, err := version.Parse(args[0])
			if err != nil {
				return err
			}
			vb, err := version.Parse(args[1])
			if err != nil {
				return err
			}

			c := comparison{A: va.String(), B: vb.String(), Result: va.Compare(vb), Equal: va.Equal(vb)}
			switch {
			case c.Result < 0:
				c.Relation = "<"
			case c.Result > 0:
				c.Relation = ">"
			default:
				c.Relation = "=="
			}

			return a.render(cmd.OutOrStdout(), c, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s %s %s\n", c.A, c.Relation, c.B)
				return err
			})
		},
	}
}
