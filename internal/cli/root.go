// Package cli implements the pkgresolve command-line interface using Cobra.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-pkgresolve"
	"github.com/albertocavalcante/go-pkgresolve/internal/config"
	"github.com/albertocavalcante/go-pkgresolve/internal/log"
	"github.com/albertocavalcante/go-pkgresolve/manifest"
)

type runtimeOptions struct {
	ConfigPath    string
	ManifestDir   string
	BaseURL       string
	Channel       string
	PlatformsFile string
	Output        string
	Concurrency   int
	Verbose       bool
	LogJSON       bool
	LogFile       string
}

// app carries state shared by all subcommands of one root command.
type app struct {
	flags  runtimeOptions
	opts   runtimeOptions
	logger *slog.Logger
}

// BuildInfo is version metadata injected at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCmd returns the pkgresolve root command.
func NewRootCmd(info BuildInfo) *cobra.Command {
	a := &app{logger: log.Logger()}

	cmd := &cobra.Command{
		Use:   "pkgresolve",
		Short: "Resolve installer packages from build manifests",
		Long: `pkgresolve answers "which package should I download" for a project,
channel, platform, platform version and architecture, reading build
manifests from a directory laid out as <manifest-dir>/<channel>/<project>.json.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			merged, err := mergedOptions(cmd, a.flags)
			if err != nil {
				return err
			}
			a.opts = merged

			logger, err := log.Init(log.Options{
				Verbose:    merged.Verbose,
				JSONFormat: merged.LogJSON,
				File:       merged.LogFile,
				Stderr:     cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Close()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.flags.ConfigPath, "config", "c", "", "Path to YAML config file (default $XDG_CONFIG_HOME/pkgresolve/config.yaml)")
	pf.StringVarP(&a.flags.ManifestDir, "manifest-dir", "d", "", "Directory holding <channel>/<project> manifests")
	pf.StringVar(&a.flags.BaseURL, "base-url", "", "Base URL prepended to relative package paths")
	pf.StringVar(&a.flags.Channel, "channel", "", "Release channel (default stable)")
	pf.StringVar(&a.flags.PlatformsFile, "platforms-file", "", "Starlark platform table replacing the built-in one")
	pf.StringVarP(&a.flags.Output, "output", "o", "", "Output format: text, json or yaml")
	pf.IntVar(&a.flags.Concurrency, "concurrency", 0, "Platforms processed at once by list (0 = unlimited)")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&a.flags.LogJSON, "log-json", false, "Log in JSON format")
	pf.StringVar(&a.flags.LogFile, "log-file", "", "Also write all log records to this file as JSON")

	cmd.AddCommand(newResolveCmd(a))
	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newVersionsCmd(a))
	cmd.AddCommand(newParseCmd(a))
	cmd.AddCommand(newCompareCmd(a))
	cmd.AddCommand(newPlatformsCmd(a))
	cmd.AddCommand(newVersionCmd(info))

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute(info BuildInfo) int {
	cmd := NewRootCmd(info)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func mergedOptions(cmd *cobra.Command, flags runtimeOptions) (runtimeOptions, error) {
	merged := runtimeOptions{
		ConfigPath:  flags.ConfigPath,
		ManifestDir: ".",
		Channel:     "stable",
		Output:      "text",
	}

	var (
		fileCfg config.FileConfig
		err     error
	)
	if flags.ConfigPath != "" {
		fileCfg, err = config.Load(flags.ConfigPath)
	} else {
		fileCfg, err = config.LoadDefault()
	}
	if err != nil {
		return runtimeOptions{}, err
	}

	if fileCfg.ManifestDir != "" {
		merged.ManifestDir = fileCfg.ManifestDir
	}
	if fileCfg.BaseURL != "" {
		merged.BaseURL = fileCfg.BaseURL
	}
	if fileCfg.Channel != "" {
		merged.Channel = fileCfg.Channel
	}
	if fileCfg.PlatformsFile != "" {
		merged.PlatformsFile = fileCfg.PlatformsFile
	}
	if fileCfg.Output != "" {
		merged.Output = fileCfg.Output
	}
	if fileCfg.Concurrency != nil {
		merged.Concurrency = *fileCfg.Concurrency
	}
	if fileCfg.Log.Verbose != nil {
		merged.Verbose = *fileCfg.Log.Verbose
	}
	if fileCfg.Log.JSON != nil {
		merged.LogJSON = *fileCfg.Log.JSON
	}
	if fileCfg.Log.File != "" {
		merged.LogFile = fileCfg.Log.File
	}

	if err := applyEnvOverrides(&merged); err != nil {
		return runtimeOptions{}, err
	}

	f := cmd.Flags()
	if f.Changed("manifest-dir") {
		merged.ManifestDir = flags.ManifestDir
	}
	if f.Changed("base-url") {
		merged.BaseURL = flags.BaseURL
	}
	if f.Changed("channel") {
		merged.Channel = flags.Channel
	}
	if f.Changed("platforms-file") {
		merged.PlatformsFile = flags.PlatformsFile
	}
	if f.Changed("output") {
		merged.Output = flags.Output
	}
	if f.Changed("concurrency") {
		merged.Concurrency = flags.Concurrency
	}
	if f.Changed("verbose") {
		merged.Verbose = flags.Verbose
	}
	if f.Changed("log-json") {
		merged.LogJSON = flags.LogJSON
	}
	if f.Changed("log-file") {
		merged.LogFile = flags.LogFile
	}

	merged.Output = strings.ToLower(strings.TrimSpace(merged.Output))
	merged.BaseURL = strings.TrimRight(strings.TrimSpace(merged.BaseURL), "/")

	switch merged.Output {
	case outputText, outputJSON, outputYAML:
	default:
		return runtimeOptions{}, fmt.Errorf("unknown output format %q (want text, json or yaml)", merged.Output)
	}
	if merged.Concurrency < 0 {
		return runtimeOptions{}, fmt.Errorf("concurrency must not be negative")
	}

	return merged, nil
}

func applyEnvOverrides(opts *runtimeOptions) error {
	if value, ok := getenvTrim("PKGRESOLVE_MANIFEST_DIR"); ok {
		opts.ManifestDir = value
	}
	if value, ok := getenvTrim("PKGRESOLVE_BASE_URL"); ok {
		opts.BaseURL = value
	}
	if value, ok := getenvTrim("PKGRESOLVE_CHANNEL"); ok {
		opts.Channel = value
	}
	if value, ok := getenvTrim("PKGRESOLVE_PLATFORMS_FILE"); ok {
		opts.PlatformsFile = value
	}
	if value, ok := getenvTrim("PKGRESOLVE_VERBOSE"); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("PKGRESOLVE_VERBOSE: %w", err)
		}
		opts.Verbose = b
	}
	return nil
}

func getenvTrim(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}

func (a *app) resolver() (*pkgresolve.Resolver, error) {
	opts := []pkgresolve.Option{
		pkgresolve.WithLogger(a.logger),
		pkgresolve.WithConcurrency(a.opts.Concurrency),
	}
	if a.opts.PlatformsFile != "" {
		opts = append(opts, pkgresolve.WithPlatformFile(a.opts.PlatformsFile))
	}
	return pkgresolve.NewResolver(opts...)
}

// loadManifest reads the manifest for project from file if given, else from
// the manifest directory.
func (a *app) loadManifest(project, file string) (manifest.Manifest, error) {
	if file != "" {
		a.logger.Debug("reading manifest", "path", file)
		return manifest.ReadFile(file)
	}
	dir := manifest.Dir{Root: a.opts.ManifestDir}
	a.logger.Debug("reading manifest", "path", dir.Path(project, a.opts.Channel))
	return dir.Load(project, a.opts.Channel)
}

// packageURL returns the absolute URL of an artifact. Relative paths are
// joined to the base URL with "+" escaped as %2B.
func (a *app) packageURL(art manifest.Artifact) string {
	if art.URL != "" {
		return art.URL
	}
	rel := strings.ReplaceAll(art.Relpath, "+", "%2B")
	if a.opts.BaseURL == "" {
		return rel
	}
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return a.opts.BaseURL + rel
}
