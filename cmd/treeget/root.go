package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/treeget/treeget/pkg/config"
	"github.com/treeget/treeget/pkg/download"
	"github.com/treeget/treeget/pkg/githuburl"
	"github.com/treeget/treeget/pkg/remote"
	_ "github.com/treeget/treeget/pkg/remote/github" // registers listing strategies
	"github.com/treeget/treeget/pkg/status"
	"github.com/treeget/treeget/pkg/walker"
)

var (
	// Flags
	output        string
	ignoreSubdirs bool
	fullPath      bool
	via           string
	exclude       []string
	concurrency   int
	timeout       time.Duration
	configFile    string
	noProgress    bool
	debug         bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treeget <github-directory-url>",
		Short: "download a subdirectory from a github repo",
		Long: `treeget fetches one directory of a public GitHub repository, given its
tree URL, and materializes it as a local file tree. Subdirectories are
included recursively unless suppressed; symlinks are always skipped.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgHiRed).Sprint("Error:"), err)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory, created if absent (default: basename of the url path)")
	cmd.Flags().BoolVarP(&ignoreSubdirs, "ignore-subdirs", "i", false, "do not download subdirectories")
	cmd.Flags().BoolVarP(&fullPath, "full-path", "p", false, "write paths relative to the repo root rather than the given url")
	cmd.Flags().StringVar(&via, "via", "html", "listing strategy: html (scrape the tree page) or api (contents API)")
	cmd.Flags().StringArrayVarP(&exclude, "exclude", "x", nil, "glob patterns of repo paths to skip (repeatable)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "parallel file downloads; 1 keeps strict depth-first order")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request HTTP timeout")
	cmd.Flags().StringVarP(&configFile, "config", "c", config.DefaultPath, "defaults file path")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, rawURL string) error {
	logLevel := zerolog.InfoLevel
	if debug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logLevel).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	applyConfig(cmd, cfg)

	loc, err := githuburl.Parse(rawURL)
	if err != nil {
		// parse errors surface before any network or filesystem I/O
		return err
	}

	outputRoot := output
	if outputRoot == "" {
		outputRoot, err = loc.Basename()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return errors.Errorf("creating output directory %s: %w", outputRoot, err)
	}

	policy := githuburl.RequestRelative
	if fullPath {
		policy = githuburl.RootRelative
	}

	client := &http.Client{Timeout: timeout}
	lister, err := remote.New(via, client)
	if err != nil {
		return err
	}

	reporter := status.NewConsole(os.Stdout, !noProgress)
	fetcher := download.New(client, reporter)

	logger.Debug().
		Stringer("dir", loc).
		Str("output", outputRoot).
		Stringer("policy", policy).
		Str("via", via).
		Msg("starting traversal")

	res, walkErr := walker.New(lister, fetcher, reporter).Walk(ctx, loc, walker.Options{
		OutputRoot:    outputRoot,
		IgnoreSubdirs: ignoreSubdirs,
		Policy:        policy,
		Exclude:       exclude,
		Concurrency:   concurrency,
	})
	reporter.Finish()

	for _, f := range res.Failures {
		logger.Error().Str("path", f.RemotePath).Err(f.Err).Msg("not materialized")
	}
	if walkErr != nil {
		return errors.Errorf("traversal interrupted after %d files: %w", res.FilesWritten, walkErr)
	}

	fmt.Printf("%d files written to %s\n", res.FilesWritten, outputRoot)
	if n := len(res.Failures); n > 0 {
		return errors.Errorf("%d paths failed, %d files written", n, res.FilesWritten)
	}
	return nil
}

// applyConfig fills in flag values from the defaults file. Flags changed on
// the command line keep their explicit values.
func applyConfig(cmd *cobra.Command, cfg *config.File) {
	flags := cmd.Flags()
	if !flags.Changed("output") && cfg.Output != "" {
		output = cfg.Output
	}
	if !flags.Changed("ignore-subdirs") && cfg.IgnoreSubdirs {
		ignoreSubdirs = true
	}
	if !flags.Changed("full-path") && cfg.FullPath {
		fullPath = true
	}
	if !flags.Changed("via") && cfg.Via != "" {
		via = cfg.Via
	}
	if !flags.Changed("exclude") && len(cfg.Exclude) > 0 {
		exclude = cfg.Exclude
	}
	if !flags.Changed("concurrency") && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
}
