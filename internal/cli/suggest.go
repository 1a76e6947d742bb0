package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/report"
)

// SuggestOptions holds flags for the suggest command.
type SuggestOptions struct {
	*RootOptions
	Output      string
	Summary     string
	MetricsFile string
	Table       bool
	Workers     int
	MaxDepth    int
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SuggestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Run a suggestion pass over two releases",
		Long: `Compare the current release against the previous one and write the
pathways that need a DOI update to a CSV file.

Every reaction-like event of the current release is checked. Edits made
since the previous release (or all edits, for new events) by at least one
author outside Reactome are traced upward to the highest pathways that do
not carry them yet.

Exit codes:
  0 - Pass completed (entity faults are reported, not fatal)
  1 - Pass interrupted
  2 - Command error (configuration, release unavailable, output not writable)

Examples:
  doi-suggester suggest --config config.properties
  doi-suggester suggest --output out.csv --summary summary.tsv --table
  doi-suggester suggest --metrics-file doi.prom --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "CSV output path (default from configuration)")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "also write a tab-separated per-pathway summary")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write pass metrics in Prometheus text format")
	cmd.Flags().BoolVar(&opts.Table, "table", false, "print the per-pathway summary as a table")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent entity evaluations (overrides configuration)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "ancestor walk bound (overrides configuration)")

	return cmd
}

func runSuggest(opts *SuggestOptions, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(opts.RootOptions, opts.Workers, opts.MaxDepth)
	if err != nil {
		return err
	}
	output := cfg.OutputFile
	if opts.Output != "" {
		output = opts.Output
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	rel, err := openReleases(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open releases", err)
	}
	defer rel.Close()

	reg := prometheus.NewRegistry()
	metrics, err := engine.NewMetrics(reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to register metrics", err)
	}

	current, previous := rel.cached()
	rep, err := engine.RunSuggestionPass(ctx, current, previous, engine.Options{
		Workers:  cfg.Workers,
		MaxDepth: cfg.MaxDepth,
		Logger:   logger,
		Metrics:  metrics,
	})
	if err != nil {
		if engine.IsFatal(err) {
			return WrapExitError(ExitCommandError, "suggestion pass failed", err)
		}
		return WrapExitError(ExitFailure, "suggestion pass interrupted", err)
	}
	hits, misses := current.Stats()
	logger.Debug("current release cache", "hits", hits, "misses", misses)

	if err := writeFile(output, func(f *os.File) error { return report.WriteCSV(f, rep) }); err != nil {
		return WrapExitError(ExitCommandError, "failed to write CSV", err)
	}
	logger.Info("suggestions written", "path", output, "ancestors", len(rep.Entries))

	if opts.Summary != "" {
		if err := writeFile(opts.Summary, func(f *os.File) error { return report.WriteSummary(f, rep) }); err != nil {
			return WrapExitError(ExitCommandError, "failed to write summary", err)
		}
	}
	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, reg); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
	}

	return outputSuggest(opts, cmd, rep)
}

func outputSuggest(opts *SuggestOptions, cmd *cobra.Command, rep *engine.Report) error {
	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		view, err := report.ToView(rep)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to build report", err)
		}
		return writeJSON(w, CLIResponse{Status: "ok", Data: view, RunID: rep.RunID})
	}

	if err := report.WriteCounts(w, rep); err != nil {
		return err
	}
	if opts.Table {
		if err := report.WriteTable(w, rep); err != nil {
			return err
		}
	}
	if n := len(rep.Faults); n > 0 {
		fmt.Fprintf(w, "%d entity fault(s) recorded; see log for details.\n", n)
	}
	return nil
}

// signalContext returns the command context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// writeFile creates path and hands it to write.
func writeFile(path string, write func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
