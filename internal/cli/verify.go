package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reactome/doi-suggester/internal/engine"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Workers  int
	MaxDepth int
}

// VerifyRun is one of the two passes compared by verify.
type VerifyRun struct {
	RunID       string `json:"run_id"`
	Fingerprint string `json:"fingerprint"`
	Ancestors   int    `json:"ancestors"`
	Faults      int    `json:"faults"`
}

// VerifyResult holds the outcome of verify.
type VerifyResult struct {
	Runs       []VerifyRun `json:"runs"`
	Idempotent bool        `json:"idempotent"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run the pass twice and check the reports are identical",
		Long: `Run two suggestion passes over the same releases and compare their
report fingerprints. The second pass uses a different worker count, so
scheduling differences would show up as a mismatch.

Exit codes:
  0 - Reports are identical
  1 - Reports differ
  2 - Command error (configuration, release unavailable, etc.)

Examples:
  doi-suggester verify --config config.properties
  doi-suggester verify --workers 16 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent entity evaluations of the first pass")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "ancestor walk bound (overrides configuration)")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(opts.RootOptions, opts.Workers, opts.MaxDepth)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	rel, err := openReleases(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open releases", err)
	}
	defer rel.Close()

	result := VerifyResult{}
	for _, workers := range []int{cfg.Workers, 1} {
		current, previous := rel.cached()
		rep, err := engine.RunSuggestionPass(ctx, current, previous, engine.Options{
			Workers:  workers,
			MaxDepth: cfg.MaxDepth,
			Logger:   logger,
		})
		if err != nil {
			if engine.IsFatal(err) {
				return WrapExitError(ExitCommandError, "suggestion pass failed", err)
			}
			return WrapExitError(ExitFailure, "suggestion pass interrupted", err)
		}
		fp, err := rep.Fingerprint()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to fingerprint report", err)
		}
		result.Runs = append(result.Runs, VerifyRun{
			RunID:       rep.RunID,
			Fingerprint: fp,
			Ancestors:   len(rep.Entries),
			Faults:      len(rep.Faults),
		})
	}
	result.Idempotent = result.Runs[0].Fingerprint == result.Runs[1].Fingerprint

	return outputVerify(opts, cmd, result)
}

func outputVerify(opts *VerifyOptions, cmd *cobra.Command, result VerifyResult) error {
	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Idempotent {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_VERIFY", Message: "reports differ between passes"}
		}
		if err := writeJSON(w, resp); err != nil {
			return err
		}
	} else {
		for i, run := range result.Runs {
			fmt.Fprintf(w, "Pass %d: %s (%d ancestors, %d faults)\n", i+1, run.Fingerprint, run.Ancestors, run.Faults)
		}
		if result.Idempotent {
			fmt.Fprintln(w, "✓ Reports are identical")
		}
	}

	if !result.Idempotent {
		return NewExitError(ExitFailure, "reports differ between passes")
	}
	return nil
}
