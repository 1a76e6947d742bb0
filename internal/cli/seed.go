package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reactome/doi-suggester/internal/harness"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Current  string
	Previous string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <scenario.yaml>",
		Short: "Write a fixture scenario into SQLite release files",
		Long: `Materialise the releases of a fixture scenario as SQLite databases in the
Reactome relational layout. Point automatedDOIs.driver=sqlite3 and the
dbName/prevDbName properties at the files to run the other commands on them.

Seeding is idempotent: writing the same scenario twice changes nothing.

Examples:
  doi-suggester seed scenarios/diamond.yaml --current cur.db --previous prev.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Current, "current", "", "SQLite path of the current release (required)")
	cmd.Flags().StringVar(&opts.Previous, "previous", "", "SQLite path of the previous release")
	_ = cmd.MarkFlagRequired("current")

	return cmd
}

func runSeed(opts *SeedOptions, scenarioFile string, cmd *cobra.Command) error {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	if scenario.Previous != nil && opts.Previous == "" {
		return NewExitError(ExitCommandError, "scenario has a previous release: --previous is required")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	if err := harness.SeedFiles(ctx, scenario, opts.Current, opts.Previous); err != nil {
		return WrapExitError(ExitCommandError, "failed to seed releases", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		data := map[string]string{"scenario": scenario.Name, "current": opts.Current}
		if scenario.Previous != nil {
			data["previous"] = opts.Previous
		}
		return writeJSON(w, CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintf(w, "Seeded %s: current=%s", scenario.Name, opts.Current)
	if scenario.Previous != nil {
		fmt.Fprintf(w, " previous=%s", opts.Previous)
	}
	fmt.Fprintln(w)
	return nil
}
