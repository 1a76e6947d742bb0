package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	MaxDepth int
}

// ExplainEdit is one external edit and the ancestors it resolved to.
type ExplainEdit struct {
	Edit      ir.EditRecord `json:"edit"`
	Ancestors []ir.Entity   `json:"ancestors"`
}

// ExplainResult is the evaluation of one entity.
type ExplainResult struct {
	Entity       ir.Entity       `json:"entity"`
	Branch       string          `json:"branch"`
	Candidates   []ir.EditRecord `json:"candidates"`
	External     []ExplainEdit   `json:"external"`
	Unattributed []ir.EditRecord `json:"unattributed"`
	Faults       []string        `json:"faults"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <db-id>",
		Short: "Show how one reaction is evaluated",
		Long: `Evaluate a single reaction-like event and show every step: which edits
are new since the previous release, which have an external author, and the
ancestors each external edit resolved to.

Examples:
  doi-suggester explain 68875
  doi-suggester explain 68875 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "ancestor walk bound (overrides configuration)")

	return cmd
}

func runExplain(opts *ExplainOptions, arg string, cmd *cobra.Command) error {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid DB_ID %q", arg))
	}
	id := ir.ID(n)

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	cfg, err := loadConfig(opts.RootOptions, 0, opts.MaxDepth)
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

	current, previous := rel.cached()
	entity, err := current.Entity(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read entity", err)
	}
	if entity == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("entity %d not found in current release", id))
	}

	result := ExplainResult{
		Entity:       *entity,
		Candidates:   []ir.EditRecord{},
		External:     []ExplainEdit{},
		Unattributed: []ir.EditRecord{},
		Faults:       []string{},
	}

	inferred, err := current.IsInferred(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read inferred flag", err)
	}
	if inferred {
		result.Branch = string(engine.BranchInferred)
		return outputExplain(opts, cmd, result)
	}

	resolver := engine.NewResolver(current, cfg.MaxDepth, nil)
	res := engine.NewSuggester(current, previous, resolver, logger).Suggest(ctx, *entity)

	result.Branch = string(res.Branch)
	result.Candidates = append(result.Candidates, res.Candidates...)
	result.Unattributed = append(result.Unattributed, res.Unattributed...)
	for _, edit := range res.External {
		ancestors := res.Ancestors[edit.ID]
		if ancestors == nil {
			ancestors = []ir.Entity{}
		}
		result.External = append(result.External, ExplainEdit{Edit: edit, Ancestors: ancestors})
	}
	for _, f := range res.Faults {
		result.Faults = append(result.Faults, f.Error())
	}

	return outputExplain(opts, cmd, result)
}

func outputExplain(opts *ExplainOptions, cmd *cobra.Command, result ExplainResult) error {
	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, CLIResponse{Status: "ok", Data: result})
	}

	fmt.Fprintf(w, "Entity: %s\n", result.Entity.Ref())
	fmt.Fprintf(w, "Branch: %s\n", result.Branch)
	if result.Branch == string(engine.BranchInferred) {
		fmt.Fprintln(w, "Inferred events are skipped.")
		return nil
	}

	writeEditList(w, "Candidate edits", result.Candidates)
	writeEditList(w, "Unattributed edits", result.Unattributed)

	fmt.Fprintf(w, "External edits (%d):\n", len(result.External))
	for _, e := range result.External {
		refs := make([]string, len(e.Ancestors))
		for i, a := range e.Ancestors {
			refs[i] = a.Ref()
		}
		target := "no ancestor lacks this edit"
		if len(refs) > 0 {
			target = strings.Join(refs, ", ")
		}
		fmt.Fprintf(w, "  %s -> %s\n", e.Edit.Ref(), target)
	}

	if len(result.Faults) > 0 {
		fmt.Fprintf(w, "Faults (%d):\n", len(result.Faults))
		for _, f := range result.Faults {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	return nil
}

func writeEditList(w io.Writer, title string, edits []ir.EditRecord) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(edits))
	for _, e := range edits {
		fmt.Fprintf(w, "  %s\n", e.Ref())
	}
}
