package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
)

// Snapshot returns the canonical JSON bytes compared against golden files:
// the scenario name and the report's canonical form. The run id is excluded.
func Snapshot(scenario *Scenario, report *engine.Report) ([]byte, error) {
	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenario.Name,
		"report":        report.Canonical(),
	})
}

// RunWithGolden executes a scenario and compares the report against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the report doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, Options{})
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result.Report)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
