package harness

import "github.com/reactome/doi-suggester/internal/engine"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates every expectation matched.
	Pass bool `json:"pass"`

	// Report is the pass output the expectations were checked against.
	Report *engine.Report `json:"-"`

	// Errors contains one message per mismatch. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(report *engine.Report) *Result {
	return &Result{
		Pass:   true,
		Report: report,
		Errors: []string{},
	}
}

// AddError adds a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
