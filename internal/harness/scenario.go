package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reactome/doi-suggester/internal/engine"
	"github.com/reactome/doi-suggester/internal/ir"
)

// Scenario defines a fixture: two release snapshots and the suggestions a
// pass over them must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description"`

	// Previous is the earlier release. Omit it to treat every leaf as new.
	Previous *SnapshotSpec `yaml:"previous,omitempty"`

	// Current is the release under evaluation.
	Current SnapshotSpec `yaml:"current"`

	// Expect lists every ancestor the report must contain. Ancestors not
	// listed here must not appear.
	Expect []ExpectEntry `yaml:"expect"`

	// ExpectFaults lists the fault kinds the pass must record, one per
	// fault, in any order.
	ExpectFaults []string `yaml:"expect_faults,omitempty"`

	// MaxDepth overrides the resolver depth bound.
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// SnapshotSpec describes one release.
type SnapshotSpec struct {
	People   []PersonSpec `yaml:"people,omitempty"`
	Edits    []EditSpec   `yaml:"edits,omitempty"`
	Entities []EntitySpec `yaml:"entities"`
}

// PersonSpec is a Person row. Project is the affiliation tag.
type PersonSpec struct {
	ID      ir.ID  `yaml:"id"`
	Name    string `yaml:"name,omitempty"`
	Project string `yaml:"project,omitempty"`
}

// EditSpec is an InstanceEdit. Authors are person ids.
type EditSpec struct {
	ID      ir.ID   `yaml:"id"`
	Name    string  `yaml:"name,omitempty"`
	Date    string  `yaml:"date,omitempty"`
	Authors []ir.ID `yaml:"authors,omitempty"`
}

// EntitySpec is an event with its containment, edit sequences and markers.
type EntitySpec struct {
	ID    ir.ID  `yaml:"id"`
	Name  string `yaml:"name,omitempty"`
	Class string `yaml:"class"`

	// Children are contained events, in rank order.
	Children []ir.ID `yaml:"children,omitempty"`

	Authored []ir.ID `yaml:"authored,omitempty"`
	Reviewed []ir.ID `yaml:"reviewed,omitempty"`
	Revised  []ir.ID `yaml:"revised,omitempty"`

	// Modified are modification edits, oldest first.
	Modified []ir.ID `yaml:"modified,omitempty"`

	// InferredBy is an event recorded as inferred from this one. Entities
	// with such a referer are skipped by the pass.
	InferredBy ir.ID `yaml:"inferred_by,omitempty"`
}

// ExpectEntry is one expected ancestor with its contributing leaves and the
// union of their edits.
type ExpectEntry struct {
	Ancestor ir.ID   `yaml:"ancestor"`
	Entities []ir.ID `yaml:"entities"`
	Edits    []ir.ID `yaml:"edits"`
}

// sequence returns the edit ids of kind k.
func (e EntitySpec) sequence(k ir.EditKind) []ir.ID {
	switch k {
	case ir.Authored:
		return e.Authored
	case ir.Reviewed:
		return e.Reviewed
	case ir.Revised:
		return e.Revised
	}
	return nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is inconsistent.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and that every
// reference resolves within its snapshot.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Current.Entities) == 0 {
		return fmt.Errorf("current.entities is required and must be non-empty")
	}
	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative")
	}

	if err := validateSnapshot("current", &s.Current); err != nil {
		return err
	}
	if s.Previous != nil {
		if err := validateSnapshot("previous", s.Previous); err != nil {
			return err
		}
	}

	for i, e := range s.Expect {
		if e.Ancestor <= 0 {
			return fmt.Errorf("expect[%d]: ancestor is required", i)
		}
		if len(e.Entities) == 0 {
			return fmt.Errorf("expect[%d]: entities is required", i)
		}
	}

	for i, kind := range s.ExpectFaults {
		if !validFaultKind(kind) {
			return fmt.Errorf("expect_faults[%d]: unknown fault kind %q", i, kind)
		}
	}
	return nil
}

func validateSnapshot(name string, spec *SnapshotSpec) error {
	people := make(ir.IDSet)
	for i, p := range spec.People {
		if p.ID <= 0 {
			return fmt.Errorf("%s.people[%d]: id must be positive", name, i)
		}
		if !people.Add(p.ID) {
			return fmt.Errorf("%s.people[%d]: duplicate id %d", name, i, p.ID)
		}
	}

	edits := make(ir.IDSet)
	for i, e := range spec.Edits {
		if e.ID <= 0 {
			return fmt.Errorf("%s.edits[%d]: id must be positive", name, i)
		}
		if !edits.Add(e.ID) {
			return fmt.Errorf("%s.edits[%d]: duplicate id %d", name, i, e.ID)
		}
		for _, a := range e.Authors {
			if !people.Has(a) {
				return fmt.Errorf("%s.edits[%d]: unknown author %d", name, i, a)
			}
		}
	}

	entities := make(ir.IDSet)
	for i, e := range spec.Entities {
		if e.ID <= 0 {
			return fmt.Errorf("%s.entities[%d]: id must be positive", name, i)
		}
		if !entities.Add(e.ID) {
			return fmt.Errorf("%s.entities[%d]: duplicate id %d", name, i, e.ID)
		}
		if e.Class != ir.ClassPathway && e.Class != ir.ClassReactionlikeEvent {
			return fmt.Errorf("%s.entities[%d]: class must be %s or %s, got %q",
				name, i, ir.ClassPathway, ir.ClassReactionlikeEvent, e.Class)
		}
	}

	for i, e := range spec.Entities {
		for _, c := range e.Children {
			if !entities.Has(c) {
				return fmt.Errorf("%s.entities[%d]: unknown child %d", name, i, c)
			}
		}
		for _, k := range ir.AllEditKinds {
			for _, id := range e.sequence(k) {
				if !edits.Has(id) {
					return fmt.Errorf("%s.entities[%d].%s: unknown edit %d", name, i, k, id)
				}
			}
		}
		for _, id := range e.Modified {
			if !edits.Has(id) {
				return fmt.Errorf("%s.entities[%d].modified: unknown edit %d", name, i, id)
			}
		}
	}
	return nil
}

func validFaultKind(kind string) bool {
	switch engine.FaultKind(kind) {
	case engine.FaultFetchFailed, engine.FaultDataQuality,
		engine.FaultCycleDetected, engine.FaultDepthExceeded:
		return true
	}
	return false
}
