// Package harness runs fixture scenarios through a suggestion pass.
//
// # Scenario Format
//
// Scenarios are YAML files describing two release snapshots and the report
// a pass over them must produce:
//
//	name: scenario_name
//	description: "What this scenario covers"
//	previous:            # optional; omitted means every leaf is new
//	  people:   [{id: 1, name: "Doe, J", project: OICR}]
//	  edits:    [{id: 900, name: "Doe, J, 2024-01-01", authors: [1]}]
//	  entities:
//	    - {id: 10, name: Leaf, class: ReactionlikeEvent}
//	current:
//	  people:   [...]
//	  edits:    [...]
//	  entities:
//	    - {id: 1, name: Root, class: Pathway, children: [10], modified: [950]}
//	    - {id: 10, name: Leaf, class: ReactionlikeEvent, authored: [900, 901]}
//	expect:
//	  - {ancestor: 1, entities: [10], edits: [901]}
//	expect_faults: [DATA_QUALITY]
//
// Unknown fields are rejected so that typos fail loudly. Every reference
// (children, sequence entries, authors) must resolve within its snapshot.
//
// # Execution
//
// Run builds in-memory snapshots. RunStore seeds SQLite files first and runs
// the pass over the relational store, so the same scenario covers both
// readers. Both use a fixed run id, so report fingerprints and golden files
// are stable.
//
// # Golden Files
//
// RunWithGolden compares the report's canonical JSON against
// testdata/golden/{name}.golden using goldie.
package harness
