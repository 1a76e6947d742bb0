package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactome/doi-suggester/internal/ir"
)

const minimalScenario = `
name: minimal
description: "One leaf under one root"
current:
  people:
    - {id: 1, name: "Doe, J", project: OICR}
  edits:
    - {id: 901, name: "Doe, J, 2024-01-15", authors: [1]}
  entities:
    - {id: 1, name: Root, class: Pathway, children: [10]}
    - {id: 10, name: Leaf, class: ReactionlikeEvent, authored: [901]}
expect:
  - {ancestor: 1, entities: [10], edits: [901]}
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", scenario.Name)
	assert.Nil(t, scenario.Previous)
	require.Len(t, scenario.Current.Entities, 2)
	assert.Equal(t, []ir.ID{10}, scenario.Current.Entities[0].Children)
	assert.Equal(t, []ir.ID{901}, scenario.Current.Entities[1].Authored)
	assert.Equal(t, "OICR", scenario.Current.People[0].Project)
	require.Len(t, scenario.Expect, 1)
	assert.Equal(t, ir.ID(1), scenario.Expect[0].Ancestor)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Fixtures(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := LoadScenario(path)
			require.NoError(t, err)
		})
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			content: "name: x\ndescription: y\ncurrent:\n  entities: [{id: 1, class: Pathway}]\nexpectations: []\n",
			wantErr: "field expectations not found",
		},
		{
			name:    "missing name",
			content: "description: y\ncurrent:\n  entities: [{id: 1, class: Pathway}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: x\ncurrent:\n  entities: [{id: 1, class: Pathway}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no current entities",
			content: "name: x\ndescription: y\ncurrent:\n  entities: []\n",
			wantErr: "current.entities is required",
		},
		{
			name:    "bad class",
			content: "name: x\ndescription: y\ncurrent:\n  entities: [{id: 1, class: Complex}]\n",
			wantErr: `class must be Pathway or ReactionlikeEvent, got "Complex"`,
		},
		{
			name:    "duplicate entity",
			content: "name: x\ndescription: y\ncurrent:\n  entities: [{id: 1, class: Pathway}, {id: 1, class: Pathway}]\n",
			wantErr: "duplicate id 1",
		},
		{
			name:    "unknown child",
			content: "name: x\ndescription: y\ncurrent:\n  entities: [{id: 1, class: Pathway, children: [2]}]\n",
			wantErr: "unknown child 2",
		},
		{
			name:    "unknown edit",
			content: "name: x\ndescription: y\ncurrent:\n  entities: [{id: 1, class: ReactionlikeEvent, reviewed: [9]}]\n",
			wantErr: "current.entities[0].reviewed: unknown edit 9",
		},
		{
			name:    "unknown author",
			content: "name: x\ndescription: y\ncurrent:\n  edits: [{id: 9, authors: [4]}]\n  entities: [{id: 1, class: Pathway}]\n",
			wantErr: "unknown author 4",
		},
		{
			name:    "invalid previous",
			content: "name: x\ndescription: y\nprevious:\n  entities: [{id: 0, class: Pathway}]\ncurrent:\n  entities: [{id: 1, class: Pathway}]\n",
			wantErr: "previous.entities[0]: id must be positive",
		},
		{
			name:    "unknown fault kind",
			content: "name: x\ndescription: y\ncurrent:\n  entities: [{id: 1, class: Pathway}]\nexpect_faults: [BOOM]\n",
			wantErr: `unknown fault kind "BOOM"`,
		},
		{
			name:    "expect without entities",
			content: "name: x\ndescription: y\ncurrent:\n  entities: [{id: 1, class: Pathway}]\nexpect: [{ancestor: 1}]\n",
			wantErr: "expect[0]: entities is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
