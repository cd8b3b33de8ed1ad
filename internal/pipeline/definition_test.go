package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDefinition = `
name: churn-build
kind: build
steps:
  - name: preprocess
    type: processing
    image: preprocess:latest
    parameters:
      input: s3://raw
  - name: train
    type: training
    depends_on: [preprocess]
  - name: evaluate
    type: evaluation
    depends_on: [train]
`

func TestLoadDefinition(t *testing.T) {
	def, err := LoadDefinition(strings.NewReader(validDefinition))

	require.NoError(t, err)
	assert.Equal(t, "churn-build", def.Name)
	assert.Equal(t, "build", def.Kind)
	require.Len(t, def.Steps, 3)
	assert.Equal(t, []string{"preprocess"}, def.Steps[1].DependsOn)
	assert.Equal(t, "s3://raw", def.Steps[0].Parameters["input"])
}

func TestLoadDefinition_InvalidYAML(t *testing.T) {
	_, err := LoadDefinition(strings.NewReader("steps: [unclosed"))
	assert.Error(t, err)
}

func TestDefinitionValidate(t *testing.T) {
	step := func(name string, deps ...string) Step {
		return Step{Name: name, Type: "processing", DependsOn: deps}
	}

	tests := []struct {
		name   string
		def    Definition
		errMsg string
	}{
		{
			name:   "missing name",
			def:    Definition{Kind: "build", Steps: []Step{step("a")}},
			errMsg: "pipeline name is required",
		},
		{
			name:   "unknown kind",
			def:    Definition{Name: "p", Kind: "bogus", Steps: []Step{step("a")}},
			errMsg: `unknown pipeline kind "bogus"`,
		},
		{
			name:   "no steps",
			def:    Definition{Name: "p", Kind: "build"},
			errMsg: "no steps",
		},
		{
			name:   "unnamed step",
			def:    Definition{Name: "p", Kind: "build", Steps: []Step{{Type: "processing"}}},
			errMsg: "step 0 has no name",
		},
		{
			name:   "duplicate step",
			def:    Definition{Name: "p", Kind: "build", Steps: []Step{step("a"), step("a")}},
			errMsg: `duplicate step "a"`,
		},
		{
			name:   "dangling dependency",
			def:    Definition{Name: "p", Kind: "build", Steps: []Step{step("a", "missing")}},
			errMsg: `depends on unknown step "missing"`,
		},
		{
			name: "cycle",
			def: Definition{Name: "p", Kind: "build", Steps: []Step{
				step("a", "b"), step("b", "c"), step("c", "a"),
			}},
			errMsg: "dependency cycle",
		},
		{
			name: "self cycle",
			def:    Definition{Name: "p", Kind: "build", Steps: []Step{step("a", "a")}},
			errMsg: "dependency cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("diamond dependencies are not a cycle", func(t *testing.T) {
		def := Definition{Name: "p", Kind: "build", Steps: []Step{
			step("a"), step("b", "a"), step("c", "a"), step("d", "b", "c"),
		}}
		assert.NoError(t, def.Validate())
	})
}
