// Package pipeline loads and validates declarative pipeline definitions.
// A definition names the processing/training/evaluation steps of a pipeline
// and their dependencies; the declared DAG must be acyclic.
package pipeline

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"driftwatch/internal/model"
)

var (
	ErrNameRequired = errors.New("pipeline name is required")
	ErrNoSteps      = errors.New("pipeline defines no steps")
)

// Step is one node of a pipeline definition.
type Step struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Image      string            `yaml:"image,omitempty"`
	DependsOn  []string          `yaml:"depends_on,omitempty"`
	Parameters map[string]string `yaml:"parameters,omitempty"`
}

// Definition is a declarative pipeline document.
type Definition struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Steps []Step `yaml:"steps"`
}

// LoadDefinition decodes and validates a YAML pipeline definition.
func LoadDefinition(r io.Reader) (*Definition, error) {
	var def Definition
	if err := yaml.NewDecoder(r).Decode(&def); err != nil {
		return nil, fmt.Errorf("decode pipeline definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition for structural errors: missing fields,
// duplicate or dangling step references, and dependency cycles.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return ErrNameRequired
	}
	if !model.PipelineKind(d.Kind).Valid() {
		return fmt.Errorf("unknown pipeline kind %q", d.Kind)
	}
	if len(d.Steps) == 0 {
		return ErrNoSteps
	}

	byName := make(map[string]*Step, len(d.Steps))
	for i := range d.Steps {
		s := &d.Steps[i]
		if s.Name == "" {
			return fmt.Errorf("step %d has no name", i)
		}
		if _, dup := byName[s.Name]; dup {
			return fmt.Errorf("duplicate step %q", s.Name)
		}
		byName[s.Name] = s
	}
	for _, s := range d.Steps {
		for _, dep := range s.DependsOn {
			if _, ok := byName[dep]; !ok {
				return fmt.Errorf("step %q depends on unknown step %q", s.Name, dep)
			}
		}
	}
	return d.checkAcyclic(byName)
}

// checkAcyclic walks the dependency graph depth-first, tracking the active
// path to detect cycles.
func (d *Definition) checkAcyclic(byName map[string]*Step) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(byName))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("dependency cycle through step %q", name)
		case done:
			return nil
		}
		state[name] = visiting
		for _, dep := range byName[name].DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, s := range d.Steps {
		if err := visit(s.Name); err != nil {
			return err
		}
	}
	return nil
}
