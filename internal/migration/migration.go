// Package migration loads migration files: YAML sequences of declarative
// invocations such as
//
//	- create_view: {name: "public.active_users", version: 1}
//	- rename_view: {name: "public.active_users", to: "public.users_active"}
//
// The snippet of every operation is exactly one such item.
package migration

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pgtrunk/pgtrunk/internal/operation"
	"github.com/pgtrunk/pgtrunk/internal/registry"
)

// ErrInvalid is matched by *ValidationError.
var ErrInvalid = errors.New("invalid migration")

// StepProblems lists the validation messages of one step.
type StepProblems struct {
	Step     int
	Verb     string
	Problems []string
}

// ValidationError collects the validation messages of every invalid step.
type ValidationError struct {
	Steps []StepProblems
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInvalid.Error())
	for _, step := range e.Steps {
		fmt.Fprintf(&b, "\nstep %d (%s):", step.Step, step.Verb)
		for _, problem := range step.Problems {
			b.WriteString("\n  - " + problem)
		}
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Loader turns migration files into operations.
type Loader struct {
	Registry *registry.Registry
	// DefinitionsDir holds versioned definitions named <name>_v<NN>.sql, read
	// when a step gives a version but no sql_definition.
	DefinitionsDir string
}

// Load reads and parses the migration file at path.
func (l *Loader) Load(path string) ([]operation.Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration file: %w", err)
	}
	return l.Parse(data)
}

// Parse builds one operation per step and validates them all. Steps are
// numbered from 1.
func (l *Loader) Parse(data []byte) ([]operation.Operation, error) {
	var steps []map[string]map[string]any
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("failed to parse migration: %w", err)
	}

	ops := make([]operation.Operation, 0, len(steps))
	invalid := &ValidationError{}
	for i, step := range steps {
		number := i + 1
		if len(step) != 1 {
			return nil, fmt.Errorf("step %d: expected exactly one verb, got %d", number, len(step))
		}
		for verb, values := range step {
			if err := l.resolveDefinition(verb, values); err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", number, verb, err)
			}
			op, err := l.Registry.Build(verb, values)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", number, verb, err)
			}
			if problems := op.Validate(); len(problems) > 0 {
				invalid.Steps = append(invalid.Steps, StepProblems{Step: number, Verb: verb, Problems: problems})
			}
			ops = append(ops, op)
		}
	}

	if len(invalid.Steps) > 0 {
		return nil, invalid
	}
	return ops, nil
}

// resolveDefinition fills sql_definition from the definitions directory.
func (l *Loader) resolveDefinition(verb string, values map[string]any) error {
	if !takesDefinition(verb) || values == nil {
		return nil
	}
	version := values["version"]
	if version == nil {
		version = values["revert_to_version"]
	}
	if version == nil {
		return nil
	}
	if definition, ok := values["sql_definition"].(string); ok && strings.TrimSpace(definition) != "" {
		return nil
	}

	name, ok := values["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil
	}
	path, err := DefinitionPath(l.DefinitionsDir, name, version)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definition: %w", err)
	}
	values["sql_definition"] = string(data)
	return nil
}

func takesDefinition(verb string) bool {
	return strings.HasPrefix(verb, "create_") || strings.HasPrefix(verb, "drop_") || verb == operation.VerbChangeView
}
