// Package assembly plans Golden Gate and Loop DNA assembly reactions:
// expanding roles into part combinations, placing reagents and reactions
// into wells and building the pipetting protocol
package assembly

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReceiverRole is the role of the backbone an assembly's parts go into
const ReceiverRole = "receiver"

// Role is a position in an assembly filled by one of its candidate parts
type Role struct {
	Name  string
	Parts []string
}

// Assembly is an ordered list of roles, ex: promoter, rbs, cds, terminator
// and receiver. Every combination of one part per role is assembled
type Assembly struct {
	Roles []Role
}

// Receiver returns the first part of the receiver role, or "" without one
func (a Assembly) Receiver() string {
	for _, r := range a.Roles {
		if r.Name == ReceiverRole && len(r.Parts) > 0 {
			return r.Parts[0]
		}
	}
	return ""
}

// Parts returns every part of the assembly in first-seen order
func (a Assembly) Parts() []string {
	seen := make(map[string]bool)
	var parts []string
	for _, r := range a.Roles {
		for _, p := range r.Parts {
			if !seen[p] {
				seen[p] = true
				parts = append(parts, p)
			}
		}
	}
	return parts
}

// UnmarshalYAML reads a mapping of role to part(s) keeping the order of
// the roles. A role's value is a single part or a list of parts
func (a *Assembly) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: an assembly is a mapping of role to parts", node.Line)
	}

	var roles []Role
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		var parts []string
		switch val.Kind {
		case yaml.ScalarNode:
			parts = []string{val.Value}
		case yaml.SequenceNode:
			if err := val.Decode(&parts); err != nil {
				return fmt.Errorf("line %d: role %s: %w", val.Line, key.Value, err)
			}
		default:
			return fmt.Errorf("line %d: role %s must be a part or a list of parts", val.Line, key.Value)
		}

		for j, p := range parts {
			parts[j] = strings.TrimSpace(p)
			if parts[j] == "" {
				return fmt.Errorf("line %d: role %s has an empty part name", val.Line, key.Value)
			}
		}
		if len(parts) == 0 {
			return fmt.Errorf("line %d: role %s has no parts", val.Line, key.Value)
		}

		roles = append(roles, Role{Name: key.Value, Parts: parts})
	}

	a.Roles = roles
	return nil
}

// Combinations returns the cartesian product of the parts of every role,
// in role order. The last role changes fastest
func Combinations(a Assembly) [][]string {
	if len(a.Roles) == 0 {
		return nil
	}

	combos := [][]string{{}}
	for _, role := range a.Roles {
		next := make([][]string, 0, len(combos)*len(role.Parts))
		for _, prefix := range combos {
			for _, part := range role.Parts {
				combo := make([]string, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, part))
			}
		}
		combos = next
	}
	return combos
}

// ReadAssemblies parses a YAML file with a list of assemblies
func ReadAssemblies(path string) ([]Assembly, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assemblies: %w", err)
	}

	var assemblies []Assembly
	if err := yaml.Unmarshal(data, &assemblies); err != nil {
		return nil, fmt.Errorf("failed to parse assemblies in %s: %w", path, err)
	}
	if len(assemblies) == 0 {
		return nil, fmt.Errorf("no assemblies in %s", path)
	}
	return assemblies, nil
}

// ReadComposites parses a YAML file with a list of composites, each an
// ordered list of parts
func ReadComposites(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read composites: %w", err)
	}

	var composites [][]string
	if err := yaml.Unmarshal(data, &composites); err != nil {
		return nil, fmt.Errorf("failed to parse composites in %s: %w", path, err)
	}
	if len(composites) == 0 {
		return nil, fmt.Errorf("no composites in %s", path)
	}
	return composites, nil
}
