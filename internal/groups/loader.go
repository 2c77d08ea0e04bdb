package groups

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and validates a YAML group file.
func LoadFile(path string) (*GroupFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading group file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates YAML group data.
func LoadBytes(data []byte) (*GroupFile, error) {
	var gf GroupFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parsing group YAML: %w", err)
	}
	if err := Validate(&gf); err != nil {
		return nil, err
	}
	return &gf, nil
}

// Validate checks a group table. A zero version is treated as version 1 so
// tables embedded in a node config can omit it.
func Validate(gf *GroupFile) error {
	if gf.Version == 0 {
		gf.Version = 1
	}
	if gf.Version != 1 {
		return fmt.Errorf("unsupported group file version: %d (expected 1)", gf.Version)
	}

	seen := make(map[string]bool, len(gf.Groups))
	for i, g := range gf.Groups {
		if g.Name == "" {
			return fmt.Errorf("group %d: name is required", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("group %q: defined twice", g.Name)
		}
		seen[g.Name] = true
		if len(g.Members) == 0 && g.Match == "" {
			return fmt.Errorf("group %q: members or match is required", g.Name)
		}
		if g.Match != "" {
			if _, err := compileMatch(g.Match); err != nil {
				return fmt.Errorf("group %q: match expression invalid: %w", g.Name, err)
			}
		}
	}

	for variant, fluid := range gf.Fluids {
		if fluid == "" {
			return fmt.Errorf("fluid for %q must not be empty", variant)
		}
	}

	return nil
}
