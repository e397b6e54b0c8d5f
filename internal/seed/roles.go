package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"accessgate/internal/model"
	"accessgate/internal/repository"
)

// RoleDefinition is one entry of the roles file.
type RoleDefinition struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type rolesFile struct {
	Roles []RoleDefinition `yaml:"roles"`
}

// LoadRoles reads role definitions from a YAML file of the form
//
//	roles:
//	  - name: editor
//	    permissions: [read, write]
func LoadRoles(path string) ([]RoleDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}
	return ParseRoles(raw)
}

// ParseRoles decodes role definitions and rejects unnamed or repeated roles.
func ParseRoles(raw []byte) ([]RoleDefinition, error) {
	var file rolesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Roles))
	for i := range file.Roles {
		name := strings.TrimSpace(file.Roles[i].Name)
		if name == "" {
			return nil, fmt.Errorf("role #%d: name is required", i+1)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("role %q defined twice", name)
		}
		seen[name] = struct{}{}
		file.Roles[i].Name = name
	}
	return file.Roles, nil
}

// Apply saves every definition. Existing roles keep their ID and have their
// permission set replaced.
func Apply(ctx context.Context, roles repository.RoleRepository, defs []RoleDefinition) error {
	var errs []error
	for _, def := range defs {
		if err := roles.Save(ctx, model.NewRole(def.Name, def.Permissions...)); err != nil {
			errs = append(errs, fmt.Errorf("save role %q: %w", def.Name, err))
		}
	}
	return errors.Join(errs...)
}
