package auth

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

type RolePermission struct {
	Role        string   `yaml:"role"`
	Staff       bool     `yaml:"staff"`
	Permissions []string `yaml:"permissions"`
}

type PermissionConfig struct {
	Roles []RolePermission `yaml:"roles"`
}

func LoadPermissionConfig(path string) (*PermissionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePermissionConfig(data)
}

func ParsePermissionConfig(data []byte) (*PermissionConfig, error) {
	cfg := &PermissionConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse permission config: %w", err)
	}
	seen := make(map[string]struct{}, len(cfg.Roles))
	for _, r := range cfg.Roles {
		if r.Role == "" {
			return nil, fmt.Errorf("permission config: role name is required")
		}
		if _, dup := seen[r.Role]; dup {
			return nil, fmt.Errorf("permission config: role %s declared twice", r.Role)
		}
		seen[r.Role] = struct{}{}
	}
	return cfg, nil
}

// Policy answers staff and permission questions for a principal.
type Policy struct {
	roles map[string]RolePermission
}

func NewPolicy(cfg *PermissionConfig) *Policy {
	p := &Policy{roles: make(map[string]RolePermission)}
	if cfg == nil {
		return p
	}
	for _, r := range cfg.Roles {
		p.roles[r.Role] = r
	}
	return p
}

func (p *Policy) IsStaff(role string) bool {
	r, ok := p.roles[role]
	return ok && r.Staff
}

// Allows reports whether principal holds perm, either through its role or
// through permissions granted in the signed token.
func (p *Policy) Allows(principal *Principal, perm string) bool {
	if principal == nil {
		return false
	}
	if r, ok := p.roles[principal.Role]; ok && slices.Contains(r.Permissions, perm) {
		return true
	}
	return slices.Contains(principal.Permissions, perm)
}

func (p *Policy) PermissionsFor(role string) []string {
	return append([]string(nil), p.roles[role].Permissions...)
}
