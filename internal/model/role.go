package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Permissions guarding the resource endpoints.
const (
	PermissionRead   = "read"
	PermissionWrite  = "write"
	PermissionDelete = "delete"
)

// Role is a named bundle of permission strings.
type Role struct {
	ID          uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string       `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission is a single entry of a role's permission set. The composite
// unique index keeps the set free of duplicates at the storage level.
type Permission struct {
	ID     uuid.UUID `json:"-" gorm:"type:char(36);primaryKey"`
	RoleID uuid.UUID `json:"-" gorm:"type:char(36);not null;uniqueIndex:idx_role_permission"`
	Name   string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_role_permission"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate sets UUID before creating the record.
func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewRole builds a role whose permissions are de-duplicated.
func NewRole(name string, permissions ...string) *Role {
	role := &Role{ID: uuid.New(), Name: name}
	for _, p := range dedupe(permissions) {
		role.Permissions = append(role.Permissions, Permission{ID: uuid.New(), RoleID: role.ID, Name: p})
	}
	return role
}

// PermissionSet returns the sorted, de-duplicated permission names.
func (r *Role) PermissionSet() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return dedupe(names)
}

// HasPermission reports whether permission is a member of the role's set.
func (r *Role) HasPermission(permission string) bool {
	if r == nil || permission == "" {
		return false
	}
	for _, p := range r.Permissions {
		if p.Name == permission {
			return true
		}
	}
	return false
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
