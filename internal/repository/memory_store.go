package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"accessgate/internal/model"
)

// NewMemoryStore builds a process-local Store, used for development and tests.
func NewMemoryStore() *Store {
	m := &memoryBackend{
		users:       make(map[uuid.UUID]model.User),
		usersByName: make(map[string]uuid.UUID),
		roles:       make(map[uuid.UUID]model.Role),
		rolesByName: make(map[string]uuid.UUID),
	}
	return &Store{
		Users: (*memoryUserRepository)(m),
		Roles: (*memoryRoleRepository)(m),
	}
}

type memoryBackend struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]model.User
	usersByName map[string]uuid.UUID
	roles       map[uuid.UUID]model.Role
	rolesByName map[string]uuid.UUID
}

type memoryUserRepository memoryBackend

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.usersByName[user.Username]; taken {
		return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	r.users[user.ID] = *user
	r.usersByName[user.Username] = user.ID
	return nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	id, ok := r.usersByName[username]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

type memoryRoleRepository memoryBackend

func (r *memoryRoleRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRole(role), nil
}

func (r *memoryRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	r.mu.RLock()
	id, ok := r.rolesByName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *memoryRoleRepository) Save(_ context.Context, role *model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.rolesByName[role.Name]; ok {
		role.ID = id
		role.CreatedAt = r.roles[id].CreatedAt
	} else if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	now := time.Now().UTC()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	saved := model.NewRole(role.Name, role.PermissionSet()...)
	for i := range saved.Permissions {
		saved.Permissions[i].RoleID = role.ID
	}
	role.Permissions = saved.Permissions

	r.roles[role.ID] = *cloneRole(*role)
	r.rolesByName[role.Name] = role.ID
	return nil
}

func cloneRole(role model.Role) *model.Role {
	role.Permissions = append([]model.Permission(nil), role.Permissions...)
	return &role
}
