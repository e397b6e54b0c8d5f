package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"accessgate/internal/model"
)

const (
	userKeyPrefix         = "user:"
	usernameKeyPrefix     = "user:username:"
	roleKeyPrefix         = "role:"
	roleNameKeyPrefix     = "role:name:"
	rolePermissionsSuffix = ":permissions"
)

// userRecord is the stored form of a user. model.User hides the password
// hash from JSON, so it cannot be marshaled directly.
type userRecord struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	RoleID       uuid.UUID `json:"role_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type roleRecord struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRedisStore builds a Store keeping users and roles in Redis. Username
// uniqueness is claimed with SETNX; role permissions are Redis sets.
func NewRedisStore(client *redis.Client) *Store {
	return &Store{
		Users: &redisUserRepository{client: client},
		Roles: &redisRoleRepository{client: client},
		ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		close: client.Close,
	}
}

type redisUserRepository struct {
	client *redis.Client
}

func (r *redisUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	payload, err := json.Marshal(userRecord{
		ID:           user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		RoleID:       user.RoleID,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	claimed, err := r.client.SetNX(ctx, usernameKeyPrefix+user.Username, user.ID.String(), 0).Result()
	if err != nil {
		return fmt.Errorf("claim username: %w", err)
	}
	if !claimed {
		return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
	}

	if err := r.client.Set(ctx, userKeyPrefix+user.ID.String(), payload, 0).Err(); err != nil {
		// Release the claim so the username is not left orphaned.
		_ = r.client.Del(context.WithoutCancel(ctx), usernameKeyPrefix+user.Username).Err()
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (r *redisUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	data, err := r.client.Get(ctx, userKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &model.User{
		ID:           rec.ID,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		RoleID:       rec.RoleID,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

func (r *redisUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	id, err := lookupID(ctx, r.client, usernameKeyPrefix+username)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

type redisRoleRepository struct {
	client *redis.Client
}

func (r *redisRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	key := roleKeyPrefix + id.String()

	var (
		recCmd   *redis.StringCmd
		permsCmd *redis.StringSliceCmd
	)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		recCmd = pipe.Get(ctx, key)
		permsCmd = pipe.SMembers(ctx, key+rolePermissionsSuffix)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	data, err := recCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	perms, err := permsCmd.Result()
	if err != nil {
		return nil, err
	}

	var rec roleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal role: %w", err)
	}

	role := model.NewRole(rec.Name, perms...)
	role.ID = rec.ID
	role.CreatedAt = rec.CreatedAt
	role.UpdatedAt = rec.UpdatedAt
	for i := range role.Permissions {
		role.Permissions[i].RoleID = rec.ID
	}
	return role, nil
}

func (r *redisRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	id, err := lookupID(ctx, r.client, roleNameKeyPrefix+name)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *redisRoleRepository) Save(ctx context.Context, role *model.Role) error {
	existing, err := lookupID(ctx, r.client, roleNameKeyPrefix+role.Name)
	switch {
	case err == nil:
		role.ID = existing
	case errors.Is(err, ErrNotFound):
		if role.ID == uuid.Nil {
			role.ID = uuid.New()
		}
	default:
		return err
	}

	now := time.Now().UTC()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	payload, err := json.Marshal(roleRecord{ID: role.ID, Name: role.Name, CreatedAt: role.CreatedAt, UpdatedAt: role.UpdatedAt})
	if err != nil {
		return fmt.Errorf("marshal role: %w", err)
	}

	permissions := role.PermissionSet()
	key := roleKeyPrefix + role.ID.String()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, payload, 0)
		pipe.Set(ctx, roleNameKeyPrefix+role.Name, role.ID.String(), 0)
		pipe.Del(ctx, key+rolePermissionsSuffix)
		if len(permissions) > 0 {
			members := make([]interface{}, len(permissions))
			for i, p := range permissions {
				members[i] = p
			}
			pipe.SAdd(ctx, key+rolePermissionsSuffix, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save role: %w", err)
	}

	saved := model.NewRole(role.Name, permissions...)
	for i := range saved.Permissions {
		saved.Permissions[i].RoleID = role.ID
	}
	role.Permissions = saved.Permissions
	return nil
}

func lookupID(ctx context.Context, client *redis.Client, key string) (uuid.UUID, error) {
	raw, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse id under %s: %w", key, err)
	}
	return id, nil
}
