package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"accessgate/internal/repository"
)

// AccessService resolves whether a user's role grants a permission.
type AccessService interface {
	HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
}

type accessService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	logger *zap.Logger
}

// NewAccessService creates a new access service. Results are never cached:
// every check reads the role as currently persisted.
func NewAccessService(users repository.UserRepository, roles repository.RoleRepository, logger *zap.Logger) AccessService {
	return &accessService{users: users, roles: roles, logger: logger}
}

// HasPermission follows identity -> user -> role and checks set membership.
// A user or role that cannot be resolved is a denial, not an error.
func (s *accessService) HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("permission denied: user not found", zap.String("user_id", userID.String()))
			return false, nil
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("permission denied: role not found",
				zap.String("user_id", userID.String()),
				zap.String("role_id", user.RoleID.String()),
			)
			return false, nil
		}
		return false, fmt.Errorf("find role: %w", err)
	}

	return role.HasPermission(permission), nil
}
