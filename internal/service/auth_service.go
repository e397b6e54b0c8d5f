package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"accessgate/internal/auth"
	apperrors "accessgate/internal/errors"
	"accessgate/internal/model"
	"accessgate/internal/repository"
)

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, username, password, roleName string) (*model.User, error)
	Login(ctx context.Context, username, password string) (token string, err error)
}

type authService struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	hasher *auth.PasswordHasher
	tokens *auth.JWTService
	logger *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.JWTService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:  users,
		roles:  roles,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a user bound to an existing role. No token is issued.
func (s *authService) Register(ctx context.Context, username, password, roleName string) (*model.User, error) {
	username = normalizeUsername(username)
	roleName = strings.TrimSpace(roleName)
	if username == "" || password == "" || roleName == "" {
		return nil, fmt.Errorf("%w: username, password, and role name are required", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(username) > model.MaxUsernameLength {
		return nil, fmt.Errorf("%w: username longer than %d characters", apperrors.ErrValidation, model.MaxUsernameLength)
	}

	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: role %q", apperrors.ErrNotFound, roleName)
		}
		return nil, fmt.Errorf("find role: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password too long", apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hashedPassword,
		RoleID:       role.ID,
	}

	// Uniqueness is enforced by the store, not by a prior lookup.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username %q", apperrors.ErrConflict, username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", role.Name),
	)
	return user, nil
}

// Login verifies credentials and returns a session token. Unknown usernames
// and wrong passwords return the same error.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.VerifyDummy(password)
			return "", apperrors.ErrUnauthorized
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", apperrors.ErrUnauthorized
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// normalizeUsername is applied on both register and login so that the same
// input always resolves to the same stored name.
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
