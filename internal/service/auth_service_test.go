package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"accessgate/internal/auth"
	apperrors "accessgate/internal/errors"
	"accessgate/internal/model"
	"accessgate/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockRoleRepository is a mock implementation of RoleRepository.
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) Save(ctx context.Context, role *model.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func newTestAuthService(t *testing.T, users *MockUserRepository, roles *MockRoleRepository) (AuthService, *auth.PasswordHasher, *auth.JWTService) {
	t.Helper()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)
	return NewAuthService(users, roles, hasher, tokens, zap.NewNop()), hasher, tokens
}

func TestAuthService_Register(t *testing.T) {
	editor := model.NewRole("editor", "read", "write")

	tests := []struct {
		name          string
		username      string
		password      string
		roleName      string
		setupMock     func(*MockUserRepository, *MockRoleRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			username: "alice",
			password: "password123",
			roleName: "editor",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				r.On("FindByName", mock.Anything, "editor").Return(editor, nil)
				u.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "username is trimmed",
			username: "  alice  ",
			password: "password123",
			roleName: " editor ",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				r.On("FindByName", mock.Anything, "editor").Return(editor, nil)
				u.On("Create", mock.Anything, mock.MatchedBy(func(user *model.User) bool {
					return user.Username == "alice"
				})).Return(nil)
			},
		},
		{
			name:          "empty username",
			username:      "",
			password:      "password123",
			roleName:      "editor",
			setupMock:     func(*MockUserRepository, *MockRoleRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "blank username",
			username:      "   ",
			password:      "password123",
			roleName:      "editor",
			setupMock:     func(*MockUserRepository, *MockRoleRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "empty password",
			username:      "alice",
			password:      "",
			roleName:      "editor",
			setupMock:     func(*MockUserRepository, *MockRoleRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "empty role name",
			username:      "alice",
			password:      "password123",
			roleName:      "",
			setupMock:     func(*MockUserRepository, *MockRoleRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:          "username too long",
			username:      strings.Repeat("a", model.MaxUsernameLength+1),
			password:      "password123",
			roleName:      "editor",
			setupMock:     func(*MockUserRepository, *MockRoleRepository) {},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:     "username at the length limit",
			username: strings.Repeat("é", model.MaxUsernameLength),
			password: "password123",
			roleName: "editor",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				r.On("FindByName", mock.Anything, "editor").Return(editor, nil)
				u.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:     "password longer than bcrypt accepts",
			username: "alice",
			password: strings.Repeat("x", 73),
			roleName: "editor",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				r.On("FindByName", mock.Anything, "editor").Return(editor, nil)
			},
			expectedError: apperrors.ErrValidation,
		},
		{
			name:     "role not found",
			username: "alice",
			password: "password123",
			roleName: "ghost",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				r.On("FindByName", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
			},
			expectedError: apperrors.ErrNotFound,
		},
		{
			name:     "username already exists",
			username: "alice",
			password: "password123",
			roleName: "editor",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				r.On("FindByName", mock.Anything, "editor").Return(editor, nil)
				u.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
					Return(fmt.Errorf("username %q: %w", "alice", repository.ErrDuplicate))
			},
			expectedError: apperrors.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			roles := new(MockRoleRepository)
			tt.setupMock(users, roles)

			service, hasher, _ := newTestAuthService(t, users, roles)
			user, err := service.Register(context.Background(), tt.username, tt.password, tt.roleName)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, strings.TrimSpace(tt.username), user.Username)
				assert.Equal(t, editor.ID, user.RoleID)
				assert.NotEqual(t, uuid.Nil, user.ID)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				assert.True(t, hasher.Verify(tt.password, user.PasswordHash))
			}

			users.AssertExpectations(t)
			roles.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_StoreFailureIsInternal(t *testing.T) {
	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	roles.On("FindByName", mock.Anything, "editor").Return(nil, errors.New("connection refused"))

	service, _, _ := newTestAuthService(t, users, roles)
	_, err := service.Register(context.Background(), "alice", "password123", "editor")

	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	alice := &model.User{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: string(hashedPassword),
		RoleID:       uuid.New(),
	}

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			username: "alice",
			password: "password123",
			setupMock: func(u *MockUserRepository) {
				u.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)
			},
		},
		{
			name:     "username is trimmed like on register",
			username: "  alice ",
			password: "password123",
			setupMock: func(u *MockUserRepository) {
				u.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)
			},
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrong",
			setupMock: func(u *MockUserRepository) {
				u.On("FindByUsername", mock.Anything, "alice").Return(alice, nil)
			},
			expectedError: apperrors.ErrUnauthorized,
		},
		{
			name:     "user not found",
			username: "nobody",
			password: "password123",
			setupMock: func(u *MockUserRepository) {
				u.On("FindByUsername", mock.Anything, "nobody").Return(nil, repository.ErrNotFound)
			},
			expectedError: apperrors.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			roles := new(MockRoleRepository)
			tt.setupMock(users)

			service, _, tokens := newTestAuthService(t, users, roles)
			token, err := service.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				subject, err := tokens.Validate(token)
				require.NoError(t, err)
				assert.Equal(t, alice.ID.String(), subject)
			}

			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := new(MockUserRepository)
	users.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: string(hashedPassword),
	}, nil)
	users.On("FindByUsername", mock.Anything, "nobody").Return(nil, repository.ErrNotFound)

	service, _, _ := newTestAuthService(t, users, new(MockRoleRepository))

	_, wrongPassword := service.Login(context.Background(), "alice", "wrong")
	_, unknownUser := service.Login(context.Background(), "nobody", "password123")

	assert.Equal(t, wrongPassword, unknownUser)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestAuthService_Login_StoreFailureIsInternal(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByUsername", mock.Anything, "alice").Return(nil, errors.New("i/o timeout"))

	service, _, _ := newTestAuthService(t, users, new(MockRoleRepository))
	token, err := service.Login(context.Background(), "alice", "password123")

	assert.Empty(t, token)
	assert.True(t, apperrors.IsInternal(err))
	assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
}
