package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"accessgate/internal/model"
	"accessgate/internal/repository"
)

func TestAccessService_HasPermission(t *testing.T) {
	userID := uuid.New()
	editor := model.NewRole("editor", "read", "write")
	user := &model.User{ID: userID, Username: "alice", RoleID: editor.ID}

	tests := []struct {
		name       string
		permission string
		setupMock  func(*MockUserRepository, *MockRoleRepository)
		allowed    bool
		wantErr    bool
	}{
		{
			name:       "permission granted",
			permission: "write",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				u.On("FindByID", mock.Anything, userID).Return(user, nil)
				r.On("FindByID", mock.Anything, editor.ID).Return(editor, nil)
			},
			allowed: true,
		},
		{
			name:       "permission missing from role",
			permission: "delete",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				u.On("FindByID", mock.Anything, userID).Return(user, nil)
				r.On("FindByID", mock.Anything, editor.ID).Return(editor, nil)
			},
		},
		{
			name:       "user not found",
			permission: "read",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				u.On("FindByID", mock.Anything, userID).Return(nil, repository.ErrNotFound)
			},
		},
		{
			name:       "role not found",
			permission: "read",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				u.On("FindByID", mock.Anything, userID).Return(user, nil)
				r.On("FindByID", mock.Anything, editor.ID).Return(nil, repository.ErrNotFound)
			},
		},
		{
			name:       "user store failure",
			permission: "read",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				u.On("FindByID", mock.Anything, userID).Return(nil, errors.New("connection refused"))
			},
			wantErr: true,
		},
		{
			name:       "role store failure",
			permission: "read",
			setupMock: func(u *MockUserRepository, r *MockRoleRepository) {
				u.On("FindByID", mock.Anything, userID).Return(user, nil)
				r.On("FindByID", mock.Anything, editor.ID).Return(nil, errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			roles := new(MockRoleRepository)
			tt.setupMock(users, roles)

			service := NewAccessService(users, roles, zap.NewNop())
			allowed, err := service.HasPermission(context.Background(), userID, tt.permission)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.allowed, allowed)

			users.AssertExpectations(t)
			roles.AssertExpectations(t)
		})
	}
}

func TestAccessService_ReadsRoleOnEveryCheck(t *testing.T) {
	userID := uuid.New()
	roleID := uuid.New()
	user := &model.User{ID: userID, RoleID: roleID}

	before := model.NewRole("editor", "read", "write")
	before.ID = roleID
	after := model.NewRole("editor", "read")
	after.ID = roleID

	users := new(MockUserRepository)
	roles := new(MockRoleRepository)
	users.On("FindByID", mock.Anything, userID).Return(user, nil)
	roles.On("FindByID", mock.Anything, roleID).Return(before, nil).Once()
	roles.On("FindByID", mock.Anything, roleID).Return(after, nil).Once()

	service := NewAccessService(users, roles, zap.NewNop())

	allowed, err := service.HasPermission(context.Background(), userID, "write")
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = service.HasPermission(context.Background(), userID, "write")
	assert.NoError(t, err)
	assert.False(t, allowed)

	roles.AssertNumberOfCalls(t, "FindByID", 2)
}
