package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"accessgate/internal/model"
)

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// FindByID finds a role and its permission set by ID.
func (r *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").
		Where("id = ?", id).First(&role).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &role, nil
}

// FindByName finds a role and its permission set by name.
func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").
		Where("name = ?", name).First(&role).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &role, nil
}

// Save upserts the role by name and replaces its permissions within a transaction.
func (r *roleRepository) Save(ctx context.Context, role *model.Role) error {
	permissions := role.PermissionSet()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Role
		err := tx.Where("name = ?", role.Name).First(&existing).Error
		switch {
		case err == nil:
			role.ID = existing.ID
			if err := tx.Where("role_id = ?", existing.ID).Delete(&model.Permission{}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if role.ID == uuid.Nil {
				role.ID = uuid.New()
			}
			if err := tx.Omit("Permissions").Create(role).Error; err != nil {
				return err
			}
		default:
			return err
		}

		role.Permissions = make([]model.Permission, 0, len(permissions))
		for _, name := range permissions {
			role.Permissions = append(role.Permissions, model.Permission{ID: uuid.New(), RoleID: role.ID, Name: name})
		}
		if len(role.Permissions) == 0 {
			return nil
		}
		return tx.Create(&role.Permissions).Error
	})
}
