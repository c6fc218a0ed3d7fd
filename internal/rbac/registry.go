package rbac

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orgroles/internal/models"
	"orgroles/internal/sanitize"
)

var ErrRoleNotFound = errors.New("access role not found")

// Registry is the access-role registry: the set of roles that job roles map to
// and users are granted.
type Registry struct{ DB *gorm.DB }

func (r Registry) Lookup(ctx context.Context, key string) (*models.AccessRole, error) {
	var role models.AccessRole
	err := r.DB.WithContext(ctx).Where("role_key = ?", key).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r Registry) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.AccessRole{}).Where("role_key = ?", key).Count(&n).Error
	return n > 0, err
}

// Create adds a role. A blank display name falls back to the humanized key.
func (r Registry) Create(ctx context.Context, key, displayName string, caps map[string]bool) error {
	if displayName == "" {
		displayName = sanitize.Humanize(key)
	}
	if caps == nil {
		caps = map[string]bool{}
	}
	raw, err := json.Marshal(caps)
	if err != nil {
		return err
	}
	role := models.AccessRole{
		Key:          key,
		DisplayName:  displayName,
		Capabilities: datatypes.JSON(raw),
	}
	return r.DB.WithContext(ctx).Create(&role).Error
}

// Ensure creates the role when missing and leaves an existing one untouched.
func (r Registry) Ensure(ctx context.Context, key, displayName string, caps map[string]bool, system bool) error {
	ok, err := r.Exists(ctx, key)
	if err != nil || ok {
		return err
	}
	if err := r.Create(ctx, key, displayName, caps); err != nil {
		return err
	}
	if system {
		return r.DB.WithContext(ctx).Model(&models.AccessRole{}).Where("role_key = ?", key).Update("is_system", true).Error
	}
	return nil
}

func (r Registry) All(ctx context.Context) ([]models.AccessRole, error) {
	var out []models.AccessRole
	err := r.DB.WithContext(ctx).Order("display_name ASC").Find(&out).Error
	return out, err
}

// Grant gives the user the role. Granting twice is a no-op.
func (r Registry) Grant(ctx context.Context, userID uint64, key string) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserAccessRole{UserID: userID, RoleKey: key}).Error
}

// RolesOf returns the role keys granted to the user.
func (r Registry) RolesOf(ctx context.Context, userID uint64) ([]string, error) {
	var keys []string
	err := r.DB.WithContext(ctx).Model(&models.UserAccessRole{}).
		Where("user_id = ?", userID).
		Order("role_key ASC").
		Pluck("role_key", &keys).Error
	return keys, err
}
