package rbac

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"orgroles/internal/models"
)

// Capability names used by the service itself.
const (
	CapRead          = "read"
	CapManageOptions = "manage_options"
)

type Checker struct{ DB *gorm.DB }

// Can reports whether any access role granted to the user carries the
// capability with a true value.
func (c Checker) Can(ctx context.Context, userID uint64, capability string) (bool, error) {
	var roles []models.AccessRole
	err := c.DB.WithContext(ctx).
		Table("access_roles r").
		Select("r.*").
		Joins("JOIN user_access_roles ur ON ur.role_key = r.role_key").
		Where("ur.user_id = ?", userID).
		Find(&roles).Error
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if Capabilities(r)[capability] {
			return true, nil
		}
	}
	return false, nil
}

// Capabilities decodes the stored capability map of a role.
func Capabilities(r models.AccessRole) map[string]bool {
	caps := map[string]bool{}
	if len(r.Capabilities) > 0 {
		_ = json.Unmarshal(r.Capabilities, &caps)
	}
	return caps
}
