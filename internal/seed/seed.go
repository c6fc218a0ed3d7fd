package seed

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"orgroles/internal/models"
	"orgroles/internal/rbac"
)

type Admin struct {
	Email    string
	Password string
}

// FirstSetup creates the default access roles, settings and administrator.
// Existing rows are left as they are.
func FirstSetup(ctx context.Context, db *gorm.DB, admin Admin, log *zap.Logger) error {
	reg := rbac.Registry{DB: db}

	// -------------------------
	// 1) Ensure access roles
	// -------------------------
	read := map[string]bool{rbac.CapRead: true}
	roles := []struct {
		key, name string
		caps      map[string]bool
	}{
		{"customer", "Customer", read},
		{"manager", "Manager", read},
		{"staff", "Staff", read},
		{"ceo", "CEO", read},
		{"administrator", "Administrator", map[string]bool{rbac.CapRead: true, rbac.CapManageOptions: true}},
	}
	for _, r := range roles {
		if err := reg.Ensure(ctx, r.key, r.name, r.caps, true); err != nil {
			return err
		}
	}

	// -------------------------
	// 2) Ensure settings
	// -------------------------
	st := models.DefaultSettings()
	if err := db.WithContext(ctx).Where("id = ?", st.ID).FirstOrCreate(&st).Error; err != nil {
		return err
	}

	// -------------------------
	// 3) Ensure admin user
	// -------------------------
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	passHash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	adminUser := models.User{
		Email:        email,
		Name:         "Admin User",
		Status:       models.UserActive,
		PasswordHash: string(passHash),
	}
	if err := db.WithContext(ctx).Where("email = ?", email).FirstOrCreate(&adminUser).Error; err != nil {
		return err
	}
	if err := reg.Grant(ctx, adminUser.ID, "administrator"); err != nil {
		return err
	}

	log.Info("seed ok",
		zap.String("admin", email),
		zap.Int("roles", len(roles)),
	)
	return nil
}
