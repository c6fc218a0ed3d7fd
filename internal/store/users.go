package store

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orgroles/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	return wrap(s.DB.WithContext(ctx).Create(u).Error, "create user")
}

func (s *Store) User(ctx context.Context, id uint64) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, wrap(err, "get user")
	}
	return &u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	email = strings.TrimSpace(strings.ToLower(email))
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, wrap(err, "get user by email")
	}
	return &u, nil
}

func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrap(err, "list users")
	}
	return out, nil
}

// SetUserOrganization stores the user's current company/department/job role.
func (s *Store) SetUserOrganization(ctx context.Context, userID, companyID, departmentID, jobRoleID uint64) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"company_id":    companyID,
		"department_id": departmentID,
		"job_role_id":   jobRoleID,
	})
	return wrap(res.Error, "set user organization")
}

func (s *Store) SetUserStatus(ctx context.Context, userID uint64, status models.UserStatus) error {
	var u models.User
	if err := s.DB.WithContext(ctx).Select("id").First(&u, userID).Error; err != nil {
		return wrap(err, "get user")
	}
	return wrap(s.DB.WithContext(ctx).Model(&u).Update("status", status).Error, "set user status")
}

// InsertUserAssignment records a binding of the user to the triple. A primary
// binding demotes the user's other bindings. Re-recording an existing triple
// only refreshes its primary flag.
func (s *Store) InsertUserAssignment(ctx context.Context, userID, companyID, departmentID, jobRoleID uint64, primary bool) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if primary {
			if err := tx.Model(&models.UserAssignment{}).
				Where("user_id = ?", userID).
				Update("is_primary", false).Error; err != nil {
				return wrap(err, "demote assignments")
			}
		}

		a := models.UserAssignment{
			UserID:       userID,
			CompanyID:    companyID,
			DepartmentID: departmentID,
			JobRoleID:    jobRoleID,
			IsPrimary:    primary,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "company_id"}, {Name: "department_id"}, {Name: "job_role_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_primary", "updated_at"}),
		}).Create(&a).Error
		return wrap(err, "insert assignment")
	})
}

// PrimaryAssignment returns the user's current primary binding.
func (s *Store) PrimaryAssignment(ctx context.Context, userID uint64) (*models.UserAssignment, error) {
	var a models.UserAssignment
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND is_primary = ?", userID, true).
		Order("id DESC").
		First(&a).Error
	if err != nil {
		return nil, wrap(err, "get primary assignment")
	}
	return &a, nil
}

func (s *Store) Assignments(ctx context.Context, userID uint64) ([]models.UserAssignment, error) {
	var out []models.UserAssignment
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrap(err, "list assignments")
	}
	return out, nil
}
