package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"orgroles/internal/models"
	"orgroles/internal/sanitize"
)

// Departments lists departments joined with their company name. A zero
// companyID lists departments of every company.
func (s *Store) Departments(ctx context.Context, companyID uint64, search string) ([]models.Department, error) {
	q := s.DB.WithContext(ctx).
		Model(&models.Department{}).
		Select("departments.*, companies.name AS company_name").
		Joins("LEFT JOIN companies ON companies.id = departments.company_id")
	if companyID > 0 {
		q = q.Where("departments.company_id = ?", companyID)
	}
	if search = strings.TrimSpace(search); search != "" {
		like := likePattern(search)
		q = q.Where("(departments.name LIKE ? OR departments.slug LIKE ?)", like, like)
	}

	var out []models.Department
	if err := q.Order("departments.name ASC").Order("departments.id ASC").Find(&out).Error; err != nil {
		return nil, wrap(err, "list departments")
	}
	return out, nil
}

func (s *Store) Department(ctx context.Context, id uint64) (*models.Department, error) {
	var d models.Department
	if err := s.DB.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, wrap(err, "get department")
	}
	return &d, nil
}

func (s *Store) InsertDepartment(ctx context.Context, companyID uint64, name, slug string) (uint64, error) {
	name = strings.TrimSpace(name)
	if slug = sanitize.Slug(slug); slug == "" {
		slug = sanitize.Slug(name)
	}
	if companyID == 0 || name == "" || slug == "" {
		return 0, errors.Wrap(ErrInvalidInput, "department needs a company and a name")
	}
	if _, err := s.Company(ctx, companyID); err != nil {
		return 0, err
	}

	d := models.Department{CompanyID: companyID, Name: name, Slug: slug}
	if err := s.DB.WithContext(ctx).Create(&d).Error; err != nil {
		return 0, wrap(err, "insert department")
	}
	return d.ID, nil
}

// UpdateDepartment rewrites the department and moves all of its job roles to
// the department's (possibly new) company.
func (s *Store) UpdateDepartment(ctx context.Context, id, companyID uint64, name, slug string) error {
	name = strings.TrimSpace(name)
	if slug = sanitize.Slug(slug); slug == "" {
		slug = sanitize.Slug(name)
	}
	if companyID == 0 || name == "" || slug == "" {
		return errors.Wrap(ErrInvalidInput, "department needs a company and a name")
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Department
		if err := tx.First(&d, id).Error; err != nil {
			return wrap(err, "get department")
		}
		if err := tx.Model(&d).Updates(map[string]any{
			"company_id": companyID,
			"name":       name,
			"slug":       slug,
		}).Error; err != nil {
			return wrap(err, "update department")
		}
		err := tx.Model(&models.JobRole{}).
			Where("department_id = ?", id).
			Update("company_id", companyID).Error
		return wrap(err, "cascade department company")
	})
}

// DeleteDepartment removes the department, its job roles and their assignments.
func (s *Store) DeleteDepartment(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var roleIDs []uint64
		if err := tx.Model(&models.JobRole{}).Where("department_id = ?", id).Pluck("id", &roleIDs).Error; err != nil {
			return wrap(err, "list department job roles")
		}
		if err := deleteRoles(tx, roleIDs); err != nil {
			return err
		}

		res := tx.Delete(&models.Department{}, id)
		if res.Error != nil {
			return wrap(res.Error, "delete department")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(ErrNotFound, "delete department")
		}
		return nil
	})
}

func (s *Store) DepartmentBelongsToCompany(ctx context.Context, departmentID, companyID uint64) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Department{}).
		Where("id = ? AND company_id = ?", departmentID, companyID).
		Count(&n).Error
	if err != nil {
		return false, wrap(err, "check department company")
	}
	return n > 0, nil
}
