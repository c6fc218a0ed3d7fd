package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"orgroles/internal/models"
	"orgroles/internal/sanitize"
)

// JobRoles lists job roles joined with department and company names. Zero ids
// disable the corresponding filter.
func (s *Store) JobRoles(ctx context.Context, companyID, departmentID uint64, search string) ([]models.JobRole, error) {
	q := s.DB.WithContext(ctx).
		Model(&models.JobRole{}).
		Select("job_roles.*, departments.name AS department_name, companies.name AS company_name").
		Joins("LEFT JOIN departments ON departments.id = job_roles.department_id").
		Joins("LEFT JOIN companies ON companies.id = job_roles.company_id")
	if companyID > 0 {
		q = q.Where("job_roles.company_id = ?", companyID)
	}
	if departmentID > 0 {
		q = q.Where("job_roles.department_id = ?", departmentID)
	}
	if search = strings.TrimSpace(search); search != "" {
		like := likePattern(search)
		q = q.Where("(job_roles.label LIKE ? OR job_roles.slug LIKE ?)", like, like)
	}

	var out []models.JobRole
	if err := q.Order("job_roles.label ASC").Order("job_roles.id ASC").Find(&out).Error; err != nil {
		return nil, wrap(err, "list job roles")
	}
	return out, nil
}

func (s *Store) JobRole(ctx context.Context, id uint64) (*models.JobRole, error) {
	var r models.JobRole
	if err := s.DB.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, wrap(err, "get job role")
	}
	return &r, nil
}

// InsertJobRole creates a job role under departmentID. The stored company is
// always the department's company; the companyID argument is only a hint.
func (s *Store) InsertJobRole(ctx context.Context, companyID, departmentID uint64, label, slug, mappedRole string) (uint64, error) {
	label = strings.TrimSpace(label)
	if slug = sanitize.Slug(slug); slug == "" {
		slug = sanitize.Slug(label)
	}
	if departmentID == 0 || label == "" || slug == "" {
		return 0, errors.Wrap(ErrInvalidInput, "job role needs a department and a label")
	}

	var id uint64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := departmentCompany(tx, departmentID)
		if err != nil {
			return err
		}
		r := models.JobRole{
			CompanyID:    owner,
			DepartmentID: departmentID,
			Label:        label,
			Slug:         slug,
			MappedRole:   mappedRole,
		}
		if err := tx.Create(&r).Error; err != nil {
			return wrap(err, "insert job role")
		}
		id = r.ID
		return nil
	})
	return id, err
}

// UpdateJobRole rewrites a job role, deriving its company from departmentID.
func (s *Store) UpdateJobRole(ctx context.Context, id, companyID, departmentID uint64, label, slug, mappedRole string) error {
	label = strings.TrimSpace(label)
	if slug = sanitize.Slug(slug); slug == "" {
		slug = sanitize.Slug(label)
	}
	if departmentID == 0 || label == "" || slug == "" {
		return errors.Wrap(ErrInvalidInput, "job role needs a department and a label")
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.JobRole
		if err := tx.First(&r, id).Error; err != nil {
			return wrap(err, "get job role")
		}
		owner, err := departmentCompany(tx, departmentID)
		if err != nil {
			return err
		}
		err = tx.Model(&r).Updates(map[string]any{
			"company_id":    owner,
			"department_id": departmentID,
			"label":         label,
			"slug":          slug,
			"mapped_role":   mappedRole,
		}).Error
		return wrap(err, "update job role")
	})
}

// DeleteJobRole removes the job role and the assignments that reference it.
func (s *Store) DeleteJobRole(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_role_id = ?", id).Delete(&models.UserAssignment{}).Error; err != nil {
			return wrap(err, "delete assignments")
		}
		res := tx.Delete(&models.JobRole{}, id)
		if res.Error != nil {
			return wrap(res.Error, "delete job role")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(ErrNotFound, "delete job role")
		}
		return nil
	})
}

func (s *Store) JobRoleBelongsToDepartment(ctx context.Context, jobRoleID, departmentID uint64) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.JobRole{}).
		Where("id = ? AND department_id = ?", jobRoleID, departmentID).
		Count(&n).Error
	if err != nil {
		return false, wrap(err, "check job role department")
	}
	return n > 0, nil
}

func departmentCompany(tx *gorm.DB, departmentID uint64) (uint64, error) {
	var d models.Department
	if err := tx.Select("id", "company_id").First(&d, departmentID).Error; err != nil {
		return 0, wrap(err, "get job role department")
	}
	return d.CompanyID, nil
}
