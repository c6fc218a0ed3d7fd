package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"orgroles/internal/models"
	"orgroles/internal/sanitize"
)

// Companies lists companies ordered by name, optionally filtered by a
// substring of the name or slug.
func (s *Store) Companies(ctx context.Context, search string) ([]models.Company, error) {
	q := s.DB.WithContext(ctx).Model(&models.Company{})
	if search = strings.TrimSpace(search); search != "" {
		like := likePattern(search)
		q = q.Where("name LIKE ? OR slug LIKE ?", like, like)
	}

	var out []models.Company
	if err := q.Order("name ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrap(err, "list companies")
	}
	return out, nil
}

func (s *Store) Company(ctx context.Context, id uint64) (*models.Company, error) {
	var c models.Company
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, wrap(err, "get company")
	}
	return &c, nil
}

// InsertCompany creates a company. A blank slug is derived from the name.
func (s *Store) InsertCompany(ctx context.Context, name, slug string) (uint64, error) {
	name = strings.TrimSpace(name)
	if slug = sanitize.Slug(slug); slug == "" {
		slug = sanitize.Slug(name)
	}
	if name == "" || slug == "" {
		return 0, errors.Wrap(ErrInvalidInput, "company name required")
	}

	c := models.Company{Name: name, Slug: slug, IsRequired: true}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return 0, wrap(err, "insert company")
	}
	return c.ID, nil
}

func (s *Store) UpdateCompany(ctx context.Context, id uint64, name, slug string) error {
	name = strings.TrimSpace(name)
	if slug = sanitize.Slug(slug); slug == "" {
		slug = sanitize.Slug(name)
	}
	if name == "" || slug == "" {
		return errors.Wrap(ErrInvalidInput, "company name required")
	}

	c, err := s.Company(ctx, id)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Model(c).Updates(map[string]any{"name": name, "slug": slug}).Error
	return wrap(err, "update company")
}

// DeleteCompany removes the company together with its departments, their job
// roles and every user assignment that references one of those job roles.
func (s *Store) DeleteCompany(ctx context.Context, id uint64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deptIDs []uint64
		if err := tx.Model(&models.Department{}).Where("company_id = ?", id).Pluck("id", &deptIDs).Error; err != nil {
			return wrap(err, "list company departments")
		}

		roleQuery := tx.Model(&models.JobRole{}).Where("company_id = ?", id)
		if len(deptIDs) > 0 {
			roleQuery = roleQuery.Or("department_id IN ?", deptIDs)
		}
		var roleIDs []uint64
		if err := roleQuery.Pluck("id", &roleIDs).Error; err != nil {
			return wrap(err, "list company job roles")
		}

		if err := deleteRoles(tx, roleIDs); err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", id).Delete(&models.Department{}).Error; err != nil {
			return wrap(err, "delete company departments")
		}

		res := tx.Delete(&models.Company{}, id)
		if res.Error != nil {
			return wrap(res.Error, "delete company")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(ErrNotFound, "delete company")
		}
		return nil
	})
}

// deleteRoles removes job roles and the assignments pointing at them.
func deleteRoles(tx *gorm.DB, roleIDs []uint64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	if err := tx.Where("job_role_id IN ?", roleIDs).Delete(&models.UserAssignment{}).Error; err != nil {
		return wrap(err, "delete assignments")
	}
	if err := tx.Where("id IN ?", roleIDs).Delete(&models.JobRole{}).Error; err != nil {
		return wrap(err, "delete job roles")
	}
	return nil
}
