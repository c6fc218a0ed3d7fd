package orgcsv

import (
	"context"

	"orgroles/internal/models"
	"orgroles/internal/sanitize"
)

// Directory is the part of the store the resolver reads and writes.
type Directory interface {
	Companies(ctx context.Context, search string) ([]models.Company, error)
	InsertCompany(ctx context.Context, name, slug string) (uint64, error)
	UpdateCompany(ctx context.Context, id uint64, name, slug string) error

	Departments(ctx context.Context, companyID uint64, search string) ([]models.Department, error)
	InsertDepartment(ctx context.Context, companyID uint64, name, slug string) (uint64, error)
	UpdateDepartment(ctx context.Context, id, companyID uint64, name, slug string) error

	JobRoles(ctx context.Context, companyID, departmentID uint64, search string) ([]models.JobRole, error)
	InsertJobRole(ctx context.Context, companyID, departmentID uint64, label, slug, mappedRole string) (uint64, error)
	UpdateJobRole(ctx context.Context, id, companyID, departmentID uint64, label, slug, mappedRole string) error
}

// Resolver finds an entity by slug or exact name within its parent scope, or
// creates it. A record found by name alone has its slug rewritten.
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

func normalizeSlug(slug, name string) string {
	if s := sanitize.Slug(slug); s != "" {
		return s
	}
	return sanitize.Slug(name)
}

func (r *Resolver) Company(ctx context.Context, name, slug string) (id uint64, created bool, err error) {
	slug = normalizeSlug(slug, name)
	companies, err := r.dir.Companies(ctx, "")
	if err != nil {
		return 0, false, err
	}
	for _, c := range companies {
		if c.Slug != slug && c.Name != name {
			continue
		}
		if c.Slug != slug {
			if err := r.dir.UpdateCompany(ctx, c.ID, c.Name, slug); err != nil {
				return 0, false, err
			}
		}
		return c.ID, false, nil
	}
	id, err = r.dir.InsertCompany(ctx, name, slug)
	return id, err == nil, err
}

func (r *Resolver) Department(ctx context.Context, companyID uint64, name, slug string) (id uint64, created bool, err error) {
	slug = normalizeSlug(slug, name)
	depts, err := r.dir.Departments(ctx, companyID, "")
	if err != nil {
		return 0, false, err
	}
	for _, d := range depts {
		if d.Slug != slug && d.Name != name {
			continue
		}
		if d.Slug != slug {
			if err := r.dir.UpdateDepartment(ctx, d.ID, companyID, d.Name, slug); err != nil {
				return 0, false, err
			}
		}
		return d.ID, false, nil
	}
	id, err = r.dir.InsertDepartment(ctx, companyID, name, slug)
	return id, err == nil, err
}

// JobRole also re-applies mappedRole to a matched record when it differs.
func (r *Resolver) JobRole(ctx context.Context, companyID, departmentID uint64, label, slug, mappedRole string) (id uint64, created bool, err error) {
	slug = normalizeSlug(slug, label)
	roles, err := r.dir.JobRoles(ctx, companyID, departmentID, "")
	if err != nil {
		return 0, false, err
	}
	for _, jr := range roles {
		if jr.Slug != slug && jr.Label != label {
			continue
		}
		mapped := jr.MappedRole
		if mappedRole != "" {
			mapped = mappedRole
		}
		if jr.Slug != slug || jr.MappedRole != mapped {
			if err := r.dir.UpdateJobRole(ctx, jr.ID, companyID, departmentID, jr.Label, slug, mapped); err != nil {
				return 0, false, err
			}
		}
		return jr.ID, false, nil
	}
	id, err = r.dir.InsertJobRole(ctx, companyID, departmentID, label, slug, mappedRole)
	return id, err == nil, err
}
