package orgcsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"orgroles/internal/models"
	"orgroles/internal/sanitize"
)

// RoleRegistry is the access-role registry the importer and exporter use.
type RoleRegistry interface {
	Exists(ctx context.Context, key string) (bool, error)
	Create(ctx context.Context, key, displayName string, caps map[string]bool) error
	Lookup(ctx context.Context, key string) (*models.AccessRole, error)
}

var (
	errCompanyMissing    = errors.New("company missing on row")
	errDepartmentMissing = errors.New("job role without department")
)

// Importer runs a batch upsert of structure rows. Rows are processed in order
// and committed one by one; a failing row is counted and skipped.
type Importer struct {
	resolver *Resolver
	roles    RoleRegistry
	log      *zap.Logger
}

func NewImporter(dir Directory, roles RoleRegistry, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{resolver: NewResolver(dir), roles: roles, log: log}
}

// Import reads the header and every row of src. Only a missing or malformed
// header fails the whole run; no row is touched in that case.
func (im *Importer) Import(ctx context.Context, src RecordReader) (Report, error) {
	var rep Report
	seen := map[string]bool{}

	rows, err := NewRowReader(src)
	if err != nil {
		return rep, err
	}

	for n := 1; ; n++ {
		row, err := rows.Next()
		if err == io.EOF {
			break
		}
		rep.Rows++
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return rep, errors.Wrap(err, "read row")
			}
			rep.Errors++
			im.log.Debug("import row unreadable", zap.Int("row", n), zap.Error(err))
			continue
		}

		if err := im.importRow(ctx, row, &rep, seen); err != nil {
			rep.Errors++
			im.log.Debug("import row failed", zap.Int("row", n), zap.String("company", row.Company), zap.Error(err))
		}
	}
	return rep, nil
}

func (im *Importer) importRow(ctx context.Context, row Row, rep *Report, seen map[string]bool) error {
	roleKey := sanitize.Key(row.MappedRole)
	if row.Company == "" && row.Department == "" && row.JobRole == "" && roleKey == "" {
		return nil
	}
	if row.Company == "" {
		return errCompanyMissing
	}

	companyID, created, err := im.resolver.Company(ctx, row.Company, row.CompanySlug)
	if err != nil {
		return errors.Wrap(err, "company")
	}
	tally(seen, fmt.Sprintf("company:%d", companyID), created, &rep.Created.Companies, &rep.Reused.Companies)

	var deptID uint64
	if row.Department != "" {
		deptID, created, err = im.resolver.Department(ctx, companyID, row.Department, row.DepartmentSlug)
		if err != nil {
			return errors.Wrap(err, "department")
		}
		tally(seen, fmt.Sprintf("department:%d", deptID), created, &rep.Created.Departments, &rep.Reused.Departments)
	}

	if row.JobRole != "" {
		if deptID == 0 {
			return errDepartmentMissing
		}
		jobRoleID, created, err := im.resolver.JobRole(ctx, companyID, deptID, row.JobRole, row.JobRoleSlug, roleKey)
		if err != nil {
			return errors.Wrap(err, "job role")
		}
		tally(seen, fmt.Sprintf("job_role:%d", jobRoleID), created, &rep.Created.JobRoles, &rep.Reused.JobRoles)
	}

	if roleKey != "" {
		exists, err := im.roles.Exists(ctx, roleKey)
		if err != nil {
			return errors.Wrap(err, "access role")
		}
		if exists {
			tally(seen, "access_role:"+roleKey, false, &rep.Created.AccessRoles, &rep.Reused.AccessRoles)
			return nil
		}
		if err := im.roles.Create(ctx, roleKey, row.MappedRoleDisplay, ParseCapabilities(row.CapabilityJSON)); err != nil {
			return errors.Wrap(err, "access role")
		}
		tally(seen, "access_role:"+roleKey, true, &rep.Created.AccessRoles, &rep.Reused.AccessRoles)
	}
	return nil
}

// tally counts each entity once per run: as created when this run inserted it,
// otherwise as reused.
func tally(seen map[string]bool, key string, isNew bool, created, reused *int) {
	if seen[key] {
		return
	}
	seen[key] = true
	if isNew {
		*created++
	} else {
		*reused++
	}
}
