package orgcsv

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"orgroles/internal/rbac"
	"orgroles/internal/sanitize"
)

// Exporter flattens the structure into one row per job role. Companies and
// departments without children still get a row with the trailing columns empty.
type Exporter struct {
	dir   Directory
	roles RoleRegistry
}

func NewExporter(dir Directory, roles RoleRegistry) *Exporter {
	return &Exporter{dir: dir, roles: roles}
}

// Records returns the header followed by every leaf row.
func (e *Exporter) Records(ctx context.Context) ([][]string, error) {
	out := [][]string{append([]string(nil), Columns...)}

	companies, err := e.dir.Companies(ctx, "")
	if err != nil {
		return nil, errors.Wrap(err, "list companies")
	}
	for _, c := range companies {
		depts, err := e.dir.Departments(ctx, c.ID, "")
		if err != nil {
			return nil, errors.Wrap(err, "list departments")
		}
		if len(depts) == 0 {
			out = append(out, leaf(c.Name, c.Slug, "", "", "", "", "", "", ""))
			continue
		}
		for _, d := range depts {
			roles, err := e.dir.JobRoles(ctx, c.ID, d.ID, "")
			if err != nil {
				return nil, errors.Wrap(err, "list job roles")
			}
			if len(roles) == 0 {
				out = append(out, leaf(c.Name, c.Slug, d.Name, d.Slug, "", "", "", "", ""))
				continue
			}
			for _, r := range roles {
				display, caps, err := e.describeRole(ctx, r.MappedRole)
				if err != nil {
					return nil, err
				}
				out = append(out, leaf(c.Name, c.Slug, d.Name, d.Slug, r.Label, r.Slug, r.MappedRole, display, caps))
			}
		}
	}
	return out, nil
}

func leaf(fields ...string) []string {
	return append(fields, "")
}

func (e *Exporter) describeRole(ctx context.Context, key string) (display, caps string, err error) {
	if key == "" {
		return "", "", nil
	}
	role, err := e.roles.Lookup(ctx, key)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		return sanitize.Humanize(key), "", nil
	}
	if err != nil {
		return "", "", errors.Wrap(err, "lookup access role")
	}
	raw, err := json.Marshal(rbac.Capabilities(*role))
	if err != nil {
		return "", "", err
	}
	display = role.DisplayName
	if display == "" {
		display = sanitize.Humanize(key)
	}
	return display, string(raw), nil
}

func (e *Exporter) WriteCSV(ctx context.Context, w io.Writer) error {
	records, err := e.Records(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}
