package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgroles/internal/dbtest"
	"orgroles/internal/models"
	"orgroles/internal/store"
)

type fixture struct {
	st      *store.Store
	company uint64
	dept    uint64
	role    uint64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	st := store.New(dbtest.Open(t))

	companyID, err := st.InsertCompany(ctx, "Acme", "")
	require.NoError(t, err)
	deptID, err := st.InsertDepartment(ctx, companyID, "Sales", "")
	require.NoError(t, err)
	roleID, err := st.InsertJobRole(ctx, companyID, deptID, "Rep", "", "sales_rep")
	require.NoError(t, err)

	return fixture{st: st, company: companyID, dept: deptID, role: roleID}
}

func count(t *testing.T, st *store.Store, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, st.DB.Model(model).Count(&n).Error)
	return n
}

func TestInsertDerivesSlugs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.st.Company(ctx, f.company)
	require.NoError(t, err)
	assert.Equal(t, "acme", c.Slug)

	d, err := f.st.Department(ctx, f.dept)
	require.NoError(t, err)
	assert.Equal(t, "sales", d.Slug)

	r, err := f.st.JobRole(ctx, f.role)
	require.NoError(t, err)
	assert.Equal(t, "rep", r.Slug)
	assert.Equal(t, "sales_rep", r.MappedRole)
}

func TestCompanySlugIsUnique(t *testing.T) {
	f := newFixture(t)

	_, err := f.st.InsertCompany(context.Background(), "ACME", "acme")
	assert.Error(t, err)
}

func TestDepartmentSlugIsScopedToCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.st.InsertCompany(ctx, "Globex", "")
	require.NoError(t, err)

	_, err = f.st.InsertDepartment(ctx, other, "Sales", "")
	assert.NoError(t, err)

	_, err = f.st.InsertDepartment(ctx, f.company, "Sales Again", "sales")
	assert.Error(t, err)
}

func TestJobRoleCompanyFollowsDepartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.st.InsertCompany(ctx, "Globex", "")
	require.NoError(t, err)

	id, err := f.st.InsertJobRole(ctx, other, f.dept, "Manager", "", "sales_mgr")
	require.NoError(t, err)
	r, err := f.st.JobRole(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.company, r.CompanyID, "insert must ignore the supplied company")

	require.NoError(t, f.st.UpdateJobRole(ctx, id, other, f.dept, "Manager", "manager", "sales_mgr"))
	r, err = f.st.JobRole(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.company, r.CompanyID, "update must ignore the supplied company")
}

func TestJobRoleRequiresExistingDepartment(t *testing.T) {
	f := newFixture(t)

	_, err := f.st.InsertJobRole(context.Background(), f.company, 9999, "Ghost", "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.st.InsertJobRole(context.Background(), f.company, 0, "Ghost", "", "")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestUpdateDepartmentCascadesCompanyToJobRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.st.InsertCompany(ctx, "Globex", "")
	require.NoError(t, err)

	require.NoError(t, f.st.UpdateDepartment(ctx, f.dept, other, "Sales", "sales"))

	r, err := f.st.JobRole(ctx, f.role)
	require.NoError(t, err)
	assert.Equal(t, other, r.CompanyID)

	ok, err := f.st.DepartmentBelongsToCompany(ctx, f.dept, other)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListingsJoinParentNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	depts, err := f.st.Departments(ctx, f.company, "")
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, "Acme", depts[0].CompanyName)

	roles, err := f.st.JobRoles(ctx, f.company, f.dept, "")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "Sales", roles[0].DepartmentName)
	assert.Equal(t, "Acme", roles[0].CompanyName)

	found, err := f.st.Companies(ctx, "cm")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	none, err := f.st.JobRoles(ctx, 0, 0, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteCompanyCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.st.InsertUserAssignment(ctx, 7, f.company, f.dept, f.role, true))

	// a second company must survive untouched
	other, err := f.st.InsertCompany(ctx, "Globex", "")
	require.NoError(t, err)
	otherDept, err := f.st.InsertDepartment(ctx, other, "Ops", "")
	require.NoError(t, err)
	otherRole, err := f.st.InsertJobRole(ctx, other, otherDept, "Lead", "", "")
	require.NoError(t, err)
	require.NoError(t, f.st.InsertUserAssignment(ctx, 8, other, otherDept, otherRole, true))

	require.NoError(t, f.st.DeleteCompany(ctx, f.company))

	assert.Equal(t, int64(1), count(t, f.st, &models.Company{}))
	assert.Equal(t, int64(1), count(t, f.st, &models.Department{}))
	assert.Equal(t, int64(1), count(t, f.st, &models.JobRole{}))
	assert.Equal(t, int64(1), count(t, f.st, &models.UserAssignment{}))

	err = f.st.DeleteCompany(ctx, f.company)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteDepartmentCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.st.InsertUserAssignment(ctx, 7, f.company, f.dept, f.role, true))

	require.NoError(t, f.st.DeleteDepartment(ctx, f.dept))

	assert.Equal(t, int64(1), count(t, f.st, &models.Company{}))
	assert.Zero(t, count(t, f.st, &models.Department{}))
	assert.Zero(t, count(t, f.st, &models.JobRole{}))
	assert.Zero(t, count(t, f.st, &models.UserAssignment{}))
}

func TestDeleteJobRoleRemovesOnlyItsAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keep, err := f.st.InsertJobRole(ctx, f.company, f.dept, "Manager", "", "")
	require.NoError(t, err)
	require.NoError(t, f.st.InsertUserAssignment(ctx, 7, f.company, f.dept, f.role, true))
	require.NoError(t, f.st.InsertUserAssignment(ctx, 8, f.company, f.dept, keep, true))

	require.NoError(t, f.st.DeleteJobRole(ctx, f.role))

	assert.Equal(t, int64(1), count(t, f.st, &models.JobRole{}))
	assert.Equal(t, int64(1), count(t, f.st, &models.UserAssignment{}))
	assert.Equal(t, int64(1), count(t, f.st, &models.Department{}))
}

func TestPrimaryAssignmentTracksLatestSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second, err := f.st.InsertJobRole(ctx, f.company, f.dept, "Manager", "", "")
	require.NoError(t, err)

	require.NoError(t, f.st.InsertUserAssignment(ctx, 7, f.company, f.dept, f.role, true))
	require.NoError(t, f.st.InsertUserAssignment(ctx, 7, f.company, f.dept, second, true))

	p, err := f.st.PrimaryAssignment(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, second, p.JobRoleID)

	// selecting the first triple again re-promotes the existing row
	require.NoError(t, f.st.InsertUserAssignment(ctx, 7, f.company, f.dept, f.role, true))
	p, err = f.st.PrimaryAssignment(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, f.role, p.JobRoleID)

	all, err := f.st.Assignments(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSettingsDefaultsAndSave(t *testing.T) {
	st := store.New(dbtest.Open(t))
	ctx := context.Background()

	got, err := st.Settings(ctx)
	require.NoError(t, err)
	assert.True(t, got.DisableGuestPurchase)

	got.DisableGuestPurchase = false
	require.NoError(t, st.SaveSettings(ctx, got))

	got, err = st.Settings(ctx)
	require.NoError(t, err)
	assert.False(t, got.DisableGuestPurchase)
	assert.True(t, got.GuestCanSeePrice)
}

func TestAuditLogsPaging(t *testing.T) {
	ctx := context.Background()
	st := store.New(dbtest.Open(t))
	for i := 0; i < 5; i++ {
		action := "structure.changed"
		if i%2 == 0 {
			action = "import.completed"
		}
		require.NoError(t, st.DB.Create(&models.AuditLog{Action: action, ResourceType: "structure"}).Error)
	}

	page, next, err := st.AuditLogs(ctx, store.AuditQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.EqualValues(t, 5, page[0].ID)
	assert.EqualValues(t, 4, next)

	page, next, err = st.AuditLogs(ctx, store.AuditQuery{Limit: 2, AfterID: next})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.EqualValues(t, 3, page[0].ID)

	page, next, err = st.AuditLogs(ctx, store.AuditQuery{Limit: 2, AfterID: next})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Zero(t, next)

	page, _, err = st.AuditLogs(ctx, store.AuditQuery{Limit: 10, Action: "import.completed"})
	require.NoError(t, err)
	assert.Len(t, page, 3)
}
