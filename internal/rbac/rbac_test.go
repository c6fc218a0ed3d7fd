package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgroles/internal/dbtest"
	"orgroles/internal/rbac"
)

func TestRegistryCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	reg := rbac.Registry{DB: dbtest.Open(t)}

	require.NoError(t, reg.Create(ctx, "sales_rep", "", map[string]bool{"read": true, "edit_posts": false}))

	role, err := reg.Lookup(ctx, "sales_rep")
	require.NoError(t, err)
	assert.Equal(t, "Sales Rep", role.DisplayName)
	assert.Equal(t, map[string]bool{"read": true, "edit_posts": false}, rbac.Capabilities(*role))

	_, err = reg.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, rbac.ErrRoleNotFound)
}

func TestEnsureLeavesExistingRoleUntouched(t *testing.T) {
	ctx := context.Background()
	reg := rbac.Registry{DB: dbtest.Open(t)}

	require.NoError(t, reg.Create(ctx, "staff", "Staff", map[string]bool{"read": true}))
	require.NoError(t, reg.Ensure(ctx, "staff", "Other", map[string]bool{"delete_users": true}, true))

	role, err := reg.Lookup(ctx, "staff")
	require.NoError(t, err)
	assert.Equal(t, "Staff", role.DisplayName)
	assert.Equal(t, map[string]bool{"read": true}, rbac.Capabilities(*role))
}

func TestCheckerCan(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	reg := rbac.Registry{DB: gdb}
	chk := rbac.Checker{DB: gdb}

	require.NoError(t, reg.Create(ctx, "administrator", "Administrator", map[string]bool{rbac.CapManageOptions: true}))
	require.NoError(t, reg.Create(ctx, "customer", "Customer", map[string]bool{rbac.CapRead: true}))
	require.NoError(t, reg.Grant(ctx, 1, "administrator"))
	require.NoError(t, reg.Grant(ctx, 1, "administrator"))
	require.NoError(t, reg.Grant(ctx, 2, "customer"))

	ok, err := chk.Can(ctx, 1, rbac.CapManageOptions)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = chk.Can(ctx, 2, rbac.CapManageOptions)
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := reg.RolesOf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"administrator"}, keys)
}
