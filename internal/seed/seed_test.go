package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orgroles/internal/dbtest"
	"orgroles/internal/models"
	"orgroles/internal/rbac"
	"orgroles/internal/seed"
	"orgroles/internal/store"
)

func TestFirstSetupIsIdempotent(t *testing.T) {
	gdb := dbtest.Open(t)
	ctx := context.Background()
	admin := seed.Admin{Email: "Admin@Example.com", Password: "admin123"}

	require.NoError(t, seed.FirstSetup(ctx, gdb, admin, zap.NewNop()))
	require.NoError(t, seed.FirstSetup(ctx, gdb, admin, zap.NewNop()))

	var n int64
	require.NoError(t, gdb.Model(&models.AccessRole{}).Count(&n).Error)
	assert.EqualValues(t, 5, n)
	require.NoError(t, gdb.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	u, err := store.New(gdb).UserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	ok, err := rbac.Checker{DB: gdb}.Can(ctx, u.ID, rbac.CapManageOptions)
	require.NoError(t, err)
	assert.True(t, ok)

	st, err := store.New(gdb).Settings(ctx)
	require.NoError(t, err)
	assert.True(t, st.DisableGuestPurchase)
	assert.True(t, st.GuestCanSeePrice)
}
