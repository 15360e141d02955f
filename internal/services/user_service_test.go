package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/resourcedesk/internal/database/testutil"
	"github.com/charlesng35/resourcedesk/internal/models"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

func TestUserServiceLookup(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()
	alex, err := svc.GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, models.RoleRequester, alex.Role)

	_, err = svc.GetByID(ctx, "u-404")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	approvers, err := svc.List(ctx, models.RoleApprover)
	require.NoError(t, err)
	require.Len(t, approvers, 2)
	for _, u := range approvers {
		require.True(t, u.IsApprover())
	}

	everyone, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, everyone, 4)
}

func TestUserServiceRequireApprover(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.RequireApprover(ctx, "u-2")
	require.NoError(t, err)

	_, err = svc.RequireApprover(ctx, "u-1")
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.RequireApprover(ctx, "u-404")
	require.ErrorIs(t, err, apperrors.ErrValidation)
}
